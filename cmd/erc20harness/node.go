package main

import (
	"context"
	"fmt"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/EscanBE/erc20harness/erc20"
	"github.com/EscanBE/erc20harness/rpc/devnode"
	"github.com/EscanBE/erc20harness/server"
	harnesstypes "github.com/EscanBE/erc20harness/types"
	"github.com/EscanBE/erc20harness/utils"
)

const flagSource = "source"

// sourceGasBalance is the native balance, in ether, given to an impersonated source that can not pay for gas.
const sourceGasBalance = "1"

// dialNode connects to the configured dev node, bounded by the configured timeout.
func dialNode(cmd *cobra.Command) (context.Context, *devnode.Client, func(), error) {
	serverCtx := server.GetServerContextFromCmd(cmd)

	ctx, cancel := context.WithTimeout(cmd.Context(), serverCtx.Config.TestTimeout)
	client, err := devnode.Dial(ctx, serverCtx.Config.NodeURL, serverCtx.Logger)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	return ctx, client, func() {
		client.Close()
		cancel()
	}, nil
}

func MineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine [count]",
		Short: "Mine empty blocks on the dev node and print the latest block number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) > 0 {
				var err error
				count, err = parseCount(args[0])
				if err != nil {
					return errors.Wrapf(err, "bad block count %s", args[0])
				}
			}

			ctx, client, closeFn, err := dialNode(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			height, err := client.MineBlocks(ctx, count)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), height)
			return err
		},
	}
}

func ForkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fork",
		Short: "Reset the dev node to a fork of mainnet at the configured block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.GetServerContextFromCmd(cmd).Config
			if !cfg.ForkEnabled() {
				return errors.Errorf("mainnet url is not configured, set MAINNET_URL or --%s", flagMainnetURL)
			}

			ctx, client, closeFn, err := dialNode(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := client.Fork(ctx, cfg.MainnetURL, cfg.ForkBlockNumber); err != nil {
				return err
			}

			height, err := client.BlockNumber(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), height)
			return err
		},
	}
}

func FundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund <token> <to> <amount>",
		Short: "Transfer tokens from an impersonated holder to an account",
		Long: `Transfer tokens from an impersonated holder to an account.
The token is a known token name or a contract address, the amount is in whole tokens.
The holder defaults to the known source of the token and can be overridden with --source.`,
		Example: "fund DAI 0x00000000000000000000000000000000000000aa 1000.5",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := erc20.DefaultMainnetRegistry()

			tokenAddress, err := registry.TokenAddress(args[0])
			if err != nil {
				return err
			}

			to, err := parseAddress(args[1])
			if err != nil {
				return err
			}

			source, err := fundingSource(cmd, registry, args[0])
			if err != nil {
				return err
			}

			ctx, client, closeFn, err := dialNode(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			token := erc20.NewToken(tokenAddress, client)

			decimals, err := token.Decimals(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to query decimals of %s", tokenAddress)
			}

			value, err := utils.NormalizeAmount(args[2], int(decimals))
			if err != nil {
				return err
			}

			sender, err := client.ImpersonatedSender(ctx, source)
			if err != nil {
				return err
			}

			if err := ensureGasBalance(ctx, client, source); err != nil {
				return err
			}

			txHash, err := erc20.Fund(ctx, token, sender, to, value)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), txHash.Hex())
			return err
		},
	}

	cmd.Flags().String(flagSource, "", "address of the token holder to fund from")

	return cmd
}

func BalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <token> <address>...",
		Short: "Print the token balance of each address in whole tokens",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenAddress, err := erc20.DefaultMainnetRegistry().TokenAddress(args[0])
			if err != nil {
				return err
			}

			holders := make([]common.Address, 0, len(args)-1)
			for _, arg := range args[1:] {
				holder, err := parseAddress(arg)
				if err != nil {
					return err
				}
				holders = append(holders, holder)
			}

			ctx, client, closeFn, err := dialNode(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			token := erc20.NewToken(tokenAddress, client)

			decimals, err := token.Decimals(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to query decimals of %s", tokenAddress)
			}

			balances := make([]*big.Int, len(holders))
			g, gCtx := errgroup.WithContext(ctx)
			for i, holder := range holders {
				i, holder := i, holder
				g.Go(func() error {
					balance, err := token.BalanceOf(gCtx, holder)
					if err != nil {
						return errors.Wrapf(err, "failed to query balance of %s", holder)
					}
					balances[i] = balance
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, holder := range holders {
				formatted, err := utils.FormatAmount(balances[i], int(decimals))
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", holder.Hex(), formatted); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func parseAddress(arg string) (common.Address, error) {
	if !common.IsHexAddress(arg) {
		return common.Address{}, errors.Errorf("invalid address %s", arg)
	}
	return common.HexToAddress(arg), nil
}

func fundingSource(cmd *cobra.Command, registry *erc20.Registry, tokenName string) (common.Address, error) {
	override, err := cmd.Flags().GetString(flagSource)
	if err != nil {
		return common.Address{}, err
	}
	if override != "" {
		return parseAddress(override)
	}
	return registry.SourceAddress(tokenName)
}

// ensureGasBalance tops up an impersonated account that can not pay for the transfer gas.
func ensureGasBalance(ctx context.Context, client *devnode.Client, account common.Address) error {
	minimum, err := utils.ParseEtherDecimal(sourceGasBalance)
	if err != nil {
		return err
	}

	balance, err := client.BalanceAt(ctx, account, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to query native balance of %s", account)
	}
	if balance.Cmp(minimum) >= 0 {
		return nil
	}

	if err := client.SetBalance(ctx, account, minimum); err != nil {
		return errorsmod.Wrapf(harnesstypes.ErrInsufficientSourceFunds, "can not pay gas for %s: %s", account, err)
	}
	return nil
}
