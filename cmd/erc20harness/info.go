package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/EscanBE/erc20harness/server"
)

// ConfigCmd prints the effective configuration after env file, environment and flags are applied.
func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.GetServerContextFromCmd(cmd).Config

			out, err := yaml.Marshal(map[string]interface{}{
				"mainnet_url":       cfg.MainnetURL,
				"fork_block_number": cfg.ForkBlockNumber,
				"node_url":          cfg.NodeURL,
				"artifacts_dir":     cfg.ArtifactsDir,
				"slow_threshold":    cfg.SlowThreshold.String(),
				"test_timeout":      cfg.TestTimeout.String(),
				"gas_reporter":      cfg.GasReporter,
				"block_gas_limit":   cfg.BlockGasLimit,
				"accounts":          cfg.Accounts,
				"account_balance":   cfg.AccountBalance,
				"log_level":         cfg.LogLevel,
			})
			if err != nil {
				return errors.Wrap(err, "failed to encode config")
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// NodeInfoCmd prints the client name, version and latest block of the dev node.
func NodeInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node-info",
		Short: "Print the client version and latest block number of the dev node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, client, closeFn, err := dialNode(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			name, v, err := client.NodeVersion(ctx)
			if err != nil {
				return err
			}

			height, err := client.BlockNumber(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to query block number")
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", name, v, height)
			return err
		},
	}
}
