package main

import (
	"fmt"
	"math/big"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"github.com/spf13/cobra"

	harnesstypes "github.com/EscanBE/erc20harness/types"
	"github.com/EscanBE/erc20harness/utils"
)

func NormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "normalize <amount> <precision>",
		Short:   "Convert a decimal amount into the integer of its smallest unit",
		Example: "normalize 1.5 18",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			precision, err := parsePrecision(args[1])
			if err != nil {
				return err
			}

			value, err := utils.NormalizeAmount(args[0], precision)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), value.String())
			return err
		},
	}
}

func FormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "format <integer> <precision>",
		Short:   "Convert an integer amount of the smallest unit into a decimal amount",
		Example: "format 1500000000000000000 18",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			precision, err := parsePrecision(args[1])
			if err != nil {
				return err
			}

			value, ok := new(big.Int).SetString(args[0], 10)
			if !ok {
				return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "not an integer: %s", args[0])
			}

			formatted, err := utils.FormatAmount(value, precision)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatted)
			return err
		},
	}
}

func KeccakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keccak <text>",
		Short: "Print the keccak256 hash of the UTF-8 text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.Keccak256(args[0]).Hex())
			return err
		},
	}
}

func parsePrecision(arg string) (int, error) {
	precision, err := parseCount(arg)
	if err != nil {
		return 0, errorsmod.Wrapf(harnesstypes.ErrInvalidPrecision, "bad precision %s: %s", arg, err)
	}
	return precision, nil
}

// parseCount reads a non-negative base 10 integer, leading zeros do not switch to octal.
func parseCount(arg string) (int, error) {
	value, err := strconv.ParseUint(arg, 10, 31)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}
