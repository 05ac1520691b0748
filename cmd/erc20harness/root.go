package main

import (
	"github.com/spf13/cobra"

	"github.com/EscanBE/erc20harness/config"
	"github.com/EscanBE/erc20harness/constants"
	"github.com/EscanBE/erc20harness/server"
)

const (
	flagEnvFile    = "env-file"
	flagNodeURL    = "node-url"
	flagMainnetURL = "mainnet-url"
	flagForkBlock  = "fork-block"
	flagLogLevel   = "log-level"
)

var flagBindings = server.FlagBindings{
	config.KeyNodeURL:         flagNodeURL,
	config.KeyMainnetURL:      flagMainnetURL,
	config.KeyForkBlockNumber: flagForkBlock,
	config.KeyLogLevel:        flagLogLevel,
}

// NewRootCmd creates a new root command for our binary. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:           constants.ApplicationName,
		Short:         "ERC20 test harness tooling for Hardhat compatible dev nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			envFile, err := cmd.Flags().GetString(flagEnvFile)
			if err != nil {
				return err
			}

			return server.InterceptConfigsPreRunHandler(cmd, envFile, flagBindings)
		},
	}

	rootCmd.PersistentFlags().String(flagEnvFile, constants.DefaultEnvFile, "dotenv file overriding the defaults")
	rootCmd.PersistentFlags().String(flagNodeURL, defaults.NodeURL, "JSON-RPC endpoint of the dev node")
	rootCmd.PersistentFlags().String(flagMainnetURL, defaults.MainnetURL, "JSON-RPC endpoint of the chain to fork from")
	rootCmd.PersistentFlags().Uint64(flagForkBlock, defaults.ForkBlockNumber, "block number to pin the fork at")
	rootCmd.PersistentFlags().String(flagLogLevel, defaults.LogLevel, "log level: trace, debug, info, warn, error or none")

	rootCmd.AddCommand(
		NormalizeCmd(),
		FormatCmd(),
		KeccakCmd(),
		MineCmd(),
		ForkCmd(),
		FundCmd(),
		BalanceCmd(),
		NodeInfoCmd(),
		ConfigCmd(),
	)

	return rootCmd
}
