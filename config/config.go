package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/EscanBE/erc20harness/constants"
	"github.com/EscanBE/erc20harness/utils"
)

const (
	KeyMainnetURL      = "mainnet_url"
	KeyForkBlockNumber = "fork_block_number"
	KeyNodeURL         = "node_url"
	KeyArtifactsDir    = "artifacts_dir"
	KeySlowThreshold   = "slow_threshold"
	KeyTestTimeout     = "test_timeout"
	KeyGasReporter     = "gas_reporter"
	KeyBlockGasLimit   = "block_gas_limit"
	KeyAccounts        = "accounts"
	KeyAccountBalance  = "account_balance"
	KeyLogLevel        = "log_level"
)

// Config holds the network, artifact and timing settings of the harness.
type Config struct {
	// MainnetURL is the RPC endpoint of the chain a dev node forks from.
	MainnetURL string `mapstructure:"mainnet_url"`
	// ForkBlockNumber pins the fork to a block.
	ForkBlockNumber uint64 `mapstructure:"fork_block_number"`
	// NodeURL is the JSON-RPC endpoint of a Hardhat compatible dev node.
	NodeURL string `mapstructure:"node_url"`
	// ArtifactsDir is the root of the compiled contract artifacts.
	ArtifactsDir string `mapstructure:"artifacts_dir"`
	// SlowThreshold marks specs running longer than this as slow.
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	// TestTimeout bounds every chain operation.
	TestTimeout time.Duration `mapstructure:"test_timeout"`
	// GasReporter enables the gas usage report.
	GasReporter bool `mapstructure:"gas_reporter"`
	// BlockGasLimit of the simulated chain.
	BlockGasLimit uint64 `mapstructure:"block_gas_limit"`
	// Accounts is the number of test accounts funded at genesis.
	Accounts int `mapstructure:"accounts"`
	// AccountBalance is the ether balance of each funded test account, as a decimal string.
	AccountBalance string `mapstructure:"account_balance"`
	// LogLevel is one of trace, debug, info, warn, error, disabled.
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MainnetURL:      "",
		ForkBlockNumber: constants.DefaultForkBlockNumber,
		NodeURL:         constants.DefaultNodeURL,
		ArtifactsDir:    constants.DefaultArtifactsDir,
		SlowThreshold:   10 * time.Second,
		TestTimeout:     20 * time.Second,
		GasReporter:     false,
		BlockGasLimit:   constants.DefaultBlockGasLimit,
		Accounts:        constants.DefaultAccounts,
		AccountBalance:  constants.DefaultAccountBalance,
		LogLevel:        "info",
	}
}

// NewViper returns a viper instance carrying the defaults and reading overrides from the environment,
// e.g. MAINNET_URL overrides mainnet_url.
func NewViper() *viper.Viper {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault(KeyMainnetURL, def.MainnetURL)
	v.SetDefault(KeyForkBlockNumber, def.ForkBlockNumber)
	v.SetDefault(KeyNodeURL, def.NodeURL)
	v.SetDefault(KeyArtifactsDir, def.ArtifactsDir)
	v.SetDefault(KeySlowThreshold, def.SlowThreshold)
	v.SetDefault(KeyTestTimeout, def.TestTimeout)
	v.SetDefault(KeyGasReporter, def.GasReporter)
	v.SetDefault(KeyBlockGasLimit, def.BlockGasLimit)
	v.SetDefault(KeyAccounts, def.Accounts)
	v.SetDefault(KeyAccountBalance, def.AccountBalance)
	v.SetDefault(KeyLogLevel, def.LogLevel)

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// ReadEnvFile merges a dotenv file into v. A missing file is not an error.
func ReadEnvFile(v *viper.Viper, envFile string) error {
	if envFile == "" {
		return nil
	}

	if _, err := os.Stat(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	return nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads the configuration from the defaults, the given dotenv file and the environment,
// in increasing order of precedence.
func Load(envFile string) (Config, error) {
	v := NewViper()
	if err := ReadEnvFile(v, envFile); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// Validate checks the configuration for values the harness can not work with.
func (c Config) Validate() error {
	if c.NodeURL == "" {
		return errors.New("node url must not be empty")
	}
	if c.ArtifactsDir == "" {
		return errors.New("artifacts dir must not be empty")
	}
	if c.TestTimeout <= 0 {
		return fmt.Errorf("test timeout must be positive, got %s", c.TestTimeout)
	}
	if c.SlowThreshold < 0 {
		return fmt.Errorf("slow threshold must not be negative, got %s", c.SlowThreshold)
	}
	if c.BlockGasLimit == 0 {
		return errors.New("block gas limit must be positive")
	}
	if c.Accounts < 1 {
		return fmt.Errorf("at least one test account is required, got %d", c.Accounts)
	}
	if _, err := c.AccountBalanceWei(); err != nil {
		return fmt.Errorf("bad account balance: %w", err)
	}
	return nil
}

// AccountBalanceWei returns the per account genesis balance in wei.
func (c Config) AccountBalanceWei() (*big.Int, error) {
	return utils.ParseEtherDecimal(c.AccountBalance)
}

// ForkEnabled reports whether a mainnet endpoint is configured.
func (c Config) ForkEnabled() bool {
	return c.MainnetURL != ""
}
