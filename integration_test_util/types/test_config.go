package types

import (
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
)

// ChainConfig identifies the simulated chain.
type ChainConfig struct {
	EvmChainId       int64
	EvmChainIdBigInt *big.Int // dynamic: calculated from EvmChainId
}

// TestConfig holds the genesis and runtime settings of an integration suite.
type TestConfig struct {
	InitBalanceAmount sdkmath.Int
	WalletAccounts    int
	BlockGasLimit     uint64
	TestTimeout       time.Duration
	SlowThreshold     time.Duration
	GasReporter       bool
}
