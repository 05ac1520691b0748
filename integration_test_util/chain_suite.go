package integration_test_util

//goland:noinspection SpellCheckingInspection
import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/EscanBE/erc20harness/artifacts"
	"github.com/EscanBE/erc20harness/config"
	"github.com/EscanBE/erc20harness/constants"
	"github.com/EscanBE/erc20harness/erc20"
	itutiltypes "github.com/EscanBE/erc20harness/integration_test_util/types"
)

// ChainIntegrationTestSuite is a helper for integration tests against an in-process simulated chain.
type ChainIntegrationTestSuite struct {
	t       *testing.T
	require *require.Assertions
	muTest  sync.RWMutex
	mu      sync.Mutex
	logger  log.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc
	muCtx     sync.Mutex
	opCancels []context.CancelFunc

	tokenSources map[string]*itutiltypes.TestAccount

	Backend        *backends.SimulatedBackend
	ChainConfig    itutiltypes.ChainConfig
	TestConfig     itutiltypes.TestConfig
	WalletAccounts itutiltypes.TestAccounts
	Artifacts      *artifacts.Store
	Tokens         *erc20.Registry
	GasReport      *itutiltypes.GasReport
}

// IntegrationTestChain is the chain every suite simulates.
var IntegrationTestChain = itutiltypes.ChainConfig{
	EvmChainId: constants.SimulatedChainId,
}

// CreateChainIntegrationTestSuite initialize an integration test suite using configuration
// loaded from the process environment and the default env file.
func CreateChainIntegrationTestSuite(t *testing.T, r *require.Assertions) *ChainIntegrationTestSuite {
	cfg, err := config.Load(constants.DefaultEnvFile)
	require.NoError(t, err)
	return CreateChainIntegrationTestSuiteFromConfig(t, r, cfg)
}

// CreateChainIntegrationTestSuiteFromConfig initialize an integration test suite from a given config.
func CreateChainIntegrationTestSuiteFromConfig(t *testing.T, r *require.Assertions, cfg config.Config) *ChainIntegrationTestSuite {
	// Setup assertions
	if r == nil {
		r = require.New(t)
	}

	r.NoError(cfg.Validate())

	chainCfg := IntegrationTestChain
	chainCfg.EvmChainIdBigInt = big.NewInt(chainCfg.EvmChainId)

	balance, err := cfg.AccountBalanceWei()
	r.NoError(err)

	testConfig := itutiltypes.TestConfig{
		InitBalanceAmount: sdkmath.NewIntFromBigInt(balance),
		WalletAccounts:    cfg.Accounts,
		BlockGasLimit:     cfg.BlockGasLimit,
		TestTimeout:       cfg.TestTimeout,
		SlowThreshold:     cfg.SlowThreshold,
		GasReporter:       cfg.GasReporter,
	}

	// Setup Test accounts

	walletAccounts := newWalletsAccounts(t, testConfig.WalletAccounts)

	genesisAlloc := make(core.GenesisAlloc, len(walletAccounts))
	for _, account := range walletAccounts {
		genesisAlloc[account.Address] = core.GenesisAccount{
			Balance: testConfig.InitBalanceAmount.BigInt(),
		}
	}

	backend := backends.NewSimulatedBackend(genesisAlloc, testConfig.BlockGasLimit)

	// the simulated chain id is fixed by go-ethereum, keep the suite in sync with it
	r.Equal(chainCfg.EvmChainIdBigInt.String(), backend.Blockchain().Config().ChainID.String(), "unexpected simulated chain id")

	ctx, cancel := context.WithCancel(context.Background())

	suite := &ChainIntegrationTestSuite{
		t:              t,
		require:        r,
		logger:         log.NewNopLogger(),
		ctx:            ctx,
		ctxCancel:      cancel,
		tokenSources:   make(map[string]*itutiltypes.TestAccount),
		Backend:        backend,
		ChainConfig:    chainCfg,
		TestConfig:     testConfig,
		WalletAccounts: walletAccounts,
		Artifacts:      artifacts.NewStore(cfg.ArtifactsDir),
		Tokens:         erc20.NewRegistry(),
		GasReport:      itutiltypes.NewGasReport(),
	}

	return suite
}

// newWalletsAccounts derives deterministic accounts so addresses are stable across runs.
func newWalletsAccounts(t *testing.T, count int) itutiltypes.TestAccounts {
	accounts := make(itutiltypes.TestAccounts, count)
	for i := 0; i < count; i++ {
		privateKey, err := crypto.ToECDSA(crypto.Keccak256([]byte(fmt.Sprintf("%s wallet account %d", constants.ApplicationName, i+1))))
		require.NoError(t, err)

		account, err := itutiltypes.NewTestAccount(privateKey, "wallet")
		require.NoError(t, err)

		accounts[i] = account
	}
	return accounts
}

func (suite *ChainIntegrationTestSuite) T() *testing.T {
	suite.muTest.RLock()
	defer suite.muTest.RUnlock()
	return suite.t
}

func (suite *ChainIntegrationTestSuite) Require() *require.Assertions {
	suite.muTest.RLock()
	defer suite.muTest.RUnlock()
	return suite.require
}

// WithLogger replaces the no-op logger.
func (suite *ChainIntegrationTestSuite) WithLogger(logger log.Logger) *ChainIntegrationTestSuite {
	suite.muTest.Lock()
	defer suite.muTest.Unlock()
	suite.logger = logger
	return suite
}

func (suite *ChainIntegrationTestSuite) Logger() log.Logger {
	suite.muTest.RLock()
	defer suite.muTest.RUnlock()
	return suite.logger
}

// Context returns a context expiring TestTimeout from now, for one chain operation.
// Every context returned is canceled by Cleanup.
func (suite *ChainIntegrationTestSuite) Context() context.Context {
	ctx, cancel := context.WithTimeout(suite.ctx, suite.TestConfig.TestTimeout)

	suite.muCtx.Lock()
	suite.opCancels = append(suite.opCancels, cancel)
	suite.muCtx.Unlock()

	return ctx
}

// Cleanup cleans up the ChainIntegrationTestSuite.
// This method should be called after each test or suite, depends on the tactic you shut down the Integration chain.
func (suite *ChainIntegrationTestSuite) Cleanup() {
	if suite == nil {
		return
	}

	if suite.TestConfig.GasReporter {
		suite.GasReport.Print(os.Stdout)
	}

	suite.muCtx.Lock()
	for _, cancel := range suite.opCancels {
		cancel()
	}
	suite.opCancels = nil
	suite.muCtx.Unlock()

	suite.ctxCancel()

	if suite.Backend != nil {
		if err := suite.Backend.Close(); err != nil {
			fmt.Println("Failed to close simulated backend")
			fmt.Println(err)
		}
	}
}

// Commit seals the pending block.
func (suite *ChainIntegrationTestSuite) Commit() {
	suite.mu.Lock()
	defer suite.mu.Unlock()

	suite.Backend.Commit()
}

// MineBlocks commits n blocks and returns the latest block height.
func (suite *ChainIntegrationTestSuite) MineBlocks(n int) int64 {
	suite.Require().GreaterOrEqual(n, 0, "can not mine a negative number of blocks")

	for i := 0; i < n; i++ {
		suite.Commit()
	}

	return suite.GetLatestBlockHeight()
}

// GetLatestBlockHeight returns the most recent block height.
func (suite *ChainIntegrationTestSuite) GetLatestBlockHeight() int64 {
	header, err := suite.Backend.HeaderByNumber(suite.Context(), nil)
	suite.Require().NoError(err)
	return header.Number.Int64()
}

// AdjustTime moves the pending block time forward. It takes effect on the next commit.
func (suite *ChainIntegrationTestSuite) AdjustTime(duration time.Duration) {
	suite.mu.Lock()
	defer suite.mu.Unlock()

	suite.Require().NoError(suite.Backend.AdjustTime(duration))
}

// LatestBlockTime returns the timestamp of the most recent block.
func (suite *ChainIntegrationTestSuite) LatestBlockTime() time.Time {
	header, err := suite.Backend.HeaderByNumber(suite.Context(), nil)
	suite.Require().NoError(err)
	return time.Unix(int64(header.Time), 0)
}
