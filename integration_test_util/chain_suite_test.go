package integration_test_util_test

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/suite"

	"github.com/EscanBE/erc20harness/config"
	"github.com/EscanBE/erc20harness/erc20"
	"github.com/EscanBE/erc20harness/integration_test_util"
	"github.com/EscanBE/erc20harness/testutil"
	harnesstypes "github.com/EscanBE/erc20harness/types"
	"github.com/EscanBE/erc20harness/utils"
)

type ChainSuiteTestSuite struct {
	suite.Suite
	CITS *integration_test_util.ChainIntegrationTestSuite
}

func TestChainSuiteTestSuite(t *testing.T) {
	suite.Run(t, new(ChainSuiteTestSuite))
}

func (suite *ChainSuiteTestSuite) SetupTest() {
	dir := suite.T().TempDir()
	testutil.WriteArtifact(suite.T(), dir, testutil.ArtifactFixture{
		ContractName: "Answer",
		Bytecode:     testutil.AnswerBytecode,
	})
	testutil.WriteArtifact(suite.T(), dir, testutil.ArtifactFixture{
		ContractName: "Lib",
		Bytecode:     testutil.AnswerBytecode,
	})
	testutil.WriteArtifact(suite.T(), dir, testutil.ArtifactFixture{
		ContractName: "LibraryUser",
		Bytecode:     testutil.LibraryUserBytecode("contracts/Lib.sol:Lib"),
		LinkReferences: map[string][]int{
			"Lib": {testutil.LibraryUserLinkStart},
		},
	})

	cfg := config.DefaultConfig()
	cfg.ArtifactsDir = dir
	cfg.Accounts = 3
	cfg.GasReporter = false

	suite.CITS = integration_test_util.CreateChainIntegrationTestSuiteFromConfig(suite.T(), suite.Require(), cfg)
}

func (suite *ChainSuiteTestSuite) TearDownTest() {
	suite.CITS.Cleanup()
}

func (suite *ChainSuiteTestSuite) TestGenesis() {
	suite.Require().Len(suite.CITS.WalletAccounts, 3)
	suite.Equal(int64(1337), suite.CITS.ChainConfig.EvmChainId)

	expectedBalance := utils.MustNumberToBigInt("10000", 18)
	for _, account := range suite.CITS.WalletAccounts {
		suite.Equal(expectedBalance.String(), suite.CITS.QueryBalance(account.Address).String())
	}

	suite.Zero(suite.CITS.QueryBalance(suite.CITS.CreateAccount().Address).Sign())
}

func (suite *ChainSuiteTestSuite) TestContext() {
	cfg := config.DefaultConfig()
	cfg.ArtifactsDir = suite.T().TempDir()
	cfg.Accounts = 1
	cfg.TestTimeout = time.Minute

	cits := integration_test_util.CreateChainIntegrationTestSuiteFromConfig(suite.T(), suite.Require(), cfg)

	first := cits.Context()
	firstDeadline, ok := first.Deadline()
	suite.Require().True(ok)
	suite.WithinDuration(time.Now().Add(time.Minute), firstDeadline, 5*time.Second)

	time.Sleep(10 * time.Millisecond)

	// each operation gets its own deadline
	second := cits.Context()
	secondDeadline, ok := second.Deadline()
	suite.Require().True(ok)
	suite.True(secondDeadline.After(firstDeadline))

	suite.NoError(first.Err())
	suite.NoError(second.Err())

	cits.Cleanup()

	suite.ErrorIs(first.Err(), context.Canceled)
	suite.ErrorIs(second.Err(), context.Canceled)
}

func (suite *ChainSuiteTestSuite) TestMineBlocks() {
	before := suite.CITS.GetLatestBlockHeight()

	suite.Equal(before+5, suite.CITS.MineBlocks(5))
	suite.Equal(before+5, suite.CITS.MineBlocks(0))
}

func (suite *ChainSuiteTestSuite) TestAdjustTime() {
	before := suite.CITS.LatestBlockTime()

	suite.CITS.AdjustTime(time.Hour)
	suite.CITS.Commit()

	suite.GreaterOrEqual(suite.CITS.LatestBlockTime().Sub(before), time.Hour)
}

func (suite *ChainSuiteTestSuite) TestTxSendEth() {
	sender := suite.CITS.WalletAccounts.Number(2)
	receiver := suite.CITS.CreateAccount()
	amount := utils.MustNumberToBigInt("1.5", 18)

	receipt := suite.CITS.TxSendEth(sender, receiver.Address, amount)
	suite.Equal(uint64(21000), receipt.GasUsed)
	suite.Equal(amount.String(), suite.CITS.QueryBalance(receiver.Address).String())

	entries := suite.CITS.GasReport.Entries()
	suite.Require().Len(entries, 1)
	suite.Equal("send native coin", entries[0].Label)
	suite.Equal(1, entries[0].Calls)
}

func (suite *ChainSuiteTestSuite) TestDeployContract() {
	deployer := suite.CITS.WalletAccounts.Number(1)

	address, receipt := suite.CITS.DeployContract("Answer", nil, integration_test_util.DeployOptions{})
	suite.Equal(deployer.ComputeContractAddress(0), address)
	suite.Equal(address, receipt.ContractAddress)

	code, err := suite.CITS.Backend.CodeAt(suite.CITS.Context(), address, nil)
	suite.Require().NoError(err)
	suite.Equal(common.FromHex(testutil.AnswerRuntime), code)

	out, err := suite.CITS.Backend.CallContract(suite.CITS.Context(), ethereum.CallMsg{To: &address}, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(42), new(big.Int).SetBytes(out).Int64())

	another := suite.CITS.WalletAccounts.Number(3)
	address, _ = suite.CITS.DeployContract("Answer", nil, integration_test_util.DeployOptions{Signer: another})
	suite.Equal(another.ComputeContractAddress(0), address)
}

func (suite *ChainSuiteTestSuite) TestDeployContractWithLibrary() {
	deployer := suite.CITS.WalletAccounts.Number(2)

	address, _ := suite.CITS.DeployContract("LibraryUser", nil, integration_test_util.DeployOptions{
		Signer: deployer,
		Libs:   []string{"Lib"},
	})
	libAddress := deployer.ComputeContractAddress(0)
	suite.Equal(deployer.ComputeContractAddress(1), address)

	out, err := suite.CITS.Backend.CallContract(suite.CITS.Context(), ethereum.CallMsg{To: &address}, nil)
	suite.Require().NoError(err)
	suite.Equal(libAddress, common.BytesToAddress(out))

	// a library deployed elsewhere can be linked directly
	preDeployed := common.HexToAddress("0x1111111111111111111111111111111111111111")
	address, _ = suite.CITS.DeployContract("LibraryUser", nil, integration_test_util.DeployOptions{
		Signer: deployer,
		Linked: map[string]common.Address{"Lib": preDeployed},
	})

	out, err = suite.CITS.Backend.CallContract(suite.CITS.Context(), ethereum.CallMsg{To: &address}, nil)
	suite.Require().NoError(err)
	suite.Equal(preDeployed, common.BytesToAddress(out))
}

// The Answer contract returns 42 for any call, which makes it a token whose every balance is 42.
func (suite *ChainSuiteTestSuite) TestFundAccount() {
	source := suite.CITS.WalletAccounts.Number(1)
	receiver := suite.CITS.CreateAccount()

	tokenAddress, _ := suite.CITS.DeployContract("Answer", nil, integration_test_util.DeployOptions{})
	suite.CITS.RegisterTokenSource("ANSWER", tokenAddress, source)

	suite.Equal(tokenAddress, suite.CITS.TokenContractFor("ANSWER").Address())
	suite.Equal(tokenAddress, suite.CITS.TokenContractFor(tokenAddress.Hex()).Address())
	suite.Equal(source.Address, suite.CITS.TokenSourceFor("ANSWER").From())

	receipt := suite.CITS.FundAccountRaw(receiver.Address, big.NewInt(42), "ANSWER")
	suite.Greater(receipt.GasUsed, uint64(21000))

	// decimals() also answers 42, so the smallest unit is 0.(41 zeros)1
	smallestUnit := "0." + strings.Repeat("0", 41) + "1"
	suite.CITS.FundAccount(receiver.Address, smallestUnit, "ANSWER")

	fortyTwoUnits := "0." + strings.Repeat("0", 40) + "42"
	receipt = suite.CITS.FundAccount(receiver.Address, fortyTwoUnits, "ANSWER")
	suite.Equal(ethtypes.ReceiptStatusSuccessful, receipt.Status)

	entries := suite.CITS.GasReport.Entries()
	suite.Require().NotEmpty(entries)
	suite.Equal("fund ANSWER", entries[len(entries)-1].Label)
	suite.Equal(3, entries[len(entries)-1].Calls)

	_, err := erc20.Fund(
		suite.CITS.Context(),
		suite.CITS.TokenContractFor("ANSWER"),
		suite.CITS.TokenSourceFor("ANSWER"),
		receiver.Address,
		big.NewInt(43),
	)
	suite.ErrorIs(err, harnesstypes.ErrInsufficientSourceFunds)
}
