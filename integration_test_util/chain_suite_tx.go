package integration_test_util

//goland:noinspection SpellCheckingInspection
import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/EscanBE/erc20harness/artifacts"
	itutiltypes "github.com/EscanBE/erc20harness/integration_test_util/types"
)

// DeployOptions customizes DeployContract.
type DeployOptions struct {
	// Signer deploys the contract and its libraries, wallet account #1 when nil.
	Signer *itutiltypes.TestAccount
	// Libs are artifact names of libraries deployed before the contract and linked by their contract name.
	Libs []string
	// Linked are libraries already deployed, by name.
	Linked map[string]common.Address
}

// TxSendEth transfers native coin and waits for the receipt.
func (suite *ChainIntegrationTestSuite) TxSendEth(from *itutiltypes.TestAccount, to common.Address, amount *big.Int) *ethtypes.Receipt {
	opts := suite.TransactOpts(from)
	opts.Value = amount

	tx, err := bind.NewBoundContract(to, abi.ABI{}, suite.Backend, suite.Backend, suite.Backend).Transfer(opts)
	suite.Require().NoError(err)

	return suite.WaitTx(tx, "send native coin")
}

// DeployContract loads the artifact by name, deploys and links the requested libraries, then deploys the contract.
func (suite *ChainIntegrationTestSuite) DeployContract(name string, args []interface{}, opts DeployOptions) (common.Address, *ethtypes.Receipt) {
	signer := opts.Signer
	if signer == nil {
		signer = suite.WalletAccounts.Number(1)
	}

	artifact, err := suite.Artifacts.Load(name)
	suite.Require().NoError(err)

	linked := make(map[string]common.Address, len(opts.Linked)+len(opts.Libs))
	for libName, address := range opts.Linked {
		linked[libName] = address
	}

	for _, lib := range opts.Libs {
		libArtifact, err := suite.Artifacts.Load(lib)
		suite.Require().NoError(err)

		libAddress, _ := suite.DeployCompiledContract(signer, libArtifact)
		linked[libArtifact.ContractName] = libAddress
	}

	artifact.Link(linked)

	return suite.DeployCompiledContract(signer, artifact, args...)
}

// DeployCompiledContract deploys a fully linked artifact and waits for the receipt.
func (suite *ChainIntegrationTestSuite) DeployCompiledContract(deployer *itutiltypes.TestAccount, artifact *artifacts.Artifact, args ...interface{}) (common.Address, *ethtypes.Receipt) {
	bin, err := artifact.Bin()
	suite.Require().NoError(err)

	address, tx, _, err := bind.DeployContract(suite.TransactOpts(deployer), artifact.ABI, bin, suite.Backend, args...)
	suite.Require().NoError(err)

	receipt := suite.WaitTx(tx, "deploy "+artifact.ContractName)
	suite.Require().Equal(address, receipt.ContractAddress)

	suite.Logger().Debug("deployed contract", "name", artifact.ContractName, "address", address.Hex())
	return address, receipt
}

// WaitTx mines the pending block and returns the receipt of tx, which must have succeeded.
// Gas used is recorded in the gas report under label.
func (suite *ChainIntegrationTestSuite) WaitTx(tx *ethtypes.Transaction, label string) *ethtypes.Receipt {
	suite.Require().NotNil(tx)
	start := time.Now()

	suite.Commit()

	receipt, err := suite.Backend.TransactionReceipt(suite.Context(), tx.Hash())
	suite.Require().NoError(err)
	suite.Require().Equalf(ethtypes.ReceiptStatusSuccessful, receipt.Status, "tx %s (%s) failed", tx.Hash().Hex(), label)

	suite.GasReport.Record(label, receipt.GasUsed)

	if elapsed := time.Since(start); suite.TestConfig.SlowThreshold > 0 && elapsed > suite.TestConfig.SlowThreshold {
		suite.Logger().Warn("slow transaction", "label", label, "elapsed", elapsed.String())
	}

	return receipt
}

// WaitTxHash is WaitTx for a transaction known only by hash.
func (suite *ChainIntegrationTestSuite) WaitTxHash(txHash common.Hash, label string) *ethtypes.Receipt {
	tx, _, err := suite.Backend.TransactionByHash(suite.Context(), txHash)
	suite.Require().NoError(err)
	return suite.WaitTx(tx, label)
}
