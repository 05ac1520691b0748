package integration_test_util

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	itutiltypes "github.com/EscanBE/erc20harness/integration_test_util/types"
)

// CreateAccount generate a new test account without any balance.
func (suite *ChainIntegrationTestSuite) CreateAccount() *itutiltypes.TestAccount {
	newTA, err := itutiltypes.NewTestAccount(nil, "generated")
	suite.Require().NoError(err)
	return newTA
}

// QueryBalance returns the native balance of the address at the latest block.
func (suite *ChainIntegrationTestSuite) QueryBalance(address common.Address) *big.Int {
	balance, err := suite.Backend.BalanceAt(suite.Context(), address, nil)
	suite.Require().NoError(err)
	return balance
}

// TransactOpts returns options signing transactions as the account, bound to the suite context.
func (suite *ChainIntegrationTestSuite) TransactOpts(account *itutiltypes.TestAccount) *bind.TransactOpts {
	suite.Require().NotNil(account)

	opts, err := itutiltypes.NewSigner(account.PrivateKey, suite.ChainConfig.EvmChainIdBigInt)
	suite.Require().NoError(err)

	opts.Context = suite.Context()
	return opts
}
