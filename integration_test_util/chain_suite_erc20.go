package integration_test_util

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/EscanBE/erc20harness/erc20"
	itutiltypes "github.com/EscanBE/erc20harness/integration_test_util/types"
	"github.com/EscanBE/erc20harness/utils"
)

var _ erc20.Sender = (*LocalSender)(nil)

// LocalSender signs calls with the key of a suite account.
type LocalSender struct {
	suite   *ChainIntegrationTestSuite
	account *itutiltypes.TestAccount
}

func (s *LocalSender) From() common.Address {
	return s.account.Address
}

// SendCall submits the call into the pending block, it is mined by the next commit.
func (s *LocalSender) SendCall(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	opts := s.suite.TransactOpts(s.account)
	opts.Context = ctx

	tx, err := bind.NewBoundContract(to, abi.ABI{}, s.suite.Backend, s.suite.Backend, s.suite.Backend).RawTransact(opts, data)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// RegisterTokenSource makes source the account FundAccount draws the named token from.
func (suite *ChainIntegrationTestSuite) RegisterTokenSource(name string, token common.Address, source *itutiltypes.TestAccount) {
	suite.Require().NotNil(source)

	suite.mu.Lock()
	defer suite.mu.Unlock()

	suite.Tokens.Register(name, token, source.Address)
	suite.tokenSources[name] = source
}

// TokenContractFor binds a registered token name or a literal address.
func (suite *ChainIntegrationTestSuite) TokenContractFor(nameOrAddress string) *erc20.Token {
	address, err := suite.Tokens.TokenAddress(nameOrAddress)
	suite.Require().NoError(err)
	return erc20.NewToken(address, suite.Backend)
}

// TokenSourceFor returns the sender funding the named token.
func (suite *ChainIntegrationTestSuite) TokenSourceFor(name string) erc20.Sender {
	_, err := suite.Tokens.SourceAddress(name)
	suite.Require().NoError(err)

	suite.mu.Lock()
	defer suite.mu.Unlock()

	source, found := suite.tokenSources[name]
	suite.Require().Truef(found, "no local account holds the key of the %s source", name)

	return &LocalSender{
		suite:   suite,
		account: source,
	}
}

// FundAccount transfers amount, a decimal string in whole tokens, of the named token to the recipient.
func (suite *ChainIntegrationTestSuite) FundAccount(to common.Address, amount string, tokenName string) *ethtypes.Receipt {
	ctx := suite.Context()
	token := suite.TokenContractFor(tokenName)

	decimals, err := token.Decimals(ctx)
	suite.Require().NoError(err)

	value, err := utils.NormalizeAmount(amount, int(decimals))
	suite.Require().NoError(err)

	return suite.FundAccountRaw(to, value, tokenName)
}

// FundAccountRaw is FundAccount with the amount in the smallest unit.
func (suite *ChainIntegrationTestSuite) FundAccountRaw(to common.Address, value *big.Int, tokenName string) *ethtypes.Receipt {
	token := suite.TokenContractFor(tokenName)

	txHash, err := erc20.Fund(suite.Context(), token, suite.TokenSourceFor(tokenName), to, value)
	suite.Require().NoError(err)

	return suite.WaitTxHash(txHash, "fund "+tokenName)
}
