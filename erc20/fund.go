package erc20

import (
	"context"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"

	harnesstypes "github.com/EscanBE/erc20harness/types"
)

// Sender submits calldata on behalf of a fixed account.
// Local accounts sign with their key, impersonated accounts are signed by the dev node.
type Sender interface {
	From() common.Address
	SendCall(ctx context.Context, to common.Address, data []byte) (common.Hash, error)
}

// Fund transfers amount of token from source to the recipient.
// Nothing is sent when the source holds less than amount.
func Fund(ctx context.Context, token *Token, source Sender, to common.Address, amount *big.Int) (common.Hash, error) {
	if amount == nil || amount.Sign() < 0 {
		return common.Hash{}, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "funding amount must not be negative: %v", amount)
	}

	sourceBalance, err := token.BalanceOf(ctx, source.From())
	if err != nil {
		return common.Hash{}, errorsmod.Wrapf(err, "failed to query balance of token source %s", source.From())
	}

	if sourceBalance.Cmp(amount) < 0 {
		return common.Hash{}, errorsmod.Wrapf(
			harnesstypes.ErrInsufficientSourceFunds,
			"token source %s holds %s of %s, requested %s", source.From(), sourceBalance, token.Address(), amount,
		)
	}

	data, err := PackTransfer(to, amount)
	if err != nil {
		return common.Hash{}, err
	}

	return source.SendCall(ctx, token.Address(), data)
}
