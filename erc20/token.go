package erc20

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Token is a typed binding to a deployed ERC20 contract.
type Token struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewToken binds the token at address. The backend can be the simulated chain or a client of a real node.
func NewToken(address common.Address, backend bind.ContractBackend) *Token {
	return &Token{
		address:  address,
		contract: bind.NewBoundContract(address, TokenABI, backend, backend, backend),
	}
}

// Address returns the contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// TransferEvent is a decoded Transfer log.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Raw   ethtypes.Log
}

func (t *Token) call(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s returned %d values, expected one", method, len(out))
	}
	return out[0], nil
}

func (t *Token) callBigInt(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	out, err := t.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out, new(*big.Int)).(**big.Int), nil
}

func (t *Token) callString(ctx context.Context, method string) (string, error) {
	out, err := t.call(ctx, method)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out, new(string)).(*string), nil
}

func (t *Token) Name(ctx context.Context) (string, error) {
	return t.callString(ctx, "name")
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return t.callString(ctx, "symbol")
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out, new(uint8)).(*uint8), nil
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.callBigInt(ctx, "totalSupply")
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callBigInt(ctx, "balanceOf", owner)
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callBigInt(ctx, "allowance", owner, spender)
}

func (t *Token) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return t.contract.Transact(opts, "transfer", to, amount)
}

func (t *Token) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}

func (t *Token) TransferFrom(opts *bind.TransactOpts, from, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return t.contract.Transact(opts, "transferFrom", from, to, amount)
}

// Mint creates tokens, only for tokens exposing mint(address,uint256).
func (t *Token) Mint(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return t.contract.Transact(opts, "mint", to, amount)
}

// Burn destroys tokens, only for tokens exposing burn(address,uint256).
func (t *Token) Burn(opts *bind.TransactOpts, from common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return t.contract.Transact(opts, "burn", from, amount)
}

// PackTransfer returns the calldata of transfer(to, amount).
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return TokenABI.Pack("transfer", to, amount)
}

// ParseTransfer decodes a Transfer log emitted by any ERC20 token.
func ParseTransfer(log ethtypes.Log) (*TransferEvent, error) {
	event := TokenABI.Events["Transfer"]
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return nil, fmt.Errorf("log %s/%d is not a Transfer event", log.TxHash, log.Index)
	}

	out := &TransferEvent{
		From: common.BytesToAddress(log.Topics[1].Bytes()),
		To:   common.BytesToAddress(log.Topics[2].Bytes()),
		Raw:  log,
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack Transfer value: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected Transfer data, %d values", len(values))
	}
	out.Value = *abi.ConvertType(values[0], new(*big.Int)).(**big.Int)

	return out, nil
}

// TransfersOf returns the Transfer events of the token found in a receipt.
func (t *Token) TransfersOf(receipt *ethtypes.Receipt) ([]*TransferEvent, error) {
	transferID := TokenABI.Events["Transfer"].ID

	var events []*TransferEvent
	for _, log := range receipt.Logs {
		if log.Address != t.address || len(log.Topics) == 0 || log.Topics[0] != transferID {
			continue
		}
		event, err := ParseTransfer(*log)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
