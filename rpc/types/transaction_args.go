package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionArgs are the arguments of eth_sendTransaction. The node fills in and signs any missing field.
type TransactionArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Nonce    *hexutil.Uint64 `json:"nonce,omitempty"`
	Data     *hexutil.Bytes  `json:"data,omitempty"`
}

// String return the struct in a string format
func (args *TransactionArgs) String() string {
	return fmt.Sprintf("TransactionArgs{From:%v, To:%v, Gas:%v, Nonce:%v, Data:%v}",
		args.From,
		args.To,
		args.Gas,
		args.Nonce,
		args.Data)
}

// ForkingParams is the forking section of hardhat_reset.
type ForkingParams struct {
	JSONRPCURL  string  `json:"jsonRpcUrl"`
	BlockNumber *uint64 `json:"blockNumber,omitempty"`
}

// ResetParams is the single argument of hardhat_reset. A nil Forking resets to a fresh local chain.
type ResetParams struct {
	Forking *ForkingParams `json:"forking,omitempty"`
}
