package testutil

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/EscanBE/erc20harness/erc20"
	rpctypes "github.com/EscanBE/erc20harness/rpc/types"
)

// FakeDevNode answers the evm, hardhat, eth and web3 namespaces of a Hardhat dev node from memory.
// Every eth_call is served as an ERC20 token holding TokenBalances with TokenDecimals.
type FakeDevNode struct {
	mu sync.Mutex

	Height           uint64
	TimeOffset       uint64
	Snapshots        []uint64
	Impersonated     map[common.Address]bool
	ImpersonateCalls int
	Balances         map[common.Address]*big.Int
	TokenBalances    map[common.Address]*big.Int
	TokenDecimals    uint8
	Sent             []rpctypes.TransactionArgs
	Resets           []rpctypes.ResetParams
	ClientVersion    string
	// HardhatResult is what the hardhat namespace returns: "true" (default), "false" or "null".
	HardhatResult string
}

func NewFakeDevNode() *FakeDevNode {
	return &FakeDevNode{
		Impersonated:  make(map[common.Address]bool),
		Balances:      make(map[common.Address]*big.Int),
		TokenBalances: make(map[common.Address]*big.Int),
		TokenDecimals: 18,
		ClientVersion: "HardhatNetwork/2.22.1/@ethereumjs/vm/5.6.0",
		HardhatResult: "true",
	}
}

// Server returns an rpc server exposing the node. It also serves HTTP.
func (n *FakeDevNode) Server() (*rpc.Server, error) {
	server := rpc.NewServer()
	services := map[string]interface{}{
		"evm":     &fakeEvmAPI{node: n},
		"hardhat": &fakeHardhatAPI{node: n},
		"eth":     &fakeEthAPI{node: n},
		"web3":    &fakeWeb3API{node: n},
	}
	for namespace, service := range services {
		if err := server.RegisterName(namespace, service); err != nil {
			return nil, err
		}
	}
	return server, nil
}

// Lock guards reads of the exported state while the server is running.
func (n *FakeDevNode) Lock() {
	n.mu.Lock()
}

func (n *FakeDevNode) Unlock() {
	n.mu.Unlock()
}

type fakeEvmAPI struct{ node *FakeDevNode }

func (api *fakeEvmAPI) Mine() (string, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.Height++
	return "0x0", nil
}

func (api *fakeEvmAPI) IncreaseTime(seconds uint64) (string, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.TimeOffset += seconds
	return fmt.Sprintf("%d", api.node.TimeOffset), nil
}

func (api *fakeEvmAPI) Snapshot() (hexutil.Uint64, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.Snapshots = append(api.node.Snapshots, api.node.Height)
	return hexutil.Uint64(len(api.node.Snapshots)), nil
}

func (api *fakeEvmAPI) Revert(id hexutil.Uint64) (bool, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	if id == 0 || int(id) > len(api.node.Snapshots) {
		return false, nil
	}
	api.node.Height = api.node.Snapshots[id-1]
	api.node.Snapshots = api.node.Snapshots[:id-1]
	return true, nil
}

type fakeHardhatAPI struct{ node *FakeDevNode }

// result must be called with the node lock held.
func (api *fakeHardhatAPI) result() *bool {
	switch api.node.HardhatResult {
	case "null":
		return nil
	case "false":
		ok := false
		return &ok
	default:
		ok := true
		return &ok
	}
}

func (api *fakeHardhatAPI) ImpersonateAccount(address common.Address) (*bool, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.ImpersonateCalls++
	api.node.Impersonated[address] = true
	return api.result(), nil
}

func (api *fakeHardhatAPI) StopImpersonatingAccount(address common.Address) (*bool, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	delete(api.node.Impersonated, address)
	return api.result(), nil
}

func (api *fakeHardhatAPI) SetBalance(address common.Address, balance hexutil.Big) (*bool, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.Balances[address] = balance.ToInt()
	return api.result(), nil
}

func (api *fakeHardhatAPI) Reset(params rpctypes.ResetParams) (*bool, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	api.node.Resets = append(api.node.Resets, params)
	api.node.Impersonated = make(map[common.Address]bool)
	api.node.Height = 0
	if params.Forking != nil && params.Forking.BlockNumber != nil {
		api.node.Height = *params.Forking.BlockNumber
	}
	return api.result(), nil
}

type fakeEthAPI struct{ node *FakeDevNode }

func (api *fakeEthAPI) BlockNumber() (hexutil.Uint64, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	return hexutil.Uint64(api.node.Height), nil
}

func (api *fakeEthAPI) GetBalance(address common.Address, _ string) (*hexutil.Big, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	balance, found := api.node.Balances[address]
	if !found {
		balance = new(big.Int)
	}
	return (*hexutil.Big)(balance), nil
}

func (api *fakeEthAPI) Call(args map[string]interface{}, _ string) (hexutil.Bytes, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	encoded, _ := args["data"].(string)
	data, err := hexutil.Decode(encoded)
	if err != nil || len(data) < 4 {
		return nil, fmt.Errorf("bad call data %q", encoded)
	}

	method, err := erc20.TokenABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "decimals":
		return method.Outputs.Pack(api.node.TokenDecimals)
	case "balanceOf":
		inputs, err := method.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		balance, found := api.node.TokenBalances[inputs[0].(common.Address)]
		if !found {
			balance = new(big.Int)
		}
		return method.Outputs.Pack(balance)
	default:
		return nil, fmt.Errorf("method %s is not served", method.Name)
	}
}

func (api *fakeEthAPI) SendTransaction(args rpctypes.TransactionArgs) (common.Hash, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	if args.From == nil || !api.node.Impersonated[*args.From] {
		return common.Hash{}, fmt.Errorf("unknown account %v", args.From)
	}
	api.node.Sent = append(api.node.Sent, args)
	return crypto.Keccak256Hash([]byte(args.String()), big.NewInt(int64(len(api.node.Sent))).Bytes()), nil
}

type fakeWeb3API struct{ node *FakeDevNode }

func (api *fakeWeb3API) ClientVersion() string {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()
	return api.node.ClientVersion
}
