package devnode

import (
	"context"
	"math/big"
	"strings"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"

	rpctypes "github.com/EscanBE/erc20harness/rpc/types"
	harnesstypes "github.com/EscanBE/erc20harness/types"
)

// Client talks to a Hardhat-compatible development node.
// It embeds an ethclient so it can back contract bindings directly.
type Client struct {
	*ethclient.Client

	rpc    *rpc.Client
	logger log.Logger

	mu           sync.Mutex
	impersonated map[common.Address]struct{}
}

// Dial connects to the node at url.
func Dial(ctx context.Context, url string, logger log.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial dev node %s", url)
	}
	return NewClient(rpcClient, logger), nil
}

// NewClient wraps an established rpc connection.
func NewClient(rpcClient *rpc.Client, logger log.Logger) *Client {
	return &Client{
		Client:       ethclient.NewClient(rpcClient),
		rpc:          rpcClient,
		logger:       logger.With("module", "devnode"),
		impersonated: make(map[common.Address]struct{}),
	}
}

// RPC returns the underlying rpc client.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// NodeVersion reports the client name and version from web3_clientVersion,
// e.g. "HardhatNetwork/2.22.1/@ethereumjs/vm/5.6.0" or "anvil/v0.2.0".
func (c *Client) NodeVersion(ctx context.Context) (string, *version.Version, error) {
	var clientVersion string
	if err := c.rpc.CallContext(ctx, &clientVersion, "web3_clientVersion"); err != nil {
		return "", nil, errors.Wrap(err, "failed to query client version")
	}

	parts := strings.SplitN(clientVersion, "/", 3)
	if len(parts) < 2 {
		return "", nil, errors.Errorf("unrecognized client version %q", clientVersion)
	}

	v, err := version.NewVersion(parts[1])
	if err != nil {
		return "", nil, errors.Wrapf(err, "unrecognized client version %q", clientVersion)
	}
	return parts[0], v, nil
}

// MineBlocks mines n empty blocks and returns the latest block number.
func (c *Client) MineBlocks(ctx context.Context, n int) (uint64, error) {
	if n < 0 {
		return 0, errors.Errorf("can not mine a negative number of blocks: %d", n)
	}

	for i := 0; i < n; i++ {
		if err := c.rpc.CallContext(ctx, nil, "evm_mine"); err != nil {
			return 0, errors.Wrapf(err, "failed to mine block %d of %d", i+1, n)
		}
	}

	height, err := c.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query block number")
	}

	c.logger.Debug("mined blocks", "count", n, "height", height)
	return height, nil
}

// IncreaseTime moves the timestamp of the next block forward.
func (c *Client) IncreaseTime(ctx context.Context, seconds uint64) error {
	if err := c.rpc.CallContext(ctx, nil, "evm_increaseTime", seconds); err != nil {
		return errors.Wrapf(err, "failed to increase time by %d seconds", seconds)
	}
	return nil
}

// Snapshot saves the chain state and returns the id to revert to.
func (c *Client) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := c.rpc.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return "", errors.Wrap(err, "failed to take snapshot")
	}
	return id, nil
}

// Revert restores the state saved by Snapshot. The snapshot id can not be reused.
func (c *Client) Revert(ctx context.Context, id string) error {
	var reverted bool
	if err := c.rpc.CallContext(ctx, &reverted, "evm_revert", id); err != nil {
		return errors.Wrapf(err, "failed to revert to snapshot %s", id)
	}
	if !reverted {
		return errors.Errorf("snapshot %s not found", id)
	}
	return nil
}

// Impersonate lets the node sign transactions of address. Repeated calls are served from cache.
func (c *Client) Impersonate(ctx context.Context, address common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.impersonated[address]; found {
		return nil
	}

	var ok *bool
	if err := c.rpc.CallContext(ctx, &ok, "hardhat_impersonateAccount", address); err != nil {
		return errorsmod.Wrapf(harnesstypes.ErrImpersonationUnsupported, "impersonate %s: %s", address, err)
	}
	if refused(ok) {
		return errorsmod.Wrapf(harnesstypes.ErrImpersonationUnsupported, "node refused to impersonate %s", address)
	}

	c.impersonated[address] = struct{}{}
	c.logger.Debug("impersonating account", "address", address.Hex())
	return nil
}

// StopImpersonating reverts Impersonate.
func (c *Client) StopImpersonating(ctx context.Context, address common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rpc.CallContext(ctx, nil, "hardhat_stopImpersonatingAccount", address); err != nil {
		return errors.Wrapf(err, "failed to stop impersonating %s", address)
	}
	delete(c.impersonated, address)
	return nil
}

// SetBalance overwrites the native balance of address.
func (c *Client) SetBalance(ctx context.Context, address common.Address, balance *big.Int) error {
	if balance == nil || balance.Sign() < 0 {
		return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "balance must not be negative: %v", balance)
	}
	if err := c.rpc.CallContext(ctx, nil, "hardhat_setBalance", address, hexutil.EncodeBig(balance)); err != nil {
		return errors.Wrapf(err, "failed to set balance of %s", address)
	}
	return nil
}

// Fork resets the node to a fork of the chain served at url, pinned at blockNumber.
func (c *Client) Fork(ctx context.Context, url string, blockNumber uint64) error {
	if url == "" {
		return errors.New("fork url is empty")
	}
	params := rpctypes.ResetParams{
		Forking: &rpctypes.ForkingParams{
			JSONRPCURL:  url,
			BlockNumber: &blockNumber,
		},
	}
	if err := c.reset(ctx, params); err != nil {
		return errors.Wrapf(err, "failed to fork at block %d", blockNumber)
	}
	c.logger.Info("forked chain", "block", blockNumber)
	return nil
}

// Reset drops all state and restarts from a fresh local chain.
func (c *Client) Reset(ctx context.Context) error {
	return c.reset(ctx, rpctypes.ResetParams{})
}

func (c *Client) reset(ctx context.Context, params rpctypes.ResetParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ok *bool
	if err := c.rpc.CallContext(ctx, &ok, "hardhat_reset", params); err != nil {
		return err
	}
	if refused(ok) {
		return errors.New("node refused to reset")
	}

	// impersonation does not survive a reset
	c.impersonated = make(map[common.Address]struct{})
	return nil
}

// refused reports an explicit false result. Anvil answers the hardhat methods with null.
func refused(result *bool) bool {
	return result != nil && !*result
}

// SendUnsignedTransaction submits a transaction the node signs itself, the sender must be unlocked or impersonated.
func (c *Client) SendUnsignedTransaction(ctx context.Context, args rpctypes.TransactionArgs) (common.Hash, error) {
	if args.From == nil {
		return common.Hash{}, errors.New("transaction sender is required")
	}

	var txHash common.Hash
	if err := c.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, errors.Wrapf(err, "failed to send %s", args.String())
	}
	return txHash, nil
}

// ImpersonatedSender impersonates address and returns a sender submitting calls on its behalf.
func (c *Client) ImpersonatedSender(ctx context.Context, address common.Address) (*ImpersonatedSender, error) {
	if err := c.Impersonate(ctx, address); err != nil {
		return nil, err
	}
	return &ImpersonatedSender{
		client: c,
		from:   address,
	}, nil
}

// ImpersonatedSender sends calls from an impersonated account.
type ImpersonatedSender struct {
	client *Client
	from   common.Address
}

func (s *ImpersonatedSender) From() common.Address {
	return s.from
}

func (s *ImpersonatedSender) SendCall(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	input := hexutil.Bytes(data)
	return s.client.SendUnsignedTransaction(ctx, rpctypes.TransactionArgs{
		From: &s.from,
		To:   &to,
		Data: &input,
	})
}
