package erc20

import (
	"sort"
	"strings"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"

	harnesstypes "github.com/EscanBE/erc20harness/types"
)

// TokenInfo is where a token lives and which account holds enough of it to fund others.
type TokenInfo struct {
	Address common.Address
	// Source is the holder used to fund test accounts, zero when none is known.
	Source common.Address
}

// Registry maps token names to contracts and funding sources.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]TokenInfo
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[string]TokenInfo),
	}
}

// DefaultMainnetRegistry returns the mainnet tokens and the holders funding them at the default fork block.
//
//goland:noinspection SpellCheckingInspection
func DefaultMainnetRegistry() *Registry {
	r := NewRegistry()
	r.Register("DAI", common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f"), common.HexToAddress("0x681Bd23F6128dB3F9b8914595d1a63830a6212fA"))
	r.Register("WETH", common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), common.HexToAddress("0x0F4ee9631f4be0a63756515141281A3E2B293Bbe"))
	r.Register("SUSHI", common.HexToAddress("0x6b3595068778dd592e39a122f4f5a5cf09c90fe2"), common.HexToAddress("0xAC844B604D6C600Fbe55C4383A6d87920b46A160"))
	r.Register("USDC", common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), common.HexToAddress("0x7abE0cE388281d2aCF297Cb089caef3819b13448"))
	r.Register("COMP", common.HexToAddress("0xc00e94cb662c3520282e6f5717214004a7f26888"), common.HexToAddress("0x912722a37E5FDFE480b4F52b949797b80594FE8B"))
	return r
}

// Register adds or replaces a token. A zero source means the token can not be funded from.
func (r *Registry) Register(name string, address, source common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[name] = TokenInfo{
		Address: address,
		Source:  source,
	}
}

// Lookup returns the registered info of a token.
func (r *Registry) Lookup(name string) (TokenInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, found := r.tokens[name]
	return info, found
}

// TokenAddress resolves a token name, or passes through a 0x-prefixed address.
func (r *Registry) TokenAddress(nameOrAddress string) (common.Address, error) {
	if strings.HasPrefix(nameOrAddress, "0x") {
		if !common.IsHexAddress(nameOrAddress) {
			return common.Address{}, errorsmod.Wrapf(harnesstypes.ErrUnknownToken, "malformed address %s", nameOrAddress)
		}
		return common.HexToAddress(nameOrAddress), nil
	}

	info, found := r.Lookup(nameOrAddress)
	if !found {
		return common.Address{}, errorsmod.Wrapf(harnesstypes.ErrUnknownToken, "address for token %s is unknown", nameOrAddress)
	}
	return info.Address, nil
}

// SourceAddress returns the funding holder of a token.
func (r *Registry) SourceAddress(name string) (common.Address, error) {
	info, found := r.Lookup(name)
	if !found || info.Source == (common.Address{}) {
		return common.Address{}, errorsmod.Wrapf(harnesstypes.ErrNoTokenSource, "no source account for token %s", name)
	}
	return info.Source, nil
}

// Names returns the registered token names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokens))
	for name := range r.tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
