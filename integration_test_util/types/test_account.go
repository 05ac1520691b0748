package types

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TestAccount is a key pair used to sign transactions on the test chain.
type TestAccount struct {
	Type       string
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// NewTestAccount wraps a private key, a nil key generates a new one.
func NewTestAccount(privateKey *ecdsa.PrivateKey, accountType string) (*TestAccount, error) {
	if privateKey == nil {
		var err error
		privateKey, err = crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
	}

	return &TestAccount{
		Type:       accountType,
		PrivateKey: privateKey,
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// GetEthAddress returns the address of the account.
func (a *TestAccount) GetEthAddress() common.Address {
	return a.Address
}

// ComputeContractAddress returns the address of the contract the account creates with the given nonce.
func (a *TestAccount) ComputeContractAddress(nonce uint64) common.Address {
	return crypto.CreateAddress(a.Address, nonce)
}

func (a *TestAccount) String() string {
	return fmt.Sprintf("%s(%s)", a.Type, a.Address.Hex())
}

type TestAccounts []*TestAccount

// Number returns the account at the 1-based position.
func (a TestAccounts) Number(num int) *TestAccount {
	if num < 1 || num > len(a) {
		panic(fmt.Sprintf("account number %d out of range [1, %d]", num, len(a)))
	}
	return a[num-1]
}

// Addresses returns the addresses of all accounts, in order.
func (a TestAccounts) Addresses() []common.Address {
	addresses := make([]common.Address, len(a))
	for i, account := range a {
		addresses[i] = account.Address
	}
	return addresses
}
