package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 hashes the input. Strings are hashed as their UTF-8 bytes.
func Keccak256[T ~string | ~[]byte](input T) common.Hash {
	return crypto.Keccak256Hash([]byte(input))
}

// MaxUint256 returns a fresh copy of 2^256 - 1.
func MaxUint256() *big.Int {
	return new(big.Int).Set(math.MaxBig256)
}

// ZeroAddress returns 0x0000000000000000000000000000000000000000.
func ZeroAddress() common.Address {
	return common.Address{}
}
