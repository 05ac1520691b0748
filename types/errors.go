package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace of the harness.
const Codespace = "harness"

const (
	codeErrInvalidAmount = uint32(iota) + 2
	codeErrInvalidPrecision
	codeErrUnknownToken
	codeErrNoTokenSource
	codeErrInsufficientSourceFunds
	codeErrArtifactNotFound
	codeErrInvalidArtifact
	codeErrUnlinkedLibrary
	codeErrImpersonationUnsupported
)

var (
	// ErrInvalidAmount returns an error if a decimal amount is malformed, negative or uses exponent notation
	ErrInvalidAmount = errorsmod.Register(Codespace, codeErrInvalidAmount, "invalid decimal amount")

	// ErrInvalidPrecision returns an error if the number of fractional digits is negative
	ErrInvalidPrecision = errorsmod.Register(Codespace, codeErrInvalidPrecision, "invalid precision")

	// ErrUnknownToken returns an error if a token name has no known contract address
	ErrUnknownToken = errorsmod.Register(Codespace, codeErrUnknownToken, "unknown token")

	// ErrNoTokenSource returns an error if a token has no account to fund others from
	ErrNoTokenSource = errorsmod.Register(Codespace, codeErrNoTokenSource, "no source account for token")

	// ErrInsufficientSourceFunds returns an error if the token source holds less than requested
	ErrInsufficientSourceFunds = errorsmod.Register(Codespace, codeErrInsufficientSourceFunds, "token source has not enough funds")

	// ErrArtifactNotFound returns an error if no compiled artifact matches the contract name
	ErrArtifactNotFound = errorsmod.Register(Codespace, codeErrArtifactNotFound, "contract artifact not found")

	// ErrInvalidArtifact returns an error if a compiled artifact could not be parsed
	ErrInvalidArtifact = errorsmod.Register(Codespace, codeErrInvalidArtifact, "invalid contract artifact")

	// ErrUnlinkedLibrary returns an error if creation code still carries library placeholders
	ErrUnlinkedLibrary = errorsmod.Register(Codespace, codeErrUnlinkedLibrary, "contract has unlinked libraries")

	// ErrImpersonationUnsupported returns an error if the chain can not act on behalf of an account without its key
	ErrImpersonationUnsupported = errorsmod.Register(Codespace, codeErrImpersonationUnsupported, "account impersonation is not supported")
)
