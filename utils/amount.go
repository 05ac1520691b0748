package utils

import (
	"math"
	"math/big"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/EscanBE/erc20harness/constants"
	harnesstypes "github.com/EscanBE/erc20harness/types"
)

// NormalizeAmount converts a human-readable decimal amount into its fixed-point integer representation,
// scaled by 10^precision.
//
// Fractional digits beyond precision are truncated, never rounded, so NormalizeAmount("1.123456", 3) is 1123.
// Negative amounts and exponent notation are rejected with ErrInvalidAmount.
func NormalizeAmount(amount string, precision int) (*big.Int, error) {
	if precision < 0 {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidPrecision, "precision must not be negative, got %d", precision)
	}

	if err := validateDecimal(amount); err != nil {
		return nil, err
	}

	integerPart, fractionalPart, _ := strings.Cut(amount, ".")
	if integerPart == "" {
		integerPart = "0"
	}

	if len(fractionalPart) > precision {
		fractionalPart = fractionalPart[:precision]
	} else if len(fractionalPart) < precision {
		fractionalPart += strings.Repeat("0", precision-len(fractionalPart))
	}

	digits := strings.TrimLeft(integerPart+fractionalPart, "0")
	if digits == "" {
		return new(big.Int), nil
	}

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "can not parse %q", amount)
	}

	return value, nil
}

// validateDecimal accepts only digits with at most one decimal point, and at least one digit.
func validateDecimal(amount string) error {
	var digits, points int
	for i, r := range amount {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
			if points > 1 {
				return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "more than one decimal point in %q", amount)
			}
		case r == '-' && i == 0:
			return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "negative amounts are not supported: %q", amount)
		default:
			return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "unexpected character %q in %q", r, amount)
		}
	}

	if digits == 0 {
		return errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "no digits in %q", amount)
	}

	return nil
}

// NumberToBigInt is NormalizeAmount for any input that has a canonical decimal string form:
// strings, integers, floats (formatted without exponent) and fmt.Stringer such as *big.Int.
func NumberToBigInt(number any, decimals int) (*big.Int, error) {
	str, err := cast.ToStringE(number)
	if err != nil {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "can not convert %T to a decimal string", number)
	}

	return NormalizeAmount(str, decimals)
}

// MustNumberToBigInt is NumberToBigInt that panics on error.
func MustNumberToBigInt(number any, decimals int) *big.Int {
	value, err := NumberToBigInt(number, decimals)
	if err != nil {
		panic(err)
	}
	return value
}

// ParseEtherDecimal converts an amount of ether into wei.
func ParseEtherDecimal(etherDecimal any) (*big.Int, error) {
	return NumberToBigInt(etherDecimal, constants.EtherDecimals)
}

// Wei parses an integer amount, either decimal or 0x-prefixed hex.
func Wei(amount any) (*big.Int, error) {
	str, err := cast.ToStringE(amount)
	if err != nil {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "can not convert %T to an integer", amount)
	}

	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		digits := str[2:]
		if digits == "" || strings.ContainsAny(digits, "+-_") {
			return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "bad hex integer %q", str)
		}
		// leading zeros and widths above 256 bits are accepted
		value, ok := new(big.Int).SetString(digits, 16)
		if !ok {
			return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "bad hex integer %q", str)
		}
		return value, nil
	}

	if strings.Contains(str, ".") {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "integer expected, got %q", str)
	}

	return NormalizeAmount(str, 0)
}

// FormatAmount is the inverse of NormalizeAmount:
// it renders a fixed-point integer as the shortest decimal string with the given precision.
func FormatAmount(value *big.Int, precision int) (string, error) {
	if precision < 0 || precision > math.MaxInt32 {
		return "", errorsmod.Wrapf(harnesstypes.ErrInvalidPrecision, "precision out of range: %d", precision)
	}

	if value == nil {
		return "0", nil
	}

	if value.Sign() < 0 {
		return "", errorsmod.Wrapf(harnesstypes.ErrInvalidAmount, "negative amounts are not supported: %s", value)
	}

	return decimal.NewFromBigInt(value, -int32(precision)).String(), nil
}
