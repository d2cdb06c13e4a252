package lib

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals of both the deposited value (wei) and the issued token
const Decimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// FormatUnits renders the integer amount with the given number of decimals, e.g. 1500000000000000000 -> "1.5"
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// ParseUnits is the inverse of FormatUnits, fractions smaller than the smallest unit are rejected
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, WrapError(ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return nil, ErrInvalidAmount
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, ErrInvalidAmount
	}
	return shifted.BigInt(), nil
}

// Ether converts whole value units into wei
func Ether(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil))
}

func CopyBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
