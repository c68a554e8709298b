package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ValidAddress reports whether s parses as a 20-byte hex address, with or
// without the 0x prefix. Comparison elsewhere is done on common.Address
// values, so case never matters after this gate.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// BigToFloat converts a raw big.Int amount to float64, losing precision
// beyond 53 bits. Fine for reporting, never for accounting.
func BigToFloat(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}

// RatioFloat returns a/b as float64 with a zero-division guard.
func RatioFloat(a, b *big.Int) float64 {
	if a == nil || b == nil || b.Sign() == 0 {
		return 0
	}
	q, _ := new(big.Float).Quo(new(big.Float).SetInt(a), new(big.Float).SetInt(b)).Float64()
	return q
}
