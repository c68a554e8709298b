package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "checksummed", in: "0xdAC17F958D2ee523a2206206994597C13D831ec7", want: true},
		{name: "lowercase", in: "0xdac17f958d2ee523a2206206994597c13d831ec7", want: true},
		{name: "no prefix", in: "dac17f958d2ee523a2206206994597c13d831ec7", want: true},
		{name: "too short", in: "0xdac17f958d2ee523", want: false},
		{name: "not hex", in: "0xzz..17f958d2ee523a2206206994597c13d831ec7", want: false},
		{name: "empty", in: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAddress(tt.in))
		})
	}
}

func TestRatioFloat(t *testing.T) {
	assert.Equal(t, 0.5, RatioFloat(big.NewInt(1), big.NewInt(2)))
	assert.Equal(t, float64(0), RatioFloat(big.NewInt(1), big.NewInt(0)))
	assert.Equal(t, float64(0), RatioFloat(nil, big.NewInt(2)))
	assert.Equal(t, float64(0), RatioFloat(big.NewInt(1), nil))
}

func TestBigToFloat(t *testing.T) {
	assert.Equal(t, float64(0), BigToFloat(nil))
	assert.Equal(t, 1e18, BigToFloat(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))
}
