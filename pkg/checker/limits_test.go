package checker

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
)

func uint256Output(v *big.Int) []byte {
	return v.FillBytes(make([]byte, 32))
}

func TestProbeTransactionLimit(t *testing.T) {
	halfEther := new(big.Int).Div(limitThresholdWei, big.NewInt(2))

	tests := []struct {
		name   string
		result jsonrpc.CallResult
		want   bool
	}{
		{
			name:   "restrictive cap below one ether",
			result: success(uint256Output(halfEther)),
			want:   true,
		},
		{
			name:   "generous cap",
			result: success(uint256Output(new(big.Int).Mul(limitThresholdWei, big.NewInt(1000)))),
			want:   false,
		},
		{
			name:   "method absent reverts",
			result: reverted("execution reverted"),
			want:   false,
		},
		{
			name:   "fallback returns nothing",
			result: success(nil),
			want:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
				require.Equal(t, testTokenAddr.Hex(), call.To)
				require.Equal(t, hexutil.Encode(maxTxAmountSelector), call.Data)
				return tc.result
			}}
			got := ProbeTransactionLimit(context.Background(), caller, testTokenAddr)
			assert.Equal(t, tc.want, got)
		})
	}
}
