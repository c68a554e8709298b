package checker

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
)

var (
	maxTxAmountSelector = crypto.Keccak256([]byte("maxTxAmount()"))[:4]

	// a cap below one whole native unit is considered restrictive
	limitThresholdWei = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// ProbeTransactionLimit checks the optional maxTxAmount() view some tokens
// expose. This is a capability probe: a revert or a missing method means
// "no limit published", never a failure.
func ProbeTransactionLimit(ctx context.Context, caller jsonrpc.Caller, token common.Address) bool {
	res := caller.Call(ctx, &jsonrpc.CallParams{
		From: probeRecipient.Hex(),
		To:   token.Hex(),
		Data: hexutil.Encode(maxTxAmountSelector),
	})
	if !res.Succeeded() || len(res.Output) < 32 {
		return false
	}
	limit := new(big.Int).SetBytes(res.Output[:32])
	return limit.Cmp(limitThresholdWei) < 0
}
