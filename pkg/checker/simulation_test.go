package checker

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tokenguard/honeypot-checker/pkg/checker/abis"
	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
)

// fakeCaller routes simulated calls through handler and tracing through
// trace; a nil trace behaves like a node without the debug namespace.
type fakeCaller struct {
	handler func(call *jsonrpc.CallParams) jsonrpc.CallResult
	trace   func(call *jsonrpc.CallParams, result interface{}) error
	calls   []*jsonrpc.CallParams
}

func (f *fakeCaller) Call(_ context.Context, call *jsonrpc.CallParams) jsonrpc.CallResult {
	f.calls = append(f.calls, call)
	return f.handler(call)
}

func (f *fakeCaller) TraceCall(_ context.Context, call *jsonrpc.CallParams, _ *jsonrpc.TracerConfig, result interface{}) error {
	if f.trace == nil {
		return errors.New("the method debug_traceCall does not exist")
	}
	return f.trace(call, result)
}

func success(output []byte) jsonrpc.CallResult {
	return jsonrpc.CallResult{Status: jsonrpc.CallSuccess, Output: output}
}

func reverted(reason string) jsonrpc.CallResult {
	return jsonrpc.CallResult{Status: jsonrpc.CallReverted, Reason: reason}
}

func isMethod(call *jsonrpc.CallParams, id []byte) bool {
	return strings.HasPrefix(call.Data, hexutil.Encode(id))
}

func swapOutput(t *testing.T, method string, amounts ...int64) []byte {
	t.Helper()
	vals := make([]*big.Int, len(amounts))
	for i, a := range amounts {
		vals[i] = big.NewInt(a)
	}
	out, err := abis.UniswapV2Router.Methods[method].Outputs.Pack(vals)
	require.NoError(t, err)
	return out
}

func transferBoolOutput(t *testing.T, ok bool) []byte {
	t.Helper()
	out, err := abis.ERC20.Methods["transfer"].Outputs.Pack(ok)
	require.NoError(t, err)
	return out
}

func paddedAmount(v int64) string {
	return hexutil.Encode(new(big.Int).SetInt64(v).FillBytes(make([]byte, 32)))
}

func TestSimulateBuy(t *testing.T) {
	caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		require.Equal(t, uniswapV2Router.Hex(), call.To)
		require.True(t, isMethod(call, abis.UniswapV2Router.Methods["swapExactETHForTokens"].ID))
		require.Equal(t, hexutil.EncodeBig(defaultBuyAmountWei), call.Value)
		return success(swapOutput(t, "swapExactETHForTokens", 100, 31337))
	}}
	s := NewSimulationTaxEstimator(caller)

	out := s.SimulateBuy(context.Background(), testTokenAddr, defaultBuyAmountWei)
	assert.Equal(t, 31337.0, out)
}

func TestSimulateBuyRevertIsZero(t *testing.T) {
	caller := &fakeCaller{handler: func(*jsonrpc.CallParams) jsonrpc.CallResult {
		return reverted("UniswapV2: TRANSFER_FAILED")
	}}
	s := NewSimulationTaxEstimator(caller)

	assert.Zero(t, s.SimulateBuy(context.Background(), testTokenAddr, defaultBuyAmountWei))
}

func TestSimulateBuyShortAmountsArrayIsZero(t *testing.T) {
	// fewer than two path hops can never describe a swap, even when the
	// call itself succeeded
	caller := &fakeCaller{handler: func(*jsonrpc.CallParams) jsonrpc.CallResult {
		return success(swapOutput(t, "swapExactETHForTokens", 42))
	}}
	s := NewSimulationTaxEstimator(caller)

	assert.Zero(t, s.SimulateBuy(context.Background(), testTokenAddr, defaultBuyAmountWei))
}

func TestSimulateBuyTransportErrorIsZero(t *testing.T) {
	caller := &fakeCaller{handler: func(*jsonrpc.CallParams) jsonrpc.CallResult {
		return jsonrpc.CallResult{Status: jsonrpc.CallTransportError, Err: errors.New("connection refused")}
	}}
	s := NewSimulationTaxEstimator(caller)

	assert.Zero(t, s.SimulateBuy(context.Background(), testTokenAddr, defaultBuyAmountWei))
}

func TestSimulateSellProbeRevertSkipsSwap(t *testing.T) {
	caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		require.Equal(t, testTokenAddr.Hex(), call.To, "router must not be called after a failed probe")
		return reverted("blacklisted")
	}}
	s := NewSimulationTaxEstimator(caller)

	assert.Zero(t, s.SimulateSell(context.Background(), testTokenAddr, defaultTokenAmount))
	assert.Len(t, caller.calls, 1)
}

func TestSimulateSell(t *testing.T) {
	caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		if call.To == testTokenAddr.Hex() {
			require.True(t, isMethod(call, abis.ERC20.Methods["transfer"].ID))
			return success(transferBoolOutput(t, true))
		}
		require.Equal(t, uniswapV2Router.Hex(), call.To)
		require.True(t, isMethod(call, abis.UniswapV2Router.Methods["swapExactTokensForETH"].ID))
		require.Empty(t, call.Value)
		return success(swapOutput(t, "swapExactTokensForETH", 5, 777))
	}}
	s := NewSimulationTaxEstimator(caller)

	out := s.SimulateSell(context.Background(), testTokenAddr, defaultTokenAmount)
	assert.Equal(t, 777.0, out)
	assert.Len(t, caller.calls, 2)
}

func TestSimulateSellSwapRevertIsZero(t *testing.T) {
	caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		if call.To == testTokenAddr.Hex() {
			return success(transferBoolOutput(t, true))
		}
		return reverted("UniswapV2: K")
	}}
	s := NewSimulationTaxEstimator(caller)

	assert.Zero(t, s.SimulateSell(context.Background(), testTokenAddr, defaultTokenAmount))
}

func TestSimulateTransfer(t *testing.T) {
	t.Run("no revert means ok even without output", func(t *testing.T) {
		caller := &fakeCaller{handler: func(*jsonrpc.CallParams) jsonrpc.CallResult {
			return success(nil)
		}}
		s := NewSimulationTaxEstimator(caller)
		assert.True(t, s.SimulateTransfer(context.Background(), testTokenAddr, defaultTokenAmount))
	})

	t.Run("revert means blocked", func(t *testing.T) {
		caller := &fakeCaller{handler: func(*jsonrpc.CallParams) jsonrpc.CallResult {
			return reverted("transfers paused")
		}}
		s := NewSimulationTaxEstimator(caller)
		assert.False(t, s.SimulateTransfer(context.Background(), testTokenAddr, defaultTokenAmount))
	})
}

func TestReportWithDeepBuyTax(t *testing.T) {
	caller := &fakeCaller{}
	caller.handler = func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		switch {
		case call.To == testTokenAddr.Hex():
			// sell probe and transfer simulation
			return success(transferBoolOutput(t, true))
		case isMethod(call, abis.UniswapV2Router.Methods["swapExactETHForTokens"].ID):
			return success(swapOutput(t, "swapExactETHForTokens", 100, 1000))
		case isMethod(call, abis.UniswapV2Router.Methods["swapExactTokensForETH"].ID):
			return success(swapOutput(t, "swapExactTokensForETH", 5, 900))
		}
		t.Fatalf("unexpected call to %s", call.To)
		return jsonrpc.CallResult{}
	}
	caller.trace = func(call *jsonrpc.CallParams, result interface{}) error {
		trace, ok := result.(*transferTraceResult)
		require.True(t, ok)
		trace.Transfers = []TokenTransferLog{
			{
				Token:  testTokenAddr.Hex(),
				From:   uniswapV2Router.Hex(),
				To:     call.From,
				Amount: paddedAmount(900),
			},
			{
				// the skimmed share lands elsewhere and must not count
				Token:  testTokenAddr.Hex(),
				From:   uniswapV2Router.Hex(),
				To:     feeWallet.Hex(),
				Amount: paddedAmount(100),
			},
		}
		return nil
	}
	s := NewSimulationTaxEstimator(caller)

	report := s.Report(context.Background(), testTokenAddr)
	assert.Equal(t, 1000.0, report.BuyTokensOut)
	require.True(t, report.BuyTaxKnown)
	assert.Equal(t, 10.0, report.BuyTaxPercent)
	assert.Equal(t, 900.0, report.SellEthOut)
	assert.True(t, report.TransferOK)
}

func TestReportFullyCreditedBuyHasZeroTax(t *testing.T) {
	caller := &fakeCaller{}
	caller.handler = func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		if call.To == testTokenAddr.Hex() {
			return success(transferBoolOutput(t, true))
		}
		if isMethod(call, abis.UniswapV2Router.Methods["swapExactETHForTokens"].ID) {
			return success(swapOutput(t, "swapExactETHForTokens", 100, 1000))
		}
		return success(swapOutput(t, "swapExactTokensForETH", 5, 900))
	}
	caller.trace = func(call *jsonrpc.CallParams, result interface{}) error {
		trace := result.(*transferTraceResult)
		trace.Transfers = []TokenTransferLog{{
			Token:  testTokenAddr.Hex(),
			From:   uniswapV2Router.Hex(),
			To:     call.From,
			Amount: paddedAmount(1000),
		}}
		return nil
	}
	s := NewSimulationTaxEstimator(caller)

	report := s.Report(context.Background(), testTokenAddr)
	require.True(t, report.BuyTaxKnown)
	assert.Zero(t, report.BuyTaxPercent)
}

func TestReportWithoutTracingSupport(t *testing.T) {
	caller := &fakeCaller{handler: func(call *jsonrpc.CallParams) jsonrpc.CallResult {
		if call.To == testTokenAddr.Hex() {
			return success(transferBoolOutput(t, true))
		}
		if isMethod(call, abis.UniswapV2Router.Methods["swapExactETHForTokens"].ID) {
			return success(swapOutput(t, "swapExactETHForTokens", 100, 1000))
		}
		return success(swapOutput(t, "swapExactTokensForETH", 5, 900))
	}}
	s := NewSimulationTaxEstimator(caller)

	report := s.Report(context.Background(), testTokenAddr)
	assert.False(t, report.BuyTaxKnown)
	assert.Zero(t, report.BuyTaxPercent)
	assert.Equal(t, 1000.0, report.BuyTokensOut)
}
