package checker

import (
	"bytes"
	"context"
	_ "embed"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tdewolff/minify/v2/js"

	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

//go:embed transferTracer.js
var transferTracer []byte

var transferTracerMinified []byte

// TokenTransferLog is one ERC-20 Transfer event observed while tracing.
type TokenTransferLog struct {
	Token  string `json:"token"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type transferTraceResult struct {
	Transfers []TokenTransferLog `json:"transfers"`
	Output    string             `json:"output"`
}

func init() {
	// we need to minify the tracer script because we can not put multipleline string in JSON value
	minified := new(bytes.Buffer)
	err := js.Minify(nil, minified, bytes.NewReader(transferTracer), nil)
	if err != nil {
		panic(err)
	}
	transferTracerMinified = bytes.TrimPrefix(minified.Bytes(), []byte("var tracer="))
}

// deepBuyTax re-traces the buy swap and compares what the buyer was actually
// credited against the router's quoted amount. The gap is the real buy tax
// the quote hides. Needs a node exposing the debug namespace; when tracing is
// unavailable the tax stays unknown rather than failing the analysis.
func (s *SimulationTaxEstimator) deepBuyTax(ctx context.Context, token common.Address, call *jsonrpc.CallParams, quoted *big.Int) (float64, bool) {
	buyer := common.HexToAddress(call.From)
	trace := new(transferTraceResult)
	err := s.caller.TraceCall(ctx, call, &jsonrpc.TracerConfig{Tracer: string(transferTracerMinified)}, trace)
	if err != nil {
		logger.Debugw("could not trace buy call, skipping deep tax check",
			"token", token.Hex(), "error", err)
		return 0, false
	}

	credited := new(big.Int)
	for _, tl := range trace.Transfers {
		if common.HexToAddress(tl.Token) != token || common.HexToAddress(tl.To) != buyer {
			continue
		}
		amount, derr := hexutil.Decode(tl.Amount)
		if derr != nil {
			logger.Warnw("bad traced transfer amount", "amount", tl.Amount, "error", derr)
			continue
		}
		credited.Add(credited, new(big.Int).SetBytes(amount))
	}

	if quoted.Sign() <= 0 {
		return 0, false
	}
	if credited.Cmp(quoted) >= 0 {
		return 0, true
	}
	kept := new(big.Int).Sub(quoted, credited)
	pct := utils.RatioFloat(kept, quoted) * 100
	return math.Round(pct*100) / 100, true
}
