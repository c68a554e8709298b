package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// CallParams is eth_call's calldata param. Value carries the attached native
// amount for payable calls; gas price stays unset so the node simulates with
// a zero-cost sender.
type CallParams struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Gas   string `json:"gas,omitempty"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data"`
}

// CallStatus tags the outcome of a simulated call.
type CallStatus int

const (
	CallSuccess CallStatus = iota
	CallReverted
	CallTransportError
)

// CallResult is the outcome of one read-only call. Reverts are expected and
// meaningful here, so they are a state of the result, never a Go error;
// callers are forced to branch on Status.
type CallResult struct {
	Status CallStatus
	Output []byte
	Reason string // revert reason, when Status == CallReverted
	Err    error  // transport fault, when Status == CallTransportError
}

func (r CallResult) Reverted() bool {
	return r.Status == CallReverted
}

func (r CallResult) Succeeded() bool {
	return r.Status == CallSuccess
}

// Caller is the call-simulation primitive the checker consumes.
type Caller interface {
	Call(ctx context.Context, params *CallParams) CallResult
	TraceCall(ctx context.Context, params *CallParams, tracer *TracerConfig, result interface{}) error
}

// TracerConfig is debug_traceCall's tracer param. Tracer holds either a
// builtin tracer name or minified JS source.
type TracerConfig struct {
	Tracer       string          `json:"tracer"`
	TracerConfig json.RawMessage `json:"tracerConfig,omitempty"`
}

// Client wraps a go-ethereum rpc.Client. The underlying connection pools and
// is safe for concurrent use.
type Client struct {
	rpc *rpc.Client
}

func NewClient(rpcClient *rpc.Client) *Client {
	return &Client{rpc: rpcClient}
}

// Call runs eth_call on the latest block and classifies the outcome. A
// server-side execution error (revert, invalid opcode) becomes CallReverted;
// anything that never reached execution becomes CallTransportError.
func (c *Client) Call(ctx context.Context, params *CallParams) CallResult {
	resultHex := new(string)
	err := c.rpc.CallContext(ctx, resultHex, "eth_call", params, "latest")
	if err != nil {
		return classifyCallError(err)
	}
	output, err := hexutil.Decode(*resultHex)
	if err != nil {
		return CallResult{Status: CallTransportError, Err: err}
	}
	return CallResult{Status: CallSuccess, Output: output}
}

// TraceCall runs debug_traceCall with the given tracer on the latest block.
// The debug namespace is optional node capability; callers treat errors as
// "capability not present".
func (c *Client) TraceCall(ctx context.Context, params *CallParams, tracer *TracerConfig, result interface{}) error {
	return c.rpc.CallContext(ctx, result, "debug_traceCall", params, "latest", tracer)
}

var errorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

func classifyCallError(err error) CallResult {
	var de rpc.DataError
	if errors.As(err, &de) {
		return CallResult{Status: CallReverted, Reason: revertReason(de)}
	}
	msg := err.Error()
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert") ||
		strings.Contains(msg, "invalid opcode") {
		return CallResult{Status: CallReverted, Reason: msg}
	}
	return CallResult{Status: CallTransportError, Err: err}
}

// revertReason unwraps the ABI-encoded Error(string) payload nodes attach to
// execution errors, falling back to the raw message.
func revertReason(de rpc.DataError) string {
	msg := de.Error()
	data, ok := de.ErrorData().(string)
	if !ok {
		return msg
	}
	raw, err := hexutil.Decode(data)
	if err != nil || len(raw) < 4+32+32 {
		return msg
	}
	if !bytes.Equal(raw[:4], errorSelector) {
		return msg
	}
	// the length word is contract-supplied; 68+length wraps in uint64
	length := new(big.Int).SetBytes(raw[36:68])
	if !length.IsUint64() || length.Uint64() > uint64(len(raw)-68) {
		return msg
	}
	return string(raw[68 : 68+length.Uint64()])
}
