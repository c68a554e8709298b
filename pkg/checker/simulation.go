package checker

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tokenguard/honeypot-checker/pkg/checker/abis"
	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

// Mainnet Uniswap V2 infrastructure the swap simulations run against.
var (
	uniswapV2Router = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	wethContract    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	// probeRecipient is an arbitrary fixed non-zero transfer target.
	probeRecipient = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

	defaultBuyAmountWei = new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil) // 0.1 native asset
	defaultTokenAmount  = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil) // one whole 18-decimals token
)

// SimulationTaxEstimator derives buy/sell/transfer outcomes by simulating
// router swaps and a plain transfer against live contract state. Simulated
// actors are ephemeral key-pairs holding nothing; this relies on nodes not
// enforcing balance checks for read-only calls.
type SimulationTaxEstimator struct {
	caller jsonrpc.Caller
	router common.Address
	weth   common.Address
}

func NewSimulationTaxEstimator(caller jsonrpc.Caller) *SimulationTaxEstimator {
	return &SimulationTaxEstimator{
		caller: caller,
		router: uniswapV2Router,
		weth:   wethContract,
	}
}

// ephemeralAddress derives a fresh one-shot actor identity per simulation.
func ephemeralAddress() (common.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func swapDeadline() *big.Int {
	return big.NewInt(time.Now().Add(5 * time.Minute).Unix())
}

// SimulateBuy swaps ethAmount of the native asset for the token through the
// router and returns the quoted token output. Reverts and malformed outputs
// yield 0: a token that blocks incoming swaps is the signal we are after.
func (s *SimulationTaxEstimator) SimulateBuy(ctx context.Context, token common.Address, ethAmount *big.Int) float64 {
	out, _, _ := s.simulateBuyCall(ctx, token, ethAmount)
	return out
}

// simulateBuyCall also hands back the call and the quoted output so the deep
// tax check can re-trace the identical call.
func (s *SimulationTaxEstimator) simulateBuyCall(ctx context.Context, token common.Address, ethAmount *big.Int) (float64, *jsonrpc.CallParams, *big.Int) {
	sender, err := ephemeralAddress()
	if err != nil {
		logger.Errorw("could not generate ephemeral key", "error", err)
		return 0, nil, nil
	}
	data, err := abis.UniswapV2Router.Pack("swapExactETHForTokens",
		big.NewInt(0), []common.Address{s.weth, token}, sender, swapDeadline())
	if err != nil {
		logger.Errorw("could not pack buy calldata", "token", token.Hex(), "error", err)
		return 0, nil, nil
	}
	call := &jsonrpc.CallParams{
		From:  sender.Hex(),
		To:    s.router.Hex(),
		Value: hexutil.EncodeBig(ethAmount),
		Data:  hexutil.Encode(data),
	}
	res := s.caller.Call(ctx, call)
	if !res.Succeeded() {
		logSimulationOutcome("buy", token, res)
		return 0, call, nil
	}
	amounts, err := unpackSwapAmounts("swapExactETHForTokens", res.Output)
	if err != nil || len(amounts) < 2 {
		logger.Warnw("malformed buy swap output", "token", token.Hex(), "error", err)
		return 0, call, nil
	}
	quoted := amounts[len(amounts)-1]
	return utils.BigToFloat(quoted), call, quoted
}

// SimulateSell swaps tokenAmount of the token back to the native asset. The
// ephemeral actor holds no balance and cannot approve the router, so a
// zero-value transfer probe stands in for the approval step: a token that
// rejects even that will never let this actor sell.
func (s *SimulationTaxEstimator) SimulateSell(ctx context.Context, token common.Address, tokenAmount *big.Int) float64 {
	sender, err := ephemeralAddress()
	if err != nil {
		logger.Errorw("could not generate ephemeral key", "error", err)
		return 0
	}

	probeData, err := abis.ERC20.Pack("transfer", probeRecipient, big.NewInt(0))
	if err != nil {
		logger.Errorw("could not pack transfer probe calldata", "error", err)
		return 0
	}
	probe := s.caller.Call(ctx, &jsonrpc.CallParams{
		From: sender.Hex(),
		To:   token.Hex(),
		Data: hexutil.Encode(probeData),
	})
	if !probe.Succeeded() {
		logSimulationOutcome("sell probe", token, probe)
		return 0
	}

	data, err := abis.UniswapV2Router.Pack("swapExactTokensForETH",
		tokenAmount, big.NewInt(0), []common.Address{token, s.weth}, sender, swapDeadline())
	if err != nil {
		logger.Errorw("could not pack sell calldata", "token", token.Hex(), "error", err)
		return 0
	}
	res := s.caller.Call(ctx, &jsonrpc.CallParams{
		From: sender.Hex(),
		To:   s.router.Hex(),
		Data: hexutil.Encode(data),
	})
	if !res.Succeeded() {
		logSimulationOutcome("sell", token, res)
		return 0
	}
	amounts, err := unpackSwapAmounts("swapExactTokensForETH", res.Output)
	if err != nil || len(amounts) < 2 {
		logger.Warnw("malformed sell swap output", "token", token.Hex(), "error", err)
		return 0
	}
	return utils.BigToFloat(amounts[len(amounts)-1])
}

// SimulateTransfer checks that a plain transfer out of the ephemeral actor
// does not revert. The returned boolean of transfer() is ignored; only a
// revert counts as blocked.
func (s *SimulationTaxEstimator) SimulateTransfer(ctx context.Context, token common.Address, amount *big.Int) bool {
	sender, err := ephemeralAddress()
	if err != nil {
		logger.Errorw("could not generate ephemeral key", "error", err)
		return false
	}
	data, err := abis.ERC20.Pack("transfer", probeRecipient, amount)
	if err != nil {
		logger.Errorw("could not pack transfer calldata", "error", err)
		return false
	}
	res := s.caller.Call(ctx, &jsonrpc.CallParams{
		From: sender.Hex(),
		To:   token.Hex(),
		Data: hexutil.Encode(data),
	})
	if !res.Succeeded() {
		logSimulationOutcome("transfer", token, res)
		return false
	}
	return true
}

// Report runs the whole simulation suite against one token.
func (s *SimulationTaxEstimator) Report(ctx context.Context, token common.Address) types.SimulationReport {
	var report types.SimulationReport

	buyOut, buyCall, quoted := s.simulateBuyCall(ctx, token, defaultBuyAmountWei)
	report.BuyTokensOut = buyOut
	if buyCall != nil && quoted != nil && quoted.Sign() > 0 {
		report.BuyTaxPercent, report.BuyTaxKnown = s.deepBuyTax(ctx, token, buyCall, quoted)
	}

	report.SellEthOut = s.SimulateSell(ctx, token, defaultTokenAmount)
	report.TransferOK = s.SimulateTransfer(ctx, token, defaultTokenAmount)
	return report
}

func unpackSwapAmounts(method string, output []byte) ([]*big.Int, error) {
	vals, err := abis.UniswapV2Router.Unpack(method, output)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("unexpected output arity %d", len(vals))
	}
	amounts, ok := vals[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", vals[0])
	}
	return amounts, nil
}

// logSimulationOutcome keeps reverts at info level: a revert is a finding,
// not a fault. Transport failures warn.
func logSimulationOutcome(action string, token common.Address, res jsonrpc.CallResult) {
	if res.Reverted() {
		logger.Infow("simulation reverted",
			"action", action, "token", token.Hex(), "reason", res.Reason)
		return
	}
	logger.Warnw("simulation transport failure",
		"action", action, "token", token.Hex(), "error", res.Err)
}
