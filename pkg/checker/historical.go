package checker

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

const (
	historyPages    = 3
	historyPageSize = 1000

	reasonNoQualifying = "no qualifying transactions"
	reasonFetchFailed  = "fetch failed"
)

// HistoricalTaxEstimator derives buy/sell/transfer cost ratios from recent
// transfer records. The "tax" here is a gas-cost/value proxy, not the token's
// real fee schedule; it is kept as a fallback signal next to the simulation.
type HistoricalTaxEstimator struct {
	source TransferSource
}

func NewHistoricalTaxEstimator(source TransferSource) *HistoricalTaxEstimator {
	return &HistoricalTaxEstimator{source: source}
}

// HistoricalReport bundles everything derived from one history window.
type HistoricalReport struct {
	BuyTax           types.TaxEstimate
	SellTax          types.TaxEstimate
	TransferTax      types.TaxEstimate
	Gas              types.GasMetrics
	FeeSplitDetected bool
}

// EstimateTax estimates the proxy cost percentage for a single action. A
// fetch failure downgrades to Unavailable, it never propagates.
func (e *HistoricalTaxEstimator) EstimateTax(ctx context.Context, token common.Address, action types.TaxAction) types.TaxEstimate {
	window, err := e.fetchWindow(ctx, token)
	if err != nil {
		logger.Warnw("could not fetch transfer window", "token", token.Hex(), "action", action, "error", err)
		return types.Unavailable(action, reasonFetchFailed)
	}
	return estimateFromRecords(window, token, action)
}

// Estimate runs all window-derived signals over a single fetched window.
func (e *HistoricalTaxEstimator) Estimate(ctx context.Context, token common.Address) HistoricalReport {
	window, err := e.fetchWindow(ctx, token)
	if err != nil {
		logger.Warnw("could not fetch transfer window", "token", token.Hex(), "error", err)
		return HistoricalReport{
			BuyTax:      types.Unavailable(types.TaxActionBuy, reasonFetchFailed),
			SellTax:     types.Unavailable(types.TaxActionSell, reasonFetchFailed),
			TransferTax: types.Unavailable(types.TaxActionTransfer, reasonFetchFailed),
		}
	}
	return HistoricalReport{
		BuyTax:           estimateFromRecords(window, token, types.TaxActionBuy),
		SellTax:          estimateFromRecords(window, token, types.TaxActionSell),
		TransferTax:      estimateFromRecords(window, token, types.TaxActionTransfer),
		Gas:              gasMetrics(window, token),
		FeeSplitDetected: detectFeeSplit(window, token),
	}
}

// fetchWindow pulls up to historyPages newest-first pages. Any page error
// fails the whole window; a short or empty page ends it cleanly.
func (e *HistoricalTaxEstimator) fetchWindow(ctx context.Context, token common.Address) ([]types.TransferRecord, error) {
	var window []types.TransferRecord
	for page := 1; page <= historyPages; page++ {
		records, err := e.source.TokenTransfers(ctx, token, page, historyPageSize, types.SortDescending)
		if err != nil {
			return nil, fmt.Errorf("could not fetch transfer page %d: %w", page, err)
		}
		if len(records) == 0 {
			break
		}
		window = append(window, records...)
		if len(records) < historyPageSize {
			break
		}
	}
	return window, nil
}

func estimateFromRecords(records []types.TransferRecord, token common.Address, action types.TaxAction) types.TaxEstimate {
	var (
		sum   float64
		count int
	)
	for _, r := range records {
		if r.Value == nil || r.Value.Sign() == 0 {
			continue
		}
		ratio := utils.RatioFloat(gasCost(r), r.Value)
		if ratio > 1 {
			// gas cost above the transferred value is an outlier, not a tax
			continue
		}
		if !attributed(r, token, action) {
			continue
		}
		sum += ratio
		count++
	}
	if count == 0 {
		return types.Unavailable(action, reasonNoQualifying)
	}
	percent := sum / float64(count) * 100
	percent = math.Round(percent*100) / 100
	return types.TaxEstimate{Action: action, Percent: percent, Available: true}
}

func attributed(r types.TransferRecord, token common.Address, action types.TaxAction) bool {
	switch action {
	case types.TaxActionBuy:
		return r.To != token
	case types.TaxActionSell:
		return r.From != token
	case types.TaxActionTransfer:
		return r.From != token && r.To != token
	}
	return false
}

func gasCost(r types.TransferRecord) *big.Int {
	if r.GasPrice == nil || r.GasUsed == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(r.GasPrice, r.GasUsed)
}

// gasMetrics aggregates gas use over the window. BuyGas and SellGas are
// totals for transfers into and out of the contract itself.
func gasMetrics(records []types.TransferRecord, token common.Address) types.GasMetrics {
	var (
		totalGas uint64
		count    uint64
		m        types.GasMetrics
	)
	for _, r := range records {
		if r.Value == nil || r.Value.Sign() <= 0 || r.GasUsed == nil {
			continue
		}
		gas := r.GasUsed.Uint64()
		totalGas += gas
		count++
		switch {
		case r.To == token:
			m.BuyGas += gas
		case r.From == token:
			m.SellGas += gas
		}
	}
	if count > 0 {
		m.AverageGas = float64(totalGas) / float64(count)
	}
	return m
}
