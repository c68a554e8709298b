package checker

import (
	"bytes"
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

const (
	holderPages    = 10
	holderPageSize = 1000

	accumulationMinIncoming = 5
)

// HolderConcentrationAnalyzer reconstructs the current holder ledger from the
// token's transfer history and scores how concentrated it is.
type HolderConcentrationAnalyzer struct {
	source TransferSource
}

func NewHolderConcentrationAnalyzer(source TransferSource) *HolderConcentrationAnalyzer {
	return &HolderConcentrationAnalyzer{source: source}
}

// Analyze folds the history oldest-first into per-address accounts, then
// scores the surviving holders. The fold state is owned by this request;
// nothing is shared or cached across calls. A mid-history fetch failure ends
// pagination and scores the partial ledger instead of failing.
func (a *HolderConcentrationAnalyzer) Analyze(ctx context.Context, token common.Address) types.ConcentrationReport {
	accounts := make(map[common.Address]*types.HolderAccount)
	for page := 1; page <= holderPages; page++ {
		records, err := a.source.TokenTransfers(ctx, token, page, holderPageSize, types.SortAscending)
		if err != nil {
			logger.Warnw("holder history fetch stopped early",
				"token", token.Hex(), "page", page, "error", err)
			break
		}
		if len(records) == 0 {
			break
		}
		foldTransfers(accounts, records)
		if len(records) < holderPageSize {
			break
		}
	}
	return buildConcentrationReport(accounts)
}

// ConcentrationFromRecords scores an already-collected transfer history. It
// is the offline twin of Analyze for snapshot data that never touches the
// ledger data API.
func ConcentrationFromRecords(records []types.TransferRecord) types.ConcentrationReport {
	accounts := make(map[common.Address]*types.HolderAccount)
	foldTransfers(accounts, records)
	return buildConcentrationReport(accounts)
}

// foldTransfers applies each record to both endpoint accounts: receiver
// credited, sender debited. Pass-through addresses net to zero or below,
// which is what later prunes them.
func foldTransfers(accounts map[common.Address]*types.HolderAccount, records []types.TransferRecord) {
	for _, r := range records {
		if r.Value == nil {
			continue
		}
		to := ensureAccount(accounts, r.To)
		to.Balance.Add(to.Balance, r.Value)
		to.IncomingCount++

		from := ensureAccount(accounts, r.From)
		from.Balance.Sub(from.Balance, r.Value)
		from.OutgoingCount++
	}
}

func ensureAccount(accounts map[common.Address]*types.HolderAccount, addr common.Address) *types.HolderAccount {
	acc, ok := accounts[addr]
	if !ok {
		acc = &types.HolderAccount{Address: addr, Balance: new(big.Int)}
		accounts[addr] = acc
	}
	return acc
}

func buildConcentrationReport(accounts map[common.Address]*types.HolderAccount) types.ConcentrationReport {
	var holders []*types.HolderAccount
	totalSupply := new(big.Int)
	for _, acc := range accounts {
		if acc.Balance.Sign() <= 0 {
			continue
		}
		holders = append(holders, acc)
		totalSupply.Add(totalSupply, acc.Balance)
	}

	report := types.ConcentrationReport{
		HolderCount:         uint64(len(holders)),
		TotalSupplyObserved: totalSupply,
	}
	if len(holders) == 0 {
		return report
	}

	// integer thresholds: floor plus a strict compare matches the real
	// 5% and 0.1% cuts exactly for whole-number balances
	dominanceThreshold := new(big.Int).Div(new(big.Int).Mul(totalSupply, big.NewInt(5)), big.NewInt(100))
	accumulationThreshold := new(big.Int).Div(totalSupply, big.NewInt(1000))

	suspiciousBalance := new(big.Int)
	for _, acc := range holders {
		if !suspiciousHolder(acc, dominanceThreshold, accumulationThreshold) {
			continue
		}
		report.SuspiciousAddresses = append(report.SuspiciousAddresses, acc.Address)
		suspiciousBalance.Add(suspiciousBalance, acc.Balance)
	}
	sort.Slice(report.SuspiciousAddresses, func(i, j int) bool {
		return bytes.Compare(report.SuspiciousAddresses[i][:], report.SuspiciousAddresses[j][:]) < 0
	})

	report.SuspiciousRatio = float64(len(report.SuspiciousAddresses)) / float64(len(holders))
	report.ConcentrationScore = utils.RatioFloat(suspiciousBalance, totalSupply)
	return report
}

// suspiciousHolder flags single-holder dominance and the accumulate-only
// pattern: many deposits, zero spends, non-dust balance.
func suspiciousHolder(acc *types.HolderAccount, dominance, accumulation *big.Int) bool {
	if acc.Balance.Cmp(dominance) > 0 {
		return true
	}
	return acc.IncomingCount > accumulationMinIncoming &&
		acc.OutgoingCount == 0 &&
		acc.Balance.Cmp(accumulation) > 0
}
