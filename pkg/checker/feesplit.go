package checker

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sajari/regression"

	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

const (
	feeSplitMinSamples = 8
	feeSplitMinR2      = 0.9
)

// feeSplitSample pairs the amount routed to the suspected fee sink with the
// amount the real recipient got in the same transaction.
type feeSplitSample struct {
	fee  float64
	real float64
}

// detectFeeSplit looks for the fee-on-transfer pattern inside the history
// window: transactions carrying two consecutive transfers from one sender,
// with a single recipient recurring across many of them. When the amounts
// sent to that recurring recipient scale linearly with their paired sibling
// amounts, the token is splitting a fee off every transfer.
func detectFeeSplit(records []types.TransferRecord, token common.Address) bool {
	grouped := groupByTx(records)

	// First pass: the recipient that keeps turning up in paired transfers
	// is the fee sink candidate.
	var (
		receiverCounts = make(map[common.Address]int)
		sink           common.Address
		sinkCount      int
	)
	for _, events := range grouped {
		for i := 1; i < len(events); i++ {
			if events[i].From != events[i-1].From {
				continue
			}
			for _, to := range []common.Address{events[i-1].To, events[i].To} {
				receiverCounts[to]++
				if receiverCounts[to] > sinkCount {
					sink, sinkCount = to, receiverCounts[to]
				}
			}
		}
	}
	if sinkCount == 0 {
		return false
	}

	// Second pass: pair each fee-sink amount with its sibling amount.
	var samples []feeSplitSample
	for _, events := range grouped {
		for i := 1; i < len(events); i++ {
			if events[i].From != events[i-1].From {
				continue
			}
			switch sink {
			case events[i-1].To:
				samples = append(samples, feeSplitSample{
					fee:  utils.BigToFloat(events[i-1].Value),
					real: utils.BigToFloat(events[i].Value),
				})
			case events[i].To:
				samples = append(samples, feeSplitSample{
					fee:  utils.BigToFloat(events[i].Value),
					real: utils.BigToFloat(events[i-1].Value),
				})
			}
		}
	}
	if len(samples) < feeSplitMinSamples {
		return false
	}

	r2, err := regressSamples(samples)
	if err != nil {
		logger.Debugw("could not regress fee-split samples", "token", token.Hex(), "error", err)
		return false
	}
	logger.Debugw("fee-split regression",
		"token", token.Hex(), "samples", len(samples), "sink", sink.Hex(), "r2", r2)
	return r2 >= feeSplitMinR2
}

// groupByTx buckets window records by their transaction hash, keeping the
// within-transaction order the source reported.
func groupByTx(records []types.TransferRecord) map[common.Hash][]types.TransferRecord {
	grouped := make(map[common.Hash][]types.TransferRecord)
	for _, r := range records {
		grouped[r.TxHash] = append(grouped[r.TxHash], r)
	}
	return grouped
}

func regressSamples(samples []feeSplitSample) (float64, error) {
	r := new(regression.Regression)
	r.SetObserved("fee share per transfer")
	r.SetVar(0, "paired transfer amount")
	data := make(regression.DataPoints, len(samples))
	for i, s := range samples {
		data[i] = regression.DataPoint(s.fee, []float64{s.real})
	}
	r.Train(data...)
	if err := r.Run(); err != nil {
		return 0, err
	}
	return r.R2, nil
}
