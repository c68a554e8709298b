package checker

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
	"github.com/tokenguard/honeypot-checker/pkg/types"
)

var logger *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

// SetLogger swaps the package logger. Commands install their configured
// logger here before running an analysis.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

// Checker runs every analysis stage against one token and merges the
// outcomes into a verdict.
type Checker struct {
	verification VerificationSource
	caller       jsonrpc.Caller

	historical *HistoricalTaxEstimator
	simulator  *SimulationTaxEstimator
	holders    *HolderConcentrationAnalyzer
}

func New(transfers TransferSource, verification VerificationSource, caller jsonrpc.Caller) *Checker {
	return &Checker{
		verification: verification,
		caller:       caller,
		historical:   NewHistoricalTaxEstimator(transfers),
		simulator:    NewSimulationTaxEstimator(caller),
		holders:      NewHolderConcentrationAnalyzer(transfers),
	}
}

// Analyze runs the full pipeline for one token. A failed stage degrades the
// fields it owns instead of aborting the request; the only error out of here
// is context cancellation.
func (c *Checker) Analyze(ctx context.Context, token common.Address) (*types.Verdict, error) {
	logger.Infow("starting analysis", "token", token.Hex())

	verified, err := c.verification.IsContractVerified(ctx, token)
	if err != nil {
		logger.Warnw("could not check source verification, assuming not verified",
			"token", token.Hex(), "error", err)
		verified = false
	}

	// The three stages talk to independent backends, so run them together.
	var (
		hist   HistoricalReport
		sim    types.SimulationReport
		limits bool
		conc   types.ConcentrationReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hist = c.historical.Estimate(gctx, token)
		return nil
	})
	g.Go(func() error {
		sim = c.simulator.Report(gctx, token)
		limits = ProbeTransactionLimit(gctx, c.caller, token)
		return nil
	})
	g.Go(func() error {
		conc = c.holders.Analyze(gctx, token)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verdict := Combine(types.Verdict{
		TokenAddress:     token,
		SourceVerified:   verified,
		BuyTax:           hist.BuyTax,
		SellTax:          hist.SellTax,
		TransferTax:      hist.TransferTax,
		Gas:              hist.Gas,
		FeeSplitDetected: hist.FeeSplitDetected,
		LimitsDetected:   limits,
		Simulation:       sim,
		Concentration:    conc,
	})
	logger.Infow("analysis finished",
		"token", token.Hex(),
		"isHoneypot", verdict.IsHoneypot,
		"holders", verdict.Concentration.HolderCount,
		"suspiciousWallets", len(verdict.Concentration.SuspiciousAddresses),
	)
	return verdict, nil
}
