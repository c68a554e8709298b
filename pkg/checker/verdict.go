package checker

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenguard/honeypot-checker/pkg/types"
)

const (
	lowHolderThreshold   = 100
	suspiciousRatioLimit = 0.15
	concentrationLimit   = 0.9
)

// stableAssetAllowList holds known-legitimate large-cap tokens whose holder
// ledgers are naturally concentrated. USDT and USDC.
var stableAssetAllowList = map[common.Address]struct{}{
	common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"): {},
	common.HexToAddress("0xA0b86991C6218b36c1d19D4a2e9Eb0cE3606eb48"): {},
}

// Combine fills in the final classification on an assembled verdict. Tax
// estimates and simulation results ride along as diagnostics; the boolean is
// driven by the concentration report alone.
func Combine(v types.Verdict) *types.Verdict {
	v.IsHoneypot = decideHoneypot(v.TokenAddress, v.Concentration)
	return &v
}

func decideHoneypot(token common.Address, c types.ConcentrationReport) bool {
	if _, ok := stableAssetAllowList[token]; ok {
		return false
	}
	switch {
	case c.HolderCount < lowHolderThreshold:
		return true
	case c.SuspiciousRatio > suspiciousRatioLimit:
		return true
	case c.ConcentrationScore > concentrationLimit:
		return true
	}
	return false
}
