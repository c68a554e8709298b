package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SortOrder is the page ordering requested from a transfer source.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// TransferRecord is one historical token-transfer event as reported by the
// ledger data API. Value, GasPrice and GasUsed are raw base units.
type TransferRecord struct {
	From            common.Address `csv:"from_address" json:"from"`
	To              common.Address `csv:"to_address" json:"to"`
	Value           *big.Int       `csv:"value" json:"value"`
	GasPrice        *big.Int       `csv:"gas_price" json:"gasPrice"`
	GasUsed         *big.Int       `csv:"gas_used" json:"gasUsed"`
	ContractAddress common.Address `csv:"contract_address" json:"contractAddress"`
	TxHash          common.Hash    `csv:"tx_hash" json:"hash"`
}

// TaxAction is the trade direction a tax estimate refers to.
type TaxAction string

const (
	TaxActionBuy      TaxAction = "buy"
	TaxActionSell     TaxAction = "sell"
	TaxActionTransfer TaxAction = "transfer"
)

// TaxEstimate is an estimated cost percentage for one action. When no
// qualifying samples exist Percent is never synthesized: Available is false
// and Reason says why.
type TaxEstimate struct {
	Action    TaxAction
	Percent   float64
	Available bool
	Reason    string
}

func (e TaxEstimate) String() string {
	if !e.Available {
		return fmt.Sprintf("unavailable (%s)", e.Reason)
	}
	return fmt.Sprintf("%.2f%%", e.Percent)
}

// Unavailable builds a TaxEstimate without a numeric value.
func Unavailable(action TaxAction, reason string) TaxEstimate {
	return TaxEstimate{Action: action, Reason: reason}
}

// HolderAccount is the running net position of one address, folded from the
// full transfer history. Balance goes negative for pass-through addresses
// such as routers, which is expected and prunes them from holder analysis.
type HolderAccount struct {
	Address       common.Address
	Balance       *big.Int
	IncomingCount uint64
	OutgoingCount uint64
}

// ConcentrationReport summarizes holder-ledger reconstruction for one token.
type ConcentrationReport struct {
	HolderCount         uint64
	TotalSupplyObserved *big.Int
	SuspiciousAddresses []common.Address
	SuspiciousRatio     float64
	ConcentrationScore  float64
}

// GasMetrics aggregates gas usage over the recent transfer window.
type GasMetrics struct {
	AverageGas float64
	BuyGas     uint64
	SellGas    uint64
}

// SimulationReport carries the outcomes of the router-swap and transfer
// simulations. BuyTaxPercent is only meaningful when BuyTaxKnown is true;
// the deep-buy check needs a tracing-capable node.
type SimulationReport struct {
	BuyTokensOut  float64
	SellEthOut    float64
	TransferOK    bool
	BuyTaxPercent float64
	BuyTaxKnown   bool
}

// Verdict is the merged classification for a single analysis request.
type Verdict struct {
	TokenAddress     common.Address
	SourceVerified   bool
	BuyTax           TaxEstimate
	SellTax          TaxEstimate
	TransferTax      TaxEstimate
	Gas              GasMetrics
	LimitsDetected   bool
	FeeSplitDetected bool
	Simulation       SimulationReport
	Concentration    ConcentrationReport
	IsHoneypot       bool
}

// FlatVerdict is the serialized form of a Verdict, one flat mapping used for
// both JSON output and CSV batch rows.
type FlatVerdict struct {
	TokenAddress     string  `json:"token_address" csv:"token_address"`
	SourceCodeStatus string  `json:"source_code_status" csv:"source_code_status"`
	BuyTax           string  `json:"buy_tax" csv:"buy_tax"`
	SellTax          string  `json:"sell_tax" csv:"sell_tax"`
	TransferTax      string  `json:"transfer_tax" csv:"transfer_tax"`
	AverageGas       float64 `json:"average_gas" csv:"average_gas"`
	BuyGas           uint64  `json:"buy_gas" csv:"buy_gas"`
	SellGas          uint64  `json:"sell_gas" csv:"sell_gas"`
	LimitsDetected   bool    `json:"limits_detected" csv:"limits_detected"`
	FeeSplitDetected bool    `json:"fee_split_detected" csv:"fee_split_detected"`
	SimBuyTokensOut  float64 `json:"sim_buy_tokens_out" csv:"sim_buy_tokens_out"`
	SimSellEthOut    float64 `json:"sim_sell_eth_out" csv:"sim_sell_eth_out"`
	SimTransferOK    bool    `json:"sim_transfer_ok" csv:"sim_transfer_ok"`
	SimBuyTax        string  `json:"sim_buy_tax" csv:"sim_buy_tax"`
	HoldersAnalyzed  uint64  `json:"holders_analyzed" csv:"holders_analyzed"`
	SiphonedWallets  int     `json:"siphoned_wallets" csv:"siphoned_wallets"`
	IsHoneypot       bool    `json:"is_honeypot" csv:"is_honeypot"`
}

const (
	SourceStatusOpenSource  = "open_source"
	SourceStatusNotVerified = "not_verified"
)

// Flatten serializes the verdict into its flat mapping form.
func (v *Verdict) Flatten() *FlatVerdict {
	status := SourceStatusNotVerified
	if v.SourceVerified {
		status = SourceStatusOpenSource
	}
	simBuyTax := "unavailable (tracing not supported)"
	if v.Simulation.BuyTaxKnown {
		simBuyTax = fmt.Sprintf("%.2f%%", v.Simulation.BuyTaxPercent)
	}
	return &FlatVerdict{
		TokenAddress:     v.TokenAddress.Hex(),
		SourceCodeStatus: status,
		BuyTax:           v.BuyTax.String(),
		SellTax:          v.SellTax.String(),
		TransferTax:      v.TransferTax.String(),
		AverageGas:       v.Gas.AverageGas,
		BuyGas:           v.Gas.BuyGas,
		SellGas:          v.Gas.SellGas,
		LimitsDetected:   v.LimitsDetected,
		FeeSplitDetected: v.FeeSplitDetected,
		SimBuyTokensOut:  v.Simulation.BuyTokensOut,
		SimSellEthOut:    v.Simulation.SellEthOut,
		SimTransferOK:    v.Simulation.TransferOK,
		SimBuyTax:        simBuyTax,
		HoldersAnalyzed:  v.Concentration.HolderCount,
		SiphonedWallets:  len(v.Concentration.SuspiciousAddresses),
		IsHoneypot:       v.IsHoneypot,
	}
}
