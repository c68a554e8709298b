package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tokenguard/honeypot-checker/pkg/checker"
	"github.com/tokenguard/honeypot-checker/pkg/checker/data"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

// holderSummary mirrors the concentration section of a verdict for offline
// snapshot runs.
type holderSummary struct {
	HoldersAnalyzed     uint64   `json:"holders_analyzed"`
	TotalSupplyObserved string   `json:"total_supply_observed"`
	SiphonedWallets     []string `json:"siphoned_wallets"`
	SuspiciousRatio     float64  `json:"suspicious_ratio"`
	ConcentrationScore  float64  `json:"concentration_score"`
}

var (
	inputPath string
	tokenHex  string
)

var rootCmd = &cobra.Command{
	Use:   "analyze_holders_from_csv",
	Short: "Score holder concentration from a transfer-snapshot CSV",
	Long: `analyze_holders_from_csv rebuilds the holder ledger from an exported
transfer history and prints the concentration report, without touching any
network. Use --token to restrict a mixed snapshot to one contract.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&inputPath, "input", "transfers.csv", "transfer-snapshot CSV")
	rootCmd.Flags().StringVar(&tokenHex, "token", "", "only fold rows for this contract address")
}

func run(_ *cobra.Command, _ []string) error {
	var token common.Address
	if tokenHex != "" {
		if !utils.ValidAddress(tokenHex) {
			return fmt.Errorf("invalid token address: %s", tokenHex)
		}
		token = common.HexToAddress(tokenHex)
	}

	records, err := data.ReadTransfersFromCSV(inputPath, token)
	if err != nil {
		return fmt.Errorf("could not load the snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "loaded %d transfer rows from %s\n", len(records), inputPath)

	report := checker.ConcentrationFromRecords(records)

	summary := holderSummary{
		HoldersAnalyzed:     report.HolderCount,
		TotalSupplyObserved: report.TotalSupplyObserved.String(),
		SiphonedWallets:     make([]string, 0, len(report.SuspiciousAddresses)),
		SuspiciousRatio:     report.SuspiciousRatio,
		ConcentrationScore:  report.ConcentrationScore,
	}
	for _, addr := range report.SuspiciousAddresses {
		summary.SiphonedWallets = append(summary.SiphonedWallets, addr.Hex())
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
