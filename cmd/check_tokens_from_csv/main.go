package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/tokenguard/honeypot-checker/pkg/checker"
	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
	"github.com/tokenguard/honeypot-checker/pkg/config"
	"github.com/tokenguard/honeypot-checker/pkg/etherscan"
	"github.com/tokenguard/honeypot-checker/pkg/logging"
	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

// tokenRow is one input line: only the address to analyze.
type tokenRow struct {
	TokenAddress string `csv:"token_address"`
}

var (
	configPath   string
	rpcURL       string
	etherscanURL string
	logDir       string
	inputPath    string
	outputPath   string
	tokenTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "check_tokens_from_csv",
	Short: "Analyze a CSV list of tokens and write one verdict row per token",
	Long: `check_tokens_from_csv reads a token_address column, runs the full
analysis for each address and writes the flattened verdicts to another CSV.
Rows with invalid addresses and tokens whose analysis fails are logged and
skipped; the batch keeps going.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&inputPath, "input", "tokens.csv", "CSV with a token_address column")
	rootCmd.Flags().StringVar(&outputPath, "output", "verdicts.csv", "destination CSV for verdict rows")
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML settings file")
	rootCmd.Flags().StringVar(&rpcURL, "rpc-url", "", "execution node RPC endpoint (overrides WEB3_PROVIDER_URL)")
	rootCmd.Flags().StringVar(&etherscanURL, "etherscan-url", "", "ledger data API base URL (overrides ETHERSCAN_URL)")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for the rotated log file")
	rootCmd.Flags().DurationVar(&tokenTimeout, "timeout", 2*time.Minute, "per-token analysis deadline")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if rpcURL != "" {
		cfg.Web3ProviderURL = rpcURL
	}
	if etherscanURL != "" {
		cfg.EtherscanURL = etherscanURL
	}
	if logDir != "" {
		cfg.LogDir = logDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg, err := logging.New(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	defer lg.Sync()
	checker.SetLogger(lg)

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("could not open the token list: %w", err)
	}
	defer in.Close()

	var rows []*tokenRow
	if err := gocsv.UnmarshalFile(in, &rows); err != nil {
		return fmt.Errorf("could not parse the token list: %w", err)
	}

	rpcClient, err := rpc.Dial(cfg.Web3ProviderURL)
	if err != nil {
		return fmt.Errorf("could not connect to the RPC node: %w", err)
	}
	defer rpcClient.Close()

	scan := etherscan.NewClient(cfg.EtherscanURL, cfg.EtherscanAPIKey)
	chk := checker.New(scan, scan, jsonrpc.NewClient(rpcClient))

	verdicts := make([]*types.FlatVerdict, 0, len(rows))
	for _, row := range rows {
		if !utils.ValidAddress(row.TokenAddress) {
			lg.Warnw("skipping invalid token address", "token", row.TokenAddress)
			continue
		}
		verdict, err := analyzeOne(cmd.Context(), chk, common.HexToAddress(row.TokenAddress))
		if err != nil {
			lg.Warnw("analysis failed, moving on", "token", row.TokenAddress, "error", err)
			continue
		}
		verdicts = append(verdicts, verdict.Flatten())
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("could not create the output file: %w", err)
	}
	defer out.Close()
	if err := gocsv.MarshalFile(&verdicts, out); err != nil {
		return fmt.Errorf("could not write verdict rows: %w", err)
	}

	lg.Infow("batch finished", "rows", len(rows), "written", len(verdicts), "output", outputPath)
	return nil
}

// analyzeOne gives every token its own deadline so one stuck node call can
// not stall the rest of the batch.
func analyzeOne(parent context.Context, chk *checker.Checker, token common.Address) (*types.Verdict, error) {
	ctx, cancel := context.WithTimeout(parent, tokenTimeout)
	defer cancel()
	return chk.Analyze(ctx, token)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
