package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"

	"github.com/tokenguard/honeypot-checker/pkg/checker"
	"github.com/tokenguard/honeypot-checker/pkg/checker/jsonrpc"
	"github.com/tokenguard/honeypot-checker/pkg/config"
	"github.com/tokenguard/honeypot-checker/pkg/etherscan"
	"github.com/tokenguard/honeypot-checker/pkg/logging"
	"github.com/tokenguard/honeypot-checker/pkg/types"
	"github.com/tokenguard/honeypot-checker/pkg/utils"
)

var (
	configPath   string
	rpcURL       string
	etherscanURL string
	logDir       string
	timeout      time.Duration
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:   "check_honeypot <token-address>",
	Short: "Classify one ERC20 token as a likely honeypot",
	Long: `check_honeypot runs the full analysis for a single token: source
verification, historical and simulated trade taxes, transaction limits and
holder concentration, then prints the combined verdict.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML settings file")
	rootCmd.Flags().StringVar(&rpcURL, "rpc-url", "", "execution node RPC endpoint (overrides WEB3_PROVIDER_URL)")
	rootCmd.Flags().StringVar(&etherscanURL, "etherscan-url", "", "ledger data API base URL (overrides ETHERSCAN_URL)")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for the rotated log file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis deadline")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the verdict as indented JSON")
}

func run(cmd *cobra.Command, args []string) error {
	// reject bad input before touching config or the network
	if !utils.ValidAddress(args[0]) {
		return fmt.Errorf("invalid token address: %s", args[0])
	}
	token := common.HexToAddress(args[0])

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

	rpcClient, err := rpc.Dial(cfg.Web3ProviderURL)
	if err != nil {
		return fmt.Errorf("could not connect to the RPC node: %w", err)
	}
	defer rpcClient.Close()

	scan := etherscan.NewClient(cfg.EtherscanURL, cfg.EtherscanAPIKey)
	chk := checker.New(scan, scan, jsonrpc.NewClient(rpcClient))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	verdict, err := chk.Analyze(ctx, token)
	if err != nil {
		return err
	}
	return printVerdict(verdict.Flatten())
}

func printVerdict(flat *types.FlatVerdict) error {
	if jsonOutput {
		out, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("token_address:      %s\n", flat.TokenAddress)
	fmt.Printf("source_code_status: %s\n", flat.SourceCodeStatus)
	fmt.Printf("buy_tax:            %s\n", flat.BuyTax)
	fmt.Printf("sell_tax:           %s\n", flat.SellTax)
	fmt.Printf("transfer_tax:       %s\n", flat.TransferTax)
	fmt.Printf("average_gas:        %.2f\n", flat.AverageGas)
	fmt.Printf("buy_gas:            %d\n", flat.BuyGas)
	fmt.Printf("sell_gas:           %d\n", flat.SellGas)
	fmt.Printf("limits_detected:    %t\n", flat.LimitsDetected)
	fmt.Printf("fee_split_detected: %t\n", flat.FeeSplitDetected)
	fmt.Printf("sim_buy_tokens_out: %g\n", flat.SimBuyTokensOut)
	fmt.Printf("sim_sell_eth_out:   %g\n", flat.SimSellEthOut)
	fmt.Printf("sim_transfer_ok:    %t\n", flat.SimTransferOK)
	fmt.Printf("sim_buy_tax:        %s\n", flat.SimBuyTax)
	fmt.Printf("holders_analyzed:   %d\n", flat.HoldersAnalyzed)
	fmt.Printf("siphoned_wallets:   %d\n", flat.SiphonedWallets)
	fmt.Printf("is_honeypot:        %t\n", flat.IsHoneypot)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
