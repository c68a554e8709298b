package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultEtherscanURL = "https://api.etherscan.io/api"

// Config holds the process-level settings. Environment variables take
// priority over the optional YAML settings file; the file exists so batch
// runs don't need an exported environment.
type Config struct {
	EtherscanAPIKey string `yaml:"etherscan_api_key"`
	EtherscanURL    string `yaml:"etherscan_url"`
	Web3ProviderURL string `yaml:"web3_provider_url"`
	LogDir          string `yaml:"log_dir"`
}

// Load reads the optional settings file at path (empty path skips the file),
// overlays environment variables and fills defaults. Missing credentials are
// reported by Validate, not here, so callers can decide what is fatal.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse settings file: %w", err)
		}
	}
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		cfg.EtherscanAPIKey = v
	}
	if v := os.Getenv("ETHERSCAN_URL"); v != "" {
		cfg.EtherscanURL = v
	}
	if v := os.Getenv("WEB3_PROVIDER_URL"); v != "" {
		cfg.Web3ProviderURL = v
	}
	if cfg.EtherscanURL == "" {
		cfg.EtherscanURL = DefaultEtherscanURL
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	return cfg, nil
}

// Validate reports the configuration faults that must stop the process at
// startup.
func (c *Config) Validate() error {
	if c.EtherscanAPIKey == "" {
		return fmt.Errorf("etherscan API key not found in environment variable ETHERSCAN_API_KEY or settings file")
	}
	if c.Web3ProviderURL == "" {
		return fmt.Errorf("web3 provider URL not found in environment variable WEB3_PROVIDER_URL or settings file")
	}
	return nil
}
