// Package config holds the console's runtime settings.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Token describes one tradable asset the console knows by name.
type Token struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int32  `yaml:"decimals"`
}

// Config captures the runtime settings for the console.
type Config struct {
	LogFile      string   `yaml:"log_file"`
	Database     string   `yaml:"database"`
	Vault        string   `yaml:"vault"`
	Tokens       []Token  `yaml:"tokens"`
	Accounts     []string `yaml:"accounts"`
	FaucetAmount int64    `yaml:"faucet_amount"`
}

// LoadConfig reads the YAML configuration from disk and validates the
// result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogFile:      "console.log",
		Database:     "amm.db",
		FaucetAmount: 1_000_000,
	}
	if path == "" {
		return nil, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = "console.log"
	}
	cfg.Database = strings.TrimSpace(cfg.Database)
	for i := range cfg.Tokens {
		cfg.Tokens[i].Symbol = strings.ToUpper(strings.TrimSpace(cfg.Tokens[i].Symbol))
	}
}

func (cfg *Config) validate() error {
	if len(cfg.Tokens) < 2 {
		return fmt.Errorf("at least two tokens required")
	}
	seen := make(map[common.Address]string, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		if t.Symbol == "" {
			return fmt.Errorf("token %s: symbol required", t.Address)
		}
		if !common.IsHexAddress(t.Address) {
			return fmt.Errorf("token %s: invalid address %q", t.Symbol, t.Address)
		}
		addr := common.HexToAddress(t.Address)
		if prev, dup := seen[addr]; dup {
			return fmt.Errorf("token %s: address already used by %s", t.Symbol, prev)
		}
		seen[addr] = t.Symbol
	}
	if cfg.Vault != "" && !common.IsHexAddress(cfg.Vault) {
		return fmt.Errorf("invalid vault address %q", cfg.Vault)
	}
	for _, a := range cfg.Accounts {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("invalid account address %q", a)
		}
	}
	if cfg.FaucetAmount < 0 {
		return fmt.Errorf("faucet_amount cannot be negative")
	}
	return nil
}
