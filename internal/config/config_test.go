package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"yidino-api/pkg/animator"
	"yidino-api/pkg/journal"
	"yidino-api/pkg/market"
	// source types are validated against the registry these fill
	_ "yidino-api/pkg/market/dexscreener"
	_ "yidino-api/pkg/market/solanarpc"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_withMarketSectionAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "market.yaml", `
sources:
  dexscreener:
    type: dexscreener
    id: YOUR_DEX_PAIR_ADDRESS
  solana:
    type: solana_rpc
    base_url: ${YI_TEST_RPC}
    id: YOUR_YI_TOKEN_MINT_ADDRESS
`)
	mainPath := writeFile(t, dir, "yidino.yaml", `
Name: yidino-test
Host: 127.0.0.1
Port: 0
Env: dev
Poll:
  Market: 45s
  Dex: 15s
  HookTimeout: 2s
  CycleTimeout: 12s
Journal:
  Dir: ./journal
  Format: msgpack
Wallet:
  TransactionLimit: 50
  CacheTTL: 30s
  MockFallback: false
Stats:
  IntroDuration: 1s
  Steps: 30
  LiveInterval: 2s
  Curve: linear
Market:
  File: market.yaml
`)

	t.Setenv("YI_TEST_RPC", "https://rpc.example")
	t.Setenv("YI_TOKEN_MINT", "So11111111111111111111111111111111111111112")
	t.Setenv("YI_PAIR_ADDRESS", "")

	cfg, err := Load(mainPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" || cfg.IsTestEnv() {
		t.Fatalf("env not parsed, got %q", cfg.Env)
	}
	if cfg.Poll.Market != 45*time.Second || cfg.Poll.Dex != 15*time.Second || cfg.Poll.HookTimeout != 2*time.Second {
		t.Fatalf("poll intervals not parsed: %+v", cfg.Poll)
	}
	if cfg.Poll.CycleTimeout != 12*time.Second {
		t.Fatalf("cycle timeout not parsed: %s", cfg.Poll.CycleTimeout)
	}
	if cfg.JournalFormat() != journal.FormatMsgpack {
		t.Fatalf("journal format got %q", cfg.JournalFormat())
	}
	if cfg.Wallet.TransactionLimit != 50 || cfg.Wallet.CacheTTL != 30*time.Second || cfg.Wallet.MockFallback {
		t.Fatalf("wallet section not parsed: %+v", cfg.Wallet)
	}
	if cfg.Stats.Steps != 30 || cfg.Stats.IntroDuration != time.Second {
		t.Fatalf("stats section not parsed: %+v", cfg.Stats)
	}
	if got := cfg.StatsCurve()(0.5); got != 0.5 {
		t.Fatalf("linear curve expected, got %v at 0.5", got)
	}
	if cfg.BaseDir() != dir || cfg.MainPath() != mainPath {
		t.Fatalf("paths not recorded: base=%s main=%s", cfg.BaseDir(), cfg.MainPath())
	}

	if !cfg.Market.Loaded() {
		t.Fatalf("market section not hydrated")
	}
	sol := cfg.Market.Value.Sources["solana"]
	if sol.BaseURL != "https://rpc.example" {
		t.Fatalf("market base_url not expanded, got %q", sol.BaseURL)
	}
	if sol.ID != "So11111111111111111111111111111111111111112" {
		t.Fatalf("YI_TOKEN_MINT not overlaid, got %q", sol.ID)
	}
	if dex := cfg.Market.Value.Sources["dexscreener"]; !market.IsPlaceholder(dex.ID) {
		t.Fatalf("empty env value must not overwrite yaml, got %q", dex.ID)
	}
}

func TestLoad_minimalFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "yidino.yaml", "Name: yidino-test\nHost: 127.0.0.1\nPort: 0\n")

	cfg, err := Load(mainPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsTestEnv() {
		t.Fatalf("expected test env by default, got %q", cfg.Env)
	}
	if cfg.Poll.Market != 30*time.Second || cfg.Poll.Dex != 10*time.Second {
		t.Fatalf("default poll intervals wrong: %+v", cfg.Poll)
	}
	if cfg.Stats.Steps != 60 || cfg.Stats.LiveInterval != 3*time.Second || cfg.Stats.Curve != animator.CurveEaseOut {
		t.Fatalf("default stats wrong: %+v", cfg.Stats)
	}
	if cfg.Poll.CycleTimeout != 20*time.Second {
		t.Fatalf("default cycle timeout wrong: %s", cfg.Poll.CycleTimeout)
	}
	if cfg.Market.Loaded() {
		t.Fatalf("market section should stay empty")
	}
}

func TestLoad_unknownSourceType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "market.yaml", "sources:\n  feed:\n    type: carrier_pigeon\n")
	mainPath := writeFile(t, dir, "yidino.yaml", "Name: yidino-test\nHost: 127.0.0.1\nPort: 0\nMarket:\n  File: market.yaml\n")

	if _, err := Load(mainPath); err == nil {
		t.Fatalf("expected unsupported source type error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown env", func(c *Config) { c.Env = "staging" }, true},
		{"negative ttl", func(c *Config) { c.TTL.Short = -1 }, true},
		{"unknown journal format", func(c *Config) { c.Journal.Format = "xml" }, true},
		{"unknown stats curve", func(c *Config) { c.Stats.Curve = "bounce" }, true},
		{"dex slower than market", func(c *Config) {
			c.Poll.Market = 10 * time.Second
			c.Poll.Dex = 30 * time.Second
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
