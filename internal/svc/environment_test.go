package svc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yidino-api/internal/config"
	"yidino-api/internal/svc"
	"yidino-api/pkg/confkit"
	marketpkg "yidino-api/pkg/market"
	"yidino-api/pkg/wallet"
)

const sampleWallet = "11111111111111111111111111111111"

func baseConfig(env string, mockFallback bool) config.Config {
	cfg := config.Config{Env: env}
	cfg.Wallet.MockFallback = mockFallback
	cfg.Wallet.CacheTTL = time.Second
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// TestEnvironmentAwareWalletFallback verifies that the test environment always
// serves synthetic trades when Solscan has no key.
func TestEnvironmentAwareWalletFallback(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		mockFallback bool
		expectMock   bool
	}{
		{name: "test env forces fallback even when config says false", env: "test", mockFallback: false, expectMock: true},
		{name: "test env with fallback true stays true", env: "test", mockFallback: true, expectMock: true},
		{name: "dev env respects config false", env: "dev", mockFallback: false, expectMock: false},
		{name: "dev env respects config true", env: "dev", mockFallback: true, expectMock: true},
		{name: "prod env respects config false", env: "prod", mockFallback: false, expectMock: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := svc.Build(baseConfig(tt.env, tt.mockFallback), "")
			require.NoError(t, err)
			defer ctx.Stop()

			rep, err := ctx.Wallets.Lookup(context.Background(), sampleWallet)
			if !tt.expectMock {
				if !errors.Is(err, wallet.ErrNotConfigured) {
					t.Fatalf("expected ErrNotConfigured, got %v", err)
				}
				return
			}
			require.NoError(t, err)
			if !rep.Mock {
				t.Errorf("expected a synthetic report for env=%s", tt.env)
			}
		})
	}
}

// TestIsTestEnv verifies the environment detection logic.
func TestIsTestEnv(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"test", true},
		{"", true}, // Empty defaults to test
		{"dev", false},
		{"prod", false},
	}

	for _, tt := range tests {
		t.Run("env="+tt.env, func(t *testing.T) {
			cfg := config.Config{
				Env: tt.env,
				TTL: config.CacheTTL{Short: 10, Medium: 60, Long: 300},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if got := cfg.IsTestEnv(); got != tt.expected {
				t.Errorf("IsTestEnv() for env=%q: expected %v, got %v (normalized to %q)",
					tt.env, tt.expected, got, cfg.Env)
			}
		})
	}
}

func TestBuildWithoutMarketSection(t *testing.T) {
	ctx, err := svc.Build(baseConfig("test", true), "")
	require.NoError(t, err)
	defer ctx.Stop()

	assert.Empty(t, ctx.Sources)
	assert.Nil(t, ctx.DexPoller, "no pair source, no dex poller")
	assert.Nil(t, ctx.Snapshots, "no stores configured")
	assert.Nil(t, ctx.Journal)
	assert.Equal(t, "market", ctx.MarketPoller.Name())
	assert.Equal(t, 30*time.Second, ctx.MarketPoller.Interval())

	stats := ctx.Social.Collect(context.Background())
	assert.Nil(t, stats.Twitter)
	assert.Nil(t, stats.Telegram)
}

func TestBuildWiresDexPollerAndJournal(t *testing.T) {
	cfg := baseConfig("dev", false)
	cfg.Poll.Dex = 5 * time.Second
	cfg.Journal.Dir = t.TempDir()
	cfg.Market = confkit.Section[marketpkg.Config]{Value: &marketpkg.Config{
		Sources: map[string]*marketpkg.SourceConfig{
			"dex": {Type: marketpkg.TypeDexScreener, ID: "YOUR_PAIR_ADDRESS", Timeout: time.Second},
		},
	}}

	ctx, err := svc.Build(cfg, "")
	require.NoError(t, err)
	defer ctx.Stop()

	require.NotNil(t, ctx.DexPoller)
	assert.Equal(t, "dex", ctx.DexPoller.Name())
	assert.Equal(t, 5*time.Second, ctx.DexPoller.Interval())
	require.NotNil(t, ctx.Journal)
	assert.Equal(t, cfg.Journal.Dir, ctx.Journal.Dir())
}
