package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/config"
	"yidino-api/pkg/confkit"
	marketpkg "yidino-api/pkg/market"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Poll (market/dex): %s / %s, cycle timeout %s", cfg.Poll.Market, cfg.Poll.Dex, cfg.Poll.CycleTimeout),
		journalLine(cfg.Journal),
		fmt.Sprintf("Wallet: limit=%d cache=%s mock=%t", cfg.Wallet.TransactionLimit, cfg.Wallet.CacheTTL, cfg.Wallet.MockFallback || cfg.IsTestEnv()),
		fmt.Sprintf("Stats: %d %s steps over %s, live every %s", cfg.Stats.Steps, cfg.Stats.Curve, cfg.Stats.IntroDuration, cfg.Stats.LiveInterval),
		sectionLine("Market config", cfg.Market),
	}
	if cfg.Market.Value != nil {
		lines = append(lines, sourcesLine(cfg.Market.Value))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func journalLine(j config.JournalConf) string {
	if strings.TrimSpace(j.Dir) == "" {
		return "Journal: disabled"
	}
	return fmt.Sprintf("Journal: %s (%s)", j.Dir, j.Format)
}

// sourcesLine lists sources as name=type, flagging those whose id is still a
// placeholder.
func sourcesLine(cfg *marketpkg.Config) string {
	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		src := cfg.Sources[name]
		part := fmt.Sprintf("%s=%s", name, src.Type)
		if marketpkg.IsPlaceholder(src.ID) {
			part += " (placeholder)"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "Sources: none"
	}
	return "Sources: " + strings.Join(parts, ", ")
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
