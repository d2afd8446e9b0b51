package cache

import (
	"strings"
	"time"

	"yidino-api/internal/config"
)

// Namespace prefixes every Redis key written by the service.
const Namespace = "yidino"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet holds the config TTLs as durations.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations. Zero selects
// the default; a negative value disables the class.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// SnapshotLatestKey holds the newest merged snapshot of a poller.
func SnapshotLatestKey(poller string) string {
	return formatKey("snapshot", "latest", poller)
}

// PriceLatestKey holds just the price and its timestamp.
func PriceLatestKey() string {
	return formatKey("price", "latest")
}

// SocialStatsKey holds the last complete twitter/telegram pair.
func SocialStatsKey() string {
	return formatKey("social")
}

// SnapshotTTL outlives a couple of missed market cycles.
func SnapshotTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLShort, 12) // ~2m when short=10s
}

func PriceTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

func SocialTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}
