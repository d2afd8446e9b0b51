package social

import (
	"context"
	"sync"
	"time"

	"yidino-api/pkg/market"
)

// TwitterSource yields account metrics or nil.
type TwitterSource interface {
	FetchTwitter(ctx context.Context) *TwitterMetrics
}

// TelegramSource yields chat metrics or nil.
type TelegramSource interface {
	FetchTelegram(ctx context.Context) *TelegramMetrics
}

// Stats groups the social counters of one collection.
type Stats struct {
	Twitter   *TwitterMetrics  `json:"twitter"`
	Telegram  *TelegramMetrics `json:"telegram"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Collector queries the configured social sources concurrently.
type Collector struct {
	twitter  TwitterSource
	telegram TelegramSource
	now      func() time.Time
}

// NewCollector builds a collector; either source may be nil.
func NewCollector(tw TwitterSource, tg TelegramSource) *Collector {
	return &Collector{twitter: tw, telegram: tg, now: time.Now}
}

// CollectorFromSources picks the first twitter and telegram source built from config.
func CollectorFromSources(sources map[string]market.Source) *Collector {
	tw, _ := market.FindSource[TwitterSource](sources)
	tg, _ := market.FindSource[TelegramSource](sources)
	return NewCollector(tw, tg)
}

// Collect runs both lookups and waits for them.
func (c *Collector) Collect(ctx context.Context) Stats {
	var (
		stats Stats
		wg    sync.WaitGroup
	)
	if c.twitter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.Twitter = c.twitter.FetchTwitter(ctx)
		}()
	}
	if c.telegram != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.Telegram = c.telegram.FetchTelegram(ctx)
		}()
	}
	wg.Wait()
	stats.FetchedAt = c.now()
	return stats
}
