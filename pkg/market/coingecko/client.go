package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/pkg/market"
	"yidino-api/pkg/market/internal/fetch"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultCoinID  = "solana"
	defaultTimeout = 8 * time.Second
)

// ErrEmptyID is returned when a lookup is attempted without a coin id.
var ErrEmptyID = errors.New("coingecko: coin id is empty")

// Client wraps the public CoinGecko v3 API.
type Client struct {
	name    string
	baseURL string
	coinID  string
	timeout time.Duration
	http    *fetch.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCoinID sets the coin polled by FetchCoin.
func WithCoinID(id string) Option {
	return func(c *Client) {
		if strings.TrimSpace(id) != "" {
			c.coinID = strings.TrimSpace(id)
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTP = hc
		}
	}
}

// WithMaxRetries adjusts the retry budget (default 0).
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.MaxRetries = n
		}
	}
}

// WithTimeout bounds every call made through FetchCoin.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:    market.TypeCoinGecko,
		baseURL: defaultBaseURL,
		coinID:  defaultCoinID,
		timeout: defaultTimeout,
		http:    fetch.New(nil, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	market.RegisterSource(market.TypeCoinGecko, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithCoinID(cfg.ID),
			WithTimeout(cfg.Timeout),
			WithMaxRetries(cfg.MaxRetries),
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		c := NewClient(opts...)
		c.name = name
		return c, nil
	})
}

// SourceName implements market.Source.
func (c *Client) SourceName() string { return c.name }

type coinResponse struct {
	MarketData struct {
		CurrentPrice             currencyMap `json:"current_price"`
		PriceChangePercentage24h float64     `json:"price_change_percentage_24h"`
		MarketCap                currencyMap `json:"market_cap"`
		TotalVolume              currencyMap `json:"total_volume"`
		TotalSupply              float64     `json:"total_supply"`
		CirculatingSupply        float64     `json:"circulating_supply"`
	} `json:"market_data"`
	CommunityData struct {
		TwitterFollowers         int64 `json:"twitter_followers"`
		TelegramChannelUserCount int64 `json:"telegram_channel_user_count"`
		RedditSubscribers        int64 `json:"reddit_subscribers"`
	} `json:"community_data"`
}

type currencyMap struct {
	USD float64 `json:"usd"`
}

// Coin fetches the coin-detail endpoint for id.
func (c *Client) Coin(ctx context.Context, id string) (*market.CoinData, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "true")
	q.Set("developer_data", "false")
	endpoint := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, url.PathEscape(id), q.Encode())

	var payload coinResponse
	if err := c.http.GetJSON(ctx, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("coingecko: coin %s: %w", id, err)
	}
	md := payload.MarketData
	return &market.CoinData{
		Price:             md.CurrentPrice.USD,
		PriceChange24h:    md.PriceChangePercentage24h,
		MarketCap:         md.MarketCap.USD,
		Volume24h:         md.TotalVolume.USD,
		TotalSupply:       md.TotalSupply,
		CirculatingSupply: md.CirculatingSupply,
		TwitterFollowers:  payload.CommunityData.TwitterFollowers,
		TelegramUsers:     payload.CommunityData.TelegramChannelUserCount,
		RedditSubscribers: payload.CommunityData.RedditSubscribers,
	}, nil
}

// FetchCoin implements market.CoinSource. Any failure is logged and yields nil.
func (c *Client) FetchCoin(ctx context.Context) *market.CoinData {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	data, err := c.Coin(ctx, c.coinID)
	if err != nil {
		logx.WithContext(ctx).Errorf("coingecko: fetch source=%s coin=%s err=%v", c.name, c.coinID, err)
		return nil
	}
	return data
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.timeout)
}
