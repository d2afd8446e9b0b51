package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/pkg/market"
	"yidino-api/pkg/market/internal/fetch"
)

const (
	defaultBaseURL = "https://api.dexscreener.com/latest"
	defaultTimeout = 8 * time.Second
)

var (
	// ErrNoPairs indicates the token has no listed pair.
	ErrNoPairs = errors.New("dexscreener: no pairs for token")
	// ErrNotConfigured indicates the address is missing or a placeholder.
	ErrNotConfigured = errors.New("dexscreener: address not configured")
)

// Client wraps the DexScreener token-pairs endpoint.
type Client struct {
	name    string
	baseURL string
	address string
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

// WithAddress sets the token/pair address polled by FetchPair.
func WithAddress(addr string) Option {
	return func(c *Client) {
		c.address = strings.TrimSpace(addr)
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

// WithTimeout bounds every call made through FetchPair.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient constructs a DexScreener client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:    market.TypeDexScreener,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
		http:    fetch.New(nil, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	market.RegisterSource(market.TypeDexScreener, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAddress(cfg.ID),
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

type tokensResponse struct {
	Pairs []pairPayload `json:"pairs"`
}

type pairPayload struct {
	PairAddress string `json:"pairAddress"`
	DexID       string `json:"dexId"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		H1  float64 `json:"h1"`
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Txns struct {
		H24 struct {
			Buys  int64 `json:"buys"`
			Sells int64 `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	FDV float64 `json:"fdv"`
}

// TokenPair returns the first pair listed for address.
func (c *Client) TokenPair(ctx context.Context, address string) (*market.PairData, error) {
	if market.IsPlaceholder(address) {
		return nil, ErrNotConfigured
	}
	endpoint := fmt.Sprintf("%s/dex/tokens/%s", c.baseURL, url.PathEscape(strings.TrimSpace(address)))
	var payload tokensResponse
	if err := c.http.GetJSON(ctx, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("dexscreener: tokens %s: %w", address, err)
	}
	if len(payload.Pairs) == 0 {
		return nil, ErrNoPairs
	}
	return toPairData(payload.Pairs[0]), nil
}

func toPairData(p pairPayload) *market.PairData {
	// priceUsd is a decimal string; an unparsable value counts as zero.
	price, _ := strconv.ParseFloat(strings.TrimSpace(p.PriceUSD), 64)
	buys, sells := p.Txns.H24.Buys, p.Txns.H24.Sells
	return &market.PairData{
		Price:          price,
		PriceChange24h: p.PriceChange.H24,
		PriceChange1h:  p.PriceChange.H1,
		Volume24h:      p.Volume.H24,
		Liquidity:      p.Liquidity.USD,
		Txns24h:        buys + sells,
		Buys24h:        buys,
		Sells24h:       sells,
		FDV:            p.FDV,
		PairAddress:    p.PairAddress,
		DexID:          p.DexID,
	}
}

// FetchPair implements market.PairSource. Any failure is logged and yields nil.
func (c *Client) FetchPair(ctx context.Context) *market.PairData {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	data, err := c.TokenPair(ctx, c.address)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			logx.WithContext(ctx).Infof("dexscreener: source=%s skipped, pair address not configured", c.name)
		} else {
			logx.WithContext(ctx).Errorf("dexscreener: fetch source=%s address=%s err=%v", c.name, c.address, err)
		}
		return nil
	}
	return data
}
