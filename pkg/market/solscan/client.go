package solscan

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"yidino-api/pkg/market"
	"yidino-api/pkg/market/internal/fetch"
	"yidino-api/pkg/wallet"
)

const (
	defaultBaseURL = "https://public-api.solscan.io/v1"
	defaultTimeout = 10 * time.Second
	lamportsPerSOL = 1e9
)

// ErrUnsuccessful is returned when Solscan answers with success=false.
var ErrUnsuccessful = errors.New("solscan: request unsuccessful")

// Client wraps the Solscan public REST API. Every request carries the API key
// in the "token" header.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *fetch.Client
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
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

// WithAPIKey sets the token header value.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
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

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRand sets the generator behind the estimated pnl of parsed trades.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithClock overrides the timestamp used for transactions without a block time.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Solscan client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:    market.TypeSolscan,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
		http:    fetch.New(nil, 0),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	market.RegisterSource(market.TypeSolscan, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
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

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return !market.IsPlaceholder(c.apiKey)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if !c.Configured() {
		return wallet.ErrNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	header := http.Header{}
	header.Set("token", c.apiKey)
	if err := c.http.GetJSON(ctx, u, header, out); err != nil {
		return fmt.Errorf("solscan: %s: %w", endpoint, err)
	}
	return nil
}

type accountResponse struct {
	Success  bool   `json:"success"`
	Lamports int64  `json:"lamports"`
	Tokens   []struct {
		TokenAddress string  `json:"tokenAddress"`
		TokenSymbol  string  `json:"tokenSymbol"`
		TokenName    string  `json:"tokenName"`
		Amount       float64 `json:"amount"`
	} `json:"tokens"`
}

// WalletInfo implements wallet.Source.
func (c *Client) WalletInfo(ctx context.Context, address string) (*wallet.Info, error) {
	var resp accountResponse
	if err := c.get(ctx, "/account", url.Values{"account": {address}}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: /account %s", ErrUnsuccessful, address)
	}
	info := &wallet.Info{
		Address:  address,
		Lamports: resp.Lamports,
		Balance:  float64(resp.Lamports) / lamportsPerSOL,
		Tokens:   make([]wallet.TokenHolding, 0, len(resp.Tokens)),
	}
	for _, tok := range resp.Tokens {
		info.Tokens = append(info.Tokens, wallet.TokenHolding{
			TokenAddress: tok.TokenAddress,
			TokenSymbol:  tok.TokenSymbol,
			TokenName:    tok.TokenName,
			Amount:       tok.Amount,
		})
	}
	return info, nil
}

type transactionsResponse struct {
	Success bool             `json:"success"`
	Data    []RawTransaction `json:"data"`
}

// WalletTransactions implements wallet.Source. Records come back newest first.
func (c *Client) WalletTransactions(ctx context.Context, address string, limit int) ([]wallet.TransactionRecord, error) {
	if limit <= 0 {
		limit = wallet.DefaultTransactionLimit
	}
	var resp transactionsResponse
	params := url.Values{"account": {address}, "limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/account/transactions", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: /account/transactions %s", ErrUnsuccessful, address)
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return ParseTransactions(resp.Data, c.rng, c.now()), nil
}
