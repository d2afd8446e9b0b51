package solanarpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/pkg/market"
	"yidino-api/pkg/market/internal/fetch"
)

const (
	defaultEndpoint = "https://api.mainnet-beta.solana.com"
	defaultTimeout  = 8 * time.Second
	// SPL mints almost always use 9 decimals; a zero answer falls back to it.
	defaultDecimals = 9
)

// ErrNotConfigured is returned when the mint is empty or a placeholder.
var ErrNotConfigured = errors.New("solana: mint address not configured")

// Client speaks Solana JSON-RPC 2.0 over HTTP.
type Client struct {
	name      string
	endpoint  string
	mint      string
	timeout   time.Duration
	http      *fetch.Client
	requestID atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the RPC URL.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.endpoint = strings.TrimSpace(u)
		}
	}
}

// WithMint sets the token mint polled by FetchChain.
func WithMint(mint string) Option {
	return func(c *Client) {
		c.mint = strings.TrimSpace(mint)
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

// WithTimeout bounds every call made through FetchChain.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient constructs a JSON-RPC client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:     market.TypeSolanaRPC,
		endpoint: defaultEndpoint,
		timeout:  defaultTimeout,
		http:     fetch.New(nil, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	market.RegisterSource(market.TypeSolanaRPC, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []Option{
			WithEndpoint(cfg.BaseURL),
			WithMint(cfg.ID),
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

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}
	var resp rpcResponse
	if err := c.http.PostJSON(ctx, c.endpoint, req, nil, &resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// TokenAmount is the uiTokenAmount shape shared by several RPC methods.
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// Float returns UIAmount, or zero when the node omitted it.
func (t TokenAmount) Float() float64 {
	if t.UIAmount == nil {
		return 0
	}
	return *t.UIAmount
}

// LargestAccount is one row of getTokenLargestAccounts.
type LargestAccount struct {
	Address string `json:"address"`
	TokenAmount
}

// TokenSupply calls getTokenSupply for mint.
func (c *Client) TokenSupply(ctx context.Context, mint string) (TokenAmount, error) {
	var out struct {
		Value TokenAmount `json:"value"`
	}
	if err := c.call(ctx, "getTokenSupply", []any{mint}, &out); err != nil {
		return TokenAmount{}, err
	}
	return out.Value, nil
}

// TokenLargestAccounts calls getTokenLargestAccounts for mint.
func (c *Client) TokenLargestAccounts(ctx context.Context, mint string) ([]LargestAccount, error) {
	var out struct {
		Value []LargestAccount `json:"value"`
	}
	if err := c.call(ctx, "getTokenLargestAccounts", []any{mint}, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Chain fetches supply and largest holders for mint. HolderCount is the length
// of the largest-accounts list, which the RPC caps at 20.
func (c *Client) Chain(ctx context.Context, mint string) (*market.ChainData, error) {
	if market.IsPlaceholder(mint) {
		return nil, ErrNotConfigured
	}
	if err := ValidateAddress(mint); err != nil {
		return nil, fmt.Errorf("mint %q: %w", mint, err)
	}
	supply, err := c.TokenSupply(ctx, mint)
	if err != nil {
		return nil, err
	}
	largest, err := c.TokenLargestAccounts(ctx, mint)
	if err != nil {
		return nil, err
	}

	decimals := supply.Decimals
	if decimals == 0 {
		decimals = defaultDecimals
	}
	holders := make([]market.Holder, 0, len(largest))
	for _, acct := range largest {
		holders = append(holders, market.Holder{
			Address:  acct.Address,
			Amount:   acct.Amount,
			Decimals: acct.Decimals,
			UIAmount: acct.Float(),
		})
	}
	return &market.ChainData{
		TotalSupply: supply.Float(),
		Decimals:    decimals,
		TopHolders:  holders,
		HolderCount: len(holders),
	}, nil
}

// FetchChain implements market.ChainSource. Any failure is logged and yields nil.
func (c *Client) FetchChain(ctx context.Context) *market.ChainData {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	data, err := c.Chain(ctx, c.mint)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			logx.WithContext(ctx).Infof("solana: source=%s skipped, token mint not configured", c.name)
		} else {
			logx.WithContext(ctx).Errorf("solana: fetch source=%s mint=%s err=%v", c.name, c.mint, err)
		}
		return nil
	}
	return data
}
