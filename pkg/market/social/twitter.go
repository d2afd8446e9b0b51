package social

import (
	"context"
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
	defaultTwitterBaseURL  = "https://api.twitter.com/2"
	defaultTwitterUsername = "YiDinosaurToken"
	defaultTimeout         = 8 * time.Second
)

// TwitterMetrics are the public counters of an X/Twitter account.
type TwitterMetrics struct {
	Username  string `json:"username"`
	Followers int64  `json:"followers"`
	Following int64  `json:"following"`
	Tweets    int64  `json:"tweets"`
	Listed    int64  `json:"listed"`
}

// Twitter reads user metrics from the v2 API with a bearer token.
type Twitter struct {
	name     string
	baseURL  string
	token    string
	username string
	timeout  time.Duration
	http     *fetch.Client
}

// TwitterOption configures a Twitter client.
type TwitterOption func(*Twitter)

// WithTwitterBaseURL overrides the API root.
func WithTwitterBaseURL(u string) TwitterOption {
	return func(t *Twitter) {
		if u != "" {
			t.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithBearerToken sets the API credential.
func WithBearerToken(token string) TwitterOption {
	return func(t *Twitter) {
		t.token = strings.TrimSpace(token)
	}
}

// WithUsername sets the account to read.
func WithUsername(name string) TwitterOption {
	return func(t *Twitter) {
		if name = strings.TrimPrefix(strings.TrimSpace(name), "@"); name != "" {
			t.username = name
		}
	}
}

// WithTwitterHTTPClient injects a custom http.Client.
func WithTwitterHTTPClient(hc *http.Client) TwitterOption {
	return func(t *Twitter) {
		if hc != nil {
			t.http.HTTP = hc
		}
	}
}

// WithTwitterTimeout bounds each call.
func WithTwitterTimeout(d time.Duration) TwitterOption {
	return func(t *Twitter) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTwitter constructs a Twitter client.
func NewTwitter(opts ...TwitterOption) *Twitter {
	t := &Twitter{
		name:     market.TypeTwitter,
		baseURL:  defaultTwitterBaseURL,
		username: defaultTwitterUsername,
		timeout:  defaultTimeout,
		http:     fetch.New(nil, 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func init() {
	market.RegisterSource(market.TypeTwitter, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []TwitterOption{
			WithTwitterBaseURL(cfg.BaseURL),
			WithBearerToken(cfg.APIKey),
			WithUsername(cfg.ID),
			WithTwitterTimeout(cfg.Timeout),
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithTwitterHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		t := NewTwitter(opts...)
		t.http.MaxRetries = cfg.MaxRetries
		t.name = name
		return t, nil
	})
}

// SourceName implements market.Source.
func (t *Twitter) SourceName() string { return t.name }

type twitterUserResponse struct {
	Data struct {
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount int64 `json:"followers_count"`
			FollowingCount int64 `json:"following_count"`
			TweetCount     int64 `json:"tweet_count"`
			ListedCount    int64 `json:"listed_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// User fetches public metrics for username.
func (t *Twitter) User(ctx context.Context, username string) (*TwitterMetrics, error) {
	if t.token == "" {
		return nil, ErrNotConfigured
	}
	endpoint := fmt.Sprintf("%s/users/by/username/%s?user.fields=public_metrics", t.baseURL, url.PathEscape(username))
	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.token)

	var resp twitterUserResponse
	if err := t.http.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return nil, fmt.Errorf("twitter: user %s: %w", username, err)
	}
	pm := resp.Data.PublicMetrics
	return &TwitterMetrics{
		Username:  username,
		Followers: pm.FollowersCount,
		Following: pm.FollowingCount,
		Tweets:    pm.TweetCount,
		Listed:    pm.ListedCount,
	}, nil
}

// FetchTwitter returns metrics for the configured account, or nil when the
// token is absent or the call fails.
func (t *Twitter) FetchTwitter(ctx context.Context) *TwitterMetrics {
	if t.token == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	m, err := t.User(ctx, t.username)
	if err != nil {
		logx.WithContext(ctx).Errorf("social: twitter user=%s err=%v", t.username, err)
		return nil
	}
	return m
}
