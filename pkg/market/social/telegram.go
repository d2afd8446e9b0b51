package social

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

const defaultTelegramBaseURL = "https://api.telegram.org"

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("social: credentials not configured")

// TelegramMetrics is the member count of a chat.
type TelegramMetrics struct {
	ChatID      string `json:"chatId"`
	MemberCount int64  `json:"memberCount"`
}

// Telegram reads chat statistics through the Bot API.
type Telegram struct {
	name     string
	baseURL  string
	botToken string
	chatID   string
	timeout  time.Duration
	http     *fetch.Client
}

// TelegramOption configures a Telegram client.
type TelegramOption func(*Telegram)

// WithTelegramBaseURL overrides the Bot API root.
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *Telegram) {
		if u != "" {
			t.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithBotToken sets the bot credential.
func WithBotToken(token string) TelegramOption {
	return func(t *Telegram) {
		t.botToken = strings.TrimSpace(token)
	}
}

// WithChatID sets the chat to count.
func WithChatID(id string) TelegramOption {
	return func(t *Telegram) {
		t.chatID = strings.TrimSpace(id)
	}
}

// WithTelegramHTTPClient injects a custom http.Client.
func WithTelegramHTTPClient(hc *http.Client) TelegramOption {
	return func(t *Telegram) {
		if hc != nil {
			t.http.HTTP = hc
		}
	}
}

// WithTelegramTimeout bounds each call.
func WithTelegramTimeout(d time.Duration) TelegramOption {
	return func(t *Telegram) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTelegram constructs a Telegram client.
func NewTelegram(opts ...TelegramOption) *Telegram {
	t := &Telegram{
		name:    market.TypeTelegram,
		baseURL: defaultTelegramBaseURL,
		timeout: defaultTimeout,
		http:    fetch.New(nil, 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func init() {
	market.RegisterSource(market.TypeTelegram, func(name string, cfg *market.SourceConfig) (market.Source, error) {
		opts := []TelegramOption{
			WithTelegramBaseURL(cfg.BaseURL),
			WithBotToken(cfg.APIKey),
			WithChatID(cfg.ID),
			WithTelegramTimeout(cfg.Timeout),
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithTelegramHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		t := NewTelegram(opts...)
		t.http.MaxRetries = cfg.MaxRetries
		t.name = name
		return t, nil
	})
}

// SourceName implements market.Source.
func (t *Telegram) SourceName() string { return t.name }

// Configured reports whether both bot token and chat id are present.
func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

type memberCountResponse struct {
	OK          bool   `json:"ok"`
	Result      int64  `json:"result"`
	Description string `json:"description"`
}

// MemberCount calls getChatMemberCount for chatID.
func (t *Telegram) MemberCount(ctx context.Context, chatID string) (*TelegramMetrics, error) {
	if t.botToken == "" || chatID == "" {
		return nil, ErrNotConfigured
	}
	endpoint := fmt.Sprintf("%s/bot%s/getChatMemberCount?chat_id=%s", t.baseURL, t.botToken, url.QueryEscape(chatID))
	var resp memberCountResponse
	if err := t.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		// the endpoint embeds the bot token, keep it out of the error
		var status *fetch.StatusError
		if errors.As(err, &status) {
			return nil, fmt.Errorf("telegram: getChatMemberCount: http status %d", status.Code)
		}
		return nil, errors.New("telegram: getChatMemberCount: request failed")
	}
	if !resp.OK {
		return nil, fmt.Errorf("telegram: getChatMemberCount: %s", resp.Description)
	}
	return &TelegramMetrics{ChatID: chatID, MemberCount: resp.Result}, nil
}

// FetchTelegram returns the member count of the configured chat, or nil when
// unconfigured or failing.
func (t *Telegram) FetchTelegram(ctx context.Context) *TelegramMetrics {
	if !t.Configured() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	m, err := t.MemberCount(ctx, t.chatID)
	if err != nil {
		logx.WithContext(ctx).Errorf("social: telegram chat=%s err=%v", t.chatID, err)
		return nil
	}
	return m
}
