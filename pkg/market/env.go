package market

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"yidino-api/pkg/confkit"
)

// Source type names understood by the registry.
const (
	TypeCoinGecko   = "coingecko"
	TypeDexScreener = "dexscreener"
	TypeSolanaRPC   = "solana_rpc"
	TypeSolscan     = "solscan"
	TypeTwitter     = "twitter"
	TypeTelegram    = "telegram"
)

// Env is the flat block of named environment values: endpoints, API keys and
// target addresses. It is read once at startup and overlaid on the YAML.
type Env struct {
	SolanaRPC          string `env:"YI_SOLANA_RPC"`
	TokenMint          string `env:"YI_TOKEN_MINT"`
	PairAddress        string `env:"YI_PAIR_ADDRESS"`
	CoinGeckoID        string `env:"YI_COINGECKO_ID"`
	SolscanAPIKey      string `env:"SOLSCAN_API_KEY"`
	TwitterBearerToken string `env:"TWITTER_BEARER_TOKEN"`
	TwitterUsername    string `env:"TWITTER_USERNAME"`
	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID     string `env:"TELEGRAM_CHAT_ID"`
}

// LoadEnv parses the environment (after .env loading).
func LoadEnv() (Env, error) {
	confkit.LoadDotenvOnce()
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("market env: %w", err)
	}
	return e, nil
}

// ApplyEnv overlays non-empty environment values onto every source of the
// matching type.
func (c *Config) ApplyEnv(e Env) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	for _, src := range c.Sources {
		if src == nil {
			continue
		}
		switch src.Type {
		case TypeCoinGecko:
			set(&src.ID, e.CoinGeckoID)
		case TypeDexScreener:
			set(&src.ID, e.PairAddress)
		case TypeSolanaRPC:
			set(&src.BaseURL, e.SolanaRPC)
			set(&src.ID, e.TokenMint)
		case TypeSolscan:
			set(&src.APIKey, e.SolscanAPIKey)
		case TypeTwitter:
			set(&src.APIKey, e.TwitterBearerToken)
			set(&src.ID, e.TwitterUsername)
		case TypeTelegram:
			set(&src.APIKey, e.TelegramBotToken)
			set(&src.ID, e.TelegramChatID)
		}
	}
}
