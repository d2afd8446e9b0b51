package coingecko

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
)

// Records or replays a real coin-detail call. Skips unless the cassette exists
// or RECORD_CASSETTES=1.
func TestClient_Coin_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "coingecko_coin")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		assert.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	defer func() { _ = r.Stop() }()

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}))
	data, err := client.Coin(context.Background(), "solana")
	assert.NoError(t, err)
	if assert.NotNil(t, data) {
		assert.Greater(t, data.Price, 0.0, "price should be positive")
		assert.Greater(t, data.MarketCap, 0.0, "market cap should be positive")
	}
}
