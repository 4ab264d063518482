package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
)

func newCoinGeckoClient(baseURL string) *CoinGeckoClient {
	return NewCoinGeckoClient(configloader.CoinGeckoConfig{
		BaseURL:              baseURL,
		NativeCoinID:         "ethereum",
		VsCurrency:           "usd",
		ClientTimeoutSeconds: 2,
	}, zap.NewNop())
}

func TestNativePriceUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"ethereum":{"usd":2000}}`))
	}))
	defer srv.Close()

	price, err := newCoinGeckoClient(srv.URL).NativePriceUSD(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)
}

func TestNativePriceUSD_OmittedPriceDefaultsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	price, err := newCoinGeckoClient(srv.URL).NativePriceUSD(context.Background())
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestNativePriceUSD_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newCoinGeckoClient(srv.URL).NativePriceUSD(context.Background())
	require.Error(t, err)
}
