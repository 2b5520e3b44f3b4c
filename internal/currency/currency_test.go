package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskninja/internal/apiclient"
	"taskninja/internal/config"
	apperrors "taskninja/internal/errors"
)

const primaryUSD = `{"base": "USD", "rates": {"EUR": 0.92, "GBP": 0.79, "IQD": 1310.0}}`

func newTestService(t *testing.T, primary, fallback http.Handler) *Service {
	t.Helper()
	primarySrv := httptest.NewServer(primary)
	t.Cleanup(primarySrv.Close)
	fallbackSrv := httptest.NewServer(fallback)
	t.Cleanup(fallbackSrv.Close)

	cfg := config.CurrencyConfig{
		PrimaryURL:  primarySrv.URL,
		FallbackURL: fallbackSrv.URL,
		CacheTTL:    5 * time.Minute,
	}
	dir := t.TempDir()
	client := apiclient.New(apiclient.WithRetries(0, time.Millisecond), apiclient.WithRateLimit(1000, 1000))
	return NewService(cfg, client,
		filepath.Join(dir, "cache"),
		filepath.Join(dir, "history"),
		filepath.Join(dir, "favorites.json"))
}

func okPrimary() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(primaryUSD))
	})
}

func downServer() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
}

func TestConvert_UsesPrimaryRates(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	conv, err := svc.Convert(context.Background(), 100, "usd", "eur")
	require.NoError(t, err)
	assert.Equal(t, "USD", conv.From)
	assert.Equal(t, "EUR", conv.To)
	assert.InDelta(t, 92.0, conv.Result, 1e-9)
	assert.Equal(t, "primary", conv.Source)
}

func TestConvert_FallsBackWhenPrimaryDown(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/daily/usd.json", r.URL.Path)
		w.Write([]byte(`{"eur": {"code": "EUR", "rate": 0.93}, "gbp": {"code": "GBP", "rate": 0.80}}`))
	})
	svc := newTestService(t, downServer(), fallback)

	conv, err := svc.Convert(context.Background(), 50, "USD", "GBP")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, conv.Result, 1e-9)
	assert.Equal(t, "fallback", conv.Source)
}

func TestConvert_BothProvidersDown(t *testing.T) {
	svc := newTestService(t, downServer(), downServer())

	_, err := svc.Convert(context.Background(), 10, "USD", "EUR")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAPIStatus, apperrors.CodeOf(err))
}

func TestConvert_IdentityPair(t *testing.T) {
	svc := newTestService(t, downServer(), downServer())

	// Same-code conversion needs no provider at all.
	conv, err := svc.Convert(context.Background(), 25, "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, conv.Rate)
	assert.Equal(t, 25.0, conv.Result)
}

func TestConvert_RejectsBadInput(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	_, err := svc.Convert(context.Background(), -5, "USD", "EUR")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))

	_, err = svc.Convert(context.Background(), 5, "DOLLARS", "EUR")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestConvert_UnknownTarget(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	_, err := svc.Convert(context.Background(), 5, "USD", "XXX")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestRates_Cached(t *testing.T) {
	var calls atomic.Int32
	primary := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(primaryUSD))
	})
	svc := newTestService(t, primary, downServer())

	_, err := svc.Rates(context.Background(), "USD")
	require.NoError(t, err)
	_, err = svc.Rates(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConvertMulti(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	convs, err := svc.ConvertMulti(context.Background(), 10, "USD", []string{"EUR", "GBP", "IQD"})
	require.NoError(t, err)
	require.Len(t, convs, 3)
	assert.InDelta(t, 9.2, convs[0].Result, 1e-9)
	assert.InDelta(t, 13100.0, convs[2].Result, 1e-9)
}

func TestCrossRate(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	// EUR to GBP through the USD quotes: 0.79 / 0.92.
	rate, err := svc.CrossRate(context.Background(), "EUR", "GBP", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.79/0.92, rate, 1e-9)
}

func TestHistory_PerPairNewestFirst(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	_, err := svc.Convert(context.Background(), 1, "USD", "EUR")
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), 2, "USD", "EUR")
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), 3, "USD", "GBP")
	require.NoError(t, err)

	history, err := svc.History("USD", "EUR", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2.0, history[0].Amount)
	assert.Equal(t, 1.0, history[1].Amount)

	other, err := svc.History("USD", "GBP", 0)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestFavorites(t *testing.T) {
	svc := newTestService(t, okPrimary(), downServer())

	pairs, err := svc.Favorites()
	require.NoError(t, err)
	assert.Empty(t, pairs)

	require.NoError(t, svc.AddFavorite("usd", "eur"))
	require.NoError(t, svc.AddFavorite("EUR", "IQD"))
	require.NoError(t, svc.AddFavorite("USD", "EUR")) // duplicate

	pairs, err = svc.Favorites()
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR_IQD", "USD_EUR"}, pairs)
}
