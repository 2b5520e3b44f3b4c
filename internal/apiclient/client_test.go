package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskninja/internal/errors"
)

func fastClient() *Client {
	return New(WithRetries(2, time.Millisecond), WithRateLimit(1000, 1000))
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	err := fastClient().GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestGetJSON_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := fastClient().GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAPIStatus, apperrors.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAPIStatus, apperrors.CodeOf(err))
}

func TestGetJSON_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNetwork, apperrors.CodeOf(err))
}

func TestGetJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{truncated`))
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileFormat, apperrors.CodeOf(err))
}

func TestRandomUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("results"))
		w.Write([]byte(`{"results": [
			{"name": {"first": "Ada", "last": "Lovelace"}, "email": "ada@example.com", "location": {"country": "UK"}},
			{"name": {"first": "Alan", "last": "Turing"}, "email": "alan@example.com", "location": {"country": "UK"}}
		]}`))
	}))
	defer srv.Close()

	old := RandomUserBaseURL
	RandomUserBaseURL = srv.URL
	defer func() { RandomUserBaseURL = old }()

	users, err := fastClient().RandomUsers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, User{Name: "Ada Lovelace", Email: "ada@example.com", Country: "UK"}, users[0])
}

func TestCoinPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"bitcoin": {"usd": 65123.5}, "ethereum": {"usd": 3401.2}}`))
	}))
	defer srv.Close()

	old := CoinGeckoBaseURL
	CoinGeckoBaseURL = srv.URL
	defer func() { CoinGeckoBaseURL = old }()

	prices, err := fastClient().CoinPrices(context.Background(), []string{"bitcoin", "ethereum"}, "USD")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, CoinPrice{Coin: "bitcoin", Currency: "usd", Price: 65123.5}, prices[0])
}

func TestTopStories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[101, 102, 103]`))
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/item/101.json":
			w.Write([]byte(`{"id": 101, "title": "First", "score": 90, "by": "alice"}`))
		case "/item/102.json":
			w.Write([]byte(`{"id": 102, "title": "Second", "score": 70, "by": "bob"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	old := HackerNewsBaseURL
	HackerNewsBaseURL = srv.URL
	defer func() { HackerNewsBaseURL = old }()

	stories, err := fastClient().TopStories(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "First", stories[0].Title)
	assert.Equal(t, "bob", stories[1].By)
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "users.json")
	require.NoError(t, SaveJSON(path, []User{{Name: "Ada"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Ada"`)
}
