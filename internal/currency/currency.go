// Package currency converts between currencies using live exchange rates,
// with a primary and a fallback rate provider, a short file cache, favorite
// pairs, and per-pair conversion history.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"taskninja/internal/apiclient"
	"taskninja/internal/cache"
	"taskninja/internal/config"
	apperrors "taskninja/internal/errors"
)

// Rates holds one base currency's quotes against other codes.
type Rates struct {
	Base      string             `json:"base"`
	Quotes    map[string]float64 `json:"quotes"`
	Source    string             `json:"source"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Conversion is one completed conversion, as stored in history.
type Conversion struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Amount float64   `json:"amount"`
	Rate   float64   `json:"rate"`
	Result float64   `json:"result"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// Service fetches and converts exchange rates.
type Service struct {
	cfg           config.CurrencyConfig
	client        *apiclient.Client
	cache         *cache.Cache
	historyDir    string
	favoritesPath string
	now           func() time.Time
}

// NewService wires the currency service. historyDir holds one JSON file per
// currency pair.
func NewService(cfg config.CurrencyConfig, client *apiclient.Client, cacheDir, historyDir, favoritesPath string) *Service {
	return &Service{
		cfg:           cfg,
		client:        client,
		cache:         cache.New(cacheDir, cfg.CacheTTL),
		historyDir:    historyDir,
		favoritesPath: favoritesPath,
		now:           time.Now,
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", apperrors.InvalidInput(fmt.Sprintf("currency code %q must be three letters", code))
	}
	return code, nil
}

// Rates returns all quotes for a base currency, from cache when fresh.
// The primary provider is tried first, then the fallback.
func (s *Service) Rates(ctx context.Context, base string) (Rates, error) {
	base, err := normalizeCode(base)
	if err != nil {
		return Rates{}, err
	}

	cacheKey := "rates:" + base
	var cached Rates
	if hit, err := s.cache.Get(cacheKey, &cached); err == nil && hit {
		slog.Debug("rate cache hit", slog.String("base", base))
		return cached, nil
	}

	rates, primaryErr := s.fetchPrimary(ctx, base)
	if primaryErr != nil {
		slog.Warn("primary rate provider failed, trying fallback",
			slog.String("base", base),
			slog.String("error", primaryErr.Error()))
		var fallbackErr error
		rates, fallbackErr = s.fetchFallback(ctx, base)
		if fallbackErr != nil {
			return Rates{}, fmt.Errorf("all rate providers failed (primary: %v): %w", primaryErr, fallbackErr)
		}
	}

	if err := s.cache.Put(cacheKey, rates); err != nil {
		slog.Warn("failed to cache rates", slog.String("error", err.Error()))
	}
	return rates, nil
}

func (s *Service) fetchPrimary(ctx context.Context, base string) (Rates, error) {
	endpoint := fmt.Sprintf("%s/latest?base=%s", strings.TrimRight(s.cfg.PrimaryURL, "/"), base)
	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := s.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return Rates{}, err
	}
	if len(payload.Rates) == 0 {
		return Rates{}, apperrors.New(apperrors.CodeAPIStatus, fmt.Sprintf("primary provider returned no rates for %s", base))
	}
	quotes := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		quotes[strings.ToUpper(code)] = rate
	}
	return Rates{Base: base, Quotes: quotes, Source: "primary", FetchedAt: s.now()}, nil
}

func (s *Service) fetchFallback(ctx context.Context, base string) (Rates, error) {
	endpoint := fmt.Sprintf("%s/daily/%s.json", strings.TrimRight(s.cfg.FallbackURL, "/"), strings.ToLower(base))
	var payload map[string]struct {
		Code string  `json:"code"`
		Rate float64 `json:"rate"`
	}
	if err := s.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return Rates{}, err
	}
	if len(payload) == 0 {
		return Rates{}, apperrors.New(apperrors.CodeAPIStatus, fmt.Sprintf("fallback provider returned no rates for %s", base))
	}
	quotes := make(map[string]float64, len(payload))
	for _, q := range payload {
		quotes[strings.ToUpper(q.Code)] = q.Rate
	}
	return Rates{Base: base, Quotes: quotes, Source: "fallback", FetchedAt: s.now()}, nil
}

// Rate returns the rate from one currency to another. Identical codes rate 1.
func (s *Service) Rate(ctx context.Context, from, to string) (float64, string, error) {
	from, err := normalizeCode(from)
	if err != nil {
		return 0, "", err
	}
	to, err = normalizeCode(to)
	if err != nil {
		return 0, "", err
	}
	if from == to {
		return 1, "identity", nil
	}
	rates, err := s.Rates(ctx, from)
	if err != nil {
		return 0, "", err
	}
	rate, ok := rates.Quotes[to]
	if !ok || rate == 0 {
		return 0, "", apperrors.NotFound(fmt.Sprintf("rate %s/%s", from, to))
	}
	return rate, rates.Source, nil
}

// Convert converts amount from one currency to another and records it.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	if amount < 0 {
		return Conversion{}, apperrors.InvalidInput("amount must not be negative")
	}
	rate, source, err := s.Rate(ctx, from, to)
	if err != nil {
		return Conversion{}, err
	}
	conv := Conversion{
		From:   strings.ToUpper(strings.TrimSpace(from)),
		To:     strings.ToUpper(strings.TrimSpace(to)),
		Amount: amount,
		Rate:   rate,
		Result: amount * rate,
		Source: source,
		At:     s.now(),
	}
	if err := s.appendHistory(conv); err != nil {
		slog.Warn("failed to record conversion", slog.String("error", err.Error()))
	}
	return conv, nil
}

// ConvertMulti converts one amount into several target currencies.
func (s *Service) ConvertMulti(ctx context.Context, amount float64, from string, targets []string) ([]Conversion, error) {
	if len(targets) == 0 {
		return nil, apperrors.InvalidInput("at least one target currency is required")
	}
	out := make([]Conversion, 0, len(targets))
	for _, to := range targets {
		conv, err := s.Convert(ctx, amount, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

// CrossRate derives a rate between two currencies through a pivot base, for
// pairs a provider does not quote directly.
func (s *Service) CrossRate(ctx context.Context, from, to, pivot string) (float64, error) {
	pivotRates, err := s.Rates(ctx, pivot)
	if err != nil {
		return 0, err
	}
	from, err = normalizeCode(from)
	if err != nil {
		return 0, err
	}
	to, err = normalizeCode(to)
	if err != nil {
		return 0, err
	}
	fromRate, okFrom := pivotRates.Quotes[from]
	toRate, okTo := pivotRates.Quotes[to]
	if !okFrom || !okTo || fromRate == 0 {
		return 0, apperrors.NotFound(fmt.Sprintf("cross rate %s/%s via %s", from, to, strings.ToUpper(pivot)))
	}
	return toRate / fromRate, nil
}

func pairName(from, to string) string {
	return strings.ToUpper(from) + "_" + strings.ToUpper(to)
}

func (s *Service) historyPath(from, to string) string {
	return filepath.Join(s.historyDir, pairName(from, to)+".json")
}

func (s *Service) appendHistory(conv Conversion) error {
	path := s.historyPath(conv.From, conv.To)
	var all []Conversion
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &all)
	}
	all = append(all, conv)
	if err := os.MkdirAll(s.historyDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// History returns past conversions for a pair, newest first.
func (s *Service) History(from, to string, limit int) ([]Conversion, error) {
	from, err := normalizeCode(from)
	if err != nil {
		return nil, err
	}
	to, err = normalizeCode(to)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.historyPath(from, to))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to read conversion history", err)
	}
	var all []Conversion
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, apperrors.FileFormat(s.historyPath(from, to), err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].At.After(all[j].At) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Favorites returns saved currency pairs, sorted.
func (s *Service) Favorites() ([]string, error) {
	data, err := os.ReadFile(s.favoritesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to read favorites", err)
	}
	var pairs []string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, apperrors.FileFormat(s.favoritesPath, err)
	}
	sort.Strings(pairs)
	return pairs, nil
}

// AddFavorite saves a currency pair for quick reuse. Duplicates are ignored.
func (s *Service) AddFavorite(from, to string) error {
	from, err := normalizeCode(from)
	if err != nil {
		return err
	}
	to, err = normalizeCode(to)
	if err != nil {
		return err
	}
	pairs, err := s.Favorites()
	if err != nil {
		return err
	}
	pair := pairName(from, to)
	for _, p := range pairs {
		if p == pair {
			return nil
		}
	}
	pairs = append(pairs, pair)
	sort.Strings(pairs)
	if err := os.MkdirAll(filepath.Dir(s.favoritesPath), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create data directory", err)
	}
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode favorites", err)
	}
	if err := os.WriteFile(s.favoritesPath, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write favorites", err)
	}
	return nil
}
