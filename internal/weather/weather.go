// Package weather is an OpenWeatherMap client with a short-lived file cache
// and a lookup history. Responses are normalized into Report records.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"taskninja/internal/apiclient"
	"taskninja/internal/cache"
	"taskninja/internal/config"
	apperrors "taskninja/internal/errors"
)

// Report is a normalized current-conditions snapshot.
type Report struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDir     string    `json:"wind_dir"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ForecastEntry is one three-hour slot from the five-day forecast.
type ForecastEntry struct {
	At        time.Time `json:"at"`
	Condition string    `json:"condition"`
	Temp      float64   `json:"temp"`
	Humidity  int       `json:"humidity"`
}

// Service fetches weather through the shared API client.
type Service struct {
	cfg         config.WeatherConfig
	client      *apiclient.Client
	cache       *cache.Cache
	historyPath string
	historyMu   sync.Mutex
	now         func() time.Time
}

// NewService wires the weather client. cacheDir and historyPath may point at
// not-yet-existing locations.
func NewService(cfg config.WeatherConfig, client *apiclient.Client, cacheDir, historyPath string) *Service {
	return &Service{
		cfg:         cfg,
		client:      client,
		cache:       cache.New(cacheDir, cfg.CacheTTL),
		historyPath: historyPath,
		now:         time.Now,
	}
}

// UnitSuffix is the temperature suffix for the configured units.
func (s *Service) UnitSuffix() string {
	switch s.cfg.Units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	default:
		return "°C"
	}
}

type owmCurrent struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
}

// Current returns conditions for a city, served from cache when fresh.
func (s *Service) Current(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, apperrors.InvalidInput("city must not be empty")
	}
	if s.cfg.APIKey == "" {
		return Report{}, apperrors.InvalidInput("weather API key is not configured (set TASKNINJA_WEATHER_API_KEY)")
	}

	cacheKey := fmt.Sprintf("current:%s:%s", strings.ToLower(city), s.cfg.Units)
	var cached Report
	if hit, err := s.cache.Get(cacheKey, &cached); err == nil && hit {
		slog.Debug("weather cache hit", slog.String("city", city))
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/weather?q=%s&units=%s&appid=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.QueryEscape(city), s.cfg.Units, s.cfg.APIKey)

	var raw owmCurrent
	if err := s.client.GetJSON(ctx, endpoint, &raw); err != nil {
		return Report{}, err
	}

	report := Report{
		City:      raw.Name,
		Country:   raw.Sys.Country,
		Temp:      raw.Main.Temp,
		FeelsLike: raw.Main.FeelsLike,
		Humidity:  raw.Main.Humidity,
		WindSpeed: raw.Wind.Speed,
		WindDir:   CompassDirection(raw.Wind.Deg),
		FetchedAt: s.now(),
	}
	if len(raw.Weather) > 0 {
		report.Condition = raw.Weather[0].Main
		report.Description = raw.Weather[0].Description
	}

	if err := s.cache.Put(cacheKey, report); err != nil {
		slog.Warn("failed to cache weather report", slog.String("error", err.Error()))
	}
	if err := s.appendHistory(report); err != nil {
		slog.Warn("failed to record weather history", slog.String("error", err.Error()))
	}
	return report, nil
}

// Forecast returns the upcoming three-hour slots for a city, capped at limit.
func (s *Service) Forecast(ctx context.Context, city string, limit int) ([]ForecastEntry, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperrors.InvalidInput("city must not be empty")
	}
	if s.cfg.APIKey == "" {
		return nil, apperrors.InvalidInput("weather API key is not configured (set TASKNINJA_WEATHER_API_KEY)")
	}
	if limit < 1 {
		limit = 8
	}

	cacheKey := fmt.Sprintf("forecast:%s:%s:%d", strings.ToLower(city), s.cfg.Units, limit)
	var cached []ForecastEntry
	if hit, err := s.cache.Get(cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/forecast?q=%s&units=%s&cnt=%d&appid=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.QueryEscape(city), s.cfg.Units, limit, s.cfg.APIKey)

	var raw struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Main string `json:"main"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := s.client.GetJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(raw.List))
	for _, item := range raw.List {
		e := ForecastEntry{
			At:       time.Unix(item.Dt, 0).UTC(),
			Temp:     item.Main.Temp,
			Humidity: item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			e.Condition = item.Weather[0].Main
		}
		entries = append(entries, e)
	}
	if err := s.cache.Put(cacheKey, entries); err != nil {
		slog.Warn("failed to cache forecast", slog.String("error", err.Error()))
	}
	return entries, nil
}

// Compare fetches current conditions for several cities concurrently.
// Results come back sorted warmest first.
func (s *Service) Compare(ctx context.Context, cities []string) ([]Report, error) {
	if len(cities) < 2 {
		return nil, apperrors.InvalidInput("compare needs at least two cities")
	}

	reports := make([]Report, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, city := range cities {
		g.Go(func() error {
			report, err := s.Current(gctx, city)
			if err != nil {
				return fmt.Errorf("failed to fetch weather for %s: %w", city, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Temp > reports[j].Temp })
	return reports, nil
}

// History returns past lookups, newest first, capped at limit (0 for all).
func (s *Service) History(limit int) ([]Report, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to read weather history", err)
	}
	var all []Report
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, apperrors.FileFormat(s.historyPath, err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FetchedAt.After(all[j].FetchedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// appendHistory does a read-modify-write of the history file; the mutex keeps
// concurrent lookups (Compare fans out) from overwriting each other.
func (s *Service) appendHistory(report Report) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	var all []Report
	if data, err := os.ReadFile(s.historyPath); err == nil {
		_ = json.Unmarshal(data, &all)
	}
	all = append(all, report)
	if err := os.MkdirAll(filepath.Dir(s.historyPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.historyPath, data, 0644)
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassDirection maps a wind bearing in degrees to a 16-point compass name.
func CompassDirection(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	idx := int((deg+11.25)/22.5) % 16
	return compassPoints[idx]
}
