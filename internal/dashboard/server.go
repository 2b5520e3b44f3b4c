// Package dashboard serves the analytics dashboard: a KPI and chart API,
// a live websocket feed, and Prometheus metrics.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskninja/internal/chart"
	"taskninja/internal/config"
	apperrors "taskninja/internal/errors"
)

// Server hosts the dashboard.
type Server struct {
	cfg     config.ServerConfig
	source  *DataSource
	hub     *Hub
	metrics *Metrics
	logger  *slog.Logger
	tmpDir  string
}

// NewServer wires the dashboard around a data source.
func NewServer(cfg config.ServerConfig, source *DataSource, logger *slog.Logger) *Server {
	hub := NewHub(logger.With(slog.String("component", "ws_hub")))
	return &Server{
		cfg:     cfg,
		source:  source,
		hub:     hub,
		metrics: NewMetrics(hub),
		logger:  logger.With(slog.String("component", "dashboard")),
		tmpDir:  os.TempDir(),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.hub.Serve)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/kpis", s.handleKPIs)
		r.Get("/charts/{view}", s.handleChart)
	})
	return r
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	if rerr := render.Render(w, r, apperrors.NewResponse(err)); rerr != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if err := s.source.Refresh(); err != nil {
		s.renderError(w, r, err)
		return
	}
	kpis, err := s.source.KPIs()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.metrics.RecordKPIs(kpis)
	render.JSON(w, r, kpis)
}

// handleChart renders a go-echarts view as a standalone HTML document.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	if err := s.source.Refresh(); err != nil {
		s.renderError(w, r, err)
		return
	}

	var (
		path string
		err  error
	)
	switch view {
	case "bar":
		summary, serr := s.source.Summary()
		if serr != nil {
			s.renderError(w, r, serr)
			return
		}
		path, err = chart.Save(chart.GroupBar(summary, "Totals by Group"), s.tmpDir, "dashboard_bar.html")
	case "pie":
		summary, serr := s.source.Summary()
		if serr != nil {
			s.renderError(w, r, serr)
			return
		}
		path, err = chart.Save(chart.GroupPie(summary, "Share by Group"), s.tmpDir, "dashboard_pie.html")
	case "trend":
		series, serr := s.source.Series()
		if serr != nil {
			s.renderError(w, r, serr)
			return
		}
		path, err = chart.Save(chart.TrendLine(series, 3, "Monthly Trend"), s.tmpDir, "dashboard_trend.html")
	case "heatmap":
		series, serr := s.source.Series()
		if serr != nil {
			s.renderError(w, r, serr)
			return
		}
		path, err = chart.Save(chart.YearMonthHeatmap(series, "Monthly Heatmap"), s.tmpDir, "dashboard_heatmap.html")
	default:
		s.renderError(w, r, apperrors.NotFound(fmt.Sprintf("chart view %q", view)))
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, filepath.Clean(path))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>TaskNinja Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2rem; background: #fafafa; }
.kpis { display: flex; gap: 1rem; }
.kpi { background: #fff; border: 1px solid #ddd; border-radius: 8px; padding: 1rem 2rem; }
.kpi .value { font-size: 1.8rem; font-weight: bold; }
iframe { width: 100%; height: 480px; border: 1px solid #ddd; border-radius: 8px; margin-top: 1rem; background: #fff; }
nav a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>TaskNinja Dashboard</h1>
<div class="kpis">
  <div class="kpi"><div>Rows</div><div class="value" id="rows">-</div></div>
  <div class="kpi"><div>Total</div><div class="value" id="total">-</div></div>
  <div class="kpi"><div>Average</div><div class="value" id="average">-</div></div>
  <div class="kpi"><div>Top Group</div><div class="value" id="top">-</div></div>
</div>
<nav>
  <a href="#" onclick="show('bar')">Bar</a>
  <a href="#" onclick="show('pie')">Pie</a>
  <a href="#" onclick="show('trend')">Trend</a>
  <a href="#" onclick="show('heatmap')">Heatmap</a>
</nav>
<iframe id="chart" src="/api/charts/bar"></iframe>
<script>
function show(view) { document.getElementById('chart').src = '/api/charts/' + view; }
function apply(k) {
  document.getElementById('rows').textContent = k.rows;
  document.getElementById('total').textContent = k.total.toFixed(2);
  document.getElementById('average').textContent = k.average.toFixed(2);
  document.getElementById('top').textContent = k.top_group;
}
fetch('/api/kpis').then(r => r.json()).then(apply);
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = e => apply(JSON.parse(e.data));
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.logger.Error("failed to render index", slog.String("error", err.Error()))
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.source.Refresh(); err != nil {
		return fmt.Errorf("failed to load dashboard data: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	pushCtx, cancelPush := context.WithCancel(ctx)
	defer cancelPush()
	go s.hub.Run(pushCtx, s.source, s.cfg.KPIInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down dashboard")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
