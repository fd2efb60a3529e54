// Package dashboard serves the filterable charts over HTTP.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jgoulah/netdash/internal/analysis"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/internal/telemetry"
	"github.com/jgoulah/netdash/pkg/models"
)

const (
	// rankingSize is the number of countries in each ranking chart
	rankingSize = 10
	// tableLimit caps the rows rendered in the home page table
	tableLimit = 500
	// preferredCountry is selected on the country page when present
	preferredCountry = "United States"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// errBadRequest marks request errors that map to 400
var errBadRequest = errors.New("bad request")

// Server renders the dashboard from a read-only query engine
type Server struct {
	engine *query.Engine
	logger *log.Logger
}

// NewServer creates a dashboard server. A nil logger uses log.Default().
func NewServer(engine *query.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Handler returns the dashboard routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /country", s.handleCountry)
	mux.HandleFunc("GET /compare", s.handleCompare)
	mux.HandleFunc("GET /ranking", s.handleRanking)
	mux.HandleFunc("GET /economy", s.handleEconomy)
	mux.HandleFunc("GET /regions", s.handleRegions)
	mux.HandleFunc("GET /correlations", s.handleCorrelations)

	mux.HandleFunc("GET /charts/trend.svg", s.handleTrendChart)
	mux.HandleFunc("GET /charts/growth.svg", s.handleGrowthChart)
	mux.HandleFunc("GET /charts/country.svg", s.handleCountryChart)
	mux.HandleFunc("GET /charts/compare.svg", s.handleCompareChart)
	mux.HandleFunc("GET /charts/ranking-top.svg", s.handleRankingChart(true))
	mux.HandleFunc("GET /charts/ranking-bottom.svg", s.handleRankingChart(false))
	mux.HandleFunc("GET /charts/scatter.svg", s.handleScatterChart)
	mux.HandleFunc("GET /charts/regions.svg", s.handleRegionsChart)

	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// rows parses the filter from the request and runs it inside a span
func (s *Server) rows(r *http.Request) (query.Filter, []models.JoinedRecord, error) {
	f, err := s.parseFilter(r)
	if err != nil {
		return f, nil, err
	}

	_, span := telemetry.Tracer().Start(r.Context(), "dashboard.query",
		trace.WithAttributes(
			attribute.String("netdash.region", f.Region),
			attribute.Int("netdash.start_year", f.StartYear),
			attribute.Int("netdash.end_year", f.EndYear),
		))
	defer span.End()

	rows, err := s.engine.Query(f)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, query.ErrUnknownRegion) {
			return f, nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return f, nil, err
	}
	span.SetAttributes(attribute.Int("netdash.rows", len(rows)))
	return f, rows, nil
}

// parseFilter reads region, start and end, defaulting to every region and
// the full year range
func (s *Server) parseFilter(r *http.Request) (query.Filter, error) {
	f := s.engine.DefaultFilter()
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("region")); v != "" {
		f.Region = v
	}

	var err error
	if f.StartYear, err = intParam(r, "start", f.StartYear); err != nil {
		return f, err
	}
	if f.EndYear, err = intParam(r, "end", f.EndYear); err != nil {
		return f, err
	}
	return f, nil
}

// selectedYear returns the year parameter, defaulting to the latest year in rows
func selectedYear(r *http.Request, rows []models.JoinedRecord) (int, error) {
	latest := 0
	if years := analysis.Years(rows); len(years) > 0 {
		latest = years[len(years)-1]
	}
	return intParam(r, "year", latest)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, v)
	}
	return n, nil
}

// fail writes an error response, logging anything that is not the caller's fault
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// ListenAndServe serves the dashboard on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down dashboard: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving dashboard: %w", err)
	}
}
