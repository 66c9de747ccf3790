package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/version"
)

// Analysis kinds used as metric labels.
const (
	kindProducts   = "products"
	kindServices   = "services"
	kindRealEstate = "realestate"
)

// SnapshotSource returns the dataset to analyse, or nil when none is loaded.
type SnapshotSource interface {
	Load() *dataset.Dataset
}

// Defaults fill query parameters the client leaves out.
type Defaults struct {
	ShippingPct float64
	VATPct      float64
	TopN        int
	Analysis    analysis.Options
}

// Server exposes the analyses over HTTP.
type Server struct {
	snapshot SnapshotSource
	defaults Defaults
	metrics  *Metrics
	logger   zerolog.Logger
}

// New constructs the API server. metrics may be nil.
func New(snapshot SnapshotSource, defaults Defaults, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{
		snapshot: snapshot,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger.With().Str("component", "httpapi").Logger(),
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/products", s.products)
		r.Get("/services", s.services)
		r.Get("/realestate", s.realEstate)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": version.Version,
	}
	ds := s.snapshot.Load()
	if ds == nil {
		body["status"] = "loading"
		render.Status(r, http.StatusServiceUnavailable)
	} else {
		body["source"] = ds.Source
		body["loaded_at"] = ds.LoadedAt
		body["rows"] = ds.Rows()
	}
	render.JSON(w, r, body)
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details := make(map[string]string)
	params := analysis.ProductParams{
		Query:       q.Get("q"),
		ShippingPct: floatParam(q.Get("shipping"), s.defaults.ShippingPct, "shipping", details),
		VATPct:      floatParam(q.Get("vat"), s.defaults.VATPct, "vat", details),
		TopN:        intParam(q.Get("top"), s.defaults.TopN, "top", details),
	}
	s.serveAnalysis(w, r, kindProducts, params, details, func(ds *dataset.Dataset) (any, error) {
		return analysis.AnalyzeProducts(ds, params, s.defaults.Analysis)
	})
}

func (s *Server) services(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details := make(map[string]string)
	params := analysis.ServiceParams{
		Query: q.Get("q"),
		TopN:  intParam(q.Get("top"), s.defaults.TopN, "top", details),
	}
	s.serveAnalysis(w, r, kindServices, params, details, func(ds *dataset.Dataset) (any, error) {
		return analysis.AnalyzeServices(ds, params, s.defaults.Analysis)
	})
}

func (s *Server) realEstate(w http.ResponseWriter, r *http.Request) {
	details := make(map[string]string)
	params := analysis.RealEstateParams{
		TopN: intParam(r.URL.Query().Get("top"), s.defaults.TopN, "top", details),
	}
	s.serveAnalysis(w, r, kindRealEstate, params, details, func(ds *dataset.Dataset) (any, error) {
		return analysis.AnalyzeRealEstate(ds, params, s.defaults.Analysis)
	})
}

// serveAnalysis validates params, runs fn against the current snapshot and renders the outcome.
func (s *Server) serveAnalysis(w http.ResponseWriter, r *http.Request, kind string, params any, details map[string]string, fn func(*dataset.Dataset) (any, error)) {
	start := time.Now()
	if len(details) > 0 {
		s.metrics.ObserveAnalysis(kind, outcomeClientError, time.Since(start))
		_ = render.Render(w, r, errInvalidParams(details))
		return
	}
	if err := analysis.Validate(params); err != nil {
		s.metrics.ObserveAnalysis(kind, outcomeClientError, time.Since(start))
		_ = render.Render(w, r, errInvalidParams(validationDetails(err)))
		return
	}

	ds := s.snapshot.Load()
	if ds == nil {
		_ = render.Render(w, r, errNotReady())
		return
	}

	res, err := fn(ds)
	if err != nil {
		resp, outcome := errFromAnalysis(err)
		s.metrics.ObserveAnalysis(kind, outcome, time.Since(start))
		s.logger.Warn().Err(err).Str("kind", kind).Str("request_id", middleware.GetReqID(r.Context())).Msg("analysis failed")
		_ = render.Render(w, r, resp)
		return
	}

	s.metrics.ObserveAnalysis(kind, outcomeOK, time.Since(start))
	render.JSON(w, r, res)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request served")
	})
}

func floatParam(raw string, fallback float64, name string, details map[string]string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		details[name] = "must be a number"
		return fallback
	}
	return v
}

func intParam(raw string, fallback int, name string, details map[string]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		details[name] = "must be an integer"
		return fallback
	}
	return v
}
