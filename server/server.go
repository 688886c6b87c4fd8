// Package server exposes a simulated repository over HTTP, as an OAI-PMH
// base URL plus an index page, health check and metrics.
package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var (
	xmlContentType = "application/xml; charset=utf-8"
	formMediaType  = contenttype.NewMediaType("application/x-www-form-urlencoded")
)

// Options configure a Server.
type Options struct {
	// Path of the OAI-PMH base URL on this server, e.g. /oai.
	Path string
	// BaseURL as reported in responses.
	BaseURL string
	// NoPost disables POST requests (part of OAI-PMH v2).
	NoPost bool
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Registry for metrics, a new registry if nil.
	Registry *prometheus.Registry
	// Now for responseDate, time.Now if nil.
	Now func() time.Time
}

// Server answers OAI-PMH requests. The repository can be replaced while
// serving; each request works on the repository current at its start.
type Server struct {
	repo    atomic.Pointer[oaisim.Repository]
	engine  oaisim.Engine
	opts    Options
	log     *zap.Logger
	metrics *metrics
	handler http.Handler
}

// New creates a server for repo.
func New(repo *oaisim.Repository, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/oai"
	}
	if !strings.HasPrefix(opts.Path, "/") {
		opts.Path = "/" + opts.Path
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		engine:  oaisim.Engine{BaseURL: opts.BaseURL, Now: opts.Now},
		opts:    opts,
		log:     opts.Logger,
		metrics: newMetrics(opts.Registry),
	}
	s.repo.Store(repo)

	mux := http.NewServeMux()
	mux.HandleFunc(opts.Path, s.handleOAI)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", s.handleIndex)
	s.handler = s.accessLog(mux)
	return s
}

// Repository returns the repository currently served.
func (s *Server) Repository() *oaisim.Repository {
	return s.repo.Load()
}

// Swap replaces the repository for all subsequent requests.
func (s *Server) Swap(repo *oaisim.Repository) {
	s.repo.Store(repo)
	s.metrics.reloads.Inc()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type accessKey struct{}

// access is filled in by the OAI handler for the access log line.
type access struct {
	verb, code string
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := &access{}
		r = r.WithContext(context.WithValue(r.Context(), accessKey{}, a))
		m := httpsnoop.CaptureMetrics(next, w, r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		}
		if a.verb != "" {
			fields = append(fields, zap.String("verb", a.verb), zap.String("code", a.code))
		}
		fields = append(fields,
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("dur", m.Duration))
		s.log.Info("http request", fields...)
	})
}

func (s *Server) handleOAI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var params url.Values
	switch r.Method {
	case http.MethodGet:
		params = r.URL.Query()
	case http.MethodPost:
		if s.opts.NoPost {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "POST not supported", http.StatusMethodNotAllowed)
			return
		}
		ctype, err := contenttype.GetMediaType(r)
		if err != nil || !formMediaType.Matches(ctype) {
			http.Error(w, "POST body must be "+formMediaType.String(), http.StatusUnsupportedMediaType)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		params = r.PostForm
	default:
		w.Header().Set("Allow", s.allowed())
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := s.engine.Handle(s.Repository(), params)
	if err != nil {
		s.log.Error("response serialization failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	code := res.Code()
	if code == "" {
		code = "ok"
	}
	verb := res.Verb
	if verb == "" {
		verb = "none"
	}
	s.metrics.requests.WithLabelValues(verb, code).Inc()
	s.metrics.duration.WithLabelValues(verb).Observe(time.Since(start).Seconds())
	if a, ok := r.Context().Value(accessKey{}).(*access); ok {
		a.verb, a.code = verb, code
	}

	w.Header().Set("Content-Type", xmlContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Body); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *Server) allowed() string {
	if s.opts.NoPost {
		return http.MethodGet
	}
	return http.MethodGet + ", " + http.MethodPost
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
