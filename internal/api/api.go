// Package api implements the testscope HTTP API server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/scoring"
)

// Analyzer runs a remote analysis. *analysis.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

// Server is the testscope HTTP API server.
type Server struct {
	addr     string
	mux      *http.ServeMux
	server   *http.Server
	table    *component.Table
	vocab    *scoring.Vocabulary
	options  analysis.Options
	analyzer Analyzer
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTable sets the traceability table. The default is component.Default.
func WithTable(t *component.Table) Option {
	return func(s *Server) { s.table = t }
}

// WithVocabulary sets the scoring vocabulary.
func WithVocabulary(v *scoring.Vocabulary) Option {
	return func(s *Server) { s.vocab = v }
}

// WithOptions sets the options reports are built with.
func WithOptions(o analysis.Options) Option {
	return func(s *Server) { s.options = o }
}

// WithAnalyzer enables /api/analyze and the websocket "analyze" message.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Server) { s.analyzer = a }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a new API server.
func New(addr string, opts ...Option) *Server {
	s := &Server{addr: addr, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == nil {
		s.table = component.Default()
	}
	if s.vocab == nil {
		s.vocab = scoring.DefaultVocabulary()
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/classify", s.handleClassify)
	s.mux.HandleFunc("POST /api/impact", s.handleImpact)
	s.mux.HandleFunc("POST /api/score", s.handleScore)
	s.mux.HandleFunc("POST /api/regression", s.handleRegression)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.addr).Bool("remote", s.analyzer != nil).Msg("testscope API server listening")
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Error().Err(err).Msg("json encode error")
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
