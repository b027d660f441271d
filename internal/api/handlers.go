package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/classify"
	"github.com/sprite-ai/testscope/internal/diff"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/testrepo"
	"github.com/sprite-ai/testscope/internal/upstream"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "remote": s.analyzer != nil})
}

// caseInputs is the offline input of impact and regression requests.
// Sections, when given, rebuild the cases' section paths from section_id.
type caseInputs struct {
	Ticket    model.Ticket        `json:"ticket"`
	Change    diff.ChangeDocument `json:"change"`
	Inventory []model.TestCase    `json:"inventory"`
	Sections  []testrepo.Section  `json:"sections,omitempty"`
}

func (in caseInputs) validate() error {
	if in.Ticket.ID == "" {
		return errors.New("ticket.id is required")
	}
	return nil
}

func (in caseInputs) inventory() []model.TestCase {
	if len(in.Sections) == 0 {
		return in.Inventory
	}
	return testrepo.AttachSectionPaths(in.Inventory, in.Sections)
}

// --- Classify ---

type classifyRequest struct {
	classify.Metrics
	Change *diff.ChangeDocument `json:"change,omitempty"`
}

type classifyResponse struct {
	classify.Classification
	MaxTestCases int           `json:"max_test_cases"`
	Size         classify.Size `json:"size"`
}

func newClassifyResponse(c classify.Classification) classifyResponse {
	return classifyResponse{
		Classification: c,
		MaxTestCases:   c.MaxTestCases(),
		Size:           classify.SizeFor(c.Metrics.FilesChanged),
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	m := req.Metrics
	if req.Change != nil {
		m = classify.MetricsFor(req.Change.ChangeRequest(), s.vocab)
	}
	if m.FilesChanged < 0 || m.SharedComponentsTouched < 0 || m.TotalLinesChanged < 0 {
		s.writeError(w, http.StatusBadRequest, "metrics must not be negative")
		return
	}

	s.writeJSON(w, http.StatusOK, newClassifyResponse(analysis.ClassifyChange(m)))
}

// --- Impact ---

type impactRequest struct {
	caseInputs
	All bool `json:"all,omitempty"`
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, s.build(req.caseInputs, req.All))
}

func (s *Server) build(in caseInputs, all bool) *analysis.Report {
	opts := s.options
	opts.All = opts.All || all
	return analysis.Build(in.Ticket, in.Change.ChangeRequest(), in.inventory(), s.table, s.vocab, opts)
}

// --- Score ---

type scoreRequest struct {
	Ticket   model.Ticket        `json:"ticket"`
	Change   diff.ChangeDocument `json:"change"`
	TestCase model.TestCase      `json:"test_case"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.TestCase.Title == "" {
		s.writeError(w, http.StatusBadRequest, "test_case.title is required")
		return
	}

	sc := analysis.ScoreForRelevance(req.TestCase, req.Change.ChangeRequest(), req.Ticket, s.table, s.vocab)
	s.writeJSON(w, http.StatusOK, sc)
}

// --- Regression ---

type regressionRequest struct {
	caseInputs
	Limit int `json:"limit,omitempty"`
}

type regressionResponse struct {
	Total int                    `json:"total"`
	Cases []model.ScoredTestCase `json:"cases"`
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	var req regressionRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inventory := req.inventory()
	cases := analysis.RegressionCandidates(req.Ticket, req.Change.ChangeRequest(), inventory, s.table, s.vocab, req.Limit)
	s.writeJSON(w, http.StatusOK, regressionResponse{Total: len(inventory), Cases: cases})
}

// --- Analyze ---

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "remote services are not configured")
		return
	}

	var req analysis.Request
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.TicketID == "" {
		s.writeError(w, http.StatusBadRequest, "ticket is required")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		s.log.Warn().Err(err).Str("ticket", req.TicketID).Int("status", status).Msg("analysis failed")
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// statusFor maps an analysis error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrNoLinkedChange), upstream.IsNotFound(err):
		return http.StatusNotFound
	case upstream.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
