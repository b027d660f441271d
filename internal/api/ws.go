package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // the server binds to localhost by default
	},
}

// WebSocket message types from client.
const (
	wsMsgLoad    = "load"
	wsMsgAnalyze = "analyze"
	wsMsgKeep    = "keep"
	wsMsgDrop    = "drop"
	wsMsgUndo    = "undo"
	wsMsgFinish  = "finish"
)

// WebSocket message types to client.
const (
	wsMsgClassified = "classified"
	wsMsgImpact     = "impact"
	wsMsgDecision   = "decision"
	wsMsgPlan       = "plan"
	wsMsgError      = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsLoad is the payload for "load" messages.
type wsLoad struct {
	caseInputs
	All bool `json:"all,omitempty"`
}

// wsDecisionMsg is the payload for keep/drop/undo messages.
type wsDecisionMsg struct {
	CaseID int64 `json:"case_id"`
}

// wsDecisionResponse confirms a decision.
type wsDecisionResponse struct {
	CaseID   int64  `json:"case_id"`
	Decision string `json:"decision"`
}

// triageSession holds the state of one WebSocket triage session.
type triageSession struct {
	conn      *websocket.Conn
	log       zerolog.Logger
	report    *analysis.Report
	decisions map[int64]model.Decision
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	session := &triageSession{conn: conn, log: s.log}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read")
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			session.sendError("invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgLoad:
			s.handleWSLoad(session, msg.Data)
		case wsMsgAnalyze:
			s.handleWSAnalyze(r, session, msg.Data)
		case wsMsgKeep:
			session.decide(msg.Data, model.DecisionKept)
		case wsMsgDrop:
			session.decide(msg.Data, model.DecisionDropped)
		case wsMsgUndo:
			session.decide(msg.Data, model.DecisionPending)
		case wsMsgFinish:
			session.finish()
		default:
			session.sendError("unknown message type: " + msg.Type)
		}
	}
}

func (s *Server) handleWSLoad(session *triageSession, data json.RawMessage) {
	var req wsLoad
	if err := json.Unmarshal(data, &req); err != nil {
		session.sendError("invalid load data")
		return
	}
	if err := req.validate(); err != nil {
		session.sendError(err.Error())
		return
	}
	session.start(s.build(req.caseInputs, req.All))
}

func (s *Server) handleWSAnalyze(r *http.Request, session *triageSession, data json.RawMessage) {
	if s.analyzer == nil {
		session.sendError("remote services are not configured")
		return
	}
	var req analysis.Request
	if err := json.Unmarshal(data, &req); err != nil {
		session.sendError("invalid analyze data")
		return
	}
	report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		session.sendError(err.Error())
		return
	}
	session.start(report)
}

// start replaces the session's report and clears its decisions.
func (t *triageSession) start(report *analysis.Report) {
	t.report = report
	t.decisions = make(map[int64]model.Decision)
	t.send(wsMsgClassified, newClassifyResponse(report.Classification))
	t.send(wsMsgImpact, report)
}

func (t *triageSession) decide(data json.RawMessage, d model.Decision) {
	if t.report == nil {
		t.sendError("no report loaded")
		return
	}

	var req wsDecisionMsg
	if err := json.Unmarshal(data, &req); err != nil {
		t.sendError("invalid decision data")
		return
	}
	if !t.recommended(req.CaseID) {
		t.sendError("case is not in the recommended set")
		return
	}

	if d == model.DecisionPending {
		delete(t.decisions, req.CaseID)
	} else {
		t.decisions[req.CaseID] = d
	}
	t.send(wsMsgDecision, wsDecisionResponse{CaseID: req.CaseID, Decision: d.String()})
}

func (t *triageSession) recommended(id int64) bool {
	for _, sc := range t.report.Recommended {
		if sc.Case.ID == id {
			return true
		}
	}
	return false
}

func (t *triageSession) finish() {
	if t.report == nil {
		t.sendError("no report loaded")
		return
	}
	t.send(wsMsgPlan, analysis.NewPlan(t.report.ID, t.report.Ticket.ID, t.report.Recommended, t.decisions))
}

func (t *triageSession) send(msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		t.log.Error().Err(err).Msg("ws marshal")
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := t.conn.WriteJSON(msg); err != nil {
		t.log.Warn().Err(err).Msg("ws write")
	}
}

func (t *triageSession) sendError(errMsg string) {
	t.send(wsMsgError, map[string]string{"message": errMsg})
}
