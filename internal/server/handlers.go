package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/advisor"
	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
)

const (
	auditListLimit  = 50
	defaultLogsLast = 100
	maxBodyBytes    = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON object body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var entries int
	if s.audit != nil {
		n, err := s.audit.Count(r.Context())
		if err != nil {
			zap.L().Warn("server: count audit entries", zap.Error(err))
		}
		entries = n
	}
	var modelID string
	if s.chat != nil {
		modelID = s.chat.Model()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"time":            s.now().UTC().Format(time.RFC3339),
		"model":           modelID,
		"audit_entries":   entries,
		"active_sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCalculateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers   json.RawMessage `json:"answers"`
		SessionID string          `json:"session_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers, err := model.ParseAnswers(body.Answers)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "Invalid answers JSON",
			"received": received(body.Answers),
		})
		return
	}

	res := advisor.Assess(r.Context(), s.audit, body.SessionID, answers)
	writeJSON(w, http.StatusOK, res)
}

// received echoes the rejected answers payload: the decoded string when it
// was a JSON string, otherwise the raw value.
func received(raw json.RawMessage) any {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return raw
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.chat.Chat(r.Context(), sessionID, body.Message)
	if errors.Is(err, advisor.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if err != nil {
		zap.L().Error("server: chat", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hist, ok := s.sessions.History(chi.URLParam(r, "sessionID"))
	if !ok || hist == nil {
		writeJSON(w, http.StatusOK, map[string]any{"history": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": hist})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	ids := s.sessions.IDs()
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids, "count": len(ids)})
}

func (s *Server) handleVoiceWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ConversationID string `json:"conversation_id"`
		Transcript     any    `json:"transcript"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := body.ConversationID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	rec := audit.New(audit.TypeVoiceWebhook, sessionID)
	rec.Status = audit.StatusSuccess
	rec = rec.WithPayload(map[string]int{"transcript_length": transcriptLength(body.Transcript)})
	if err := s.audit.Append(r.Context(), rec); err != nil {
		zap.L().Error("server: audit webhook", zap.Error(err))
	}

	zap.L().Info("post-call webhook received", zap.String("session_id", sessionID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "received", "session_id": sessionID})
}

// transcriptLength is the length of a plain-text transcript, or the number of
// turns when the transcript is a list.
func transcriptLength(t any) int {
	switch v := t.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	default:
		return 0
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := s.audit.Count(ctx)
	if err != nil {
		s.auditFailure(w, err)
		return
	}
	recs, err := s.audit.Tail(ctx, auditListLimit)
	if err != nil {
		s.auditFailure(w, err)
		return
	}
	var modelID string
	if s.chat != nil {
		modelID = s.chat.Model()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_entries": total,
		"model":         modelID,
		"entries":       nonNil(recs),
	})
}

func (s *Server) handleAuditProfiles(w http.ResponseWriter, r *http.Request) {
	recs, err := s.audit.ByType(r.Context(), audit.TypeProfileCalculation, 0)
	if err != nil {
		s.auditFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(recs), "calculations": nonNil(recs)})
}

func (s *Server) handleLatestProfile(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := audit.Latest(r.Context(), s.audit, audit.TypeProfileCalculation)
	if err != nil {
		s.auditFailure(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No profiles calculated yet"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	last := defaultLogsLast
	if v := r.URL.Query().Get("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "last must be a non-negative integer")
			return
		}
		last = n
	}

	ctx := r.Context()
	total, err := s.audit.Count(ctx)
	if err != nil {
		s.auditFailure(w, err)
		return
	}
	var recs []audit.Record
	if last > 0 {
		if recs, err = s.audit.Tail(ctx, last); err != nil {
			s.auditFailure(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_lines": total,
		"returned":    len(recs),
		"log_file":    s.opts.LogSource,
		"entries":     nonNil(recs),
	})
}

func (s *Server) auditFailure(w http.ResponseWriter, err error) {
	zap.L().Error("server: read audit log", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "audit log unavailable")
}

func nonNil(recs []audit.Record) []audit.Record {
	if recs == nil {
		return []audit.Record{}
	}
	return recs
}
