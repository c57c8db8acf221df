// Package audit is the append-only trail of everything the advisor does:
// model calls, tool calls, chat turns, webhooks and every profile
// calculation with its full explanation.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// Type classifies an audit record.
type Type string

// Record types.
const (
	TypeLLMCall            Type = "llm_call"
	TypeProfileCalculation Type = "profile_calculation"
	TypeTextChat           Type = "text_chat"
	TypeToolCall           Type = "text_chat_tool_call"
	TypeVoiceWebhook       Type = "voice_webhook"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is one audit entry. Summary fields are denormalised for listing;
// Payload carries the type-specific body (for profile calculations, the
// complete Result).
type Record struct {
	ID                string          `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	Type              Type            `json:"type"`
	SessionID         string          `json:"session_id,omitempty"`
	Model             string          `json:"model,omitempty"`
	Profile           string          `json:"profile,omitempty"`
	Score             int             `json:"score,omitempty"`
	RestrictionsCount int             `json:"restrictions_count,omitempty"`
	Status            string          `json:"status,omitempty"`
	Error             string          `json:"error,omitempty"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}

// New returns a record of the given type stamped with a fresh id and the
// current UTC time.
func New(typ Type, sessionID string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		SessionID: sessionID,
	}
}

// WithPayload returns r with v encoded as its payload. Encoding failures are
// recorded in Error rather than dropping the record.
func (r Record) WithPayload(v any) Record {
	data, err := json.Marshal(v)
	if err != nil {
		r.Error = "payload: " + err.Error()
		return r
	}
	r.Payload = data
	return r
}

// ProfileCalculation builds the record written for every assessment.
func ProfileCalculation(sessionID string, res model.Result) Record {
	r := New(TypeProfileCalculation, sessionID)
	r.Profile = res.Profile
	r.Score = res.TotalScore
	r.RestrictionsCount = len(res.Explanation.Restrictions)
	r.Status = StatusSuccess
	return r.WithPayload(res)
}

// Result decodes the payload of a profile calculation record.
func (r Record) Result() (model.Result, bool) {
	var res model.Result
	if r.Type != TypeProfileCalculation || len(r.Payload) == 0 {
		return res, false
	}
	if err := json.Unmarshal(r.Payload, &res); err != nil {
		return res, false
	}
	return res, true
}
