package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// QuestionKey identifies a questionnaire item as "p{block}_{question}".
type QuestionKey string

// Personal details (block 1, unscored).
const (
	KeyAge        QuestionKey = "p1_1"
	KeyEmployment QuestionKey = "p1_2"
	KeyDependents QuestionKey = "p1_3"
)

// Financial situation (block 2).
const (
	KeyIncome         QuestionKey = "p2_1"
	KeyAssets         QuestionKey = "p2_2"
	KeyExpenseRatio   QuestionKey = "p2_3"
	KeyEmergencyFund  QuestionKey = "p2_4"
	KeyOutstandingDbt QuestionKey = "p2_5"
)

// Knowledge and experience (block 3).
const (
	KeyEducation       QuestionKey = "p3_1"
	KeyProductsTraded  QuestionKey = "p3_2"
	KeyTradeFrequency  QuestionKey = "p3_3"
	KeyEquityRisk      QuestionKey = "p3_4"
	KeyDiversification QuestionKey = "p3_5"
)

// Investment objectives (block 4).
const (
	KeyObjective      QuestionKey = "p4_1"
	KeyHorizon        QuestionKey = "p4_2"
	KeyShareInvested  QuestionKey = "p4_3"
	KeyExpectedReturn QuestionKey = "p4_4"
	KeyLiquidity      QuestionKey = "p4_5"
)

// Risk tolerance (block 5).
const (
	KeyDrawdownReaction QuestionKey = "p5_1"
	KeyMaxLoss          QuestionKey = "p5_2"
	KeyFluctuation      QuestionKey = "p5_3"
	KeyRiskPreference   QuestionKey = "p5_4"
)

// Sustainability (block 6).
const (
	KeyESGPreference QuestionKey = "p6_1"
	KeyESGType       QuestionKey = "p6_2"
	KeyESGMinimum    QuestionKey = "p6_3"
)

// ClampIndex bounds a raw option index to [0, n-1]. Missing, negative and
// out-of-range client input is absorbed here instead of being rejected, so a
// garbled conversation still produces a complete assessment.
func ClampIndex(idx, n int) int {
	if n <= 0 || idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// AnswerSet maps question keys to 0-based option indices. It is immutable
// once built; absent keys read as index 0.
type AnswerSet struct {
	values map[QuestionKey]int
}

// NewAnswerSet copies values into a new AnswerSet.
func NewAnswerSet(values map[QuestionKey]int) AnswerSet {
	cp := make(map[QuestionKey]int, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return AnswerSet{values: cp}
}

// Index returns the raw index recorded for key, or 0 when absent.
func (a AnswerSet) Index(key QuestionKey) int {
	return a.values[key]
}

// Len returns the number of answered questions.
func (a AnswerSet) Len() int {
	return len(a.values)
}

// Raw returns a copy of the recorded answers keyed by plain strings.
func (a AnswerSet) Raw() map[string]int {
	out := make(map[string]int, len(a.values))
	for k, v := range a.values {
		out[string(k)] = v
	}
	return out
}

// MarshalJSON encodes the set as a flat object of raw indices.
func (a AnswerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Raw())
}

// UnmarshalJSON decodes leniently; see ParseAnswers.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAnswers(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAnswers decodes an answer payload. The payload may be a JSON object or
// a JSON string containing one (as emitted by tool-calling models). Values
// that are null or not numeric are dropped and read as 0; fractional numbers
// are truncated; numeric strings are accepted. Only a payload that is not an
// object at all is an error.
func ParseAnswers(data []byte) (AnswerSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return NewAnswerSet(nil), nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return AnswerSet{}, eris.Wrap(err, "answers: decode string payload")
		}
		return ParseAnswers([]byte(inner))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return AnswerSet{}, eris.Wrap(err, "answers: invalid answers JSON")
	}

	values := make(map[QuestionKey]int, len(raw))
	for k, v := range raw {
		idx, ok := coerceIndex(v)
		if !ok {
			continue
		}
		values[QuestionKey(strings.TrimSpace(k))] = idx
	}
	return AnswerSet{values: values}, nil
}

func coerceIndex(v json.RawMessage) (int, bool) {
	var x any
	if err := json.Unmarshal(v, &x); err != nil {
		return 0, false
	}
	switch t := x.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return truncIndex(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return truncIndex(f), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// maxRawIndex bounds decoded indices so float conversion never overflows.
const maxRawIndex = 1 << 20

func truncIndex(f float64) int {
	switch {
	case f > maxRawIndex:
		return maxRawIndex
	case f < -maxRawIndex:
		return -maxRawIndex
	}
	return int(f)
}
