package advisor

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/scorer"
	"github.com/sells-group/mifid-advisor/pkg/anthropic"
)

// ToolCalculateProfile is the name of the scoring tool offered to the model.
const ToolCalculateProfile = "calculate_profile"

const toolDescription = "Calculate the MiFID II investor profile once all questionnaire answers have been collected. " +
	"Returns the profile, score, allocation, example ETFs, restrictions applied and a portfolio_summary to show the client."

// CalculateProfileTool declares calculate_profile for the Messages API.
func CalculateProfileTool() anthropic.Tool {
	return anthropic.Tool{
		Name:        ToolCalculateProfile,
		Description: toolDescription,
		Properties: map[string]any{
			"answers": map[string]any{
				"type":        []string{"object", "string"},
				"description": `Answers keyed "p1_1".."p6_3", each the 0-based index of the chosen option. May be an object or a JSON string.`,
			},
		},
		Required: []string{"answers"},
	}
}

// Assess scores answers, appends a profile_calculation record to sink and
// logs the outcome. A failed audit append is logged and does not fail the
// assessment.
func Assess(ctx context.Context, sink audit.Sink, sessionID string, answers model.AnswerSet) model.Result {
	res := scorer.Compute(answers)

	zap.L().Info("profile calculated",
		zap.String("session_id", sessionID),
		zap.String("profile", res.Profile),
		zap.String("score", res.Score),
		zap.Int("restrictions", len(res.Explanation.Restrictions)),
	)

	if sink != nil {
		if err := sink.Append(ctx, audit.ProfileCalculation(sessionID, res)); err != nil {
			zap.L().Error("advisor: audit profile calculation", zap.Error(err))
		}
	}
	return res
}

// ToolOutcome is the result of executing one tool call.
type ToolOutcome struct {
	Content string
	IsError bool
	Result  *model.Result
}

// ExtractAnswers pulls the answer set out of calculate_profile input. The
// input normally wraps the answers in an "answers" field (object or JSON
// string); a bare object of question keys is accepted too.
func ExtractAnswers(input json.RawMessage) (model.AnswerSet, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(input, &wrapper); err == nil {
		if raw, ok := wrapper["answers"]; ok {
			return model.ParseAnswers(raw)
		}
		for k := range wrapper {
			if strings.HasPrefix(k, "p") {
				return model.ParseAnswers(input)
			}
		}
		return model.NewAnswerSet(nil), nil
	}
	return model.ParseAnswers(input)
}

// ExecuteTool runs a tool call by name. Failures are reported back to the
// model as an error payload rather than returned.
func ExecuteTool(ctx context.Context, sink audit.Sink, sessionID, name string, input json.RawMessage) ToolOutcome {
	if name != ToolCalculateProfile {
		return errorOutcome("Unknown tool: " + name)
	}

	answers, err := ExtractAnswers(input)
	if err != nil {
		zap.L().Warn("advisor: invalid tool answers", zap.String("session_id", sessionID), zap.Error(err))
		return errorOutcome("Invalid JSON in answers")
	}

	res := Assess(ctx, sink, sessionID, answers)
	data, err := json.Marshal(res)
	if err != nil {
		return errorOutcome("encode result: " + err.Error())
	}
	return ToolOutcome{Content: string(data), Result: &res}
}

func errorOutcome(msg string) ToolOutcome {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return ToolOutcome{Content: string(data), IsError: true}
}
