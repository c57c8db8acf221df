// Package mcptool exposes the scoring engine to MCP clients over stdio.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sells-group/mifid-advisor/internal/advisor"
	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/scorer"
)

// Version is reported to MCP clients.
var Version = "dev"

const instructions = "MiFID II suitability scoring. Call get_questionnaire for the question keys and " +
	"0-based option indices, collect one answer per key, then call calculate_profile."

// New creates the MCP server with every tool registered. sink may be nil.
func New(sink audit.Sink) *server.MCPServer {
	s := server.NewMCPServer(
		"mifid-advisor",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	calc := NewCalculateTool(sink)
	s.AddTool(calc.Definition(), calc.Handle)

	q := &QuestionnaireTool{}
	s.AddTool(q.Definition(), q.Handle)

	return s
}

// CalculateTool handles calculate_profile.
type CalculateTool struct {
	sink audit.Sink
}

// NewCalculateTool creates a CalculateTool that audits to sink.
func NewCalculateTool(sink audit.Sink) *CalculateTool {
	return &CalculateTool{sink: sink}
}

// Definition returns the MCP tool definition for calculate_profile.
func (t *CalculateTool) Definition() mcp.Tool {
	return mcp.NewTool(advisor.ToolCalculateProfile,
		mcp.WithDescription(
			"Score a completed MiFID II suitability questionnaire. Returns the profile, score, "+
				"allocation, example ETFs, the full explanation and a markdown portfolio_summary.",
		),
		mcp.WithString("answers",
			mcp.Required(),
			mcp.Description(`JSON object of answers keyed "p1_1".."p6_3", each a 0-based option index.`),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional id recorded with the audit entry"),
		),
	)
}

// Handle processes the calculate_profile tool call.
func (t *CalculateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["answers"]
	if !ok || raw == nil {
		return mcp.NewToolResultError("'answers' is required"), nil
	}

	// Clients may send the answers as a JSON string or inline as an object.
	var payload []byte
	if str, isStr := raw.(string); isStr {
		payload = []byte(str)
	} else {
		data, err := json.Marshal(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid answers: %v", err)), nil
		}
		payload = data
	}

	answers, err := model.ParseAnswers(payload)
	if err != nil {
		return mcp.NewToolResultError("Invalid JSON in answers"), nil
	}

	res := advisor.Assess(ctx, t.sink, req.GetString("session_id", ""), answers)
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// QuestionnaireTool handles get_questionnaire.
type QuestionnaireTool struct{}

// Definition returns the MCP tool definition for get_questionnaire.
func (t *QuestionnaireTool) Definition() mcp.Tool {
	return mcp.NewTool("get_questionnaire",
		mcp.WithDescription("List the questionnaire blocks, question keys and options in the order they are asked."),
	)
}

// Handle returns the question catalog as JSON.
func (t *QuestionnaireTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(scorer.Catalog(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode catalog: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
