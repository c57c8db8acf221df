package anthropic

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageResponse_TextAndToolCalls(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: BlockText, Text: "Let me score that."},
			{Type: BlockToolUse, ID: "toolu_1", Name: "calculate_profile", Input: json.RawMessage(`{"answers":{}}`)},
			{Type: BlockText, Text: ""},
			{Type: BlockText, Text: "Done."},
		},
	}

	assert.Equal(t, "Let me score that.\nDone.", resp.Text())
	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "toolu_1", calls[0].ID)
	assert.Equal(t, "calculate_profile", calls[0].Name)
}

func TestMessageResponse_NoContent(t *testing.T) {
	resp := &MessageResponse{}
	assert.Empty(t, resp.Text())
	assert.Empty(t, resp.ToolCalls())
}

func TestSDKTypeConversion_toSDKMessages(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Blocks: []ContentBlock{
			{Type: BlockText, Text: "Scoring"},
			{Type: BlockToolUse, ID: "toolu_1", Name: "calculate_profile"},
		}},
		{Role: "user", Blocks: []ContentBlock{
			{Type: BlockToolResult, ToolUseID: "toolu_1", Text: `{"profile":"Moderate"}`},
		}},
	}

	sdkMsgs := toSDKMessages(msgs)
	require.Len(t, sdkMsgs, 3)
	require.Len(t, sdkMsgs[1].Content, 2)
	require.NotNil(t, sdkMsgs[1].Content[1].OfToolUse)
	assert.Equal(t, "toolu_1", sdkMsgs[1].Content[1].OfToolUse.ID)
	require.NotNil(t, sdkMsgs[2].Content[0].OfToolResult)
	assert.Equal(t, "toolu_1", sdkMsgs[2].Content[0].OfToolResult.ToolUseID)
}

func TestSDKTypeConversion_toSDKSystemBlocks(t *testing.T) {
	blocks := []SystemBlock{
		{Text: "You are a suitability assistant."},
		{Text: "Questionnaire here.", CacheControl: &CacheControl{TTL: "5m"}},
	}

	sdkBlocks := toSDKSystemBlocks(blocks)
	require.Len(t, sdkBlocks, 2)
	assert.Equal(t, "You are a suitability assistant.", sdkBlocks[0].Text)
	assert.Equal(t, "Questionnaire here.", sdkBlocks[1].Text)
}

func TestSDKTypeConversion_toSDKTools(t *testing.T) {
	tools := toSDKTools([]Tool{{
		Name:        "calculate_profile",
		Description: "Score a questionnaire",
		Properties:  map[string]any{"answers": map[string]any{"type": "object"}},
		Required:    []string{"answers"},
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "calculate_profile", tools[0].OfTool.Name)
	assert.Equal(t, []string{"answers"}, tools[0].OfTool.InputSchema.Required)
}

func TestTokenUsage_Add(t *testing.T) {
	a := TokenUsage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 1}
	b := TokenUsage{InputTokens: 3, OutputTokens: 2, CacheCreationInputTokens: 7}
	assert.Equal(t, TokenUsage{
		InputTokens:              13,
		OutputTokens:             7,
		CacheCreationInputTokens: 7,
		CacheReadInputTokens:     1,
	}, a.Add(b))
}

func TestEstimateCost(t *testing.T) {
	million := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	tests := []struct {
		name  string
		usage TokenUsage
		model string
		want  float64
	}{
		{"haiku", million, "claude-haiku-4-5-20251001", 6.00},
		{"sonnet", million, "claude-sonnet-4-5-20250929", 18.00},
		{"opus", million, "claude-opus-4-6", 90.00},
		{"unknown model", million, "unknown-model", 0},
		{"zero tokens", TokenUsage{}, "claude-haiku-4-5-20251001", 0},
		{
			// 0.5 + 0.5 + 0.2*1.25 + 0.3*0.1
			"with cache",
			TokenUsage{InputTokens: 500_000, OutputTokens: 100_000, CacheCreationInputTokens: 200_000, CacheReadInputTokens: 300_000},
			"claude-haiku-4-5-20251001",
			1.28,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.usage.EstimateCost(tt.model), 0.001)
		})
	}
}

func TestLogCost_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		TokenUsage{InputTokens: 100, OutputTokens: 50}.LogCost("claude-haiku-4-5-20251001", "chat")
		TokenUsage{}.LogCost("unknown-model", "")
	})
}

func TestAPIStatus_NonAPIError(t *testing.T) {
	assert.Equal(t, 0, APIStatus(errors.New("dial tcp: refused")))
	assert.Equal(t, 0, APIStatus(nil))
}
