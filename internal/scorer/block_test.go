package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mifid-advisor/internal/model"
)

func TestScoreBlock_Clamping(t *testing.T) {
	tests := []struct {
		name string
		raw  int
	}{
		{"last valid option", 4},
		{"just past range", 5},
		{"far past range", 99},
	}

	want := ScoreBlock(model.NewAnswerSet(map[model.QuestionKey]int{model.KeyMaxLoss: 4}), RiskBlock).Details[1]
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreBlock(model.NewAnswerSet(map[model.QuestionKey]int{model.KeyMaxLoss: tt.raw}), RiskBlock)
			assert.Equal(t, want, got.Details[1])
		})
	}
	assert.Equal(t, 4, want.AnswerIndex)
	assert.Equal(t, ">25%", want.Answer)
	assert.Equal(t, 5, want.Score)
}

func TestScoreBlock_NegativeIndexReadsAsFirstOption(t *testing.T) {
	got := ScoreBlock(model.NewAnswerSet(map[model.QuestionKey]int{model.KeyIncome: -3}), FinancialBlock)
	row := got.Details[0]
	assert.Equal(t, 0, row.AnswerIndex)
	assert.Equal(t, "<15K", row.Answer)
	assert.Equal(t, 1, row.Score)
}

func TestScoreBlock_InverseQuestion(t *testing.T) {
	tests := []struct {
		idx  int
		want int
	}{
		{0, 4},
		{1, 3},
		{2, 2},
		{3, 1},
	}
	for _, tt := range tests {
		got := ScoreBlock(model.NewAnswerSet(map[model.QuestionKey]int{model.KeyShareInvested: tt.idx}), ObjectivesBlock)
		assert.Equal(t, tt.want, got.Details[2].Score, "index %d", tt.idx)
		assert.Equal(t, 4, got.Details[2].MaxScore)
	}
}

func TestScoreBlock_TotalsAndRows(t *testing.T) {
	a := model.NewAnswerSet(map[model.QuestionKey]int{
		model.KeyEducation:       2,
		model.KeyProductsTraded:  1,
		model.KeyTradeFrequency:  0,
		model.KeyEquityRisk:      2,
		model.KeyDiversification: 1,
	})
	got := ScoreBlock(a, KnowledgeBlock)

	assert.Equal(t, "knowledge_experience", got.Block)
	assert.Equal(t, "Knowledge & Experience", got.Name)
	assert.Equal(t, 16, got.Max)
	assert.Equal(t, 3+2+1+2+1, got.Score)
	require.Len(t, got.Details, 5)
	assert.Equal(t, model.DetailRow{
		Key:         model.KeyEducation,
		Question:    "Financial education",
		Answer:      "University degree",
		AnswerIndex: 2,
		Score:       3,
		MaxScore:    4,
	}, got.Details[0])
}

func TestScoreBlock_NeverNegative(t *testing.T) {
	for _, b := range ScoredBlocks() {
		got := ScoreBlock(model.NewAnswerSet(nil), b)
		assert.GreaterOrEqual(t, got.Score, 0, b.Slug)
		assert.LessOrEqual(t, got.Score, got.Max, b.Slug)
	}
}
