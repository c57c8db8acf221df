package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/mifid-advisor/internal/model"
)

func TestBands_PartitionScoreRange(t *testing.T) {
	for score := 0; score <= MaxTotalScore; score++ {
		var hits int
		for _, b := range Bands {
			if b.Contains(score) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "score %d", score)
	}

	assert.Equal(t, 0, Bands[0].Low)
	assert.Equal(t, MaxTotalScore, Bands[len(Bands)-1].High)
	for i := 1; i < len(Bands); i++ {
		assert.Equal(t, Bands[i-1].High+1, Bands[i].Low)
		assert.Equal(t, Bands[i-1].Tier+1, Bands[i].Tier)
	}
}

func TestRawTier(t *testing.T) {
	tests := []struct {
		score int
		want  model.Tier
	}{
		{0, model.TierVeryConservative},
		{15, model.TierVeryConservative},
		{16, model.TierConservative},
		{30, model.TierConservative},
		{31, model.TierModerateConservative},
		{42, model.TierModerateConservative},
		{43, model.TierModerate},
		{53, model.TierModerate},
		{54, model.TierModerateAggressive},
		{64, model.TierModerateAggressive},
		{65, model.TierAggressive},
		{75, model.TierAggressive},
		{-1, model.TierVeryConservative},
		{80, model.TierAggressive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RawTier(tt.score), "score %d", tt.score)
	}
}

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		ceiling     model.Tier
		demote      bool
		wantFinal   model.Tier
		adjustments int
	}{
		{"no restrictions", 70, model.TierAggressive, false, model.TierAggressive, 0},
		{"ceiling below raw", 70, model.TierModerate, false, model.TierModerate, 1},
		{"ceiling above raw", 20, model.TierModerate, false, model.TierConservative, 0},
		{"demotion only", 60, model.TierAggressive, true, model.TierModerate, 2},
		{"ceiling then demotion", 70, model.TierModerate, true, model.TierModerateConservative, 2},
		{"demotion floored", 5, model.TierAggressive, true, model.TierVeryConservative, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveProfile(tt.total, tt.ceiling, tt.demote)
			assert.Equal(t, RawTier(tt.total), got.Raw)
			assert.Equal(t, tt.wantFinal, got.Final)
			assert.Len(t, got.Adjustments, tt.adjustments)
			assert.LessOrEqual(t, got.Final, got.Raw)
		})
	}
}

func TestResolveProfile_DemotionFlooredNarrative(t *testing.T) {
	got := ResolveProfile(5, model.TierAggressive, true)
	assert.Equal(t, []string{"Reduced by 1 level due to 3+ dependents"}, got.Adjustments)
}
