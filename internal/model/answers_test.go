package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampIndex(t *testing.T) {
	tests := []struct {
		name string
		idx  int
		n    int
		want int
	}{
		{"in range", 2, 5, 2},
		{"first", 0, 5, 0},
		{"last", 4, 5, 4},
		{"past end", 99, 5, 4},
		{"negative", -1, 5, 0},
		{"empty list", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampIndex(tt.idx, tt.n))
		})
	}
}

func TestParseAnswers_Object(t *testing.T) {
	a, err := ParseAnswers([]byte(`{"p1_1": 2, "p2_1": 4, "p5_4": 1}`))
	require.NoError(t, err)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, a.Index(KeyAge))
	assert.Equal(t, 4, a.Index(KeyIncome))
	assert.Equal(t, 0, a.Index(KeyHorizon))

	_, ok := a.Raw()["p4_2"]
	assert.False(t, ok)
}

func TestParseAnswers_StringPayload(t *testing.T) {
	a, err := ParseAnswers([]byte(`"{\"p1_1\": 3, \"p4_2\": 0}"`))
	require.NoError(t, err)
	assert.Equal(t, AgeBand(3), a.Age())
	v, ok := a.Raw()["p4_2"]
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestParseAnswers_LenientValues(t *testing.T) {
	a, err := ParseAnswers([]byte(`{
		"p1_1": null,
		"p1_2": "3",
		"p1_3": 1.9,
		"p2_1": "abc",
		"p2_2": [1],
		"p6_1": true,
		" p4_2 ": 2
	}`))
	require.NoError(t, err)

	raw := a.Raw()
	_, ok := raw["p1_1"]
	assert.False(t, ok, "null reads as absent")
	assert.Equal(t, 3, a.Index(KeyEmployment))
	assert.Equal(t, 1, a.Index(KeyDependents))
	_, ok = raw["p2_1"]
	assert.False(t, ok)
	_, ok = raw["p2_2"]
	assert.False(t, ok)
	assert.True(t, a.WantsESG())
	assert.Equal(t, 2, a.Index(KeyHorizon))
}

func TestParseAnswers_Empty(t *testing.T) {
	for _, in := range []string{"", "  ", "{}", "null"} {
		a, err := ParseAnswers([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, 0, a.Len(), in)
	}
}

func TestParseAnswers_Invalid(t *testing.T) {
	for _, in := range []string{"not json", "[1,2]", `"not an object"`, "42"} {
		_, err := ParseAnswers([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestParseAnswers_HugeNumbersBounded(t *testing.T) {
	a, err := ParseAnswers([]byte(`{"p2_1": 1e300, "p2_2": -1e300}`))
	require.NoError(t, err)
	assert.Equal(t, maxRawIndex, a.Index(KeyIncome))
	assert.Equal(t, -maxRawIndex, a.Index(KeyAssets))
}

func TestAnswerSet_Immutable(t *testing.T) {
	src := map[QuestionKey]int{KeyAge: 1}
	a := NewAnswerSet(src)
	src[KeyAge] = 4

	assert.Equal(t, 1, a.Index(KeyAge))

	raw := a.Raw()
	raw["p1_1"] = 3
	assert.Equal(t, 1, a.Index(KeyAge))
}

func TestAnswerSet_JSONRoundTrip(t *testing.T) {
	var wrapper struct {
		Answers AnswerSet `json:"answers"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"answers": "{\"p3_1\": 2}"}`), &wrapper))
	assert.Equal(t, 2, wrapper.Answers.Index(KeyEducation))

	data, err := json.Marshal(wrapper.Answers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"p3_1": 2}`, string(data))
}

func TestTypedAccessorsClamp(t *testing.T) {
	a := NewAnswerSet(map[QuestionKey]int{
		KeyAge:            42,
		KeyEmployment:     -2,
		KeyDependents:     7,
		KeyHorizon:        9,
		KeyMaxLoss:        8,
		KeyRiskPreference: 6,
		KeyESGPreference:  5,
		KeyESGType:        10,
		KeyESGMinimum:     11,
	})
	assert.Equal(t, AgeOver70, a.Age())
	assert.Equal(t, Employed, a.Employment())
	assert.Equal(t, Dependents3Plus, a.Dependents())
	assert.Equal(t, HorizonOver7Years, a.Horizon())
	assert.Equal(t, MaxLossOver25, a.MaxLoss())
	assert.Equal(t, PreferMaximumReturns, a.RiskPreference())
	assert.True(t, a.WantsESG())
	assert.Equal(t, ESGSFDRArticle8Or9, a.ESGType())
	assert.Equal(t, ESGMin100, a.ESGMinimum())
	assert.Equal(t, "Art. 8/Art. 9 SFDR", a.ESGType().String())
	assert.Equal(t, "100%", a.ESGMinimum().String())
}

func TestTier(t *testing.T) {
	assert.Equal(t, "Very Conservative", TierVeryConservative.String())
	assert.Equal(t, "Aggressive", TierAggressive.String())
	assert.Equal(t, "Aggressive", Tier(TierCount+3).String())
}
