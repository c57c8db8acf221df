package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mifid-advisor/internal/model"
)

func TestRunScore_Text(t *testing.T) {
	var out bytes.Buffer
	err := runScore(strings.NewReader(`{"p1_1": 4}`), &out, "text")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "## Your Investment Profile:")
	assert.Contains(t, out.String(), "Disclaimer")
}

func TestRunScore_JSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", `{"p1_3": 2}`, "Very Conservative"},
		{"wrapped", `{"answers": {"p1_3": 2}}`, "Very Conservative"},
		{"wrapped string", `{"answers": "{\"p1_3\": 2}"}`, "Very Conservative"},
		{"empty", `{}`, "Conservative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runScore(strings.NewReader(tt.input), &out, "json"))

			var res model.Result
			require.NoError(t, json.Unmarshal(out.Bytes(), &res))
			assert.Equal(t, tt.want, res.Profile)
		})
	}
}

func TestRunScore_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runScore(strings.NewReader(`{}`), &out, "xml"))
	assert.Error(t, runScore(strings.NewReader(`[1,2]`), &out, "json"))
}
