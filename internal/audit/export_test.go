package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/scorer"
)

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	l := newFileLog(t)

	capped := scorer.Compute(model.NewAnswerSet(map[model.QuestionKey]int{
		model.KeyAge:           4,
		model.KeyESGPreference: 1,
		model.KeyESGType:       0,
		model.KeyESGMinimum:    2,
	}))
	require.NoError(t, l.Append(ctx, New(TypeTextChat, "x")))
	require.NoError(t, l.Append(ctx, ProfileCalculation("sess-1", capped)))

	out := filepath.Join(t.TempDir(), "profiles.xlsx")
	n, err := ExportXLSX(ctx, l, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Profiles"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "Timestamp", sheet.Rows[0].Cells[0].String())
	row := sheet.Rows[1]
	assert.Equal(t, "sess-1", row.Cells[2].String())
	assert.Equal(t, capped.Profile, row.Cells[3].String())
	assert.Equal(t, "20", row.Cells[4].String())
	assert.Contains(t, row.Cells[7].String(), scorer.RuleAge)
	assert.Equal(t, "EU Taxonomy / 50%", row.Cells[9].String())
}

func TestExportXLSX_Empty(t *testing.T) {
	l := newFileLog(t)
	out := filepath.Join(t.TempDir(), "empty.xlsx")

	n, err := ExportXLSX(context.Background(), l, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	assert.Len(t, f.Sheet["Profiles"].Rows, 1)
}

