package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/scorer"
)

func TestRunAuditTail(t *testing.T) {
	ctx := context.Background()
	log, err := audit.OpenFile(filepath.Join(t.TempDir(), "audit.jsonl"))
	require.NoError(t, err)
	defer log.Close() //nolint:errcheck

	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(ctx, audit.New(audit.TypeTextChat, "s")))
	}
	res := scorer.Compute(model.NewAnswerSet(nil))
	require.NoError(t, log.Append(ctx, audit.ProfileCalculation("s", res)))

	tests := []struct {
		name string
		last int
		typ  audit.Type
		want int
	}{
		{"last two", 2, "", 2},
		{"all", 10, "", 4},
		{"by type", 10, audit.TypeProfileCalculation, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runAuditTail(ctx, log, &out, tt.last, tt.typ))

			var n int
			sc := bufio.NewScanner(&out)
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				var rec audit.Record
				require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
				if tt.typ != "" {
					assert.Equal(t, tt.typ, rec.Type)
				}
				n++
			}
			assert.Equal(t, tt.want, n)
		})
	}
}
