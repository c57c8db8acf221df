package audit

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var exportHeader = []string{
	"Timestamp", "Record ID", "Session", "Profile", "Score", "Raw Profile",
	"Restrictions", "Restriction Rules", "Coherence Warnings", "ESG",
}

// ExportXLSX writes every profile calculation in r to a spreadsheet at path
// and returns the number of rows written.
func ExportXLSX(ctx context.Context, r Reader, path string) (int, error) {
	recs, err := r.ByType(ctx, TypeProfileCalculation, 0)
	if err != nil {
		return 0, err
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Profiles")
	if err != nil {
		return 0, eris.Wrap(err, "audit: xlsx add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.Timestamp.UTC().Format(time.RFC3339))
		row.AddCell().SetString(rec.ID)
		row.AddCell().SetString(rec.SessionID)
		row.AddCell().SetString(rec.Profile)
		row.AddCell().SetInt(rec.Score)

		res, ok := rec.Result()
		if !ok {
			row.AddCell().SetString("")
			row.AddCell().SetInt(rec.RestrictionsCount)
			continue
		}
		rules := make([]string, len(res.Explanation.Restrictions))
		for i, x := range res.Explanation.Restrictions {
			rules[i] = x.Rule
		}
		esg := "No"
		if res.ESG != nil && res.ESG.HasPreference {
			esg = res.ESG.Type + " / " + res.ESG.MinimumSustainablePct
		}
		row.AddCell().SetString(res.Explanation.RawProfile)
		row.AddCell().SetInt(len(res.Explanation.Restrictions))
		row.AddCell().SetString(strings.Join(rules, "; "))
		row.AddCell().SetInt(len(res.Explanation.CoherenceChecks))
		row.AddCell().SetString(esg)
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "audit: xlsx save %s", path)
	}
	return len(recs), nil
}
