package scorer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// RenderSummary renders the markdown portfolio summary for a result. It reads
// only fields of r, so the narrative never says more than the structured
// result does.
func RenderSummary(r model.Result) string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line("## Your Investment Profile: **%s** (Score: %s)", r.Profile, r.Score)
	line("")

	if len(r.Explanation.Restrictions) > 0 {
		line("### Regulatory Restrictions Applied")
		for _, x := range r.Explanation.Restrictions {
			line("- **%s**: %s → _%s_", x.Rule, x.Reason, x.Effect)
		}
		line("")
	}

	line("### Recommended Allocation")
	for _, class := range AssetClasses {
		pct := r.Allocation[class]
		if pct <= 0 {
			continue
		}
		holdings := r.RecommendedETFs[class]
		tickers := make([]string, len(holdings))
		for i, h := range holdings {
			tickers[i] = h.Ticker
		}
		line("- **%s (%d%%)**: %s", class, pct, strings.Join(tickers, ", "))
	}
	line("")

	line("### Mock Portfolio — Example ETFs")
	line("")
	line("| Ticker | Name | Asset Class | Weight | Description |")
	line("|--------|------|-------------|--------|-------------|")
	for _, class := range AssetClasses {
		if r.Allocation[class] <= 0 {
			continue
		}
		for _, h := range r.RecommendedETFs[class] {
			line("| **%s** | %s | %s | %s%% | %s |", h.Ticker, h.Name, h.AssetClass, formatWeight(h.Weight), h.Description)
		}
	}
	line("")

	if r.ESG != nil && r.ESG.HasPreference {
		line("### ESG Preferences")
		line("- Type: **%s**", r.ESG.Type)
		line("- Minimum sustainable: **%s**", r.ESG.MinimumSustainablePct)
		line("")
	}

	if len(r.Explanation.CoherenceChecks) > 0 {
		line("### Coherence Warnings")
		for _, c := range r.Explanation.CoherenceChecks {
			line("- ⚠️ %s", c.Detail)
		}
		line("")
	}

	line("_Valid for %s. Regulatory basis: %s._", r.ValidityPeriod, r.RegulatoryBasis)
	line("")
	sb.WriteString("⚠️ **Disclaimer**: " + r.Disclaimer)

	return sb.String()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 1, 64)
}
