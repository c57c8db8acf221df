package scorer

import (
	"fmt"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// Fixed result strings.
const (
	Methodology     = "MiFID II Suitability Assessment (EU Directive 2014/65/EU)"
	ValidityPeriod  = "3 years from assessment date"
	RegulatoryBasis = "MiFID II Directive 2014/65/EU, Delegated Regulation 2017/565"
	Disclaimer      = "DEMO ONLY. This is not real financial advice. Always consult a licensed financial advisor."
)

// Compute runs a complete assessment. It never fails: missing answers read as
// index 0 and out-of-range indices are clamped, so any answer set (including
// an empty one) yields a full Result. Identical input yields identical output.
func Compute(a model.AnswerSet) model.Result {
	blocks := make([]model.BlockScore, 0, 4)
	summary := make(map[string]string, 4)
	totals := make(map[string]int, 4)
	var total int
	for _, b := range ScoredBlocks() {
		bs := ScoreBlock(a, b)
		blocks = append(blocks, bs)
		summary[bs.Block] = fmt.Sprintf("%d/%d", bs.Score, bs.Max)
		totals[bs.Block] = bs.Score
		total += bs.Score
	}

	restrictions := EvaluateRestrictions(a, totals[FinancialBlock.Slug], totals[KnowledgeBlock.Slug])
	res := ResolveProfile(total, restrictions.Ceiling, restrictions.Demote)

	explanation := model.Explanation{
		Methodology:  Methodology,
		InputAnswers: a.Raw(),
		PersonalDetails: model.PersonalDetails{
			AgeRange:   label(a, model.KeyAge),
			Employment: label(a, model.KeyEmployment),
			Dependents: label(a, model.KeyDependents),
		},
		BlockScores:        blocks,
		BlockSummary:       summary,
		Restrictions:       restrictions.Applied,
		CoherenceChecks:    restrictions.Coherence,
		TotalScore:         total,
		MaxPossibleScore:   MaxTotalScore,
		RawProfile:         res.Raw.String(),
		RawLevel:           res.Raw,
		Ceiling:            restrictions.Ceiling,
		CeilingProfile:     restrictions.Ceiling.String(),
		DependentsDemotion: restrictions.Demote,
		FinalProfile:       res.Final.String(),
		FinalLevel:         res.Final,
		Adjustments:        res.Adjustments,
	}

	alloc := AllocationFor(res.Final)
	result := model.Result{
		Profile:         res.Final.String(),
		Level:           res.Final,
		Score:           fmt.Sprintf("%d/%d", total, MaxTotalScore),
		TotalScore:      total,
		Allocation:      alloc,
		RecommendedETFs: SelectInstruments(res.Final, alloc),
		ESG:             esgPreferences(a),
		Explanation:     explanation,
		ValidityPeriod:  ValidityPeriod,
		RegulatoryBasis: RegulatoryBasis,
		Disclaimer:      Disclaimer,
	}
	result.PortfolioSummary = RenderSummary(result)
	return result
}

// esgPreferences is nil unless the client answered "Yes" to p6_1.
func esgPreferences(a model.AnswerSet) *model.ESGPreferences {
	if !a.WantsESG() {
		return nil
	}
	return &model.ESGPreferences{
		HasPreference:         true,
		Type:                  a.ESGType().String(),
		MinimumSustainablePct: a.ESGMinimum().String(),
	}
}
