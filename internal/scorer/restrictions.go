package scorer

import (
	"fmt"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// Block thresholds below which the client's profile is capped.
const (
	FinancialCapacityThreshold = 8
	KnowledgeThreshold         = 5
)

// Rule names as they appear in the explanation.
const (
	RuleAge               = "Age restriction (MiFID II Art. 25)"
	RuleIncomeStability   = "Income stability restriction"
	RuleDependents        = "Dependents adjustment"
	RuleFinancialCapacity = "Financial capacity restriction"
	RuleKnowledge         = "Knowledge restriction (MiFID II appropriateness)"
	RuleShortHorizon      = "Short horizon restriction"
)

// RestrictionOutcome is the Restriction Engine's verdict. Ceiling is the
// minimum over every cap that fired (TierAggressive when none did). Demote is
// the standalone dependents flag, applied after tier resolution.
type RestrictionOutcome struct {
	Ceiling   model.Tier
	Demote    bool
	Applied   []model.Restriction
	Coherence []model.CoherenceFlag
}

// restrictionInput is what the rules read: raw answers plus block totals.
type restrictionInput struct {
	answers   model.AnswerSet
	financial int
	knowledge int
}

// capRule caps the ceiling at a fixed tier when it fires.
type capRule struct {
	name    string
	ceiling model.Tier
	check   func(in restrictionInput) (reason string, fired bool)
}

var capRules = []capRule{
	{
		name:    RuleAge,
		ceiling: model.TierModerate,
		check: func(in restrictionInput) (string, bool) {
			if in.answers.Age() < model.Age61To70 {
				return "", false
			}
			return fmt.Sprintf("Client age range %s: higher-risk profiles unsuitable", label(in.answers, model.KeyAge)), true
		},
	},
	{
		name:    RuleIncomeStability,
		ceiling: model.TierModerateConservative,
		check: func(in restrictionInput) (string, bool) {
			switch in.answers.Employment() {
			case model.Unemployed, model.Student:
				return fmt.Sprintf("Employment status '%s': limited income stability", label(in.answers, model.KeyEmployment)), true
			}
			return "", false
		},
	},
	{
		name:    RuleFinancialCapacity,
		ceiling: model.TierConservative,
		check: func(in restrictionInput) (string, bool) {
			if in.financial >= FinancialCapacityThreshold {
				return "", false
			}
			return fmt.Sprintf("Financial situation score %d/%d (below threshold of %d)",
				in.financial, FinancialBlock.Max(), FinancialCapacityThreshold), true
		},
	},
	{
		name:    RuleKnowledge,
		ceiling: model.TierModerateConservative,
		check: func(in restrictionInput) (string, bool) {
			if in.knowledge >= KnowledgeThreshold {
				return "", false
			}
			return fmt.Sprintf("Knowledge score %d/%d (below threshold of %d)",
				in.knowledge, KnowledgeBlock.Max(), KnowledgeThreshold), true
		},
	},
	{
		name:    RuleShortHorizon,
		ceiling: model.TierModerate,
		check: func(in restrictionInput) (string, bool) {
			if in.answers.Horizon() != model.HorizonUnder1Year {
				return "", false
			}
			return fmt.Sprintf("Investment horizon '%s': volatile products unsuitable", label(in.answers, model.KeyHorizon)), true
		},
	},
}

// EvaluateRestrictions applies every eligibility rule independently. The
// financial and knowledge arguments are the block 2 and block 3 totals.
func EvaluateRestrictions(a model.AnswerSet, financial, knowledge int) RestrictionOutcome {
	in := restrictionInput{answers: a, financial: financial, knowledge: knowledge}
	out := RestrictionOutcome{
		Ceiling:   model.TierAggressive,
		Applied:   []model.Restriction{},
		Coherence: []model.CoherenceFlag{},
	}

	for _, r := range capRules {
		reason, fired := r.check(in)
		if !fired {
			continue
		}
		ceiling := r.ceiling
		if ceiling < out.Ceiling {
			out.Ceiling = ceiling
		}
		out.Applied = append(out.Applied, model.Restriction{
			Rule:    r.name,
			Reason:  reason,
			Effect:  fmt.Sprintf("Maximum profile capped at %s", ceiling),
			Ceiling: &ceiling,
		})
	}

	if a.Dependents() >= model.Dependents3Plus {
		out.Demote = true
		out.Applied = append(out.Applied, model.Restriction{
			Rule:   RuleDependents,
			Reason: fmt.Sprintf("Dependents '%s': increased financial obligations", label(a, model.KeyDependents)),
			Effect: "Profile reduced by one level",
			Demote: true,
		})
	}

	if a.MaxLoss() == model.MaxLossNone && a.RiskPreference() >= model.PreferGoodReturns {
		out.Coherence = append(out.Coherence, model.CoherenceFlag{
			Flag:           "INCONSISTENCY DETECTED",
			Detail:         "Client accepts 0% loss but selected high risk/return preference",
			Recommendation: "Advisor should discuss risk expectations with client",
		})
	}

	return out
}
