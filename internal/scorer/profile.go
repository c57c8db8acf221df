package scorer

import (
	"fmt"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// Band is the inclusive score range that maps to a tier.
type Band struct {
	Tier model.Tier `json:"tier"`
	Low  int        `json:"low"`
	High int        `json:"high"`
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score int) bool {
	return score >= b.Low && score <= b.High
}

// Bands partition [0, MaxTotalScore] into the six tiers.
var Bands = []Band{
	{Tier: model.TierVeryConservative, Low: 0, High: 15},
	{Tier: model.TierConservative, Low: 16, High: 30},
	{Tier: model.TierModerateConservative, Low: 31, High: 42},
	{Tier: model.TierModerate, Low: 43, High: 53},
	{Tier: model.TierModerateAggressive, Low: 54, High: 64},
	{Tier: model.TierAggressive, Low: 65, High: 75},
}

// RawTier maps a total score to its band's tier. Scores outside [0, 75]
// cannot be produced by the catalog; they resolve to the nearest end band.
func RawTier(total int) model.Tier {
	for _, b := range Bands {
		if b.Contains(total) {
			return b.Tier
		}
	}
	if total < Bands[0].Low {
		return Bands[0].Tier
	}
	return Bands[len(Bands)-1].Tier
}

// Resolution is the Profile Resolver's output.
type Resolution struct {
	Raw         model.Tier
	Final       model.Tier
	Adjustments []string
}

// ResolveProfile reconciles the score-derived tier with the restriction
// ceiling and the dependents demotion. The final tier is min(raw, ceiling),
// lowered one further level when demote is set, never below the floor.
func ResolveProfile(total int, ceiling model.Tier, demote bool) Resolution {
	raw := RawTier(total)
	final := min(raw, ceiling)
	adjustments := []string{}

	if demote {
		final = max(model.TierVeryConservative, final-1)
		adjustments = append(adjustments, "Reduced by 1 level due to 3+ dependents")
	}

	if final != raw {
		adjustments = append(adjustments,
			fmt.Sprintf("Profile adjusted from '%s' to '%s' due to regulatory restrictions", raw, final))
	}

	return Resolution{Raw: raw, Final: final, Adjustments: adjustments}
}
