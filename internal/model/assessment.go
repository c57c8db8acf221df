package model

// Tier is an investor risk profile level, most conservative first.
type Tier int

// Profile tiers.
const (
	TierVeryConservative Tier = iota
	TierConservative
	TierModerateConservative
	TierModerate
	TierModerateAggressive
	TierAggressive
)

// TierCount is the number of profile tiers.
const TierCount = 6

var tierNames = [TierCount]string{
	"Very Conservative",
	"Conservative",
	"Moderate Conservative",
	"Moderate",
	"Moderate Aggressive",
	"Aggressive",
}

// String returns the display name of the tier. Out-of-range values are
// clamped to the nearest defined tier.
func (t Tier) String() string {
	return tierNames[ClampIndex(int(t), TierCount)]
}

// Instrument is a catalog entry (an ETF in the current catalog).
type Instrument struct {
	Ticker      string `json:"ticker" yaml:"ticker"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"desc"`
}

// Holding is a selected instrument with its share of the portfolio.
type Holding struct {
	Instrument
	AssetClass string  `json:"asset_class"`
	Weight     float64 `json:"weight"`
}

// Allocation maps asset class to a target percentage.
type Allocation map[string]int

// Total returns the sum of all percentages.
func (a Allocation) Total() int {
	var sum int
	for _, pct := range a {
		sum += pct
	}
	return sum
}

// DetailRow records how a single question was scored.
type DetailRow struct {
	Key         QuestionKey `json:"key"`
	Question    string      `json:"question"`
	Answer      string      `json:"answer"`
	AnswerIndex int         `json:"answer_index"`
	Score       int         `json:"score"`
	MaxScore    int         `json:"max_score"`
}

// BlockScore is the scored outcome of one questionnaire block.
type BlockScore struct {
	Block   string      `json:"block"`
	Name    string      `json:"name"`
	Score   int         `json:"score"`
	Max     int         `json:"max"`
	Details []DetailRow `json:"details"`
}

// PersonalDetails echoes the unscored block 1 answers.
type PersonalDetails struct {
	AgeRange   string `json:"age_range"`
	Employment string `json:"employment"`
	Dependents string `json:"dependents"`
}

// Restriction is an eligibility rule that fired. Ceiling is the highest tier
// the rule permits; it is nil for the dependents demotion, which lowers the
// resolved tier by one level instead of capping it.
type Restriction struct {
	Rule    string `json:"rule"`
	Reason  string `json:"reason"`
	Effect  string `json:"effect"`
	Ceiling *Tier  `json:"ceiling,omitempty"`
	Demote  bool   `json:"demote,omitempty"`
}

// CoherenceFlag marks mutually inconsistent answers for human review.
type CoherenceFlag struct {
	Flag           string `json:"flag"`
	Detail         string `json:"detail"`
	Recommendation string `json:"recommendation"`
}

// ESGPreferences summarises block 6 when the client has a sustainability
// preference.
type ESGPreferences struct {
	HasPreference         bool   `json:"has_preference"`
	Type                  string `json:"type"`
	MinimumSustainablePct string `json:"minimum_sustainable_pct"`
}

// Explanation is the full derivation of the final tier from the raw answers.
type Explanation struct {
	Methodology        string            `json:"methodology"`
	InputAnswers       map[string]int    `json:"input_answers"`
	PersonalDetails    PersonalDetails   `json:"personal_details"`
	BlockScores        []BlockScore      `json:"block_scores"`
	BlockSummary       map[string]string `json:"block_summary"`
	Restrictions       []Restriction     `json:"restrictions_applied"`
	CoherenceChecks    []CoherenceFlag   `json:"coherence_checks"`
	TotalScore         int               `json:"total_score"`
	MaxPossibleScore   int               `json:"max_possible_score"`
	RawProfile         string            `json:"raw_profile"`
	RawLevel           Tier              `json:"raw_level"`
	Ceiling            Tier              `json:"ceiling"`
	CeilingProfile     string            `json:"ceiling_profile"`
	DependentsDemotion bool              `json:"dependents_demotion"`
	FinalProfile       string            `json:"final_profile"`
	FinalLevel         Tier              `json:"final_level"`
	Adjustments        []string          `json:"adjustments"`
}

// Result is the complete outcome of one suitability assessment.
type Result struct {
	Profile          string               `json:"profile"`
	Level            Tier                 `json:"level"`
	Score            string               `json:"score"`
	TotalScore       int                  `json:"total_score"`
	Allocation       Allocation           `json:"allocation"`
	RecommendedETFs  map[string][]Holding `json:"recommended_etfs"`
	PortfolioSummary string               `json:"portfolio_summary"`
	ESG              *ESGPreferences      `json:"esg_preferences"`
	Explanation      Explanation          `json:"explanation"`
	ValidityPeriod   string               `json:"validity_period"`
	RegulatoryBasis  string               `json:"regulatory_basis"`
	Disclaimer       string               `json:"disclaimer"`
}
