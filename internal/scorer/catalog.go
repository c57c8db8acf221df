// Package scorer implements the MiFID II suitability scoring engine: it turns a
// questionnaire answer set into a risk profile, a target allocation, an
// instrument selection and a replayable explanation of every rule applied.
//
// Everything in this package is a pure function of its input and the static
// tables below; it performs no I/O and holds no mutable state.
package scorer

import "github.com/sells-group/mifid-advisor/internal/model"

// Option is a single answer choice and the points it scores.
type Option struct {
	Label  string `json:"label" yaml:"label"`
	Points int    `json:"points" yaml:"points"`
}

// Question is a catalog entry. Option order defines the 0-based answer index;
// points are data and need not increase with the index.
type Question struct {
	Key     model.QuestionKey `json:"key" yaml:"key"`
	Label   string            `json:"label" yaml:"label"`
	Options []Option          `json:"options" yaml:"options"`
}

// MaxPoints returns the highest point value among the options.
func (q Question) MaxPoints() int {
	best := 0
	for i, o := range q.Options {
		if i == 0 || o.Points > best {
			best = o.Points
		}
	}
	return best
}

// Option returns the option selected by a raw index after clamping, along
// with the clamped index.
func (q Question) Option(raw int) (Option, int) {
	idx := model.ClampIndex(raw, len(q.Options))
	if len(q.Options) == 0 {
		return Option{}, 0
	}
	return q.Options[idx], idx
}

// Block is a thematic group of questions.
type Block struct {
	Number    int        `json:"number" yaml:"number"`
	Slug      string     `json:"slug" yaml:"slug"`
	Name      string     `json:"name" yaml:"name"`
	Scored    bool       `json:"scored" yaml:"scored"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Max returns the highest achievable block total.
func (b Block) Max() int {
	if !b.Scored {
		return 0
	}
	var sum int
	for _, q := range b.Questions {
		sum += q.MaxPoints()
	}
	return sum
}

// MaxTotalScore is the sum of the scored block maxima.
const MaxTotalScore = 75

// labelled builds unscored options.
func labelled(labels ...string) []Option {
	out := make([]Option, len(labels))
	for i, l := range labels {
		out[i] = Option{Label: l}
	}
	return out
}

// points pairs point values with labels positionally.
func points(values []int, labels ...string) []Option {
	out := make([]Option, len(labels))
	for i, l := range labels {
		out[i] = Option{Label: l, Points: values[i]}
	}
	return out
}

// Questionnaire blocks in the order they are asked.
var (
	PersonalBlock = Block{
		Number: 1,
		Slug:   "personal_details",
		Name:   "Personal Details",
		Questions: []Question{
			{Key: model.KeyAge, Label: "Age range", Options: labelled("18-30", "31-45", "46-60", "61-70", ">70")},
			{Key: model.KeyEmployment, Label: "Employment", Options: labelled("Employed", "Self-employed", "Civil servant", "Unemployed", "Retired", "Student")},
			{Key: model.KeyDependents, Label: "Dependents", Options: labelled("None", "1-2", "3+")},
		},
	}

	FinancialBlock = Block{
		Number: 2,
		Slug:   "financial_situation",
		Name:   "Financial Situation",
		Scored: true,
		Questions: []Question{
			{Key: model.KeyIncome, Label: "Annual net income", Options: points([]int{1, 2, 3, 4, 5}, "<15K", "15-30K", "30-60K", "60-100K", ">100K")},
			{Key: model.KeyAssets, Label: "Financial assets", Options: points([]int{1, 2, 3, 4, 5}, "<10K", "10-50K", "50-150K", "150-500K", ">500K")},
			{Key: model.KeyExpenseRatio, Label: "Fixed expenses ratio", Options: points([]int{1, 2, 3, 4}, ">70%", "50-70%", "30-49%", "<30%")},
			{Key: model.KeyEmergencyFund, Label: "Emergency fund", Options: points([]int{1, 2, 3, 4}, "None", "1-3 months", "3-6 months", ">6 months")},
			{Key: model.KeyOutstandingDbt, Label: "Outstanding debts", Options: points([]int{1, 2, 3, 4}, "Significant", "Manageable", "Small loans", "None")},
		},
	}

	KnowledgeBlock = Block{
		Number: 3,
		Slug:   "knowledge_experience",
		Name:   "Knowledge & Experience",
		Scored: true,
		Questions: []Question{
			{Key: model.KeyEducation, Label: "Financial education", Options: points([]int{1, 2, 3, 4}, "None", "Basic", "University degree", "Certified")},
			{Key: model.KeyProductsTraded, Label: "Products traded (3yr)", Options: points([]int{1, 2, 3, 4}, "Deposits only", "Funds/pensions", "Stocks/ETFs/bonds", "Derivatives")},
			{Key: model.KeyTradeFrequency, Label: "Trading frequency", Options: points([]int{1, 2, 3, 4}, "Never", "Few times/year", "Several/year", "Monthly+")},
			{Key: model.KeyEquityRisk, Label: "Understands equity risk", Options: points([]int{0, 1, 2}, "No", "Somewhat", "Yes")},
			{Key: model.KeyDiversification, Label: "Understands diversification", Options: points([]int{0, 1, 2}, "No", "Somewhat", "Yes")},
		},
	}

	ObjectivesBlock = Block{
		Number: 4,
		Slug:   "investment_objectives",
		Name:   "Investment Objectives",
		Scored: true,
		Questions: []Question{
			{Key: model.KeyObjective, Label: "Main objective", Options: points([]int{1, 2, 3, 4}, "Preserve capital", "Regular income", "Growth", "Maximize returns")},
			{Key: model.KeyHorizon, Label: "Time horizon", Options: points([]int{1, 2, 3, 4}, "<1 year", "1-3 years", "3-7 years", ">7 years")},
			// Inverse: committing a smaller share of assets scores higher.
			{Key: model.KeyShareInvested, Label: "% assets to invest", Options: points([]int{4, 3, 2, 1}, "<10%", "10-25%", "26-50%", ">50%")},
			{Key: model.KeyExpectedReturn, Label: "Expected return", Options: points([]int{1, 2, 3, 4}, "2-3%", "4-6%", "7-10%", ">10%")},
			{Key: model.KeyLiquidity, Label: "Liquidity needs", Options: points([]int{1, 2, 3, 4}, "Anytime", "1-2 years", "3-5 years", "None")},
		},
	}

	RiskBlock = Block{
		Number: 5,
		Slug:   "risk_tolerance",
		Name:   "Risk Tolerance",
		Scored: true,
		Questions: []Question{
			{Key: model.KeyDrawdownReaction, Label: "Reaction to -10% loss", Options: points([]int{1, 2, 3, 4}, "Sell everything", "Sell part", "Wait", "Invest more")},
			{Key: model.KeyMaxLoss, Label: "Max acceptable annual loss", Options: points([]int{1, 2, 3, 4, 5}, "0%", "5%", "15%", "25%", ">25%")},
			{Key: model.KeyFluctuation, Label: "Comfort with 20% fluctuation", Options: points([]int{1, 2, 3, 4}, "Very uncomfortable", "Worried", "Normal", "Not concerned")},
			{Key: model.KeyRiskPreference, Label: "Risk/return preference", Options: points([]int{1, 2, 3, 4}, "Earn little, no losses", "A bit more, small losses", "Good returns, accept losses", "Maximum returns, high risk")},
		},
	}

	SustainabilityBlock = Block{
		Number: 6,
		Slug:   "sustainability",
		Name:   "ESG Sustainability",
		Questions: []Question{
			{Key: model.KeyESGPreference, Label: "Sustainability preferences", Options: labelled("No", "Yes")},
			{Key: model.KeyESGType, Label: "ESG type", Options: labelled("EU Taxonomy", "PAI (Principal Adverse Impact)", "Art. 8/Art. 9 SFDR")},
			{Key: model.KeyESGMinimum, Label: "Minimum sustainable %", Options: labelled("No minimum", "25%", "50%", "75%", "100%")},
		},
	}
)

// Catalog returns every block in questionnaire order.
func Catalog() []Block {
	return []Block{PersonalBlock, FinancialBlock, KnowledgeBlock, ObjectivesBlock, RiskBlock, SustainabilityBlock}
}

// ScoredBlocks returns blocks 2-5.
func ScoredBlocks() []Block {
	return []Block{FinancialBlock, KnowledgeBlock, ObjectivesBlock, RiskBlock}
}

// FindQuestion looks up a catalog question by key.
func FindQuestion(key model.QuestionKey) (Question, bool) {
	for _, b := range Catalog() {
		for _, q := range b.Questions {
			if q.Key == key {
				return q, true
			}
		}
	}
	return Question{}, false
}

// label returns the clamped option label for key.
func label(a model.AnswerSet, key model.QuestionKey) string {
	q, ok := FindQuestion(key)
	if !ok {
		return ""
	}
	opt, _ := q.Option(a.Index(key))
	return opt.Label
}
