package model

// AgeBand is the answer to p1_1.
type AgeBand int

// Age bands, youngest first.
const (
	Age18To30 AgeBand = iota
	Age31To45
	Age46To60
	Age61To70
	AgeOver70
	ageBandCount
)

// Employment is the answer to p1_2.
type Employment int

// Employment statuses in questionnaire order.
const (
	Employed Employment = iota
	SelfEmployed
	CivilServant
	Unemployed
	Retired
	Student
	employmentCount
)

// Dependents is the answer to p1_3.
type Dependents int

// Dependents bands.
const (
	DependentsNone Dependents = iota
	Dependents1To2
	Dependents3Plus
	dependentsCount
)

// Horizon is the answer to p4_2.
type Horizon int

// Investment horizons, shortest first.
const (
	HorizonUnder1Year Horizon = iota
	Horizon1To3Years
	Horizon3To7Years
	HorizonOver7Years
	horizonCount
)

// MaxLoss is the answer to p5_2.
type MaxLoss int

// Maximum acceptable annual loss bands.
const (
	MaxLossNone MaxLoss = iota
	MaxLoss5
	MaxLoss15
	MaxLoss25
	MaxLossOver25
	maxLossCount
)

// RiskPreference is the answer to p5_4.
type RiskPreference int

// Risk/return preferences, most cautious first.
const (
	PreferNoLosses RiskPreference = iota
	PreferSmallLosses
	PreferGoodReturns
	PreferMaximumReturns
	riskPreferenceCount
)

// ESGType is the answer to p6_2.
type ESGType int

// Sustainability preference types.
const (
	ESGTaxonomy ESGType = iota
	ESGPrincipalAdverseImpact
	ESGSFDRArticle8Or9
	esgTypeCount
)

var esgTypeLabels = [esgTypeCount]string{
	"EU Taxonomy",
	"PAI (Principal Adverse Impact)",
	"Art. 8/Art. 9 SFDR",
}

func (t ESGType) String() string {
	return esgTypeLabels[ClampIndex(int(t), int(esgTypeCount))]
}

// ESGMinimum is the answer to p6_3.
type ESGMinimum int

// Minimum sustainable share bands.
const (
	ESGNoMinimum ESGMinimum = iota
	ESGMin25
	ESGMin50
	ESGMin75
	ESGMin100
	esgMinimumCount
)

var esgMinimumLabels = [esgMinimumCount]string{"No minimum", "25%", "50%", "75%", "100%"}

func (m ESGMinimum) String() string {
	return esgMinimumLabels[ClampIndex(int(m), int(esgMinimumCount))]
}

// Age returns the clamped age band.
func (a AnswerSet) Age() AgeBand {
	return AgeBand(ClampIndex(a.Index(KeyAge), int(ageBandCount)))
}

// Employment returns the clamped employment status.
func (a AnswerSet) Employment() Employment {
	return Employment(ClampIndex(a.Index(KeyEmployment), int(employmentCount)))
}

// Dependents returns the clamped dependents band.
func (a AnswerSet) Dependents() Dependents {
	return Dependents(ClampIndex(a.Index(KeyDependents), int(dependentsCount)))
}

// Horizon returns the clamped investment horizon.
func (a AnswerSet) Horizon() Horizon {
	return Horizon(ClampIndex(a.Index(KeyHorizon), int(horizonCount)))
}

// MaxLoss returns the clamped maximum acceptable loss.
func (a AnswerSet) MaxLoss() MaxLoss {
	return MaxLoss(ClampIndex(a.Index(KeyMaxLoss), int(maxLossCount)))
}

// RiskPreference returns the clamped risk/return preference.
func (a AnswerSet) RiskPreference() RiskPreference {
	return RiskPreference(ClampIndex(a.Index(KeyRiskPreference), int(riskPreferenceCount)))
}

// WantsESG reports whether p6_1 is "Yes".
func (a AnswerSet) WantsESG() bool {
	return ClampIndex(a.Index(KeyESGPreference), 2) == 1
}

// ESGType returns the clamped sustainability type.
func (a AnswerSet) ESGType() ESGType {
	return ESGType(ClampIndex(a.Index(KeyESGType), int(esgTypeCount)))
}

// ESGMinimum returns the clamped minimum sustainable share.
func (a AnswerSet) ESGMinimum() ESGMinimum {
	return ESGMinimum(ClampIndex(a.Index(KeyESGMinimum), int(esgMinimumCount)))
}
