package scorer

import (
	"math"

	"github.com/sells-group/mifid-advisor/internal/model"
)

// Asset classes, in presentation order.
const (
	AssetBonds    = "Bonds"
	AssetCash     = "Cash/Money Market"
	AssetEquities = "Equities"
)

// AssetClasses lists every asset class in presentation order.
var AssetClasses = []string{AssetBonds, AssetCash, AssetEquities}

// fallbackTier is used when a tier is missing from a table below.
const fallbackTier = model.TierModerate

// allocations holds the target allocation per tier. Each row sums to 100.
var allocations = map[model.Tier]model.Allocation{
	model.TierVeryConservative:     {AssetBonds: 75, AssetCash: 20, AssetEquities: 5},
	model.TierConservative:         {AssetBonds: 65, AssetCash: 10, AssetEquities: 25},
	model.TierModerateConservative: {AssetBonds: 50, AssetCash: 5, AssetEquities: 45},
	model.TierModerate:             {AssetBonds: 30, AssetCash: 5, AssetEquities: 65},
	model.TierModerateAggressive:   {AssetBonds: 15, AssetCash: 5, AssetEquities: 80},
	model.TierAggressive:           {AssetBonds: 5, AssetCash: 5, AssetEquities: 90},
}

// InstrumentCatalog lists the instruments available per asset class.
// Selections refer to positions in these lists, so entries are append-only.
var InstrumentCatalog = map[string][]model.Instrument{
	AssetEquities: {
		{Ticker: "VOO", Name: "Vanguard S&P 500 ETF", Description: "US large-cap (S&P 500)"},
		{Ticker: "QQQ", Name: "Invesco QQQ Trust", Description: "US tech-heavy (Nasdaq 100)"},
		{Ticker: "IWDA", Name: "iShares Core MSCI World UCITS ETF", Description: "Global developed markets"},
		{Ticker: "EEM", Name: "iShares MSCI Emerging Markets ETF", Description: "Emerging markets"},
		{Ticker: "VGK", Name: "Vanguard FTSE Europe ETF", Description: "European equities"},
		{Ticker: "INDA", Name: "iShares MSCI India ETF", Description: "Indian equities"},
		{Ticker: "VTI", Name: "Vanguard Total Stock Market ETF", Description: "US total market"},
		{Ticker: "FEZ", Name: "SPDR Euro Stoxx 50 ETF", Description: "Eurozone blue-chips"},
		{Ticker: "EWJ", Name: "iShares MSCI Japan ETF", Description: "Japanese equities"},
		{Ticker: "VEU", Name: "Vanguard FTSE All-World ex-US ETF", Description: "International ex-US"},
	},
	AssetBonds: {
		{Ticker: "AGG", Name: "iShares Core US Aggregate Bond ETF", Description: "US investment-grade bonds"},
		{Ticker: "BND", Name: "Vanguard Total Bond Market ETF", Description: "US total bond market"},
		{Ticker: "LQD", Name: "iShares iBoxx IG Corporate Bond ETF", Description: "US corporate bonds"},
		{Ticker: "TLT", Name: "iShares 20+ Year Treasury Bond ETF", Description: "US long-term treasuries"},
		{Ticker: "BSV", Name: "Vanguard Short-Term Bond ETF", Description: "US short-term bonds"},
		{Ticker: "IBGS", Name: "iShares Euro Govt Bond 1-3yr UCITS ETF", Description: "Euro short-term govt bonds"},
		{Ticker: "JNK", Name: "SPDR Bloomberg High Yield Bond ETF", Description: "US high-yield bonds"},
		{Ticker: "EMB", Name: "iShares JP Morgan EM Bond ETF", Description: "Emerging market bonds"},
		{Ticker: "VCIT", Name: "Vanguard Intermediate Corporate Bond", Description: "US intermediate corporates"},
		{Ticker: "IEAC", Name: "iShares Euro Corporate Bond UCITS ETF", Description: "Euro corporate bonds"},
	},
	AssetCash: {
		{Ticker: "BIL", Name: "SPDR Bloomberg 1-3 Month T-Bill ETF", Description: "Ultra-short US treasuries"},
		{Ticker: "SHV", Name: "iShares Short Treasury Bond ETF", Description: "US short treasury bonds"},
		{Ticker: "XEON", Name: "Xtrackers EUR Overnight Rate Swap ETF", Description: "Euro overnight rate"},
		{Ticker: "JPST", Name: "JPMorgan Ultra-Short Income ETF", Description: "Ultra-short income"},
		{Ticker: "MINT", Name: "PIMCO Enhanced Short Maturity ETF", Description: "Short-maturity active"},
		{Ticker: "GBIL", Name: "Goldman Sachs Access Treasury 0-1Y", Description: "US 0-1 year treasuries"},
		{Ticker: "GSY", Name: "Invesco Ultra Short Duration ETF", Description: "Ultra-short duration"},
		{Ticker: "SGOV", Name: "iShares 0-3 Month Treasury Bond ETF", Description: "Ultra-short treasuries"},
		{Ticker: "ISTR", Name: "iShares Euro Govt 0-1yr UCITS ETF", Description: "Euro ultra-short govt"},
		{Ticker: "FLOT", Name: "iShares Floating Rate Bond ETF", Description: "Floating rate notes"},
	},
}

// selections names the curated catalog positions per tier and asset class.
var selections = map[model.Tier]map[string][]int{
	model.TierVeryConservative: {
		AssetEquities: {0, 2},       // VOO, IWDA
		AssetBonds:    {0, 1, 4, 5}, // AGG, BND, BSV, IBGS
		AssetCash:     {0, 2, 3},    // BIL, XEON, JPST
	},
	model.TierConservative: {
		AssetEquities: {0, 2, 7},       // VOO, IWDA, FEZ
		AssetBonds:    {0, 1, 2, 4, 5}, // AGG, BND, LQD, BSV, IBGS
		AssetCash:     {0, 2},          // BIL, XEON
	},
	model.TierModerateConservative: {
		AssetEquities: {0, 2, 4, 7}, // VOO, IWDA, VGK, FEZ
		AssetBonds:    {0, 1, 2, 9}, // AGG, BND, LQD, IEAC
		AssetCash:     {2},          // XEON
	},
	model.TierModerate: {
		AssetEquities: {0, 1, 2, 3, 4}, // VOO, QQQ, IWDA, EEM, VGK
		AssetBonds:    {0, 2, 8},       // AGG, LQD, VCIT
		AssetCash:     {2},             // XEON
	},
	model.TierModerateAggressive: {
		AssetEquities: {0, 1, 2, 3, 4, 5, 9}, // VOO, QQQ, IWDA, EEM, VGK, INDA, VEU
		AssetBonds:    {0, 6},                // AGG, JNK
		AssetCash:     {2},                   // XEON
	},
	model.TierAggressive: {
		AssetEquities: {0, 1, 2, 3, 5, 6, 8, 9}, // VOO, QQQ, IWDA, EEM, INDA, VTI, EWJ, VEU
		AssetBonds:    {6},                      // JNK
		AssetCash:     {2},                      // XEON
	},
}

// AllocationFor returns a copy of the tier's target allocation, falling back
// to the Moderate row when the tier is missing from the table.
func AllocationFor(t model.Tier) model.Allocation {
	row, ok := allocations[t]
	if !ok {
		row = allocations[fallbackTier]
	}
	out := make(model.Allocation, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// SelectInstruments returns the tier's curated instruments per asset class,
// each weighted by an equal share of its class allocation rounded to one
// decimal. Classes with no allocation keep their instruments at weight 0.
func SelectInstruments(t model.Tier, alloc model.Allocation) map[string][]model.Holding {
	picks, ok := selections[t]
	if !ok {
		picks = selections[fallbackTier]
	}

	out := make(map[string][]model.Holding, len(picks))
	for _, class := range AssetClasses {
		idxs, ok := picks[class]
		if !ok {
			continue
		}
		catalog := InstrumentCatalog[class]
		holdings := make([]model.Holding, 0, len(idxs))
		for _, i := range idxs {
			if i < 0 || i >= len(catalog) {
				continue
			}
			holdings = append(holdings, model.Holding{Instrument: catalog[i], AssetClass: class})
		}
		if pct := alloc[class]; pct > 0 && len(holdings) > 0 {
			w := roundWeight(float64(pct) / float64(len(holdings)))
			for i := range holdings {
				holdings[i].Weight = w
			}
		}
		out[class] = holdings
	}
	return out
}

func roundWeight(w float64) float64 {
	return math.Round(w*10) / 10
}
