package classify

// Policy holds the scoring weights for document classification. The values
// are empirically tuned; treat the table as versioned and swap it wholesale
// rather than editing individual weights in place.
type Policy struct {
	Version string

	BaseWeight        float64 // per matched indicator, per vocabulary
	DecisionThreshold float64 // winning score must exceed this
	GapBoost          float64 // confidence boost per unit of score gap
	MaxConfidence     float64 // confidence ceiling for a decided type

	// Label-side bonuses.
	EstateBonus      float64
	AppellationBonus float64
	RegulatoryBonus  float64
	YearBonus        float64
	AlcoholBonus     float64
	VolumeBonus      float64

	// Receipt-side bonuses.
	TotalBonus    float64
	SubtotalBonus float64
	PaymentBonus  float64
	CurrencyBonus float64
	DateBonus     float64
	TimeBonus     float64
	PriceBonus    float64
	StoreBonus    float64
}

// DefaultPolicy returns the v1 weight table.
func DefaultPolicy() Policy {
	return Policy{
		Version: "v1",

		BaseWeight:        0.1,
		DecisionThreshold: 0.4,
		GapBoost:          0.1,
		MaxConfidence:     0.95,

		EstateBonus:      0.3,
		AppellationBonus: 0.3,
		RegulatoryBonus:  0.2,
		YearBonus:        0.2,
		AlcoholBonus:     0.2,
		VolumeBonus:      0.1,

		TotalBonus:    0.3,
		SubtotalBonus: 0.2,
		PaymentBonus:  0.2,
		CurrencyBonus: 0.3,
		DateBonus:     0.2,
		TimeBonus:     0.1,
		PriceBonus:    0.3,
		StoreBonus:    0.2,
	}
}
