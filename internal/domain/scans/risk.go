package scans

// Tier enum, ordered by severity
type Tier string

const (
	TierLow      Tier = "LOW"
	TierMedium   Tier = "MEDIUM"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
)

// tierOrder maps tiers to their severity rank for comparisons.
var tierOrder = map[Tier]int{
	TierLow:      0,
	TierMedium:   1,
	TierHigh:     2,
	TierCritical: 3,
}

// Less reports whether t is strictly less severe than other.
func (t Tier) Less(other Tier) bool {
	return tierOrder[t] < tierOrder[other]
}

// Risk is the legal-exposure classification attached to a scan. ReasonKey
// is an opaque key the presentation layer resolves to localized copy; it
// never carries display text itself.
type Risk struct {
	Tier      Tier   `json:"level"`
	ReasonKey string `json:"reason_key"`
	FineRange string `json:"estimated_fine"`
}

// ClassifyRisk maps score + critical-issue count to an exposure tier.
// Rules are evaluated in fixed priority order, first match wins.
func ClassifyRisk(score int, sum IssueSummary) Risk {
	switch {
	case sum.Critical >= 5:
		return Risk{Tier: TierCritical, ReasonKey: "risk.critical", FineRange: "₪75,000–150,000"}
	case sum.Critical >= 3 || score < 40:
		return Risk{Tier: TierHigh, ReasonKey: "risk.high", FineRange: "₪50,000–150,000"}
	case score < 70:
		return Risk{Tier: TierMedium, ReasonKey: "risk.medium", FineRange: "₪25,000–75,000"}
	default:
		return Risk{Tier: TierLow, ReasonKey: "risk.low", FineRange: "₪0–25,000"}
	}
}
