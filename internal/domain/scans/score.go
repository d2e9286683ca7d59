package scans

// Severity weights for the compliance score.
const (
	weightCritical = 10
	weightSerious  = 5
	weightModerate = 2
	weightMinor    = 1

	// Beyond this many critical findings the marginal severity signal is
	// carried by the risk tier, not the score.
	criticalScoreCap = 5
)

// Summarize buckets raw findings into per-impact counts. Unknown impact
// strings count as moderate, matching the analyzer's own default.
func Summarize(issues []Issue) IssueSummary {
	var sum IssueSummary
	for _, is := range issues {
		switch is.Impact {
		case "critical":
			sum.Critical++
		case "serious":
			sum.Serious++
		case "minor":
			sum.Minor++
		default:
			sum.Moderate++
		}
	}
	sum.Total = len(issues)
	return sum
}

// ComputeScore converts aggregated issue counts into a 0-100 compliance
// score. Starts at 100 and deducts per finding; critical deductions are
// capped at criticalScoreCap findings, everything else is uncapped.
func ComputeScore(sum IssueSummary) int {
	score := 100

	critical := sum.Critical
	if critical > criticalScoreCap {
		critical = criticalScoreCap
	}
	score -= critical * weightCritical
	score -= sum.Serious * weightSerious
	score -= sum.Moderate * weightModerate
	score -= sum.Minor * weightMinor

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
