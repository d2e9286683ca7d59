package scans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name      string
		score     int
		sum       IssueSummary
		wantTier  Tier
		wantKey   string
		wantRange string
	}{
		{"clean page is low", 100, IssueSummary{}, TierLow, "risk.low", "₪0–25,000"},
		{"score below seventy is medium", 65, IssueSummary{Serious: 7}, TierMedium, "risk.medium", "₪25,000–75,000"},
		{"score below forty is high", 35, IssueSummary{Serious: 13}, TierHigh, "risk.high", "₪50,000–150,000"},
		{"three criticals force high", 70, IssueSummary{Critical: 3}, TierHigh, "risk.high", "₪50,000–150,000"},
		{"five criticals force critical", 50, IssueSummary{Critical: 5}, TierCritical, "risk.critical", "₪75,000–150,000"},
		// critical count outranks a high score
		{"high score cannot mask five criticals", 90, IssueSummary{Critical: 5}, TierCritical, "risk.critical", "₪75,000–150,000"},
		{"boundary score seventy is low", 70, IssueSummary{}, TierLow, "risk.low", "₪0–25,000"},
		{"boundary score forty is medium", 40, IssueSummary{}, TierMedium, "risk.medium", "₪25,000–75,000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			risk := ClassifyRisk(tc.score, tc.sum)
			assert.Equal(t, tc.wantTier, risk.Tier)
			assert.Equal(t, tc.wantKey, risk.ReasonKey)
			assert.Equal(t, tc.wantRange, risk.FineRange)
		})
	}
}

func TestTierOrdering(t *testing.T) {
	assert.True(t, TierLow.Less(TierMedium))
	assert.True(t, TierMedium.Less(TierHigh))
	assert.True(t, TierHigh.Less(TierCritical))
	assert.False(t, TierCritical.Less(TierLow))
	assert.False(t, TierHigh.Less(TierHigh))
}
