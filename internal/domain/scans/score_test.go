package scans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeBucketsByImpact(t *testing.T) {
	issues := []Issue{
		{Rule: "image-alt", Impact: "critical"},
		{Rule: "color-contrast", Impact: "serious"},
		{Rule: "region", Impact: "moderate"},
		{Rule: "tabindex", Impact: "minor"},
		{Rule: "landmark-one-main", Impact: "info"}, // unknown impact
	}

	sum := Summarize(issues)

	assert.Equal(t, 1, sum.Critical)
	assert.Equal(t, 1, sum.Serious)
	assert.Equal(t, 2, sum.Moderate, "unknown impact counts as moderate")
	assert.Equal(t, 1, sum.Minor)
	assert.Equal(t, 5, sum.Total)
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		name string
		sum  IssueSummary
		want int
	}{
		{"clean page", IssueSummary{}, 100},
		{"one of each", IssueSummary{Critical: 1, Serious: 1, Moderate: 1, Minor: 1, Total: 4}, 82},
		{"critical deduction capped at five", IssueSummary{Critical: 9, Total: 9}, 50},
		{"exactly five criticals", IssueSummary{Critical: 5, Total: 5}, 50},
		{"clamped at zero", IssueSummary{Critical: 5, Serious: 20, Total: 25}, 0},
		{"serious only", IssueSummary{Serious: 3, Total: 3}, 85},
		{"minor noise", IssueSummary{Minor: 12, Total: 12}, 88},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeScore(tc.sum))
		})
	}
}

// Adding findings must never raise the score.
func TestComputeScoreMonotonic(t *testing.T) {
	base := IssueSummary{Critical: 1, Serious: 2, Moderate: 3, Minor: 4}
	baseScore := ComputeScore(base)

	worse := base
	worse.Serious++
	assert.LessOrEqual(t, ComputeScore(worse), baseScore)

	worse = base
	worse.Critical++
	assert.LessOrEqual(t, ComputeScore(worse), baseScore)
}
