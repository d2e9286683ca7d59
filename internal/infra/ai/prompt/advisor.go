package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/shaharz/negishscan/internal/domain/scans"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior web accessibility consultant. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- remediation_plan is an ordered array; put the highest-impact fixes first.
- Each step names the affected rule and gives a concrete fix a developer can apply.
- executive_summary is at most three sentences, written for a site owner, not a developer.
- Do not invent findings that are not in the input.

Schema (example with empty values):
{
  "executive_summary": "<string>",
  "remediation_plan": [
    {
      "rule": "<string>",
      "impact": "<critical|serious|moderate|minor>",
      "fix": "<string>",
      "effort": "<low|medium|high>"
    }
  ]
}`
}

// GetUserPrompt serializes the scan findings for the model.
func GetUserPrompt(s *scans.Scan) string {
	findings, _ := json.Marshal(struct {
		URL     string             `json:"url"`
		Score   int                `json:"score"`
		Summary scans.IssueSummary `json:"summary"`
		Issues  []scans.Issue      `json:"issues"`
	}{s.URL, s.Score, s.Summary, s.Issues})

	return fmt.Sprintf("Produce a remediation summary for this accessibility scan result:\n%s", findings)
}
