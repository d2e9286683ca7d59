package render

import (
	"bytes"
	"context"
	"html/template"

	domain "github.com/shaharz/negishscan/internal/domain/scans"
)

// Renderer produces the report document as self-contained HTML. The PDF
// typesetting engine sits behind the same port in production; everything
// here only decides what goes into the document, not how it is laid out.
type Renderer struct {
	tmpl *template.Template
}

func New() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("report").Parse(reportTemplate))}
}

func (r *Renderer) Render(_ context.Context, s *domain.Scan) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const reportTemplate = `<!DOCTYPE html>
<html lang="{{.Locale}}" dir="{{if eq .Locale "he"}}rtl{{else}}ltr{{end}}">
<head><meta charset="utf-8"><title>Accessibility Report {{.ID}}</title></head>
<body>
<h1>{{.URL}}</h1>
<p>Scan {{.ID}} — {{.Timestamp.Format "2006-01-02 15:04"}} UTC — {{.Standard}}</p>
<h2>Score: {{.Score}}/100</h2>
<p>Risk tier: {{.Risk.Tier}} ({{.Risk.FineRange}})</p>
<h2>Summary</h2>
<ul>
<li>Critical: {{.Summary.Critical}}</li>
<li>Serious: {{.Summary.Serious}}</li>
<li>Moderate: {{.Summary.Moderate}}</li>
<li>Minor: {{.Summary.Minor}}</li>
</ul>
<h2>Issues</h2>
{{range .Issues}}
<section>
<h3>[{{.Impact}}] {{.Title}}</h3>
<p>{{.Description}}</p>
{{if .FixSummary}}<p>{{.FixSummary}}</p>{{end}}
{{if .CodeExample}}<pre>{{.CodeExample}}</pre>{{end}}
</section>
{{end}}
<h2>Next steps</h2>
<ul>{{range .NextSteps}}<li>{{.}}</li>{{end}}</ul>
</body>
</html>
`
