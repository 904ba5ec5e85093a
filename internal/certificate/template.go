package certificate

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/aura-webinar/studytime/internal/models"
)

// Placeholder is the single substitution point in a certificate page template.
const Placeholder = "<!-- CERTIFICATE -->"

//go:embed certificate_template.html
var defaultPage string

var body = template.Must(template.New("certificate").Parse(`
<h1>{{.Profile.Title}}</h1>
<p>{{.Doc.Person}} {{.Profile.Honorific}}</p>
<p>{{.Profile.Statement}}</p>
<p>{{.Profile.IssueDateLabel}}　{{.Doc.IssueDate}}</p>
{{- if .Profile.IssuerOrg}}
<p>{{.Profile.IssuerOrgLabel}}　{{.Profile.IssuerOrg}}</p>
{{- end}}
{{- if .Profile.IssuerName}}
<p>{{.Profile.IssuerNameLabel}}　{{.Profile.IssuerName}}</p>
{{- end}}
<table>
  <thead>
    <tr>
      <th>{{.Profile.Columns.Folder}}</th>
      <th>{{.Profile.Columns.Content}}</th>
      <th>{{.Profile.Columns.Start}}</th>
      <th>{{.Profile.Columns.End}}</th>
      <th>{{.Profile.Columns.Duration}}</th>
      <th>{{.Profile.Columns.Standard}}</th>
    </tr>
  </thead>
  <tbody>
{{- range .Doc.Rows}}
    <tr>
      <td>{{.Folder}}</td>
      <td>{{.Content}}</td>
      <td>{{.Start}}</td>
      <td>{{.End}}</td>
      <td>{{.Duration}}</td>
      <td>{{.StandardDuration}}</td>
    </tr>
{{- end}}
  </tbody>
</table>
<p>{{.Profile.TotalDurationLabel}}: {{.Doc.TotalDuration}}</p>
<p>{{.Profile.TotalStandardLabel}}: {{.Doc.TotalStandard}}</p>
`))

// Page is a certificate page template with one Placeholder.
type Page struct {
	html string
}

// DefaultPage returns the embedded page template.
func DefaultPage() Page { return Page{html: defaultPage} }

// LoadPage reads a page template; an empty path returns the embedded one.
func LoadPage(path string) (Page, error) {
	if path == "" {
		return DefaultPage(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("read certificate template: %w", err)
	}
	return NewPage(string(data))
}

// NewPage validates that html has exactly one Placeholder.
func NewPage(html string) (Page, error) {
	switch n := strings.Count(html, Placeholder); n {
	case 1:
		return Page{html: html}, nil
	case 0:
		return Page{}, errors.New("certificate template has no " + Placeholder)
	default:
		return Page{}, fmt.Errorf("certificate template has %d substitution points, want 1", n)
	}
}

// RenderHTML fills the page with the escaped certificate body.
func (p Page) RenderHTML(doc *models.CertificateDocument, profile Profile) (string, error) {
	var buf bytes.Buffer
	err := body.Execute(&buf, struct {
		Doc     *models.CertificateDocument
		Profile Profile
	}{doc, profile})
	if err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}
	return strings.Replace(p.html, Placeholder, buf.String(), 1), nil
}
