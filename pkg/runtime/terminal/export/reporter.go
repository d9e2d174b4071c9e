package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
)

type TableConfig struct {
	NameWidth  int
	KindWidth  int
	BoundWidth int
	TitleWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  24,
		KindWidth:  16,
		BoundWidth: 22,
		TitleWidth: 30,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// AssemblyRow is one line of an assembly table.
type AssemblyRow struct {
	Name    string
	Kind    string
	Bounds  string
	Title   string
	Visible bool
}

type AssemblyReport struct {
	Viewsheet string
	Rows      []AssemblyRow
}

func NewAssemblyReport(viewsheet string, infos []info.AssemblyInfo) *AssemblyReport {
	r := &AssemblyReport{Viewsheet: viewsheet}
	for _, ai := range infos {
		b := ai.Base()
		row := AssemblyRow{
			Name:    b.Name(),
			Kind:    ai.Kind().String(),
			Bounds:  fmt.Sprintf("%d,%d %dx%d", b.Position.X, b.Position.Y, b.Size.Width, b.Size.Height),
			Visible: b.IsVisible(),
		}
		if t, ok := ai.(interface{ TitleText() string }); ok {
			row.Title = t.TitleText()
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name, kind, bounds, title string, visible any) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-7v |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.KindWidth, truncate(kind, c.config.KindWidth),
				c.config.BoundWidth, truncate(bounds, c.config.BoundWidth),
				c.config.TitleWidth, truncate(title, c.config.TitleWidth),
				visible)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.KindWidth+2),
				strings.Repeat("-", c.config.BoundWidth+2),
				strings.Repeat("-", c.config.TitleWidth+2),
				strings.Repeat("-", 9))
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func (c *Reporter) Assemblies(report *AssemblyReport) error {
	tmpl := `Viewsheet: {{.Viewsheet}} ({{len .Rows}} assemblies)
{{separator}}
{{formatRow "Name" "Kind" "Bounds" "Title" "Visible"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Kind .Bounds .Title .Visible}}
{{end}}{{separator}}
`
	t, err := template.New("assemblies").Funcs(c.funcs()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, report)
}

type RangeReport struct {
	Condition string
	SQL       string
	Args      []any
	Matches   []RangeMatch
}

type RangeMatch struct {
	Row   condition.MapRow
	Match bool
}

func (c *Reporter) Range(report *RangeReport) error {
	tmpl := `Condition: {{if .Condition}}{{.Condition}}{{else}}(none){{end}}
SQL:       {{if .SQL}}{{.SQL}}{{else}}(none){{end}}
Args:      {{.Args}}
{{if .Matches}}
{{range .Matches}}{{if .Match}}  match {{else}}  miss  {{end}}{{.Row}}
{{end}}{{end}}`
	t, err := template.New("range").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, report)
}
