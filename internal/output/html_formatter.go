package output

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/cropsim/crop-dashboard/internal/analytics"
)

// HTMLFormatter produces a standalone HTML report with an inline SVG chart.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"labelClass": func(l analytics.Label) string { return string(l) },
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	p, err := Present(report)
	if err != nil {
		return nil, err
	}

	// A report without chartable data still renders its tables.
	var chart template.HTML
	if svg, err := (ChartFormatter{Type: "svg"}).Format(report); err == nil {
		chart = template.HTML(stripXMLProlog(svg))
	}

	data := struct {
		*Presentation
		Locale      string
		GeneratedAt time.Time
		Chart       template.HTML
		Assumptions []string
	}{p, report.Locale, report.GeneratedAt, chart, Assumptions(report)}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripXMLProlog drops everything before the <svg> element.
func stripXMLProlog(svg []byte) string {
	if i := bytes.Index(svg, []byte("<svg")); i >= 0 {
		return string(svg[i:])
	}
	return string(svg)
}
