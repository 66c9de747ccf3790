package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f3f3f3; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Summary}}
<p>{{.Summary}}</p>
{{- end}}
{{- range .Sections}}
<h2>{{.Name}}</h2>
{{- if .Table.Rows}}
<table>
<thead><tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- else}}
<p><em>No rows.</em></p>
{{- end}}
{{- end}}
</body>
</html>
`))

// RenderHTML writes doc as a static HTML page to w.
func RenderHTML(w io.Writer, doc Document) error {
	if err := pageTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// WriteHTML renders doc to path, creating parent directories as needed.
func WriteHTML(path string, doc Document) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(file, &err)

	return RenderHTML(file, doc)
}
