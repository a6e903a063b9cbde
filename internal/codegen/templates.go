package codegen

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/record.tmpl templates/array.tmpl
var templateFS embed.FS

// recordField is one row of the record body template's field table:
// (index, name, width expression), matching package_generator.py's
// indices_names_and_widths.
type recordField struct {
	Index   int
	Name    string
	Width   string
	HasNext bool
}

type recordData struct {
	Type   string
	Fields []recordField
}

type arrayData struct {
	Type    string
	Subtype string
}

// templates holds the two body templates this generator needs, parsed once
// so a caller that reuses a Generator across many packages never re-reads
// the embedded files (§5: "if the caller reuses the generator across
// invocations, it is expected to cache templates").
type templates struct {
	record *template.Template
	array  *template.Template
}

func loadTemplates() (*templates, error) {
	recordSrc, err := templateFS.ReadFile("templates/record.tmpl")
	if err != nil {
		return nil, err
	}
	arraySrc, err := templateFS.ReadFile("templates/array.tmpl")
	if err != nil {
		return nil, err
	}
	recordTmpl, err := template.New("record").Parse(string(recordSrc))
	if err != nil {
		return nil, err
	}
	arrayTmpl, err := template.New("array").Parse(string(arraySrc))
	if err != nil {
		return nil, err
	}
	return &templates{record: recordTmpl, array: arrayTmpl}, nil
}

func (t *templates) renderRecord(data recordData) (string, error) {
	var buf bytes.Buffer
	if err := t.record.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (t *templates) renderArray(data arrayData) (string, error) {
	var buf bytes.Buffer
	if err := t.array.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
