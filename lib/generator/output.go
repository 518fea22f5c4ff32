package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// generateComponent writes the *_hx.go file for a component.
func (g *Generator) generateComponent(comp *ComponentInfo) error {
	base := strings.ToLower(strings.ReplaceAll(comp.Name, "/", "_"))
	outputFile := filepath.Join(g.opts.OutDir, base+"_hx.go")

	fmt.Fprintf(g.opts.Log, "generating %s\n", outputFile)

	if g.opts.DryRun {
		return nil
	}

	code, err := Render(g.opts.Package, comp)
	if err != nil {
		if len(code) > 0 {
			if writeErr := os.WriteFile(outputFile+".unformatted", code, 0644); writeErr == nil {
				fmt.Fprintf(g.opts.Log, "  wrote unformatted code to %s.unformatted for debugging\n", outputFile)
			}
		}
		return err
	}

	if err := os.MkdirAll(g.opts.OutDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(outputFile, code, 0644)
}

var propsTemplate = template.Must(template.New("hx").Funcs(template.FuncMap{
	"bind":   bindCode,
	"assign": assignCode,
}).Parse(hxTemplate))

// Render produces formatted Go source for comp. On a formatting failure
// it returns the unformatted code along with the error.
func Render(pkg string, comp *ComponentInfo) ([]byte, error) {
	data := struct {
		Package   string
		Component *ComponentInfo
	}{
		Package:   pkg,
		Component: comp,
	}

	var buf bytes.Buffer
	if err := propsTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

// bindCode generates the statement that loads one field.
func bindCode(f PropField) string {
	helper := "Bind"
	switch f.Kind {
	case BindOptional:
		helper = "BindOptional"
	case BindList:
		helper = "BindList"
	}
	return fmt.Sprintf("if err := hxprops.%s(values, %q, &p.%s); err != nil {\n\t\treturn err\n\t}", helper, f.Key, f.Name)
}

// assignCode generates the statement that emits one field as an
// assignment, skipping values that are unset.
func assignCode(f PropField) string {
	add := func(v string) string {
		return fmt.Sprintf("out = append(out, hxprops.Assignment{Key: %q, Value: %s})", f.Key, v)
	}
	switch {
	case f.Kind == BindOptional:
		return fmt.Sprintf("if p.%s != nil {\n\t\t%s\n\t}", f.Name, add("*p."+f.Name))
	case f.Kind == BindList, f.Type == "any":
		return fmt.Sprintf("if p.%s != nil {\n\t\t%s\n\t}", f.Name, add("p."+f.Name))
	case len(f.Flags) > 0:
		return fmt.Sprintf("if p.%s != \"\" {\n\t\t%s\n\t}", f.Name, add("p."+f.Name))
	default:
		return add("p." + f.Name)
	}
}

const hxTemplate = `// Code generated by hxprops. DO NOT EDIT.
// Source: {{.Component.SourceFile}}

package {{.Package}}

import (
	"github.com/pthm/hxprops"
	{{- if .Component.NeedsDecimal}}
	"github.com/shopspring/decimal"
	{{- end}}
)

{{$t := .Component.TypeName -}}
// {{$t}} holds the parameters declared by {{.Component.SourceFile}}.
type {{$t}} struct {
	{{- range .Component.Props}}
	// {{.Decl}}{{if .Required}} (required){{end}}
	{{.Name}} {{.Type}}
	{{- range .Flags}}
	{{.Name}} bool
	{{- end}}
	{{- end}}
}

// ComponentName returns the component {{$t}} binds to.
func ({{$t}}) ComponentName() string {
	return {{printf "%q" .Component.Name}}
}

// LoadBindings copies resolved values and enum flags into p.
func (p *{{$t}}) LoadBindings(values map[string]any, flags map[string]bool) error {
	{{- range .Component.Props}}
	{{bind .}}
	{{- range .Flags}}
	p.{{.Name}} = flags[{{printf "%q" .Flag}}]
	{{- end}}
	{{- end}}
	return nil
}

// Assignments returns p as call-site attributes.
func (p {{$t}}) Assignments() []hxprops.Assignment {
	out := make([]hxprops.Assignment, 0, {{len .Component.Props}})
	{{- range .Component.Props}}
	{{assign .}}
	{{- end}}
	return out
}
`
