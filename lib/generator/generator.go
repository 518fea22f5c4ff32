// Package generator writes typed Go props structs for component templates.
//
// For every template under Root that carries a {# props ... #}
// declaration, it emits <name>_hx.go into OutDir with a struct holding one
// field per parameter plus one bool per enum flag.
package generator

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pthm/hxprops/lib/enum"
	"github.com/pthm/hxprops/lib/paramspec"
)

// Options configures the generator.
type Options struct {
	DryRun  bool
	Root    string   // template directory
	Include []string // doublestar patterns relative to Root
	Ignore  []string
	OutDir  string // defaults to Root
	Package string // defaults to the base name of OutDir
	Parser  *paramspec.Parser
	Log     io.Writer // progress lines; defaults to stdout
}

// Generator generates props code.
type Generator struct {
	opts Options
	fsys fs.FS
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Root == "" {
		opts.Root = "."
	}
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.html"}
	}
	if opts.OutDir == "" {
		opts.OutDir = opts.Root
	}
	if opts.Package == "" {
		abs, err := filepath.Abs(opts.OutDir)
		if err == nil {
			opts.Package = packageName(filepath.Base(abs))
		} else {
			opts.Package = "components"
		}
	}
	if opts.Parser == nil {
		opts.Parser = paramspec.NewParser(paramspec.DefaultOptions())
	}
	if opts.Log == nil {
		opts.Log = os.Stdout
	}
	return &Generator{opts: opts, fsys: os.DirFS(opts.Root)}
}

// Generate writes one file per declaring template. It stops at the first
// template whose declaration does not parse.
func (g *Generator) Generate() error {
	templates, err := g.FindTemplates()
	if err != nil {
		return err
	}
	for _, tmpl := range templates {
		comp, err := g.inspect(tmpl)
		if err != nil {
			return fmt.Errorf("%s: %w", tmpl, err)
		}
		if comp == nil {
			continue
		}
		if err := g.generateComponent(comp); err != nil {
			return fmt.Errorf("%s: %w", tmpl, err)
		}
	}
	return nil
}

// Clean removes generated files from OutDir.
func (g *Generator) Clean() error {
	entries, err := os.ReadDir(g.opts.OutDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_hx.go") {
			continue
		}
		path := filepath.Join(g.opts.OutDir, entry.Name())
		fmt.Fprintf(g.opts.Log, "removing %s\n", path)
		if !g.opts.DryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindTemplates returns template paths relative to Root, sorted and
// de-duplicated across patterns.
func (g *Generator) FindTemplates() ([]string, error) {
	return FindTemplates(g.fsys, g.opts.Include, g.opts.Ignore)
}

// FindTemplates globs fsys with include patterns and drops ignored paths.
func FindTemplates(fsys fs.FS, include, ignore []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || ignored(m, ignore) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ComponentInfo describes one template's generated struct.
type ComponentInfo struct {
	SourceFile   string // relative to Root
	Name         string // component name: SourceFile without extension
	TypeName     string // e.g. "CardProps"
	Props        []PropField
	NeedsDecimal bool
}

// PropField is one struct field.
type PropField struct {
	Key      string // parameter name
	Name     string // Go field name
	Type     string // Go type
	Kind     BindKind
	Elem     string // element type for lists, pointee for optionals
	Required bool
	Decl     string // the declaration token, for the field comment
	Flags    []FlagField
}

// FlagField is a bool field bound from an enum flag.
type FlagField struct {
	Flag string // scope name, e.g. "variantPrimary"
	Name string // Go field name
}

// BindKind selects the binding helper for a field.
type BindKind int

const (
	BindValue BindKind = iota
	BindOptional
	BindList
)

func (g *Generator) inspect(file string) (*ComponentInfo, error) {
	data, err := fs.ReadFile(g.fsys, file)
	if err != nil {
		return nil, err
	}
	src, ok := paramspec.Extract(string(data))
	if !ok {
		return nil, nil
	}
	specs, err := g.opts.Parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return Describe(file, specs), nil
}

// Describe maps a parsed declaration to struct fields.
func Describe(file string, specs *paramspec.List) *ComponentInfo {
	name := strings.TrimSuffix(file, path.Ext(file))
	comp := &ComponentInfo{
		SourceFile: file,
		Name:       name,
		TypeName:   exportName(strings.ReplaceAll(name, "/", "_")) + "Props",
	}
	for _, p := range specs.Params() {
		f := PropField{Key: p.Name, Name: exportName(p.Name), Required: p.Required(), Decl: declOf(p)}
		f.Type, f.Kind, f.Elem = goType(p)
		if strings.Contains(f.Type, "decimal.") {
			comp.NeedsDecimal = true
		}
		if p.Enum != nil {
			for _, v := range p.Enum.Allowed {
				flag := enum.FlagName(p.Name, v)
				f.Flags = append(f.Flags, FlagField{Flag: flag, Name: exportName(flag)})
			}
		}
		comp.Props = append(comp.Props, f)
	}
	return comp
}

func declOf(p paramspec.Param) string {
	s := p.Name
	if p.RawType != "" {
		s += ":" + p.RawType
	}
	if p.Enum != nil {
		return s + "=" + p.Enum.String()
	}
	if p.HasDefault() {
		s += fmt.Sprintf("=%v", p.Default)
	}
	return s
}

// goType returns the Go type for p and how to bind it.
func goType(p paramspec.Param) (typ string, kind BindKind, elem string) {
	if p.Enum != nil {
		return "string", BindValue, ""
	}
	return typeOf(p.Type)
}

func typeOf(t paramspec.Type) (string, BindKind, string) {
	switch t := t.(type) {
	case nil:
		return "any", BindValue, ""
	case paramspec.Annotated:
		return typeOf(t.Elem)
	case paramspec.Optional:
		inner, kind, elem := typeOf(t.Elem)
		if kind != BindValue || inner == "any" {
			return inner, kind, elem
		}
		return "*" + inner, BindOptional, inner
	case paramspec.ListOf:
		inner, kind, _ := typeOf(t.Elem)
		if kind != BindValue {
			inner = "any"
		}
		return "[]" + inner, BindList, inner
	case paramspec.Primitive:
		switch t.Kind {
		case paramspec.Int:
			return "int", BindValue, ""
		case paramspec.Float:
			return "float64", BindValue, ""
		case paramspec.Bool:
			return "bool", BindValue, ""
		case paramspec.String:
			return "string", BindValue, ""
		case paramspec.Decimal:
			return "decimal.Decimal", BindValue, ""
		}
	}
	return "any", BindValue, ""
}

// exportName converts "dark-mode", "data_id" or "variantPrimary" into an
// exported Go identifier.
func exportName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' || r == '/' || r == '.' {
			upper = true
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || unicode.IsDigit(rune(b.String()[0])) {
		return "components"
	}
	return b.String()
}
