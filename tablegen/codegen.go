package tablegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ColumnSpec is the declarative, serializable description of one column,
// the TOML-facing counterpart of a ColumnBuilder.
type ColumnSpec struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"` // int32, uint32, int64, double, string
	Nullable bool   `toml:"nullable"`
	Sorted   bool   `toml:"sorted"`
	SetId    bool   `toml:"set_id"`
	Hidden   bool   `toml:"hidden"`
	Dense    bool   `toml:"dense"`
}

// Spec is the declarative description of one generated table, normally
// loaded from a TOML file by cmd/gentable.
type Spec struct {
	Package string       `toml:"package"`
	Name    string        `toml:"name"`
	Struct  string        `toml:"struct"`
	Columns []ColumnSpec `toml:"columns"`
}

func (c ColumnSpec) goType() string {
	switch c.Type {
	case "int32":
		return "int32"
	case "uint32":
		return "uint32"
	case "int64":
		return "int64"
	case "double":
		return "float64"
	case "string":
		return "string"
	default:
		return "interface{}"
	}
}

func (c ColumnSpec) fieldName() string {
	parts := strings.Split(c.Name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func (c ColumnSpec) builderExpr() string {
	var flags []string
	if c.Sorted {
		flags = append(flags, "column.FlagSorted")
	}
	if c.SetId {
		flags = append(flags, "column.FlagSorted", "column.FlagNonNull", "column.FlagSetId")
	}
	if c.Hidden {
		flags = append(flags, "column.FlagHidden")
	}
	if c.Dense {
		flags = append(flags, "column.FlagDense")
	}
	flagExpr := "column.FlagNone"
	if len(flags) > 0 {
		flagExpr = strings.Join(dedupe(flags), "|")
	}
	switch c.Type {
	case "string":
		return fmt.Sprintf("tablegen.StringColumn(%q, pool, %s, %t)", c.Name, flagExpr, c.Nullable)
	default:
		ctor := map[string]string{"int32": "Int32Column", "uint32": "Uint32Column", "int64": "Int64Column", "double": "DoubleColumn"}[c.Type]
		return fmt.Sprintf("tablegen.%s(%q, %s, %t)", ctor, c.Name, flagExpr, c.Nullable)
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

const genTemplate = `// Code generated by gentable from a table schema. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/stringpool"
	"github.com/dolthub/tracecolumn/tablegen"
)

// {{.Struct}}Row is one row of the {{.Name}} table.
type {{.Struct}}Row struct {
{{- range .Columns}}
	{{fieldName .}} {{goType .}}
{{- end}}
}

// New{{.Struct}}Builder returns a tablegen.TableBuilder for the {{.Name}} table.
func New{{.Struct}}Builder(pool *stringpool.Pool) *tablegen.TableBuilder {
	return tablegen.NewTableBuilder("{{.Name}}", pool,
{{- range .Columns}}
		{{builderExpr .}},
{{- end}}
	)
}

// Append{{.Struct}} appends one row to b.
func Append{{.Struct}}(b *tablegen.TableBuilder, row {{.Struct}}Row) {
	b.AppendRow(
{{- range .Columns}}
		{{valueExpr .}},
{{- end}}
	)
}
`

func valueExpr(c ColumnSpec) string {
	field := "row." + c.fieldName()
	switch c.Type {
	case "string":
		return fmt.Sprintf("sqlvalue.String(%s)", field)
	case "double":
		return fmt.Sprintf("sqlvalue.Double(%s)", field)
	default:
		return fmt.Sprintf("sqlvalue.Long(int64(%s))", field)
	}
}

// Generate renders the Go source implementing spec's declared table.
func Generate(spec Spec) (string, error) {
	funcs := template.FuncMap{
		"fieldName":   ColumnSpec.fieldName,
		"goType":      ColumnSpec.goType,
		"builderExpr": ColumnSpec.builderExpr,
		"valueExpr":   valueExpr,
	}
	tmpl, err := template.New("table").Funcs(funcs).Parse(genTemplate)
	if err != nil {
		return "", fmt.Errorf("tablegen: parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("tablegen: executing template for %q: %w", spec.Name, err)
	}
	return buf.String(), nil
}
