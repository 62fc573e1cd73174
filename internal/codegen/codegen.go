// Package codegen lowers a validated dispatch spec into Go source: one
// generic dispatch function realizing the type-tag dispatch table, bound
// checks for every specialization key, and the call expression substituted
// for the invocation.
//
// Go has no compile-time specialization feature, so selection is realized
// as a type switch over the specialization keys with the default arm as
// the fallthrough. The call site pays one runtime type-switch indirection
// where the original design resolved at compile time; pkg/dispatch
// documents this shift. Everything else — bound satisfaction, body type
// checking, extra-argument type agreement — stays with the host compiler,
// which reports against the generated fragment.
package codegen

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/ozars/specialized-dispatch/internal/ast"
)

// Site locates one invocation inside its host file. It seeds hygienic
// naming and //line attribution. File may be empty for ad-hoc expansion.
type Site struct {
	File   string
	Line   int
	Column int

	// EmitLineDirectives controls //line attribution of arm bodies back
	// to the host file. Ignored when File is empty.
	EmitLineDirectives bool
}

// Fragment is the generated output for one invocation.
type Fragment struct {
	// Name is the hygienic name of the generated dispatch function.
	Name string

	// Decls holds the bound checks and the dispatch function, destined
	// for the generated declarations file.
	Decls string

	// Call is the expression substituted for the invocation.
	Call string
}

type Generator struct {
	spec *ast.DispatchExpr
	site Site

	suffix string
}

func NewGenerator(spec *ast.DispatchExpr, site Site) *Generator {
	return &Generator{spec: spec, site: site}
}

// nameSuffix derives the hygienic per-site suffix: a SHA1-based UUID over
// the site and the invocation text. Deterministic, so regenerating the
// same spec yields byte-identical output; distinct sites get distinct
// names.
func nameSuffix(spec *ast.DispatchExpr, site Site) string {
	seed := fmt.Sprintf("%s:%d:%d\x00%s", site.File, site.Line, site.Column, specFingerprint(spec))
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
	return fmt.Sprintf("%x", id[:4])
}

// specFingerprint renders the parts of the spec that shape the fragment.
func specFingerprint(spec *ast.DispatchExpr) string {
	var b strings.Builder
	b.WriteString(spec.FromType.Normalized())
	b.WriteString("->")
	b.WriteString(spec.ToType.Normalized())
	for _, arm := range spec.Arms {
		b.WriteString(";")
		if arm.IsDefault() {
			b.WriteString("<" + arm.Generic.Name + ">")
		}
		for _, p := range arm.Params {
			b.WriteString(p.Name + ":" + p.Type.Normalized() + ",")
		}
		b.WriteString("=>" + arm.Body.Text)
	}
	return b.String()
}

var fragmentTmpl = template.Must(template.New("fragment").Parse(
	`{{range .BoundFuncs}}func {{.Name}}[X {{.Bound}}]() {}
{{end}}{{range .BoundChecks}}var _ = {{.Func}}[{{.Key}}]
{{end}}func {{.Name}}[{{.TypeParam}} {{.Constraint}}]({{.Recv}} {{.TypeParam}}{{range .Extras}}, {{.Local}} {{.Type}}{{end}}) {{.Return}} {
{{- if .Cases}}
	switch {{.Tag}} := any({{.Recv}}).(type) {
{{- range .Cases}}
	case {{.Key}}:
{{- if .Directive}}
{{.Directive}}
{{- end}}
		return {{.Wrapper}}
{{- end}}
	}
{{- end}}
{{- if .DefaultDirective}}
{{.DefaultDirective}}
{{- end}}
	return {{.DefaultWrapper}}
}
`))

type boundFunc struct {
	Name  string
	Bound string
}

type boundCheck struct {
	Func string
	Key  string
}

type caseData struct {
	Key       string
	Directive string
	Wrapper   string
}

type extraData struct {
	Local string
	Type  string
}

type fragmentData struct {
	Name             string
	TypeParam        string
	Constraint       string
	Recv             string
	Tag              string
	Return           string
	Extras           []extraData
	BoundFuncs       []boundFunc
	BoundChecks      []boundCheck
	Cases            []caseData
	DefaultDirective string
	DefaultWrapper   string
}

// Generate lowers the spec. The spec must have passed validation; the
// remaining error paths are defensive.
func (g *Generator) Generate() (*Fragment, error) {
	spec := g.spec
	if spec == nil || spec.FromType == nil || spec.ToType == nil || spec.Arg == nil {
		return nil, fmt.Errorf("codegen: incomplete spec")
	}
	def := spec.DefaultArm()
	if def == nil {
		return nil, fmt.Errorf("codegen: spec has no default arm")
	}

	g.suffix = nameSuffix(spec, g.site)
	name := "specializedDispatch_" + g.suffix
	recv := "arg_" + g.suffix
	tag := "tag_" + g.suffix

	data := fragmentData{
		Name:       name,
		TypeParam:  def.Generic.Name,
		Constraint: constraintText(def.Generic),
		Recv:       recv,
		Tag:        tag,
		Return:     spec.ToType.Text,
	}

	// Extra slots: the outer signature follows the default arm's
	// declarations; each arm's wrapper rebinds them under its own names
	// and annotations, so spelling disagreements surface from the host
	// compiler inside the fragment.
	locals := make([]string, 0, len(def.ExtraSlots()))
	for i, slot := range def.ExtraSlots() {
		local := fmt.Sprintf("ext%d_%s", i, g.suffix)
		locals = append(locals, local)
		data.Extras = append(data.Extras, extraData{Local: local, Type: slot.Type.Text})
	}

	// Bound satisfaction is checked by instantiating a throwaway generic
	// function at every specialization key. Instantiation is legal for
	// every constraint kind (plain interfaces, comparable, unions, ~T)
	// and fails only for a key that does not satisfy the bound.
	specs := spec.Specializations()
	if len(specs) > 0 {
		for i, bound := range def.Generic.Bounds {
			data.BoundFuncs = append(data.BoundFuncs, boundFunc{
				Name:  fmt.Sprintf("%s_bound%d", name, i),
				Bound: bound.Text,
			})
		}
	}

	for _, arm := range specs {
		key := arm.KeyType()
		if key == nil {
			return nil, fmt.Errorf("codegen: specialization arm has no key type")
		}
		for _, bf := range data.BoundFuncs {
			data.BoundChecks = append(data.BoundChecks, boundCheck{Func: bf.Name, Key: key.Text})
		}
		data.Cases = append(data.Cases, caseData{
			Key:       key.Text,
			Directive: g.lineDirective(arm.Body),
			Wrapper:   g.wrapper(arm, tag, locals),
		})
	}

	data.DefaultDirective = g.lineDirective(def.Body)
	data.DefaultWrapper = g.wrapper(def, recv, locals)

	var decls strings.Builder
	if err := fragmentTmpl.Execute(&decls, data); err != nil {
		return nil, fmt.Errorf("codegen: rendering fragment: %w", err)
	}

	call := g.callExpr(name)

	return &Fragment{Name: name, Decls: decls.String(), Call: call}, nil
}

// wrapper renders one arm body as an immediately invoked function literal.
// The literal's parameters carry the arm's own binding names and
// annotations, so `_` bindings and unused extras stay legal and the body
// sees exactly the names the arm declared.
func (g *Generator) wrapper(arm *ast.DispatchArm, value string, locals []string) string {
	def := arm.IsDefault()

	var params []string
	for i, p := range arm.Params {
		typ := p.Type.Text
		if def && i == 0 {
			typ = arm.Generic.Name
		}
		params = append(params, p.Name+" "+typ)
	}

	args := append([]string{value}, locals...)

	body := arm.Body.Text
	if strings.HasPrefix(body, "{") {
		return fmt.Sprintf("func(%s) %s %s(%s)",
			strings.Join(params, ", "), g.spec.ToType.Text, body, strings.Join(args, ", "))
	}
	return fmt.Sprintf("func(%s) %s { return %s }(%s)",
		strings.Join(params, ", "), g.spec.ToType.Text, body, strings.Join(args, ", "))
}

// callExpr renders the invocation replacement, instantiated explicitly at
// the call site's dispatch type.
func (g *Generator) callExpr(name string) string {
	args := make([]string, 0, 1+len(g.spec.ExtraArgs))
	args = append(args, g.spec.Arg.Text)
	for _, extra := range g.spec.ExtraArgs {
		args = append(args, extra.Text)
	}
	return fmt.Sprintf("%s[%s](%s)", name, g.spec.FromType.Text, strings.Join(args, ", "))
}

// lineDirective attributes a spliced body back to its host-file line.
func (g *Generator) lineDirective(body *ast.Span) string {
	if !g.site.EmitLineDirectives || g.site.File == "" || body == nil {
		return ""
	}
	line := g.site.Line + body.GetToken().Line - 1
	return fmt.Sprintf("//line %s:%d", g.site.File, line)
}

// constraintText renders the default arm's capability bounds as a Go type
// constraint: `any` without bounds, the bound itself for one, an inline
// interface embedding for several.
func constraintText(gp *ast.GenericParam) string {
	switch len(gp.Bounds) {
	case 0:
		return "any"
	case 1:
		return gp.Bounds[0].Text
	default:
		parts := make([]string, 0, len(gp.Bounds))
		for _, b := range gp.Bounds {
			parts = append(parts, b.Text)
		}
		return "interface{ " + strings.Join(parts, "; ") + " }"
	}
}
