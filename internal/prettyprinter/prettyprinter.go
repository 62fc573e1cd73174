// Package prettyprinter renders a parsed dispatch spec as an indented
// tree. Used by the CLI's -print-spec flag and by parser tests, which
// compare printed trees instead of asserting on node fields one by one.
package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/ozars/specialized-dispatch/internal/ast"
)

// TreePrinter implements ast.Visitor.
type TreePrinter struct {
	sb     strings.Builder
	indent int
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

func (tp *TreePrinter) String() string { return tp.sb.String() }

func (tp *TreePrinter) line(format string, args ...interface{}) {
	tp.sb.WriteString(strings.Repeat("  ", tp.indent))
	fmt.Fprintf(&tp.sb, format, args...)
	tp.sb.WriteString("\n")
}

func (tp *TreePrinter) VisitDispatchExpr(e *ast.DispatchExpr) {
	tp.line("DispatchExpr")
	tp.indent++
	if e.Arg != nil {
		tp.line("Arg: %s", e.Arg.Text)
	}
	if e.FromType != nil && e.ToType != nil {
		tp.line("Type: %s -> %s", e.FromType.Text, e.ToType.Text)
	}
	for _, arm := range e.Arms {
		arm.Accept(tp)
	}
	for _, extra := range e.ExtraArgs {
		tp.line("Extra: %s", extra.Text)
	}
	tp.indent--
}

func (tp *TreePrinter) VisitDispatchArm(a *ast.DispatchArm) {
	kind := "Specialization"
	if a.IsDefault() {
		kind = "Default"
	}
	tp.line("%sArm", kind)
	tp.indent++
	if a.Generic != nil {
		a.Generic.Accept(tp)
	}
	for _, p := range a.Params {
		p.Accept(tp)
	}
	if a.Body != nil {
		tp.line("Body: %s", a.Body.Text)
	}
	tp.indent--
}

func (tp *TreePrinter) VisitGenericParam(g *ast.GenericParam) {
	if len(g.Bounds) == 0 {
		tp.line("Generic: %s", g.Name)
		return
	}
	bounds := make([]string, 0, len(g.Bounds))
	for _, b := range g.Bounds {
		bounds = append(bounds, b.Text)
	}
	tp.line("Generic: %s: %s", g.Name, strings.Join(bounds, " + "))
}

func (tp *TreePrinter) VisitArmParam(p *ast.ArmParam) {
	tp.line("Param: %s: %s", p.Name, p.Type.Text)
}

func (tp *TreePrinter) VisitSpan(s *ast.Span) {
	tp.line("Span: %s", s.Text)
}
