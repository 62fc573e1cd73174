// Package rewriter finds dispatch.Expand marker calls in a host Go file
// and splices the generated fragments in: the call expression replaces the
// marker in the rewritten source, the declarations land in a sibling
// generated file. All other bytes of the host file are preserved.
package rewriter

import (
	"fmt"
	goast "go/ast"
	goparser "go/parser"
	gotoken "go/token"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/ozars/specialized-dispatch/internal/codegen"
	"github.com/ozars/specialized-dispatch/internal/config"
	"github.com/ozars/specialized-dispatch/internal/diagnostics"
	"github.com/ozars/specialized-dispatch/internal/lexer"
	"github.com/ozars/specialized-dispatch/internal/parser"
	"github.com/ozars/specialized-dispatch/internal/pipeline"
	"github.com/ozars/specialized-dispatch/internal/validator"
)

const generatedHeader = "// Code generated by dispatchgen. DO NOT EDIT.\n"

// Result is the outcome of rewriting one host file.
type Result struct {
	// Source is the rewritten host file, formatted.
	Source []byte

	// Generated is the declarations file content; nil when the file
	// contains no marker calls.
	Generated []byte

	// GeneratedPath is where Generated belongs, derived from the host
	// path and the configured suffix.
	GeneratedPath string

	// Count is the number of expanded invocations.
	Count int
}

// RewriteFile reads and rewrites one file.
func RewriteFile(path string, cfg *config.Config) (*Result, []*diagnostics.Error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []*diagnostics.Error{fileError(path, err)}
	}
	return Rewrite(src, path, cfg)
}

// Rewrite expands every marker call in src. Expansion failures do not stop
// at the first bad invocation: every marker is attempted and all
// diagnostics come back together.
func Rewrite(src []byte, path string, cfg *config.Config) (*Result, []*diagnostics.Error) {
	fset := gotoken.NewFileSet()
	file, err := goparser.ParseFile(fset, path, src, goparser.ParseComments)
	if err != nil {
		return nil, []*diagnostics.Error{fileError(path, err)}
	}

	markerName, dotImport := markerLocalName(file, cfg.MarkerImport)
	if dotImport != nil {
		return nil, []*diagnostics.Error{markerError(fset.Position(dotImport.Pos()),
			"marker package is dot-imported; expansion requires a qualified "+config.MarkerFunc+" call")}
	}
	if markerName == "" {
		return &Result{Source: src, GeneratedPath: generatedPath(path, cfg)}, nil
	}

	calls := collectMarkerCalls(file, markerName)
	if len(calls) == 0 {
		return &Result{Source: src, GeneratedPath: generatedPath(path, cfg)}, nil
	}

	var (
		errs     []*diagnostics.Error
		splices  []splice
		decls    []string
		tokFile  = fset.File(file.Pos())
	)

	for _, call := range calls {
		specText, base, derr := specLiteral(fset, call)
		if derr != nil {
			derr.File = path
			errs = append(errs, derr)
			continue
		}

		ctx := expand(specText, path, base, cfg)
		if ctx.Failed() {
			for _, e := range ctx.Errors {
				rebase(e, base)
				errs = append(errs, e)
			}
			continue
		}

		splices = append(splices, splice{
			start: tokFile.Offset(call.Pos()),
			end:   tokFile.Offset(call.End()),
			text:  ctx.GeneratedCall,
		})
		decls = append(decls, ctx.GeneratedDecls)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	rewritten := applySplices(src, splices)
	formatted, err := imports.Process(path, rewritten, nil)
	if err != nil {
		return nil, []*diagnostics.Error{fileError(path, fmt.Errorf("formatting rewritten source: %w", err))}
	}

	genPath := generatedPath(path, cfg)
	genSrc := generatedHeader + "\npackage " + file.Name.Name + "\n\n" + strings.Join(decls, "\n")
	genFormatted, err := imports.Process(genPath, []byte(genSrc), nil)
	if err != nil {
		return nil, []*diagnostics.Error{fileError(genPath, fmt.Errorf("formatting generated declarations: %w", err))}
	}

	return &Result{
		Source:        formatted,
		Generated:     genFormatted,
		GeneratedPath: genPath,
		Count:         len(splices),
	}, nil
}

// expand runs the full pipeline on one invocation text.
func expand(source, path string, base basePos, cfg *config.Config) *pipeline.PipelineContext {
	ctx := &pipeline.PipelineContext{
		SourceCode: source,
		FilePath:   path,
		BaseLine:   base.line,
		BaseColumn: base.column,
	}
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&validator.ValidatorProcessor{},
		&codegen.CodegenProcessor{EmitLineDirectives: cfg.EmitLineDirectives()},
	).Run(ctx)
}

type basePos struct {
	line   int
	column int
}

// rebase maps a diagnostic's position, which is relative to the invocation
// text, onto the host file.
func rebase(e *diagnostics.Error, base basePos) {
	if e.Line <= 1 {
		e.Column += base.column - 1
	}
	if e.Line > 0 {
		e.Line += base.line - 1
	} else {
		e.Line = base.line
	}
}

type splice struct {
	start, end int
	text       string
}

func applySplices(src []byte, splices []splice) []byte {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	out := append([]byte(nil), src...)
	for _, s := range splices {
		out = append(out[:s.start], append([]byte(s.text), out[s.end:]...)...)
	}
	return out
}

// markerLocalName resolves the package name the marker import is bound to
// in this file, "" when the file does not import it or imports it blank (a
// blank import leaves no way to call the marker). A dot import is returned
// to the caller for a diagnostic: an unqualified Expand cannot be matched
// reliably, and skipping it would leave the marker to panic at runtime.
func markerLocalName(file *goast.File, importPath string) (string, *goast.ImportSpec) {
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != importPath {
			continue
		}
		if imp.Name != nil {
			switch imp.Name.Name {
			case ".":
				return "", imp
			case "_":
				return "", nil
			}
			return imp.Name.Name, nil
		}
		if i := strings.LastIndex(path, "/"); i >= 0 {
			return path[i+1:], nil
		}
		return path, nil
	}
	return "", nil
}

// collectMarkerCalls gathers pkg.Expand calls, with or without explicit
// type arguments, in source order.
func collectMarkerCalls(file *goast.File, pkgName string) []*goast.CallExpr {
	var calls []*goast.CallExpr
	goast.Inspect(file, func(n goast.Node) bool {
		call, ok := n.(*goast.CallExpr)
		if !ok {
			return true
		}
		fun := call.Fun
		switch f := fun.(type) {
		case *goast.IndexExpr:
			fun = f.X
		case *goast.IndexListExpr:
			fun = f.X
		}
		sel, ok := fun.(*goast.SelectorExpr)
		if !ok || sel.Sel.Name != config.MarkerFunc {
			return true
		}
		if ident, ok := sel.X.(*goast.Ident); ok && ident.Name == pkgName {
			calls = append(calls, call)
		}
		return true
	})
	return calls
}

// specLiteral extracts the invocation text from a marker call's sole
// argument, which must be a string literal so the spec is fixed at the
// call site.
func specLiteral(fset *gotoken.FileSet, call *goast.CallExpr) (string, basePos, *diagnostics.Error) {
	pos := fset.Position(call.Pos())
	if len(call.Args) != 1 {
		return "", basePos{}, markerError(pos, "marker call takes exactly one spec string")
	}
	lit, ok := call.Args[0].(*goast.BasicLit)
	if !ok || lit.Kind != gotoken.STRING {
		return "", basePos{}, markerError(fset.Position(call.Args[0].Pos()),
			"marker argument must be a string literal; the dispatch arms are fixed at the call site")
	}
	text, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", basePos{}, markerError(fset.Position(lit.Pos()), "malformed spec literal")
	}
	litPos := fset.Position(lit.Pos())
	return text, basePos{line: litPos.Line, column: litPos.Column + 1}, nil
}

func markerError(pos gotoken.Position, msg string) *diagnostics.Error {
	return &diagnostics.Error{
		Code:     diagnostics.ErrR001,
		Message:  msg,
		File:     pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		ArmIndex: -1,
	}
}

func fileError(path string, err error) *diagnostics.Error {
	return &diagnostics.Error{
		Code:     diagnostics.ErrR002,
		Message:  err.Error(),
		File:     path,
		ArmIndex: -1,
	}
}

func generatedPath(path string, cfg *config.Config) string {
	return strings.TrimSuffix(path, ".go") + cfg.OutputSuffix
}
