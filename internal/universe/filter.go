package universe

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

// Variables available to filter expressions.
const (
	VarName    = "name"   // qualified name, e.g. "geom.Point"
	VarPackage = "pkg"    // "geom"; "package" is reserved in CEL
	VarSimple  = "simple" // "Point"
	VarKind    = "kind"   // "class", "interface" or "unknown"
)

// Filter narrows an index with a boolean CEL expression evaluated per entry,
// e.g. `!name.startsWith("internal.") && kind != "unknown"`.
type Filter struct {
	expr      string
	prg       cel.Program
	needsKind bool
}

// NewFilter compiles expr. The expression must evaluate to a bool.
func NewFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarPackage, cel.StringType),
		cel.Variable(VarSimple, cel.StringType),
		cel.Variable(VarKind, cel.StringType),
		celext.Strings(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating filter environment")
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.WithHint(errors.Wrapf(issues.Err(), "compiling filter %q", expr),
			"filters see the variables name, pkg, simple and kind")
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Newf("filter %q yields %s, want bool", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "building filter program")
	}
	f := &Filter{expr: expr, prg: prg}
	if parsed, err := cel.AstToParsedExpr(ast); err == nil {
		f.needsKind = references(parsed.GetExpr(), VarKind)
	}
	return f, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Apply returns the entries of idx for which the expression holds. loader is
// only consulted when the expression reads "kind".
func (f *Filter) Apply(idx *Index, loader hosttype.Loader) (*Index, error) {
	var keep []string
	for _, name := range idx.Names() {
		vars := map[string]any{
			VarName:    name,
			VarPackage: "",
			VarSimple:  name,
			VarKind:    "unknown",
		}
		if i := strings.LastIndex(name, "."); i >= 0 {
			vars[VarPackage] = name[:i]
			vars[VarSimple] = name[i+1:]
		}
		if f.needsKind && loader != nil {
			if t, err := loader.Load(name); err == nil {
				vars[VarKind] = "class"
				if t.IsInterface() {
					vars[VarKind] = "interface"
				}
			}
		}
		out, _, err := f.prg.Eval(vars)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating filter for %s", name)
		}
		if ok, _ := out.Value().(bool); ok {
			keep = append(keep, name)
		}
	}
	return New(keep...), nil
}

// references reports whether the parsed expression reads the identifier.
func references(e *exprpb.Expr, ident string) bool {
	if e == nil {
		return false
	}
	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		return k.IdentExpr.GetName() == ident
	case *exprpb.Expr_SelectExpr:
		return references(k.SelectExpr.GetOperand(), ident)
	case *exprpb.Expr_CallExpr:
		if references(k.CallExpr.GetTarget(), ident) {
			return true
		}
		for _, a := range k.CallExpr.GetArgs() {
			if references(a, ident) {
				return true
			}
		}
	case *exprpb.Expr_ListExpr:
		for _, el := range k.ListExpr.GetElements() {
			if references(el, ident) {
				return true
			}
		}
	case *exprpb.Expr_ComprehensionExpr:
		c := k.ComprehensionExpr
		for _, sub := range []*exprpb.Expr{c.GetIterRange(), c.GetAccuInit(), c.GetLoopCondition(), c.GetLoopStep(), c.GetResult()} {
			if references(sub, ident) {
				return true
			}
		}
	}
	return false
}
