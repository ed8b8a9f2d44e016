package lower

import (
	"coolcil/internal/ast"
	"coolcil/internal/semant"
)

// newBaseContext returns a Context with Object, IO, String, Int and Bool
// already defined, with their methods and attributes, the shape Lower
// expects every caller to supply
// so a user class's "extends Object" (etc.) resolves a complete ancestor
// chain even though those five classes' CIL bodies come from
// injectBuiltins rather than from a user declaration.
func newBaseContext() *semant.Context {
	ctx := semant.NewContext()

	object := ctx.Define("Object", "")
	object.AddMethod("abort", "Object")
	object.AddMethod("copy", "SELF_TYPE")
	object.AddMethod("type_name", "String")

	io := ctx.Define("IO", "Object")
	io.AddMethod("out_string", "SELF_TYPE", "String")
	io.AddMethod("out_int", "SELF_TYPE", "Int")
	io.AddMethod("in_string", "String")
	io.AddMethod("in_int", "Int")

	str := ctx.Define("String", "Object")
	str.AddAttribute("length", "Int")
	str.AddAttribute("str_ref", "String")
	str.AddMethod("length", "Int")
	str.AddMethod("concat", "String", "String")
	str.AddMethod("substr", "String", "Int", "Int")

	i := ctx.Define("Int", "Object")
	i.AddAttribute("value", "Int")

	boolean := ctx.Define("Bool", "Object")
	boolean.AddAttribute("value", "Int")

	return ctx
}

func intTy(v int) ast.Expr                     { return &ast.ConstantNum{Value: v, Meta: ast.Meta{StaticType: "Int"}} }
func varTy(name, staticType string) ast.Expr   { return &ast.Variable{Name: name, Meta: ast.Meta{StaticType: staticType}} }
func strLit(v string) ast.Expr                 { return &ast.String{Value: v, Meta: ast.Meta{StaticType: "String"}} }
func boolLit(v bool) ast.Expr                  { return &ast.Boolean{Value: v, Meta: ast.Meta{StaticType: "Bool"}} }
