package lower

import (
	"context"
	"strings"
	"testing"

	"coolcil/internal/ast"
	"coolcil/internal/cil"
)

// findFn returns the function named name, failing the test if absent.
func findFn(t *testing.T, p *cil.Program, name string) cil.Function {
	t.Helper()
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no function named %s in program:\n%s", name, p.String())
	return cil.Function{}
}

func opsOf(f cil.Function) []cil.Op {
	out := make([]cil.Op, len(f.Body))
	for i1, inst := range f.Body {
		out[i1] = inst.Op
	}
	return out
}

func eqOps(a, b []cil.Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i1 := range a {
		if a[i1] != b[i1] {
			return false
		}
	}
	return true
}

// TestLower_EntryPointShape covers structural invariant 1: "main" is
// StaticCall(constructor_Main) -> Arg -> StaticCall(Main_main) -> Exit.
func TestLower_EntryPointShape(t *testing.T) {
	ctx := newBaseContext()
	mainTy := ctx.Define("Main", "IO")
	mainTy.AddMethod("main", "Object")

	program := &ast.Program{Classes: []*ast.Class{
		{Name: "Main", Parent: "IO", Methods: []*ast.FuncDecl{
			{Name: "main", ReturnType: "Object", Body: &ast.DefaultValue{TypeName: "Object"}},
		}},
	}}

	p, _, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	main := findFn(t, p, "main")
	got := opsOf(main)
	want := []cil.Op{cil.OpStaticCall, cil.OpArg, cil.OpStaticCall, cil.OpExit}
	if !eqOps(got, want) {
		t.Fatalf("main shape = %v, want %v", got, want)
	}
	if main.Body[0].FnSymbol != "constructor_Main" {
		t.Fatalf("main[0].FnSymbol = %q, want constructor_Main", main.Body[0].FnSymbol)
	}
	if main.Body[2].FnSymbol != "Main_main" {
		t.Fatalf("main[2].FnSymbol = %q, want Main_main", main.Body[2].FnSymbol)
	}
}

// TestLower_BuiltinDescriptors covers structural invariant 2: the five
// predefined classes get descriptors with the documented attribute/method
// shapes.
func TestLower_BuiltinDescriptors(t *testing.T) {
	ctx := newBaseContext()
	mainTy := ctx.Define("Main", "Object")
	mainTy.AddMethod("main", "Object")
	program := &ast.Program{Classes: []*ast.Class{
		{Name: "Main", Parent: "Object", Methods: []*ast.FuncDecl{
			{Name: "main", ReturnType: "Object", Body: &ast.DefaultValue{TypeName: "Object"}},
		}},
	}}

	p, _, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	byName := map[string]cil.TypeDescriptor{}
	for _, td := range p.Types {
		byName[td.Name] = td
	}

	str, ok := byName["String"]
	if !ok {
		t.Fatalf("no String descriptor")
	}
	if len(str.Attributes) != 2 || str.Attributes[0] != "String_length" || str.Attributes[1] != "String_str_ref" {
		t.Fatalf("String.Attributes = %v", str.Attributes)
	}

	io, ok := byName["IO"]
	if !ok {
		t.Fatalf("no IO descriptor")
	}
	var names []string
	for _, m := range io.Methods {
		names = append(names, m.Name)
	}
	want := []string{"abort", "copy", "type_name", "out_string", "out_int", "in_string", "in_int"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("IO.Methods = %v, want %v", names, want)
	}
}

// TestLower_ConstructorFlattensInheritedAttributes mirrors the
// specification's scenario S3: class A declares x:Int<-3, class B extends
// A and declares y:Int<-(x+1). constructor_B must default-initialize and
// then run initializers for both A_x and B's own y (symbol B... wait the
// attribute is declared on B, so its symbol is B_y), base attributes
// first.
func TestLower_ConstructorFlattensInheritedAttributes(t *testing.T) {
	ctx := newBaseContext()
	a := ctx.Define("A", "Object")
	a.AddAttribute("x", "Int")
	b := ctx.Define("B", "A")
	b.AddAttribute("y", "Int")

	program := &ast.Program{Classes: []*ast.Class{
		{Name: "A", Parent: "Object", Attributes: []*ast.AttrDecl{
			{Name: "x", Type: "Int", Init: intTy(3)},
		}},
		{Name: "B", Parent: "A", Attributes: []*ast.AttrDecl{
			{Name: "y", Type: "Int", Init: &ast.BinaryExpr{
				Op: ast.Plus, Left: varTy("x", "Int"), Right: intTy(1),
				Meta: ast.Meta{StaticType: "Int"},
			}},
		}},
	}}

	p, _, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	var td cil.TypeDescriptor
	for _, t1 := range p.Types {
		if t1.Name == "B" {
			td = t1
		}
	}
	if len(td.Attributes) != 2 || td.Attributes[0] != "A_x" || td.Attributes[1] != "B_y" {
		t.Fatalf("B.Attributes = %v, want [A_x B_y]", td.Attributes)
	}

	ctor := findFn(t, p, "constructor_B")
	var setAttrSymbols []string
	for _, inst := range ctor.Body {
		if inst.Op == cil.OpSetAttrib {
			setAttrSymbols = append(setAttrSymbols, inst.AttrSymbol)
		}
	}
	// Two SetAttrib per attribute: default, then initializer.
	want := []string{"A_x", "B_y", "A_x", "B_y"}
	if strings.Join(setAttrSymbols, ",") != strings.Join(want, ",") {
		t.Fatalf("constructor_B SetAttrib order = %v, want %v", setAttrSymbols, want)
	}
}

// TestLower_IfLowersElseBeforeThen mirrors scenario S5: the instruction
// stream visits the else branch before the then branch, since the
// generated GotoIf jumps forward over the (first-emitted) else code to
// reach the then label.
func TestLower_IfLowersElseBeforeThen(t *testing.T) {
	b := newBuilder(newBaseContext(), map[string]*ast.Class{})
	b.beginFunction("f")
	dst := b.newTemp("ret")

	n := &ast.If{
		Cond: boolLit(true),
		Then: strLit("then-branch"),
		Else: strLit("else-branch"),
	}
	if err := b.lowerExpr(n, dst); err != nil {
		t.Fatalf("lowerExpr: %v", err)
	}
	b.endFunction()

	f := b.functions[0]
	loadLiterals := func() []string {
		out := make([]string, 0, 2)
		bySym := map[string]string{}
		for _, d := range b.data {
			bySym[d.Symbol] = d.Literal
		}
		for _, inst := range f.Body {
			if inst.Op == cil.OpLoad {
				out = append(out, bySym[inst.DataSymbol])
			}
		}
		return out
	}()
	if len(loadLiterals) != 2 || loadLiterals[0] != "else-branch" || loadLiterals[1] != "then-branch" {
		t.Fatalf("load order = %v, want [else-branch then-branch]", loadLiterals)
	}

	ops := opsOf(f)
	want := []cil.Op{cil.OpAssign, cil.OpGotoIf, cil.OpLoad, cil.OpGoto, cil.OpLabel, cil.OpLoad, cil.OpLabel}
	if !eqOps(ops, want) {
		t.Fatalf("if shape = %v, want %v", ops, want)
	}
}

// TestLower_WhileShape checks the label/goto skeleton and that a while
// expression's static result is always Void.
func TestLower_WhileShape(t *testing.T) {
	b := newBuilder(newBaseContext(), map[string]*ast.Class{})
	b.beginFunction("f")
	dst := b.newTemp("ret")

	n := &ast.While{Cond: boolLit(false), Body: intTy(1)}
	if err := b.lowerExpr(n, dst); err != nil {
		t.Fatalf("lowerExpr: %v", err)
	}
	b.endFunction()

	ops := opsOf(b.functions[0])
	want := []cil.Op{
		cil.OpLabel, cil.OpAssign, cil.OpGotoIf, cil.OpGoto,
		cil.OpLabel, cil.OpAssign, cil.OpGoto, cil.OpLabel, cil.OpDefaultValue,
	}
	if !eqOps(ops, want) {
		t.Fatalf("while shape = %v, want %v", ops, want)
	}
}

// TestLower_LetShadowsAttribute checks that a `let`-bound local of the
// same name as an attribute shadows it within the let body.
func TestLower_LetShadowsAttribute(t *testing.T) {
	ctx := newBaseContext()
	a := ctx.Define("A", "Object")
	a.AddAttribute("x", "Int")
	a.AddMethod("m", "Int")

	program := &ast.Program{Classes: []*ast.Class{
		{Name: "A", Parent: "Object",
			Attributes: []*ast.AttrDecl{{Name: "x", Type: "Int", Init: intTy(3)}},
			Methods: []*ast.FuncDecl{
				{Name: "m", ReturnType: "Int", Body: &ast.Let{
					Bindings: []ast.VarDecl{{Id: "x", Type: "Int", Init: intTy(9)}},
					Body:     varTy("x", "Int"),
				}},
			},
		},
	}}

	p, _, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	m := findFn(t, p, "A_m")
	for _, inst := range m.Body {
		if inst.Op == cil.OpGetAttrib {
			t.Fatalf("A_m references attribute x instead of the shadowing let-binding: %s", m.String())
		}
	}
}

// TestLower_CaseAbortsCleanly checks the documented `case` restriction:
// the scrutinee is lowered, then the expression always aborts.
func TestLower_CaseAbortsCleanly(t *testing.T) {
	b := newBuilder(newBaseContext(), map[string]*ast.Class{})
	b.beginFunction("f")
	dst := b.newTemp("ret")

	n := &ast.Case{
		Expr: intTy(1),
		Items: []ast.CaseItem{
			{Id: "o", Type: "Object", Expr: intTy(0)},
		},
	}
	if err := b.lowerExpr(n, dst); err != nil {
		t.Fatalf("lowerExpr: %v", err)
	}
	b.endFunction()

	var sawAbort bool
	for _, inst := range b.functions[0].Body {
		if inst.Op == cil.OpRuntimeError {
			if inst.Kind != "CASE_NOT_SUPPORTED" {
				t.Fatalf("RuntimeError.Kind = %q, want CASE_NOT_SUPPORTED", inst.Kind)
			}
			sawAbort = true
		}
	}
	if !sawAbort {
		t.Fatalf("case did not emit RuntimeError: %s", b.functions[0].String())
	}
}

// TestLower_CaseWarnsThroughPerror checks that a `case` expression
// surfaces one non-fatal diagnostic through Lower's warnings slice,
// instead of only showing up as a RuntimeError buried in the CIL body.
func TestLower_CaseWarnsThroughPerror(t *testing.T) {
	ctx := newBaseContext()
	a := ctx.Define("A", "Object")
	a.AddMethod("m", "Object")

	program := &ast.Program{Classes: []*ast.Class{
		{Name: "A", Parent: "Object", Methods: []*ast.FuncDecl{
			{Name: "m", ReturnType: "Object", Body: &ast.Case{
				Expr: intTy(1),
				Items: []ast.CaseItem{
					{Id: "o", Type: "Object", Expr: intTy(0)},
				},
			}},
		}},
	}}

	_, warnings, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
}

// TestLower_Determinism covers property 6: two lowering runs over
// identical input produce byte-identical output, including BuildID.
func TestLower_Determinism(t *testing.T) {
	build := func() (*cil.Program, []error, error) {
		ctx := newBaseContext()
		a := ctx.Define("A", "Object")
		a.AddAttribute("x", "Int")
		a.AddMethod("m", "Int")
		mainTy := ctx.Define("Main", "IO")
		mainTy.AddMethod("main", "Object")

		program := &ast.Program{Classes: []*ast.Class{
			{Name: "A", Parent: "Object",
				Attributes: []*ast.AttrDecl{{Name: "x", Type: "Int", Init: intTy(3)}},
				Methods: []*ast.FuncDecl{
					{Name: "m", ReturnType: "Int", Body: varTy("x", "Int")},
				},
			},
			{Name: "Main", Parent: "IO", Methods: []*ast.FuncDecl{
				{Name: "main", ReturnType: "Object", Body: &ast.DefaultValue{TypeName: "Object"}},
			}},
		}}
		return Lower(context.Background(), program, ctx)
	}

	p1, _, err := build()
	if err != nil {
		t.Fatalf("first Lower: %v", err)
	}
	p2, _, err := build()
	if err != nil {
		t.Fatalf("second Lower: %v", err)
	}
	if p1.String() != p2.String() {
		t.Fatalf("two lowering runs diverged:\n--- run 1 ---\n%s\n--- run 2 ---\n%s", p1.String(), p2.String())
	}
	if p1.BuildID != p2.BuildID {
		t.Fatalf("BuildID diverged: %s vs %s", p1.BuildID, p2.BuildID)
	}
}

// TestLower_DynamicCallUsesTypeOfAndVtableIndex covers structural
// invariant about implicit-self dispatch: it reifies a runtime type tag
// and calls through a stable vtable index rather than a hardcoded symbol.
func TestLower_DynamicCallUsesTypeOfAndVtableIndex(t *testing.T) {
	ctx := newBaseContext()
	a := ctx.Define("A", "IO")
	a.AddMethod("greet", "Object")

	program := &ast.Program{Classes: []*ast.Class{
		{Name: "A", Parent: "IO", Methods: []*ast.FuncDecl{
			{Name: "greet", ReturnType: "Object", Body: &ast.Call{
				Id:   "out_string",
				Args: []ast.Expr{strLit("hi")},
				Meta: ast.Meta{StaticType: "Object"},
			}},
		}},
	}}

	p, _, err := Lower(context.Background(), program, ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	f := findFn(t, p, "A_greet")

	var typeOfIdx, firstArgIdx, dynCallIdx int = -1, -1, -1
	for i1, inst := range f.Body {
		switch inst.Op {
		case cil.OpTypeOf:
			typeOfIdx = i1
		case cil.OpArg:
			if firstArgIdx == -1 {
				firstArgIdx = i1
			}
		case cil.OpDynamicCall:
			dynCallIdx = i1
			if inst.VtableIndex != 3 { // abort, copy, type_name, out_string
				t.Fatalf("VtableIndex = %d, want 3", inst.VtableIndex)
			}
		}
	}
	if typeOfIdx == -1 || firstArgIdx == -1 || dynCallIdx == -1 {
		t.Fatalf("expected TypeOf+Arg+DynamicCall in %s", f.String())
	}
	// spec.md §4.5: TypeOf reifies the receiver's runtime type right after
	// receiver resolution, strictly before any Arg instruction.
	if typeOfIdx > firstArgIdx {
		t.Fatalf("TypeOf at %d did not precede first Arg at %d:\n%s", typeOfIdx, firstArgIdx, f.String())
	}
}
