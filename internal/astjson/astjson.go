// Package astjson decodes the typed-AST-plus-semantic-Context fixture
// cmd/coolc reads from disk into internal/ast and internal/semant values.
// Parsing and type-checking COOL source into this shape is the (out of
// scope) prior compiler stage; this package only bridges its JSON
// serialization back into Go values.
//
// ast.Expr is a sealed interface, so a plain json.Unmarshal can't dispatch
// on it directly. decodeExpr instead uses the two-pass, discriminator-tag
// decode funvibe-funxy's cmd/lsp/server.go uses for JSON-RPC's polymorphic
// message bodies: unmarshal once into an envelope carrying a "kind" tag
// and json.RawMessage holes for nested expressions, then unmarshal each
// hole again once the concrete shape is known.
package astjson

import (
	"encoding/json"
	"fmt"

	"coolcil/internal/ast"
	"coolcil/internal/semant"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

type wireProgram struct {
	Classes []wireClass `json:"classes"`
}

type wireClass struct {
	Name       string     `json:"name"`
	Parent     string     `json:"parent"`
	Attributes []wireAttr `json:"attributes"`
	Methods    []wireFunc `json:"methods"`
	Line       int        `json:"line"`
	Col        int        `json:"col"`
}

type wireAttr struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Init json.RawMessage `json:"init"`
	Line int             `json:"line"`
	Col  int             `json:"col"`
}

type wireFunc struct {
	Name       string          `json:"name"`
	Params     []wireParam     `json:"params"`
	ReturnType string          `json:"return_type"`
	Body       json.RawMessage `json:"body"`
	Line       int             `json:"line"`
	Col        int             `json:"col"`
}

type wireParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireVarDecl struct {
	Id   string          `json:"id"`
	Type string          `json:"type"`
	Init json.RawMessage `json:"init"`
}

type wireCaseItem struct {
	Id   string          `json:"id"`
	Type string          `json:"type"`
	Expr json.RawMessage `json:"expr"`
}

// wireExpr is the JSON envelope for every ast.Expr node: Kind selects
// which of the remaining, mostly-optional fields apply.
type wireExpr struct {
	Kind       string `json:"kind"`
	Line       int    `json:"line"`
	Col        int    `json:"col"`
	StaticType string `json:"static_type"`

	Id     string            `json:"id,omitempty"`
	Expr   json.RawMessage   `json:"expr,omitempty"`
	Obj    json.RawMessage   `json:"obj,omitempty"`
	AtType string            `json:"at_type,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`

	Cond json.RawMessage `json:"cond,omitempty"`
	Then json.RawMessage `json:"then,omitempty"`
	Else json.RawMessage `json:"else,omitempty"`
	Body json.RawMessage `json:"body,omitempty"`

	Exprs    []json.RawMessage `json:"exprs,omitempty"`
	Bindings []wireVarDecl     `json:"bindings,omitempty"`
	Items    []wireCaseItem    `json:"items,omitempty"`

	Op    string          `json:"op,omitempty"`
	Left  json.RawMessage `json:"left,omitempty"`
	Right json.RawMessage `json:"right,omitempty"`

	TypeName  string `json:"type_name,omitempty"`
	IntValue  int    `json:"int_value,omitempty"`
	Name      string `json:"name,omitempty"`
	StrValue  string `json:"str_value,omitempty"`
	BoolValue bool   `json:"bool_value,omitempty"`
}

type wireContextType struct {
	Name       string          `json:"name"`
	Parent     string          `json:"parent"`
	Attributes []wireAttrDecl  `json:"attributes"`
	Methods    []wireMethodDec `json:"methods"`
}

type wireAttrDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireMethodDec struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"return_type"`
	ParamTypes []string `json:"param_types"`
}

var binOpNames = map[string]ast.BinOp{
	"plus": ast.Plus, "minus": ast.Minus, "star": ast.Star, "div": ast.Div,
	"less": ast.Less, "less_equal": ast.LessEqual, "equal": ast.Equal,
}

var unOpNames = map[string]ast.UnOp{
	"not": ast.Not, "neg": ast.Neg, "is_void": ast.IsVoid,
}

// wireFixture is the on-disk shape cmd/coolc reads via -src: a typed AST
// paired with the resolved Context it was checked against, since the
// lowering pass needs both and there is no separate type-checking stage
// in this repo to produce the Context from the AST alone.
type wireFixture struct {
	Program wireProgram       `json:"program"`
	Context []wireContextType `json:"context"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// DecodeFixture parses a -src JSON fixture into the (*ast.Program,
// *semant.Context) pair Lower needs.
func DecodeFixture(data []byte) (*ast.Program, *semant.Context, error) {
	var wf wireFixture
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, nil, fmt.Errorf("astjson: decode fixture: %w", err)
	}
	prog := &ast.Program{Classes: make([]*ast.Class, len(wf.Program.Classes))}
	for i1, wc := range wf.Program.Classes {
		c, err := decodeClass(wc)
		if err != nil {
			return nil, nil, err
		}
		prog.Classes[i1] = c
	}
	ctx, err := decodeContextTypes(wf.Context)
	if err != nil {
		return nil, nil, err
	}
	return prog, ctx, nil
}

// DecodeProgram parses a typed-AST JSON fixture into an *ast.Program.
func DecodeProgram(data []byte) (*ast.Program, error) {
	var wp wireProgram
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("astjson: decode program: %w", err)
	}
	prog := &ast.Program{Classes: make([]*ast.Class, len(wp.Classes))}
	for i1, wc := range wp.Classes {
		c, err := decodeClass(wc)
		if err != nil {
			return nil, err
		}
		prog.Classes[i1] = c
	}
	return prog, nil
}

func decodeClass(wc wireClass) (*ast.Class, error) {
	c := &ast.Class{Name: wc.Name, Parent: wc.Parent, Line: wc.Line, Col: wc.Col}
	for _, wa := range wc.Attributes {
		var init ast.Expr
		if len(wa.Init) > 0 {
			e, err := decodeExpr(wa.Init)
			if err != nil {
				return nil, err
			}
			init = e
		}
		c.Attributes = append(c.Attributes, &ast.AttrDecl{
			Name: wa.Name, Type: wa.Type, Init: init, Line: wa.Line, Col: wa.Col,
		})
	}
	for _, wf := range wc.Methods {
		body, err := decodeExpr(wf.Body)
		if err != nil {
			return nil, err
		}
		params := make([]ast.Param, len(wf.Params))
		for i1, wp := range wf.Params {
			params[i1] = ast.Param{Name: wp.Name, Type: wp.Type}
		}
		c.Methods = append(c.Methods, &ast.FuncDecl{
			Name: wf.Name, Params: params, ReturnType: wf.ReturnType,
			Body: body, Line: wf.Line, Col: wf.Col,
		})
	}
	return c, nil
}

// decodeExpr dispatches on a wireExpr envelope's Kind tag to build the
// concrete ast.Expr node, recursively decoding any nested expression
// holes.
func decodeExpr(data json.RawMessage) (ast.Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var w wireExpr
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("astjson: decode expr: %w", err)
	}
	meta := ast.Meta{Line: w.Line, Col: w.Col, StaticType: w.StaticType}

	switch w.Kind {
	case "assign":
		e, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Meta: meta, Id: w.Id, Expr: e}, nil

	case "call":
		obj, err := decodeExpr(w.Obj)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(w.Args))
		for i1, a := range w.Args {
			args[i1], err = decodeExpr(a)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Call{Meta: meta, Obj: obj, AtType: w.AtType, Id: w.Id, Args: args}, nil

	case "if":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		return &ast.If{Meta: meta, Cond: cond, Then: then, Else: els}, nil

	case "while":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Meta: meta, Cond: cond, Body: body}, nil

	case "block":
		exprs := make([]ast.Expr, len(w.Exprs))
		for i1, e := range w.Exprs {
			var err error
			exprs[i1], err = decodeExpr(e)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Block{Meta: meta, Exprs: exprs}, nil

	case "let":
		bindings := make([]ast.VarDecl, len(w.Bindings))
		for i1, wb := range w.Bindings {
			init, err := decodeExpr(wb.Init)
			if err != nil {
				return nil, err
			}
			bindings[i1] = ast.VarDecl{Id: wb.Id, Type: wb.Type, Init: init}
		}
		body, err := decodeExpr(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Meta: meta, Bindings: bindings, Body: body}, nil

	case "case":
		scrutinee, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		items := make([]ast.CaseItem, len(w.Items))
		for i1, wi := range w.Items {
			e, err := decodeExpr(wi.Expr)
			if err != nil {
				return nil, err
			}
			items[i1] = ast.CaseItem{Id: wi.Id, Type: wi.Type, Expr: e}
		}
		return &ast.Case{Meta: meta, Expr: scrutinee, Items: items}, nil

	case "binary":
		op, ok := binOpNames[w.Op]
		if !ok {
			return nil, fmt.Errorf("astjson: unknown binary op %q", w.Op)
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Meta: meta, Op: op, Left: left, Right: right}, nil

	case "unary":
		op, ok := unOpNames[w.Op]
		if !ok {
			return nil, fmt.Errorf("astjson: unknown unary op %q", w.Op)
		}
		operand, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Meta: meta, Op: op, Expr: operand}, nil

	case "instantiate":
		return &ast.Instantiate{Meta: meta, TypeName: w.TypeName}, nil
	case "int":
		return &ast.ConstantNum{Meta: meta, Value: w.IntValue}, nil
	case "variable":
		return &ast.Variable{Meta: meta, Name: w.Name}, nil
	case "string":
		return &ast.String{Meta: meta, Value: w.StrValue}, nil
	case "boolean":
		return &ast.Boolean{Meta: meta, Value: w.BoolValue}, nil
	case "default":
		return &ast.DefaultValue{Meta: meta, TypeName: w.TypeName}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown expr kind %q", w.Kind)
	}
}

// DecodeContext parses the resolved semantic Context a typed-AST fixture
// carries alongside its tree. Classes must appear parent-before-child, the
// same invariant semant.Context.Define enforces.
func DecodeContext(data []byte) (*semant.Context, error) {
	var types []wireContextType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("astjson: decode context: %w", err)
	}
	return decodeContextTypes(types)
}

func decodeContextTypes(types []wireContextType) (*semant.Context, error) {
	ctx := semant.NewContext()
	for _, wt := range types {
		t := ctx.Define(wt.Name, wt.Parent)
		for _, a := range wt.Attributes {
			t.AddAttribute(a.Name, a.Type)
		}
		for _, m := range wt.Methods {
			t.AddMethod(m.Name, m.ReturnType, m.ParamTypes...)
		}
	}
	return ctx, nil
}
