package lower

import (
	"fmt"

	"coolcil/internal/ast"
	"coolcil/internal/cil"
	"coolcil/internal/semant"
	"coolcil/internal/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// builder accumulates the pieces of a cil.Program while the pass walks the
// typed tree, and tracks the "current" type/function a helper is lowering
// into. Exactly one builder is used per Lower call and is never shared
// across goroutines (§5).
type builder struct {
	ctx      *semant.Context
	astTypes map[string]*ast.Class // class name -> its declaration, for attribute initializer lookup.

	namer *namer

	types     []cil.TypeDescriptor
	data      []cil.DataEntry
	functions []cil.Function

	curType *semant.Type // Type whose method/constructor body is currently being lowered.
	curFn   int          // Index into functions of the function currently being appended to, or -1.

	// selfName is the local/param name holding the receiver instance in
	// the function currently being lowered: the literal parameter "self"
	// inside a method (every method's first parameter, per invariant),
	// but a generated temp inside a constructor, which has no "self"
	// parameter of its own — see buildConstructor.
	selfName string

	// perr buffers non-fatal diagnostics for the caller to report, e.g. one
	// warning per `case` expression lowered (§9: always restricted to
	// CASE_NOT_SUPPORTED). Unlike the teacher's src/util/perror.go, which
	// is fed from a channel by parallel worker goroutines, this pass is
	// single-threaded (§5), so perr is touched only from the goroutine
	// driving Lower.
	perr *util.Perror
}

// ---------------------
// ----- Functions -----
// ---------------------

// newBuilder returns an empty builder reading from ctx and astTypes.
func newBuilder(ctx *semant.Context, astTypes map[string]*ast.Class) *builder {
	return &builder{
		ctx:      ctx,
		astTypes: astTypes,
		namer:    newNamer(),
		curFn:    -1,
		perr:     util.NewPerror(0),
	}
}

// program assembles the accumulated pieces into a cil.Program. BuildID is
// left zero; lower.go stamps it once lowering completes.
func (b *builder) program() cil.Program {
	return cil.Program{Types: b.types, Data: b.data, Functions: b.functions}
}

// addType appends a fully built TypeDescriptor.
func (b *builder) addType(t cil.TypeDescriptor) {
	b.types = append(b.types, t)
}

// addData interns literal as a fresh data symbol and returns it.
func (b *builder) addData(literal string) string {
	sym := b.namer.nextDataID()
	b.data = append(b.data, cil.DataEntry{Symbol: sym, Literal: literal})
	return sym
}

// beginFunction starts a new Function named name and makes it current.
func (b *builder) beginFunction(name string) {
	b.functions = append(b.functions, cil.Function{Name: name})
	b.curFn = len(b.functions) - 1
}

// endFunction clears the current-function cursor. It does not need to do
// anything to the slice: every helper mutates b.functions[b.curFn] in
// place, never holding a stale pointer across an append.
func (b *builder) endFunction() {
	b.curFn = -1
}

// fn returns a pointer to the function currently being built.
func (b *builder) fn() *cil.Function {
	return &b.functions[b.curFn]
}

// addParam appends name as the next parameter of the current function.
func (b *builder) addParam(name string) {
	f := b.fn()
	f.Params = append(f.Params, name)
}

// addLocal appends name as a new local of the current function verbatim,
// without any hinting/suffixing. Used for `let`-bound identifiers, which
// must keep their source spelling so later references to the same name
// resolve to this slot.
func (b *builder) addLocal(name string) string {
	f := b.fn()
	f.Locals = append(f.Locals, name)
	return name
}

// newTemp allocates a fresh internal local of the current function, named
// local_{fn}_{hint}_{seq}, seq being the count of locals already registered
// in this function — the teacher's src/util register-local convention
// (src/ir/lir), adapted from the original's register_local helper.
func (b *builder) newTemp(hint string) string {
	f := b.fn()
	name := fmt.Sprintf("local_%s_%s_%d", f.Name, hint, len(f.Locals))
	f.Locals = append(f.Locals, name)
	return name
}

// emit appends inst to the current function's body.
func (b *builder) emit(inst cil.Instruction) {
	f := b.fn()
	f.Body = append(f.Body, inst)
}

// isLocalOrParam reports whether name is already bound as a local or
// parameter of the current function, i.e. whether a reference to name
// should resolve to that slot rather than to a class attribute.
func (b *builder) isLocalOrParam(name string) bool {
	f := b.fn()
	for _, p := range f.Params {
		if p == name {
			return true
		}
	}
	for _, l := range f.Locals {
		if l == name {
			return true
		}
	}
	return false
}

// resolveAttribute finds the declaring Type of attribute name as seen from
// b.curType, assuming the (out of scope) type checker already guaranteed
// the reference is valid.
func (b *builder) resolveAttribute(name string) (semant.Attribute, *semant.Type) {
	return b.curType.GetAttribute(name)
}
