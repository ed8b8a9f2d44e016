package lower

import (
	"coolcil/internal/cil"
	"coolcil/internal/semant"
)

// Class Descriptor Emitter: builds a user class's runtime layout — its
// base-first attribute table and its override-resolved, base-first vtable
// — by delegating to semant.Type's own chain-walking helpers. The original
// (original_source/src/code_gen/cil_builder.py) instead open-codes the walk
// inline per ClassDeclarationNode, accumulating each step in reverse and
// reversing the whole list at the end; semant.Type.AllAttributeBindings
// and AllMethods already produce the same base-first result from a single
// base-first walk of Chain(), so this emitter is a thin adapter rather
// than a second copy of that walk.
//
// One correction relative to the original: cil_builder.py's descriptor
// walk names every attribute slot after the class currently being visited
// (node.id), even for inherited slots, so e.g. class B's descriptor would
// list "B_x" for an attribute x actually declared on ancestor A. The
// specification's own worked example (constructor_B referencing "A_x")
// requires the opposite: an attribute symbol must always name its
// declaring class, stable across every subclass descriptor that inherits
// it. emitClassDescriptor and buildConstructor (constructor.go) both use
// AttributeBinding.Declaring for this reason.

// emitClassDescriptor builds t's TypeDescriptor.
func emitClassDescriptor(t *semant.Type) cil.TypeDescriptor {
	bindings := t.AllAttributeBindings()
	attrs := make([]string, len(bindings))
	for i1, ab := range bindings {
		attrs[i1] = attrSymbol(ab.Declaring.Name(), ab.Attribute.Name)
	}

	methodBindings := t.AllMethods()
	methods := make([]cil.MethodBinding, len(methodBindings))
	for i1, mb := range methodBindings {
		methods[i1] = cil.MethodBinding{Name: mb.Method.Name, FnSymbol: fnSymbol(mb.Method.Name, mb.Declaring.Name())}
	}

	return cil.TypeDescriptor{Name: t.Name(), Attributes: attrs, Methods: methods}
}

// vtableIndex returns the vtable slot for a dynamic call to method on an
// object of static type typeName. ok is false if the type checker should
// have rejected this program (method not found anywhere in typeName's
// chain) — unreachable in a well-typed input.
func vtableIndex(ctx *semant.Context, typeName, method string) (idx int, ok bool) {
	t, found := ctx.GetType(typeName)
	if !found {
		return 0, false
	}
	for i1, mb := range t.AllMethods() {
		if mb.Method.Name == method {
			return i1, true
		}
	}
	return 0, false
}
