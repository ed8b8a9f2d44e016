package lower

import (
	"coolcil/internal/ast"
	"coolcil/internal/cil"
	"coolcil/internal/semant"
)

// Constructor Synthesizer: for class C, emits constructor_C covering every
// attribute in C's full ancestry (not just C's own), grounded on
// original_source/src/code_gen/cil_builder.py's build_constructor but
// generalized to flatten the whole chain into one function body, base
// first, in two phases — every attribute gets its zero value before any
// initializer runs, so sibling attributes (including inherited ones) can
// be read from each other's initializer expressions. There is no
// "call the parent constructor" instruction in the alphabet, so each
// class's constructor must be fully self-sufficient.

// buildConstructor lowers t's constructor into b, using astTypes to find
// each attribute's (possibly absent) initializer expression.
func (b *builder) buildConstructor(t *semant.Type) error {
	b.beginFunction(fnSymbol("constructor", t.Name()))
	self := b.newTemp("self")
	b.emit(cil.Instruction{Op: cil.OpAllocate, Dst: self, TypeName: t.Name()})

	b.curType = t
	b.selfName = self
	bindings := t.AllAttributeBindings()

	for _, ab := range bindings {
		def := b.newTemp("default")
		b.emit(cil.Instruction{Op: cil.OpDefaultValue, Dst: def, TypeName: ab.Attribute.Type})
		b.emit(cil.Instruction{
			Op: cil.OpSetAttrib, Obj: self,
			AttrSymbol: attrSymbol(ab.Declaring.Name(), ab.Attribute.Name),
			Src:        def, TypeName: ab.Declaring.Name(),
		})
	}

	for _, ab := range bindings {
		init := b.findAttrInit(ab.Declaring.Name(), ab.Attribute.Name)
		if init == nil {
			continue
		}
		v := b.newTemp("init")
		if err := b.lowerExpr(init, v); err != nil {
			return err
		}
		b.emit(cil.Instruction{
			Op: cil.OpSetAttrib, Obj: self,
			AttrSymbol: attrSymbol(ab.Declaring.Name(), ab.Attribute.Name),
			Src:        v, TypeName: ab.Declaring.Name(),
		})
	}

	b.emit(cil.Instruction{Op: cil.OpReturn, Src: self})
	b.endFunction()
	return nil
}

// findAttrInit looks up the AttrDecl for attrName on class typeName's AST
// declaration and returns its initializer, or nil if the attribute has
// none (or typeName is a built-in with no AST declaration at all).
func (b *builder) findAttrInit(typeName, attrName string) ast.Expr {
	class, ok := b.astTypes[typeName]
	if !ok {
		return nil
	}
	for _, a := range class.Attributes {
		if a.Name == attrName {
			return a.Init
		}
	}
	return nil
}
