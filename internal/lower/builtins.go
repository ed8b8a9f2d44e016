package lower

import "coolcil/internal/cil"

// Built-in Injector: synthesizes the descriptors and function bodies for
// the five classes the source language predefines rather than leaves to
// user declarations — Object, IO, String, Int, Bool — grounded directly on
// original_source/src/code_gen/cil_builder.py's add_builtin_constructors
// and add_builtin_functions. Every predefined method takes "self" as its
// first parameter, matching the invariant that every method function's
// first parameter is self; the original's object_abort omits it, which
// this pass treats as an oversight rather than something to reproduce.

// injectBuiltins appends Object/IO/String/Int/Bool's descriptors,
// constructors and method bodies to b.
func (b *builder) injectBuiltins() {
	object := b.injectObject()
	io := b.injectIO(object)
	str := b.injectString(object)

	b.addType(cil.TypeDescriptor{Name: "Object", Methods: object})
	b.addType(cil.TypeDescriptor{Name: "IO", Methods: io})
	b.addType(cil.TypeDescriptor{Name: "String",
		Attributes: []string{attrSymbol("String", "length"), attrSymbol("String", "str_ref")},
		Methods:    str,
	})
	b.addType(cil.TypeDescriptor{Name: "Int", Attributes: []string{attrSymbol("Int", "value")}, Methods: object})
	b.addType(cil.TypeDescriptor{Name: "Bool", Attributes: []string{attrSymbol("Bool", "value")}, Methods: object})

	b.injectConstructor("Object")
	b.injectConstructor("IO")
	b.injectConstructor("String")
	b.injectConstructor("Int")
	b.injectConstructor("Bool")
}

// injectConstructor emits a trivial constructor_T for a built-in class:
// allocate, return. The intrinsic attributes of String, Int and Bool are
// not initialized here.
func (b *builder) injectConstructor(typeName string) {
	b.beginFunction(fnSymbol("constructor", typeName))
	self := b.newTemp("self")
	b.emit(cil.Instruction{Op: cil.OpAllocate, Dst: self, TypeName: typeName})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: self})
	b.endFunction()
}

// injectObject builds Object's three methods and returns its method table.
func (b *builder) injectObject() []cil.MethodBinding {
	b.beginFunction(fnSymbol("abort", "Object"))
	b.addParam("self")
	b.emit(cil.Instruction{Op: cil.OpRuntimeError, Kind: "ABORT_SIGNAL"})
	b.emit(cil.Instruction{Op: cil.OpReturn})
	b.endFunction()

	b.beginFunction(fnSymbol("copy", "Object"))
	b.addParam("self")
	dst := b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpCopy, Dst: dst, Src: "self"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	b.beginFunction(fnSymbol("type_name", "Object"))
	b.addParam("self")
	dst = b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpTypeName, Dst: dst, Src: "self"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	return []cil.MethodBinding{
		{Name: "abort", FnSymbol: fnSymbol("abort", "Object")},
		{Name: "copy", FnSymbol: fnSymbol("copy", "Object")},
		{Name: "type_name", FnSymbol: fnSymbol("type_name", "Object")},
	}
}

// injectIO builds IO's four own methods and returns its full (Object +
// IO) method table.
func (b *builder) injectIO(object []cil.MethodBinding) []cil.MethodBinding {
	b.beginFunction(fnSymbol("out_string", "IO"))
	b.addParam("self")
	b.addParam("str")
	b.emit(cil.Instruction{Op: cil.OpPrintStr, Src: "str"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: "self"})
	b.endFunction()

	b.beginFunction(fnSymbol("out_int", "IO"))
	b.addParam("self")
	b.addParam("int")
	b.emit(cil.Instruction{Op: cil.OpPrintInt, Src: "int"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: "self"})
	b.endFunction()

	b.beginFunction(fnSymbol("in_string", "IO"))
	b.addParam("self")
	dst := b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpRead, Dst: dst})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	b.beginFunction(fnSymbol("in_int", "IO"))
	b.addParam("self")
	dst = b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpRead, Dst: dst})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	return append(append([]cil.MethodBinding{}, object...),
		cil.MethodBinding{Name: "out_string", FnSymbol: fnSymbol("out_string", "IO")},
		cil.MethodBinding{Name: "out_int", FnSymbol: fnSymbol("out_int", "IO")},
		cil.MethodBinding{Name: "in_string", FnSymbol: fnSymbol("in_string", "IO")},
		cil.MethodBinding{Name: "in_int", FnSymbol: fnSymbol("in_int", "IO")},
	)
}

// injectString builds String's three own methods and returns its full
// (Object + String) method table.
func (b *builder) injectString(object []cil.MethodBinding) []cil.MethodBinding {
	b.beginFunction(fnSymbol("length", "String"))
	b.addParam("self")
	dst := b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpLength, Dst: dst, Src: "self"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	b.beginFunction(fnSymbol("concat", "String"))
	b.addParam("self")
	b.addParam("other")
	dst = b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpConcat, Dst: dst, Left: "self", Src: "other"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	b.beginFunction(fnSymbol("substr", "String"))
	b.addParam("self")
	b.addParam("i")
	b.addParam("n")
	dst = b.newTemp("ret")
	b.emit(cil.Instruction{Op: cil.OpSubstring, Dst: dst, Src: "self", Idx: "i", Count: "n"})
	b.emit(cil.Instruction{Op: cil.OpReturn, Src: dst})
	b.endFunction()

	return append(append([]cil.MethodBinding{}, object...),
		cil.MethodBinding{Name: "length", FnSymbol: fnSymbol("length", "String")},
		cil.MethodBinding{Name: "concat", FnSymbol: fnSymbol("concat", "String")},
		cil.MethodBinding{Name: "substr", FnSymbol: fnSymbol("substr", "String")},
	)
}
