// Package llvmdump renders a cil.Program as a declaration-only LLVM IR
// module: one opaque function declaration per CIL function and one opaque
// global per string constant, with no bodies. It exists to exercise
// tinygo.org/x/go-llvm (the teacher's own dependency, used for real code
// generation in src/ir/llvm/transform.go) without crossing into actual
// backend code generation, which is explicitly out of scope for this
// pass — see SPEC_FULL.md's DOMAIN STACK section.
package llvmdump

import (
	"tinygo.org/x/go-llvm"

	"coolcil/internal/cil"
)

// ---------------------
// ----- Functions -----
// ---------------------

// Dump renders p as a textual LLVM IR module. Every CIL function becomes
// an opaque declaration taking one i8* per declared parameter and
// returning i8* (the universal "boxed object pointer" representation);
// every string constant becomes an opaque, uninitialized i8* global
// named after its CIL data symbol. Grounded on the shape of
// src/ir/llvm/transform.go's GenLLVM (llvm.NewModule/AddFunction/
// AddGlobal), stripped to declarations only.
func Dump(p *cil.Program) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	m := ctx.NewModule("coolcil")
	objPtr := llvm.PointerType(llvm.Int8Type(), 0)

	for _, d := range p.Data {
		llvm.AddGlobal(m, objPtr, d.Symbol)
	}

	for _, f := range p.Functions {
		params := make([]llvm.Type, len(f.Params))
		for i1 := range f.Params {
			params[i1] = objPtr
		}
		ftyp := llvm.FunctionType(objPtr, params, false)
		llvm.AddFunction(m, f.Name, ftyp)
	}

	return m.String(), nil
}
