package lower

import "coolcil/internal/cil"

// Entry-Point Synthesizer: emits the "main" function that boots the
// program — instantiate Main, call its main() method, exit — grounded on
// original_source/src/code_gen/cil_builder.py's ProgramNode visitor, which
// builds this exact function before visiting any class declaration.

// buildEntryPoint emits the "main" function into b.
func (b *builder) buildEntryPoint() {
	b.beginFunction("main")
	instance := b.newTemp("instance")
	b.emit(cil.Instruction{Op: cil.OpStaticCall, Dst: instance, FnSymbol: fnSymbol("constructor", "Main")})
	b.emit(cil.Instruction{Op: cil.OpArg, Src: instance})
	result := b.newTemp("result")
	b.emit(cil.Instruction{Op: cil.OpStaticCall, Dst: result, FnSymbol: fnSymbol("main", "Main")})
	b.emit(cil.Instruction{Op: cil.OpExit})
	b.endFunction()
}
