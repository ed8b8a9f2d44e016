// Package cil defines the flat three-address intermediate representation
// emitted by the lowering pass: a tagged-union Instruction alphabet, typed
// descriptors, string data and function bodies, bundled into a Program.
//
// The package follows the tagged-variant recommendation of the
// specification's design notes (one Instruction struct keyed by Op) rather
// than the teacher's family-of-structs-per-instruction style used in
// src/ir/lir — see DESIGN.md for why this one component deliberately
// diverges from the teacher's own idiom.
package cil

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Op identifies the op-code of an Instruction. Every Instruction carries
// exactly one Op and only the operand fields that op-code defines; see the
// per-constant comments below for which Instruction fields apply.
type Op int

// The full CIL instruction alphabet (§3 of the specification). No other
// form may appear in a lowered Program.
const (
	OpAssign Op = iota // Dst = Imm (if IsImm) or Dst = Src.

	OpAllocate // Dst = new TypeName.
	OpLoad     // Dst = data[DataSymbol].
	OpCopy     // Dst = copy(Src).

	OpTypeOf       // Dst = runtime-type-tag(Src).
	OpTypeName     // Dst = type-name-string(Src).
	OpGetAttrib    // Dst = Obj.AttrSymbol (declared on TypeName).
	OpSetAttrib    // Obj.AttrSymbol = Src (declared on TypeName).
	OpDefaultValue // Dst = default(TypeName).
	OpIsVoid       // Dst = (Src == void).

	OpLabel  // Label:
	OpGoto   // goto Label.
	OpGotoIf // if Src goto Label.

	OpArg         // push Src as next call argument.
	OpStaticCall  // Dst = call FnSymbol(args...).
	OpDynamicCall // Dst = call vtable[Src][VtableIndex](args...).
	OpReturn      // return [Src].
	OpExit        // terminate the process.

	OpPlus          // Dst = Left + Src.
	OpMinus         // Dst = Left - Src.
	OpStar          // Dst = Left * Src.
	OpDivOp         // Dst = Left / Src.
	OpIntComplement // Dst = ~Src.
	OpNot           // Dst = !Src.

	OpLess      // Dst = Left < Src.
	OpLessEqual // Dst = Left <= Src.
	OpEqual     // Dst = Left == Src.

	OpLength    // Dst = len(Src).
	OpConcat    // Dst = Left ++ Src.
	OpSubstring // Dst = Src[Idx : Idx+Count].

	OpRead     // Dst = read-line().
	OpPrintStr // print(Src).
	OpPrintInt // print(Src).

	OpRuntimeError // abort(Kind).
)

// opNames gives a print-friendly mnemonic for each Op, in the teacher's
// DataType.String() lookup-table style (src/ir/lir/types/types.go).
var opNames = [...]string{
	"assign",
	"allocate", "load", "copy",
	"type_of", "type_name", "get_attr", "set_attr", "default", "is_void",
	"label", "goto", "goto_if",
	"arg", "static_call", "dynamic_call", "return", "exit",
	"plus", "minus", "star", "div", "complement", "not",
	"less", "less_eq", "equal",
	"length", "concat", "substring",
	"read", "print_str", "print_int",
	"runtime_error",
}

// String returns a print friendly mnemonic for op.
func (op Op) String() string {
	if int(op) < 0 || int(op) >= len(opNames) {
		return "unknown_op"
	}
	return opNames[op]
}

// Instruction is a single tagged CIL instruction. Only the operand fields
// relevant to Op are meaningful for a given instance; see the Op constants
// above for which fields a given op-code reads.
type Instruction struct {
	Op Op

	Dst  string // Destination local/param name.
	Src  string // Single source operand, or right-hand operand of a binary op.
	Left string // Left-hand operand of a binary arithmetic/comparison/concat op.
	Obj  string // Object operand of GetAttrib/SetAttrib.

	Imm   int  // Immediate integer for OpAssign when IsImm is set.
	IsImm bool // True if OpAssign's value is Imm rather than a named Src.

	TypeName   string // Allocate/DefaultValue target class, or Get/SetAttrib's declaring class.
	DataSymbol string // Load's string-data symbol.
	AttrSymbol string // GetAttrib/SetAttrib's attribute symbol.

	Label       string // Label/Goto/GotoIf target name.
	FnSymbol    string // StaticCall target function symbol.
	VtableIndex int    // DynamicCall's vtable slot.

	Kind string // RuntimeError's abort kind, e.g. "ABORT_SIGNAL".

	Idx   string // Substring start-index operand.
	Count string // Substring length operand.
}

// String returns a textual rendering of inst, used by the CIL dumper
// (internal/cil/print.go) and in test failure messages.
func (inst Instruction) String() string {
	switch inst.Op {
	case OpAssign:
		if inst.IsImm {
			return fmt.Sprintf("%s = %d", inst.Dst, inst.Imm)
		}
		return fmt.Sprintf("%s = %s", inst.Dst, inst.Src)
	case OpAllocate:
		return fmt.Sprintf("%s = ALLOCATE %s", inst.Dst, inst.TypeName)
	case OpLoad:
		return fmt.Sprintf("%s = LOAD %s", inst.Dst, inst.DataSymbol)
	case OpCopy:
		return fmt.Sprintf("%s = COPY %s", inst.Dst, inst.Src)
	case OpTypeOf:
		return fmt.Sprintf("%s = TYPEOF %s", inst.Dst, inst.Src)
	case OpTypeName:
		return fmt.Sprintf("%s = TYPENAME %s", inst.Dst, inst.Src)
	case OpGetAttrib:
		return fmt.Sprintf("%s = GETATTR %s.%s [%s]", inst.Dst, inst.Obj, inst.AttrSymbol, inst.TypeName)
	case OpSetAttrib:
		return fmt.Sprintf("SETATTR %s.%s = %s [%s]", inst.Obj, inst.AttrSymbol, inst.Src, inst.TypeName)
	case OpDefaultValue:
		return fmt.Sprintf("%s = DEFAULT %s", inst.Dst, inst.TypeName)
	case OpIsVoid:
		return fmt.Sprintf("%s = ISVOID %s", inst.Dst, inst.Src)
	case OpLabel:
		return fmt.Sprintf("%s:", inst.Label)
	case OpGoto:
		return fmt.Sprintf("GOTO %s", inst.Label)
	case OpGotoIf:
		return fmt.Sprintf("IF %s GOTO %s", inst.Src, inst.Label)
	case OpArg:
		return fmt.Sprintf("ARG %s", inst.Src)
	case OpStaticCall:
		return fmt.Sprintf("%s = STATICCALL %s", inst.Dst, inst.FnSymbol)
	case OpDynamicCall:
		return fmt.Sprintf("%s = DYNAMICCALL %s[%d]", inst.Dst, inst.Src, inst.VtableIndex)
	case OpReturn:
		if inst.Src == "" {
			return "RETURN"
		}
		return fmt.Sprintf("RETURN %s", inst.Src)
	case OpExit:
		return "EXIT"
	case OpPlus:
		return fmt.Sprintf("%s = %s + %s", inst.Dst, inst.Left, inst.Src)
	case OpMinus:
		return fmt.Sprintf("%s = %s - %s", inst.Dst, inst.Left, inst.Src)
	case OpStar:
		return fmt.Sprintf("%s = %s * %s", inst.Dst, inst.Left, inst.Src)
	case OpDivOp:
		return fmt.Sprintf("%s = %s / %s", inst.Dst, inst.Left, inst.Src)
	case OpIntComplement:
		return fmt.Sprintf("%s = ~%s", inst.Dst, inst.Src)
	case OpNot:
		return fmt.Sprintf("%s = !%s", inst.Dst, inst.Src)
	case OpLess:
		return fmt.Sprintf("%s = %s < %s", inst.Dst, inst.Left, inst.Src)
	case OpLessEqual:
		return fmt.Sprintf("%s = %s <= %s", inst.Dst, inst.Left, inst.Src)
	case OpEqual:
		return fmt.Sprintf("%s = %s == %s", inst.Dst, inst.Left, inst.Src)
	case OpLength:
		return fmt.Sprintf("%s = LENGTH %s", inst.Dst, inst.Src)
	case OpConcat:
		return fmt.Sprintf("%s = CONCAT %s %s", inst.Dst, inst.Left, inst.Src)
	case OpSubstring:
		return fmt.Sprintf("%s = SUBSTRING %s %s %s", inst.Dst, inst.Src, inst.Idx, inst.Count)
	case OpRead:
		return fmt.Sprintf("%s = READ", inst.Dst)
	case OpPrintStr:
		return fmt.Sprintf("PRINT_STR %s", inst.Src)
	case OpPrintInt:
		return fmt.Sprintf("PRINT_INT %s", inst.Src)
	case OpRuntimeError:
		return fmt.Sprintf("RUNTIME_ERROR %s", inst.Kind)
	default:
		return "<unknown instruction>"
	}
}

// TypeDescriptor is a class's runtime layout: its attribute table (instance
// layout order) and method dispatch table (vtable index order).
type TypeDescriptor struct {
	Name       string
	Attributes []string        // Attribute symbols, base-first.
	Methods    []MethodBinding // (short-name, function-symbol), base-first, override-resolved.
}

// MethodBinding is one vtable slot: the method's unqualified name and the
// function symbol to call for it.
type MethodBinding struct {
	Name     string
	FnSymbol string
}

// DataEntry is one string-literal constant, addressable by Symbol.
type DataEntry struct {
	Symbol  string
	Literal string
}

// Function is one emitted CIL function body.
type Function struct {
	Name   string
	Params []string
	Locals []string
	Body   []Instruction
}

// Program is the self-contained output of the lowering pass: every symbol
// referenced by an Instruction is defined somewhere in this value (§6).
type Program struct {
	Types     []TypeDescriptor
	Data      []DataEntry
	Functions []Function

	// BuildID is a deterministic identifier derived from Types/Data/Functions
	// (see SPEC_FULL.md §9). It is a pure function of the rest
	// of the struct, computed once after lowering completes.
	BuildID string
}
