package cil

import (
	"strconv"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ---------------------
// ----- Functions -----
// ---------------------

// String returns a textual dump of p: one TYPE block per descriptor, one
// DATA line per string constant, and one FUNCTION block per function, in
// the teacher's label-then-tab-indented-instruction layout
// (src/ir/lir/function.go's Function.String, src/util/io.go's Writer
// helpers).
func (p Program) String() string {
	sb := strings.Builder{}

	for _, t := range p.Types {
		sb.WriteString(t.String())
		sb.WriteRune('\n')
	}
	if len(p.Types) > 0 {
		sb.WriteRune('\n')
	}

	for _, d := range p.Data {
		sb.WriteString(d.String())
		sb.WriteRune('\n')
	}
	if len(p.Data) > 0 {
		sb.WriteRune('\n')
	}

	for i1, f := range p.Functions {
		sb.WriteString(f.String())
		if i1 < len(p.Functions)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// String returns a textual rendering of a TypeDescriptor.
func (t TypeDescriptor) String() string {
	sb := strings.Builder{}
	sb.WriteString("type ")
	sb.WriteString(t.Name)
	sb.WriteString(" {\n")
	for _, a := range t.Attributes {
		sb.WriteString("\tattribute ")
		sb.WriteString(a)
		sb.WriteRune('\n')
	}
	for _, m := range t.Methods {
		sb.WriteString("\tmethod ")
		sb.WriteString(m.Name)
		sb.WriteString(" -> ")
		sb.WriteString(m.FnSymbol)
		sb.WriteRune('\n')
	}
	sb.WriteRune('}')
	return sb.String()
}

// String returns a textual rendering of a DataEntry.
func (d DataEntry) String() string {
	return "data " + d.Symbol + " = " + strconv.Quote(d.Literal)
}

// String returns a textual rendering of a Function, with one label per
// line and tab-indented instructions, mirroring
// src/ir/lir/function.go's Function.String layout.
func (f Function) String() string {
	sb := strings.Builder{}
	sb.WriteString("function ")
	sb.WriteString(f.Name)
	sb.WriteRune('(')
	sb.WriteString(strings.Join(f.Params, ", "))
	sb.WriteString(") {\n")
	for _, l := range f.Locals {
		sb.WriteString("\tlocal ")
		sb.WriteString(l)
		sb.WriteRune('\n')
	}
	for _, inst := range f.Body {
		if inst.Op == OpLabel {
			sb.WriteString(inst.String())
		} else {
			sb.WriteRune('\t')
			sb.WriteString(inst.String())
		}
		sb.WriteRune('\n')
	}
	sb.WriteRune('}')
	return sb.String()
}
