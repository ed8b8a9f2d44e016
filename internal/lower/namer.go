package lower

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// namer mints the fresh, unique symbols the lowering pass needs: data
// symbols and control-flow labels. Both counters are global and strictly
// monotonic, mirroring the teacher's src/util/label.go minting style, but
// simplified to a plain counter since §5 forbids concurrent lowering (the
// teacher's label minting is channel-based to stay safe across parallel
// compiler stages; nothing here runs concurrently).
type namer struct {
	dataSeq  int
	labelSeq int
}

// ---------------------
// ----- Functions -----
// ---------------------

// newNamer returns a namer with both counters at zero.
func newNamer() *namer {
	return &namer{}
}

// nextDataID returns the next "string_N" data symbol, starting at 1.
func (n *namer) nextDataID() string {
	n.dataSeq++
	return fmt.Sprintf("string_%d", n.dataSeq)
}

// nextLabel returns a fresh label of the form "PREFIX_N", N starting at 1
// and shared across every prefix so labels stay globally unique within a
// Program even when interleaved (e.g. a THEN label and an END_IF label
// minted for the same `if` never collide with a WHILE label minted later).
func (n *namer) nextLabel(prefix string) string {
	n.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, n.labelSeq)
}

// fnSymbol returns the function symbol for method declared on typeName,
// e.g. fnSymbol("out_string", "IO") -> "IO_out_string". Constructors are
// the one exception: fnSymbol("constructor", "Main") -> "constructor_Main".
func fnSymbol(method, typeName string) string {
	if method == "constructor" {
		return "constructor_" + typeName
	}
	return typeName + "_" + method
}

// attrSymbol returns the attribute symbol for attr declared on typeName,
// e.g. attrSymbol("String", "length") -> "String_length".
func attrSymbol(typeName, attr string) string {
	return typeName + "_" + attr
}
