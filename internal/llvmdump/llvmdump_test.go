package llvmdump

import (
	"strings"
	"testing"

	"coolcil/internal/cil"
)

func TestDump_DeclaresFunctionsAndGlobals(t *testing.T) {
	p := &cil.Program{
		Data:      []cil.DataEntry{{Symbol: "string_1", Literal: "hi"}},
		Functions: []cil.Function{{Name: "Main_main", Params: []string{"self"}}},
	}

	out, err := Dump(p)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(out, "string_1") {
		t.Fatalf("output missing global string_1:\n%s", out)
	}
	if !strings.Contains(out, "Main_main") {
		t.Fatalf("output missing declaration Main_main:\n%s", out)
	}
}
