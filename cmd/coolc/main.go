package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"coolcil/internal/astjson"
	"coolcil/internal/llvmdump"
	"coolcil/internal/lower"
	"coolcil/internal/util"
)

// run reads opt.Src, lowers it to CIL and writes the result to opt.Out (or
// stdout). Behaviour is entirely governed by the util.Options structure,
// mirroring the teacher's single run(opt) pipeline function.
func run(opt util.Options, diag *util.Diag) error {
	if opt.DumpConfig {
		cfg, err := util.MarshalConfig(opt)
		if err != nil {
			return fmt.Errorf("could not marshal config: %w", err)
		}
		fmt.Print(cfg)
		return nil
	}

	raw, err := readSource(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read fixture: %w", err)
	}

	// Decode the typed AST and its resolved semantic Context together:
	// there is no separate type-checking stage in this repo to derive one
	// from the other, so -src must carry both.
	program, semCtx, err := astjson.DecodeFixture(raw)
	if err != nil {
		return fmt.Errorf("could not decode fixture: %w", err)
	}

	p, warnings, err := lower.Lower(context.Background(), program, semCtx)
	if err != nil {
		return fmt.Errorf("lowering error: %w", err)
	}
	for _, w := range warnings {
		diag.Warn(w)
	}

	if opt.Verbose {
		diag.Warn(fmt.Errorf("lowered %d type(s), %d function(s), %d data entr(ies)",
			len(p.Types), len(p.Functions), len(p.Data)))
	}

	out, err := openOutput(opt.Out)
	if err != nil {
		return fmt.Errorf("could not open output: %w", err)
	}
	defer func(f *os.File) {
		if f == nil {
			return
		}
		if cerr := f.Close(); cerr != nil {
			diag.Error(cerr)
		}
	}(out)

	w := outputWriter(out)
	if opt.PrintCIL {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	if opt.EmitLLVMStub {
		stub, err := llvmdump.Dump(p)
		if err != nil {
			return fmt.Errorf("llvm stub error: %w", err)
		}
		if _, err := fmt.Fprintln(w, stub); err != nil {
			return err
		}
	}
	if !opt.PrintCIL && !opt.EmitLLVMStub {
		if _, err := fmt.Fprintln(w, p.BuildID); err != nil {
			return err
		}
	}
	return nil
}

// readSource reads path, or stdin when path is empty or "-".
func readSource(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// openOutput opens path for truncated writing, or returns nil (meaning
// stdout) when path is empty.
func openOutput(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
}

func outputWriter(f *os.File) *os.File {
	if f == nil {
		return os.Stdout
	}
	return f
}

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("command line argument error: %s\n", err)
		os.Exit(1)
	}
	opt, err = util.LoadConfig(opt.ConfigPath, opt)
	if err != nil {
		fmt.Printf("config error: %s\n", err)
		os.Exit(1)
	}

	diag := util.NewDiag(os.Stderr, opt.NoColor)
	if err := run(opt, diag); err != nil {
		diag.Error(err)
		os.Exit(1)
	}
}
