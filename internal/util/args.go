package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options collects cmd/coolc's run configuration, adapted from the
// teacher's src/util.Options. Flags parsed from the command line always
// override values loaded from a Config file (see LoadConfig).
type Options struct {
	Src          string // Path to the typed-AST+Context fixture (JSON); "-" or empty means stdin.
	Out          string // Path to the output file; empty means stdout.
	ConfigPath   string // Path to an optional YAML config file.
	PrintCIL     bool   // Dump the textual CIL representation; with neither this nor EmitLLVMStub, only the BuildID is printed.
	EmitLLVMStub bool   // Also emit an LLVM IR declaration-only stub module (internal/llvmdump).
	Verbose      bool   // Print lowering statistics to stderr.
	NoColor      bool   // Force-disable ANSI colored diagnostics even on a terminal.
	DumpConfig   bool   // Print the effective Options as YAML (via MarshalConfig) and exit, instead of lowering.
}

// Config is the shape of the optional YAML configuration file accepted via
// -config, grounded in funvibe-funxy's internal/ext.Config pattern of a
// small typed struct with `yaml:"..."` tags.
type Config struct {
	PrintCIL     bool `yaml:"print_cil"`
	EmitLLVMStub bool `yaml:"emit_llvm_stub"`
	Verbose      bool `yaml:"verbose"`
	NoColor      bool `yaml:"no_color"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// ParseArgs parses os.Args[1:] into an Options value, in the teacher's
// hand-rolled switch-over-flags style (src/util/args.go), rather than the
// standard "flag" package, to keep -config able to seed defaults that
// later flags on the same command line can still override.
func ParseArgs(args []string) (Options, error) {
	opt := Options{}
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "-o":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Out = args[i1+1]
			i1++
		case "-src":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Src = args[i1+1]
			i1++
		case "-config":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.ConfigPath = args[i1+1]
			i1++
		case "-print-cil":
			opt.PrintCIL = true
		case "-emit-llvm-stub":
			opt.EmitLLVMStub = true
		case "-vb":
			opt.Verbose = true
		case "-no-color":
			opt.NoColor = true
		case "-dump-config":
			opt.DumpConfig = true
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Src = args[i1]
		}
	}
	return opt, nil
}

// LoadConfig reads and applies a YAML Config file at path into opt,
// returning the merged Options. Fields already set on opt (i.e. passed
// explicitly on the command line) are left untouched, since command line
// flags take precedence over the config file.
func LoadConfig(path string, opt Options) (Options, error) {
	if path == "" {
		return opt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return opt, fmt.Errorf("could not read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return opt, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if !opt.PrintCIL {
		opt.PrintCIL = cfg.PrintCIL
	}
	if !opt.EmitLLVMStub {
		opt.EmitLLVMStub = cfg.EmitLLVMStub
	}
	if !opt.Verbose {
		opt.Verbose = cfg.Verbose
	}
	if !opt.NoColor {
		opt.NoColor = cfg.NoColor
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout, in the teacher's
// tabwriter-aligned style (src/util/args.go's printHelp).
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, --help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to the output file; defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-config\tPath to a YAML config file; command line flags take precedence.")
	_, _ = fmt.Fprintln(w, "-print-cil\tDump the textual CIL representation; without it or -emit-llvm-stub, only the BuildID is printed.")
	_, _ = fmt.Fprintln(w, "-emit-llvm-stub\tAlso emit a declare-only LLVM IR stub module.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print lowering statistics to stderr.")
	_, _ = fmt.Fprintln(w, "-no-color\tDisable ANSI colored diagnostics.")
	_, _ = fmt.Fprintln(w, "-dump-config\tPrint the effective flags as YAML and exit, without lowering anything.")
	_ = w.Flush()
}

// MarshalConfig is used by `coolc -dump-config` to print the effective
// Options back out as YAML, handy for saving a working set of flags to a
// config file.
func MarshalConfig(opt Options) (string, error) {
	cfg := Config{
		PrintCIL:     opt.PrintCIL,
		EmitLLVMStub: opt.EmitLLVMStub,
		Verbose:      opt.Verbose,
		NoColor:      opt.NoColor,
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
