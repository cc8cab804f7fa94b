// Package main implements the glslc shader compiler entry point.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/geraltigas/glslc/internal/codegen"
	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/ir/passes"
	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// Compiler flags
var (
	emitTokens = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST    = flag.Bool("emit-ast", false, "Output AST")
	astFormat  = flag.String("ast-format", "text", "AST output format (text or json)")
	emitLL     = flag.Bool("emit-ll", false, "Output LLVM IR to stdout (or -o)")
	emitLayout = flag.Bool("emit-layout", false, "Output global and uniform block layouts")
	output     = flag.String("o", "", "Output file")
	strict     = flag.Bool("strict", false, "Stop lowering at the first error")
	doctor     = flag.Bool("doctor", false, "Check toolchain")
	version    = flag.Bool("version", false, "Print version")
	trace      = flag.Bool("trace", false, "Output timing trace")
	dumpFunc   = flag.String("dump-func", "", "Only dump specific function")
	irVerify   = flag.Bool("ir-verify", false, "Verify IR after each pass")
	dumpBefore = flag.String("dump-before", "", "Dump IR before pass (name or \"*\")")
	dumpAfter  = flag.String("dump-after", "", "Dump IR after pass (name or \"*\")")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glslc %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: glslc [options] <file.glsl>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("glslc version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	if *doctor {
		os.Exit(runDoctor())
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: glslc [options] <file.glsl>")
		os.Exit(1)
	}

	filename := args[0]

	if *emitTokens {
		os.Exit(runEmitTokens(filename))
	}

	if *emitAST {
		os.Exit(runEmitAST(filename, *astFormat))
	}

	if *emitLayout {
		os.Exit(runEmitLayout(filename))
	}

	out := *output
	if out == "" && !*emitLL {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".ll"
	}
	os.Exit(runCompile(filename, out, options{
		strict: *strict,
		trace:  *trace,
		passes: passes.Config{
			DumpBefore: *dumpBefore,
			DumpAfter:  *dumpAfter,
			Verify:     *irVerify,
			DumpFunc:   *dumpFunc,
		},
	}))
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s:%d:%d: %s", filename, line, col, msg))
	}
	s := syntax.NewScanner(filename, f, errh)

	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))

	for {
		s.Next()
		tok := s.Token()
		lit := s.Literal()
		if lit == "" {
			lit = `""`
		}
		fmt.Printf("%-20s %-12s %s\n", s.Pos(), tok, lit)
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}
	return 0
}

// runEmitAST parses the input file and outputs the AST.
func runEmitAST(filename, format string) int {
	prog, code := parseFile(filename)
	if prog == nil {
		return code
	}

	switch format {
	case "json":
		if err := syntax.FprintJSON(os.Stdout, prog); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	case "text":
		syntax.Fprint(os.Stdout, prog)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown AST format %q\n", format)
		return 1
	}
	return 0
}

// runEmitLayout parses the input file and outputs the size and alignment
// of every global, followed by the std140 layout of its uniforms.
func runEmitLayout(filename string) int {
	prog, code := parseFile(filename)
	if prog == nil {
		return code
	}
	sizes := types.DefaultSizes

	fmt.Println("=== Globals ===")
	fmt.Println()

	var uniforms []*syntax.VarDecl
	for _, d := range prog.Defs {
		gv, ok := d.(*syntax.GlobalVar)
		if !ok {
			continue
		}
		v := gv.Var
		decl := strings.TrimSpace(fmt.Sprintf("%s %s %s", gv.Storage, v.Type, v.Name.Value))
		var quals []string
		for _, id := range gv.Layout {
			quals = append(quals, fmt.Sprintf("%s = %d", id.Name, id.Value))
		}
		if len(quals) > 0 {
			decl = fmt.Sprintf("layout(%s) %s", strings.Join(quals, ", "), decl)
		}
		fmt.Printf("%-40s // size: %d, align: %d\n", decl, sizes.Sizeof(v.Type), sizes.Alignof(v.Type))
		if gv.Storage == syntax.Uniform {
			uniforms = append(uniforms, v)
		}
	}

	if len(uniforms) == 0 {
		return 0
	}
	members := make([]types.AstType, len(uniforms))
	for i, v := range uniforms {
		members[i] = v.Type
	}
	offsets, size := sizes.Offsets(members)

	fmt.Println()
	fmt.Println("=== Uniform Block (std140) ===")
	fmt.Println()
	fmt.Println("uniform {")
	for i, v := range uniforms {
		fmt.Printf("    %-10s %-8s // offset: %d, size: %d, align: %d\n",
			v.Name.Value, v.Type, offsets[i], sizes.Sizeof(v.Type), sizes.Alignof(v.Type))
	}
	fmt.Println("}")
	fmt.Printf("// size: %d\n", size)
	return 0
}

// parseFile parses filename, printing syntax errors to stderr. It returns
// a nil program and an exit code on failure.
func parseFile(filename string) (*syntax.Program, int) {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, 1
	}
	defer f.Close()

	errh := func(pos syntax.Pos, msg string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", pos, msg)
	}
	prog := syntax.NewParser(filename, f, errh).Parse()
	if prog == nil {
		return nil, 1
	}
	return prog, 0
}

type options struct {
	strict bool
	trace  bool
	passes passes.Config
}

// runCompile lowers filename to LLVM IR and writes the module to out, or
// to stdout if out is empty.
func runCompile(filename, out string, opts options) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	tr := newTracer(opts.trace)
	defer tr.report(os.Stderr)

	errh := func(pos syntax.Pos, msg string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", pos, msg)
	}

	var toks *syntax.Stream
	lexErrs := 0
	tr.phase("scan", func() {
		toks = syntax.Tokenize(filename, bytes.NewReader(src), func(line, col uint32, msg string) {
			lexErrs++
			errh(syntax.NewPos(filename, line, col), msg)
		})
	})

	var prog *syntax.Program
	tr.phase("parse", func() {
		prog = syntax.NewStreamParser(toks, errh).Parse()
	})
	if prog == nil || lexErrs > 0 {
		return 1
	}

	b := ir.NewBuilder()
	conf := &codegen.Config{Error: errh, Strict: opts.strict}
	var lowerErr error
	tr.phase("lower", func() {
		lowerErr = codegen.Generate(prog, b, conf)
	})
	if lowerErr != nil {
		return 1
	}

	if opts.passes.Out == nil {
		opts.passes.Out = os.Stderr
	}
	var verifyErr error
	tr.phase("verify", func() {
		if verifyErr = passes.Run(b.Module(), passes.Default, opts.passes); verifyErr != nil {
			return
		}
		verifyErr = ir.Verify(b.Module())
	})
	if verifyErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, verifyErr)
		return 1
	}

	if err := writeModule(out, b); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// writeModule writes the module text to out, or to stdout if out is
// empty. A failure to close out is reported like a write error.
func writeModule(out string, b *ir.Builder) (err error) {
	var w io.Writer = os.Stdout
	if out != "" {
		f, ferr := os.Create(out)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "closing module")
			}
		}()
		w = f
	}
	if _, werr := io.WriteString(w, b.String()); werr != nil {
		return errors.Wrap(werr, "writing module")
	}
	return nil
}

// tracer records wall-clock phase timings for -trace.
type tracer struct {
	on     bool
	phases []string
	times  []time.Duration
}

func newTracer(on bool) *tracer { return &tracer{on: on} }

func (t *tracer) phase(name string, fn func()) {
	start := time.Now()
	fn()
	if t.on {
		t.phases = append(t.phases, name)
		t.times = append(t.times, time.Since(start))
	}
}

func (t *tracer) report(w io.Writer) {
	if !t.on {
		return
	}
	var total time.Duration
	for i, name := range t.phases {
		fmt.Fprintf(w, "trace: %-8s %v\n", name, t.times[i])
		total += t.times[i]
	}
	fmt.Fprintf(w, "trace: %-8s %v\n", "total", total)
}

// runDoctor checks the toolchain and returns an exit code.
func runDoctor() int {
	fmt.Println("glslc Toolchain Doctor")
	fmt.Println("======================")
	fmt.Println()

	allOk := true

	goVersion := runtime.Version()
	fmt.Printf("Go:      %s", goVersion)
	if checkGoVersion(goVersion) {
		fmt.Println(" ✓")
	} else {
		fmt.Println(" ✗ (need 1.23+)")
		allOk = false
	}

	for _, tool := range []string{"llvm-as", "opt", "llc"} {
		v, ok := checkTool(tool, "--version")
		fmt.Printf("%-8s %s", tool+":", v)
		if ok {
			fmt.Println(" ✓")
		} else {
			fmt.Println(" (optional, not found)")
		}
	}

	fmt.Println()
	if allOk {
		fmt.Println("All required tools available!")
		return 0
	}
	fmt.Println("Some required tools are missing.")
	return 1
}

// checkGoVersion returns true if the Go version is 1.23 or higher.
func checkGoVersion(v string) bool {
	if !strings.HasPrefix(v, "go") {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(v, "go"), ".")
	if len(parts) < 2 {
		return false
	}
	if parts[0] != "1" {
		return parts[0] >= "2"
	}
	var minor int
	fmt.Sscanf(parts[1], "%d", &minor)
	return minor >= 23
}

// checkTool runs a tool with the given arguments and returns the first
// line of its output.
func checkTool(name string, args ...string) (string, bool) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", false
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line, true
}
