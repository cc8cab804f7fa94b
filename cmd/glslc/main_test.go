package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/ir/passes"
	"github.com/geraltigas/glslc/internal/types"
)

const shaderSrc = `#version 450
layout(location = 0) in vec3 pos;
uniform float scale;

vec3 main() {
  vec3 a = vec3(1.0, 2.0, 3.0);
  a.x = a.x + scale;
  gl_Position = vec4(pos, 1.0);
  return a;
}
`

func TestRunEmitTokens(t *testing.T) {
	filename := writeTempGLSLFile(t, "#version 450\nvec3 v = vec3(1.0);\n")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitTokens exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{"POSITION", "#version", "NUMBER", "450", "TYPE", "vec3", "NAME", "EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("token output missing %q:\n%s", want, out)
		}
	}
}

func TestRunEmitTokensReportsErrors(t *testing.T) {
	filename := writeTempGLSLFile(t, "int x; /* open")
	code, out, _ := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})
	if code != 1 {
		t.Fatalf("runEmitTokens exit=%d, want 1", code)
	}
	if !strings.Contains(out, "comment not terminated") {
		t.Errorf("token output missing error:\n%s", out)
	}
}

func TestRunEmitAST(t *testing.T) {
	filename := writeTempGLSLFile(t, shaderSrc)

	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename, "text")
	})
	if code != 0 {
		t.Fatalf("runEmitAST exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{"Program", "Version: 450", "Layout: location = 0", "Name: main"} {
		if !strings.Contains(out, want) {
			t.Errorf("AST output missing %q:\n%s", want, out)
		}
	}

	code, out, errOut = captureOutput(t, func() int {
		return runEmitAST(filename, "json")
	})
	if code != 0 {
		t.Fatalf("runEmitAST json exit=%d\nstderr:\n%s", code, errOut)
	}
	var prog map[string]interface{}
	if err := json.Unmarshal([]byte(out), &prog); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if prog["type"] != "Program" {
		t.Errorf("root type = %v, want Program", prog["type"])
	}

	code, _, errOut = captureOutput(t, func() int {
		return runEmitAST(filename, "yaml")
	})
	if code != 1 || !strings.Contains(errOut, "unknown AST format") {
		t.Errorf("yaml format: exit=%d stderr=%q", code, errOut)
	}
}

func TestRunEmitASTSyntaxError(t *testing.T) {
	filename := writeTempGLSLFile(t, "float x = ;")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename, "text")
	})
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if out != "" {
		t.Errorf("unexpected stdout:\n%s", out)
	}
	if !strings.Contains(errOut, "1:11: syntax error") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRunEmitLayout(t *testing.T) {
	src := `layout(binding = 0) uniform mat4 mvp;
uniform vec3 tint;
uniform float alpha;
layout(location = 1) in vec2 uv;
void main() {}
`
	filename := writeTempGLSLFile(t, src)
	code, out, errOut := captureOutput(t, func() int {
		return runEmitLayout(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitLayout exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{
		"=== Globals ===",
		"out vec4 gl_Position",
		"layout(binding = 0) uniform mat4 mvp",
		"// size: 64, align: 16",
		"layout(location = 1) in vec2 uv",
		"=== Uniform Block (std140) ===",
		"tint       vec3     // offset: 64, size: 12, align: 16",
		"alpha      float    // offset: 76, size: 4, align: 4",
		"// size: 80",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("layout output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCompileToStdout(t *testing.T) {
	filename := writeTempGLSLFile(t, shaderSrc)
	code, out, errOut := captureOutput(t, func() int {
		return runCompile(filename, "", options{})
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s", code, errOut)
	}
	if errOut != "" {
		t.Errorf("unexpected stderr:\n%s", errOut)
	}
	for _, want := range []string{
		"@pos = external global <3 x float>",
		"@scale = external global float",
		"define <3 x float> @main()",
		"insertelement",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("IR missing %q:\n%s", want, out)
		}
	}
}

func TestRunCompileToFile(t *testing.T) {
	filename := writeTempGLSLFile(t, shaderSrc)
	llFile := filepath.Join(t.TempDir(), "out.ll")
	code, out, errOut := captureOutput(t, func() int {
		return runCompile(filename, llFile, options{})
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s", code, errOut)
	}
	if out != "" {
		t.Errorf("unexpected stdout:\n%s", out)
	}
	data, err := os.ReadFile(llFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "define <3 x float> @main()") {
		t.Errorf("output file missing main:\n%s", data)
	}
}

func TestRunCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		strict bool
		want   []string
		absent []string
	}{
		{
			name: "syntax",
			src:  "void main() { x = ; }",
			want: []string{"syntax error"},
		},
		{
			name: "relaxed",
			src:  "void f() { a = 1; }\nvoid g() { b = 2; }",
			want: []string{"1:12: undeclared name: a", "2:12: undeclared name: b"},
		},
		{
			name:   "strict",
			src:    "void f() { a = 1; }\nvoid g() { b = 2; }",
			strict: true,
			want:   []string{"undeclared name: a"},
			absent: []string{"undeclared name: b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeTempGLSLFile(t, tt.src)
			code, out, errOut := captureOutput(t, func() int {
				return runCompile(filename, "", options{strict: tt.strict})
			})
			if code != 1 {
				t.Fatalf("exit=%d, want 1", code)
			}
			if out != "" {
				t.Errorf("module written despite errors:\n%s", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(errOut, w) {
					t.Errorf("stderr missing %q:\n%s", w, errOut)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(errOut, a) {
					t.Errorf("stderr contains %q:\n%s", a, errOut)
				}
			}
		})
	}
}

func TestRunCompileLexicalError(t *testing.T) {
	filename := writeTempGLSLFile(t, "void main() { float x = 3f; }\n")
	code, out, errOut := captureOutput(t, func() int {
		return runCompile(filename, "", options{trace: true})
	})
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if out != "" {
		t.Errorf("module written despite errors:\n%s", out)
	}
	if !strings.Contains(errOut, "float suffix on integer literal") {
		t.Errorf("stderr missing lexical error:\n%s", errOut)
	}
	// The scanned tokens feed the parser; the source is scanned once.
	if n := strings.Count(errOut, "float suffix"); n != 1 {
		t.Errorf("lexical error reported %d times:\n%s", n, errOut)
	}
}

func TestWriteModule(t *testing.T) {
	b := ir.NewBuilder()
	b.DeclareGlobal(ir.Global{Name: "u", Type: types.Float, Storage: ir.Uniform})

	llFile := filepath.Join(t.TempDir(), "m.ll")
	if err := writeModule(llFile, b); err != nil {
		t.Fatalf("writeModule: %v", err)
	}
	data, err := os.ReadFile(llFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "@u = external global float") {
		t.Errorf("written module:\n%s", data)
	}

	if err := writeModule(filepath.Join(t.TempDir(), "missing", "m.ll"), b); err == nil {
		t.Error("writeModule into a missing directory succeeded")
	}
}

func TestRunCompileTrace(t *testing.T) {
	filename := writeTempGLSLFile(t, shaderSrc)
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(filename, "", options{trace: true})
	})
	if code != 0 {
		t.Fatalf("exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, phase := range []string{"scan", "parse", "lower", "verify", "total"} {
		if !strings.Contains(errOut, "trace: "+phase) {
			t.Errorf("trace missing phase %s:\n%s", phase, errOut)
		}
	}
}

func TestRunCompileDumpPasses(t *testing.T) {
	filename := writeTempGLSLFile(t, "int f(int c) { return c; c = 1; }\nvoid main() {}\n")
	opts := options{passes: passes.Config{DumpAfter: "*", DumpFunc: "f", Verify: true}}
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(filename, "", opts)
	})
	if code != 0 {
		t.Fatalf("exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "--- after deadblocks (f) ---") {
		t.Errorf("missing dump of f:\n%s", errOut)
	}
	if strings.Contains(errOut, "(main)") {
		t.Errorf("dump not restricted to f:\n%s", errOut)
	}
}

func TestCheckGoVersion(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"go1.23.3", true},
		{"go1.24", true},
		{"go1.21.0", false},
		{"go2.0", true},
		{"devel +abc", false},
		{"go1", false},
	}
	for _, tt := range tests {
		if got := checkGoVersion(tt.v); got != tt.want {
			t.Errorf("checkGoVersion(%q) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func writeTempGLSLFile(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, "input.glsl")
	if err := os.WriteFile(filename, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return filename
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	// Drain concurrently so large outputs cannot block on a full pipe.
	outc := make(chan string)
	errc := make(chan string)
	go func() { b, _ := io.ReadAll(rOut); outc <- string(b) }()
	go func() { b, _ := io.ReadAll(rErr); errc <- string(b) }()

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdout, stderr = <-outc, <-errc
	_ = rOut.Close()
	_ = rErr.Close()
	return code, stdout, stderr
}
