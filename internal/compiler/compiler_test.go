package compiler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/parser"
	"github.com/kendroooo/rustic/internal/semantic_analyzer"
)

const helloSource = `
fn greet(name: Str = "world") {
	print("hello, " + name);
}

fn main() {
	greet();
}
`

func newTestCompiler(t *testing.T, cfg Config) (*Compiler, compiler_errors.ErrorHandler) {
	t.Helper()
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	eh := compiler_errors.NewErrorHandler(&bytes.Buffer{})
	return New(eh, cfg, logger), eh
}

func writeSource(t *testing.T, dir, rel, text string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCompileSource(t *testing.T) {
	c, eh := newTestCompiler(t, DefaultConfig)

	code, err := c.CompileSource(helloSource, "hello", "hello.rsc")
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())

	assert.Contains(t, code, "// Module: hello")
	assert.Contains(t, code, `greet(String::from("world"));`)

	m, ok := c.Module("hello")
	require.True(t, ok)
	assert.Equal(t, "hello.rsc", m.Path)
	assert.True(t, m.Info.HasMain())
}

func TestCompileSourceStopsAtFailingStage(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		sentinel error
		message  string
	}{
		{
			name:     "lexer",
			source:   `let s: Str = "abc`,
			sentinel: lexer.ErrLexFailed,
			message:  "Unterminated string",
		},
		{
			name:     "parser",
			source:   "fn main() { let x: Int = ; }",
			sentinel: parser.ErrParseFailed,
			message:  "unexpected token: ';'",
		},
		{
			name:     "analyzer",
			source:   `fn main() { let x: Int = "hi"; }`,
			sentinel: semantic_analyzer.ErrAnalysisFailed,
			message:  "type mismatch: expected Int, found Str",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, eh := newTestCompiler(t, DefaultConfig)

			code, err := c.CompileSource(tt.source, "broken", "broken.rsc")
			assert.Empty(t, code)
			require.ErrorIs(t, err, tt.sentinel)

			var moduleErr *ModuleError
			require.ErrorAs(t, err, &moduleErr)
			assert.Equal(t, "broken", moduleErr.Module)

			require.Equal(t, 1, eh.ErrorCount())
			assert.Contains(t, eh.Diagnostics()[0].GetMessage(), tt.message)

			_, registered := c.Module("broken")
			assert.False(t, registered)
		})
	}
}

func TestCompileSourceRejectsDuplicateModule(t *testing.T) {
	c, _ := newTestCompiler(t, DefaultConfig)

	_, err := c.CompileSource("fn f() {}", "m", "a/m.rsc")
	require.NoError(t, err)

	_, err = c.CompileSource("fn g() {}", "m", "b/m.rsc")
	require.ErrorIs(t, err, ErrDuplicateModule)
	assert.Contains(t, err.Error(), "a/m.rsc")
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "hello.rsc", helloSource)
	outDir := filepath.Join(dir, "out")

	c, _ := newTestCompiler(t, DefaultConfig)
	outputs, err := c.CompileFile(input, outDir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(outDir, "hello.rs")}, outputs)

	written, err := os.ReadFile(outputs[0])
	require.NoError(t, err)

	fresh, _ := newTestCompiler(t, DefaultConfig)
	expected, err := fresh.CompileSource(helloSource, "hello", input)
	require.NoError(t, err)
	assert.Equal(t, expected, string(written))

	m, _ := c.Module("hello")
	assert.Equal(t, outputs[0], m.Output)
}

func TestCompileFileWithSemanticErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "bad.rsc", `let x: Int = "hi";`)
	outDir := filepath.Join(dir, "out")

	c, eh := newTestCompiler(t, DefaultConfig)
	outputs, err := c.CompileFile(input, outDir)
	require.ErrorIs(t, err, semantic_analyzer.ErrAnalysisFailed)
	assert.Nil(t, outputs)

	require.Equal(t, 1, eh.ErrorCount())
	diag := eh.Diagnostics()[0]
	assert.Equal(t, 1, diag.GetSpan().StartLine)
	assert.Equal(t, 14, diag.GetSpan().StartCol)
	assert.NoFileExists(t, filepath.Join(outDir, "bad.rs"))
}

func TestCompileFileMissingInput(t *testing.T) {
	c, _ := newTestCompiler(t, DefaultConfig)

	_, err := c.CompileFile(filepath.Join(t.TempDir(), "nope.rsc"), t.TempDir())

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompileDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "shapes.rsc", "struct Square { side: Int }\nfn area(s: Square) -> Int { return s.side * s.side; }")
	writeSource(t, dir, "app/main_module.rsc", "fn main() { print(\"hi\"); }")
	writeSource(t, dir, "notes.txt", "not a module")
	outDir := filepath.Join(dir, "out")

	c, _ := newTestCompiler(t, DefaultConfig)
	outputs, err := c.CompileDirectory(dir, outDir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(outDir, "main_module.rs"),
		filepath.Join(outDir, "shapes.rs"),
	}, outputs)

	shapes, err := os.ReadFile(outputs[1])
	require.NoError(t, err)
	assert.Contains(t, string(shapes), "pub struct Square")
	assert.NotContains(t, string(shapes), "pub fn main()")

	app, err := os.ReadFile(outputs[0])
	require.NoError(t, err)
	assert.Contains(t, string(app), "pub fn main()")
	assert.NotContains(t, string(app), "Square")

	assert.Len(t, c.Modules(), 2)
	assert.Equal(t, "main_module", c.Modules()[0].Name)
}

func writeThreeModules(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSource(t, dir, "a.rsc", "fn a() {}")
	writeSource(t, dir, "b.rsc", "fn b() -> Int { return true; }")
	writeSource(t, dir, "c.rsc", "fn c() {}")
	return dir
}

func TestCompileDirectoryStopsAtFirstFailure(t *testing.T) {
	dir := writeThreeModules(t)
	outDir := filepath.Join(dir, "out")

	c, _ := newTestCompiler(t, DefaultConfig)
	outputs, err := c.CompileDirectory(dir, outDir)

	var moduleErr *ModuleError
	require.ErrorAs(t, err, &moduleErr)
	assert.Equal(t, "b", moduleErr.Module)
	assert.Equal(t, []string{filepath.Join(outDir, "a.rs")}, outputs)
	assert.NoFileExists(t, filepath.Join(outDir, "c.rs"))
}

func TestCompileDirectoryKeepGoing(t *testing.T) {
	dir := writeThreeModules(t)
	outDir := filepath.Join(dir, "out")

	cfg := DefaultConfig
	cfg.Compiler.KeepGoing = true
	c, _ := newTestCompiler(t, cfg)
	outputs, err := c.CompileDirectory(dir, outDir)

	require.ErrorIs(t, err, semantic_analyzer.ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "module 'b'")
	assert.Equal(t, []string{
		filepath.Join(outDir, "a.rs"),
		filepath.Join(outDir, "c.rs"),
	}, outputs)
}

func TestCompileDirectoryRejectsBadModuleNames(t *testing.T) {
	t.Run("duplicate stem", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "x/util.rsc", "fn f() {}")
		writeSource(t, dir, "y/util.rsc", "fn g() {}")
		outDir := filepath.Join(dir, "out")

		c, _ := newTestCompiler(t, DefaultConfig)
		outputs, err := c.CompileDirectory(dir, outDir)
		require.ErrorIs(t, err, ErrDuplicateModule)
		assert.Contains(t, err.Error(), filepath.Join(dir, "x", "util.rsc"))
		assert.Empty(t, outputs)
		assert.NoDirExists(t, outDir)
	})

	t.Run("stem is not an identifier", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "my-module.rsc", "fn f() {}")

		c, _ := newTestCompiler(t, DefaultConfig)
		_, err := c.CompileDirectory(dir, filepath.Join(dir, "out"))
		require.ErrorIs(t, err, ErrInvalidModuleName)
	})

	t.Run("no sources", func(t *testing.T) {
		c, _ := newTestCompiler(t, DefaultConfig)
		_, err := c.CompileDirectory(t.TempDir(), t.TempDir())
		require.ErrorIs(t, err, ErrNoSources)
	})
}

func TestCompileDirectoryUsesConfiguredExtension(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "one.rustic", "fn f() {}")
	writeSource(t, dir, "two.rsc", "fn g() {}")
	outDir := filepath.Join(dir, "out")

	cfg := DefaultConfig
	cfg.Compiler.Extension = ".rustic"
	c, _ := newTestCompiler(t, cfg)
	outputs, err := c.CompileDirectory(dir, outDir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outDir, "one.rs")}, outputs)
}

func TestTokenizeAndParse(t *testing.T) {
	input := writeSource(t, t.TempDir(), "hello.rsc", helloSource)
	c, _ := newTestCompiler(t, DefaultConfig)

	tokens, err := c.Tokenize(input)
	require.NoError(t, err)
	assert.Equal(t, lexer.FN, tokens[0].Kind)
	assert.Equal(t, lexer.EOF, tokens[len(tokens)-1].Kind)

	program, err := c.Parse(input)
	require.NoError(t, err)
	assert.Len(t, program.Items, 2)
	assert.Empty(t, c.Modules())
}
