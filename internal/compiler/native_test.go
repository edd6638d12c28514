package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/naoina/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileModules(t *testing.T, c *Compiler, dir string, sources map[string]string, order ...string) []string {
	t.Helper()
	outputs := make([]string, 0, len(order))
	for _, name := range order {
		input := writeSource(t, dir, name+".rsc", sources[name])
		files, err := c.CompileFile(input, filepath.Join(dir, "out"))
		require.NoError(t, err)
		outputs = append(outputs, files...)
	}
	return outputs
}

func TestWriteCrate(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	c, _ := newTestCompiler(t, DefaultConfig)

	outputs := compileModules(t, c, dir, map[string]string{
		"geometry": "fn area(w: Int, h: Int) -> Int { return w * h; }",
		"app":      "fn main() { print(\"ok\"); }",
		"type":     "fn f() {}",
	}, "geometry", "app", "type")

	require.NoError(t, c.writeCrate(outputs, outDir))

	root, err := os.ReadFile(filepath.Join(outDir, "main.rs"))
	require.NoError(t, err)
	assert.Equal(t, `// Code generated by rustic. DO NOT EDIT.

mod geometry;
mod app;
mod r#type;

fn main() {
    app::main();
}
`, string(root))

	data, err := os.ReadFile(filepath.Join(outDir, "Cargo.toml"))
	require.NoError(t, err)
	var manifest cargoManifest
	require.NoError(t, toml.Unmarshal(data, &manifest))
	assert.Equal(t, "rustic-generated", manifest.Package.Name)
	assert.Equal(t, "2021", manifest.Package.Edition)
	require.Len(t, manifest.Bin, 1)
	assert.Equal(t, "main.rs", manifest.Bin[0].Path)
	assert.True(t, manifest.Profile.Release.OverflowChecks)
}

func TestWriteCrateWithoutMain(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	c, _ := newTestCompiler(t, DefaultConfig)

	outputs := compileModules(t, c, dir, map[string]string{"lib": "fn f() {}"}, "lib")
	require.NoError(t, c.writeCrate(outputs, outDir))

	root, err := os.ReadFile(filepath.Join(outDir, "main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "mod lib;\n\nfn main() {\n}\n")
}

func TestWriteCrateRejections(t *testing.T) {
	t.Run("two mains", func(t *testing.T) {
		dir := t.TempDir()
		c, _ := newTestCompiler(t, DefaultConfig)
		outputs := compileModules(t, c, dir, map[string]string{
			"one": "fn main() {}",
			"two": "fn main() {}",
		}, "one", "two")

		err := c.writeCrate(outputs, filepath.Join(dir, "out"))
		require.ErrorIs(t, err, ErrMultipleMains)
		assert.Contains(t, err.Error(), "one, two")
	})

	t.Run("module named main", func(t *testing.T) {
		dir := t.TempDir()
		c, _ := newTestCompiler(t, DefaultConfig)
		outputs := compileModules(t, c, dir, map[string]string{"main": "fn main() {}"}, "main")

		err := c.writeCrate(outputs, filepath.Join(dir, "out"))
		require.ErrorIs(t, err, ErrInvalidModuleName)
	})

	t.Run("nothing to build", func(t *testing.T) {
		c, _ := newTestCompiler(t, DefaultConfig)
		require.ErrorIs(t, c.writeCrate(nil, t.TempDir()), ErrNoSources)
	})
}

func TestWriteCrateCopiesExtraSources(t *testing.T) {
	dir := t.TempDir()
	extra := writeSource(t, dir, "support/helpers.rs", "pub fn helper() {}\n")

	cfg := DefaultConfig
	cfg.Build.ExtraSources = []string{extra}
	c, _ := newTestCompiler(t, cfg)
	outputs := compileModules(t, c, dir, map[string]string{"app": "fn main() {}"}, "app")

	outDir := filepath.Join(dir, "out")
	require.NoError(t, c.writeCrate(outputs, outDir))

	copied, err := os.ReadFile(filepath.Join(outDir, "helpers.rs"))
	require.NoError(t, err)
	assert.Equal(t, "pub fn helper() {}\n", string(copied))

	root, err := os.ReadFile(filepath.Join(outDir, "main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "mod app;\nmod helpers;\n")
}

func TestCompileToNativeReportsBuildFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig
	cfg.Build.Cargo = filepath.Join(dir, "no-such-cargo")
	c, _ := newTestCompiler(t, cfg)
	outputs := compileModules(t, c, dir, map[string]string{"app": "fn main() {}"}, "app")

	outDir := filepath.Join(dir, "out")
	binary, err := c.CompileToNative(context.Background(), outputs, outDir)
	assert.Empty(t, binary)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, outDir, buildErr.Dir)
	assert.Contains(t, buildErr.Command, "build --release")
	assert.FileExists(t, filepath.Join(outDir, "Cargo.toml"))
}
