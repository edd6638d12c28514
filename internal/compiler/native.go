package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cespare/cp"
	"github.com/naoina/toml"

	"github.com/kendroooo/rustic/internal/emitter"
)

const (
	manifestFile = "Cargo.toml"
	crateRoot    = "main.rs"
)

var ErrMultipleMains = errors.New("more than one module defines main")

type cargoManifest struct {
	Package cargoPackage  `toml:"package"`
	Bin     []cargoBin    `toml:"bin"`
	Profile cargoProfiles `toml:"profile"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type cargoBin struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type cargoProfiles struct {
	Release cargoProfile `toml:"release"`
}

// Overflow checks stay on in release builds so integer overflow reaches catch (Overflow).
type cargoProfile struct {
	OverflowChecks bool `toml:"overflow-checks"`
}

// CompileToNative turns generated modules into a Cargo crate in outputDir and
// builds it in release mode. It returns the path of the produced binary.
func (c *Compiler) CompileToNative(ctx context.Context, files []string, outputDir string) (string, error) {
	if err := c.writeCrate(files, outputDir); err != nil {
		return "", err
	}

	command := []string{c.cfg.Build.Cargo, "build", "--release"}
	log := c.log.New("dir", outputDir)
	log.Info("Building native binary", "command", strings.Join(command, " "))

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = outputDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &BuildError{
			Command: strings.Join(command, " "),
			Dir:     outputDir,
			Stderr:  stderr.String(),
			Err:     err,
		}
	}

	binary := filepath.Join(outputDir, "target", "release", c.cfg.Build.PackageName)
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	log.Info("Built native binary", "path", binary)
	return binary, nil
}

// writeCrate writes the manifest and the crate root next to the generated modules.
func (c *Compiler) writeCrate(files []string, outputDir string) error {
	if len(files) == 0 {
		return fmt.Errorf("%s: %w to build", outputDir, ErrNoSources)
	}

	modules := make([]string, 0, len(files)+len(c.cfg.Build.ExtraSources))
	mains := make([]string, 0, 1)
	for _, file := range files {
		name := moduleName(file)
		if name == moduleName(crateRoot) {
			return &ModuleError{
				Module: name,
				Path:   file,
				Err:    fmt.Errorf("%w: '%s' is reserved for the crate root", ErrInvalidModuleName, name),
			}
		}

		modules = append(modules, name)
		if m, ok := c.modules[name]; ok && m.Info.HasMain() {
			mains = append(mains, name)
		}
	}
	if len(mains) > 1 {
		return fmt.Errorf("%w: %s", ErrMultipleMains, strings.Join(mains, ", "))
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return &IOError{Op: "create directory", Path: outputDir, Err: err}
	}

	for _, extra := range c.cfg.Build.ExtraSources {
		dst := filepath.Join(outputDir, filepath.Base(extra))
		if err := cp.CopyFile(dst, extra); err != nil {
			return &IOError{Op: "copy", Path: extra, Err: err}
		}
		modules = append(modules, moduleName(extra))
	}

	manifest, err := toml.Marshal(c.manifest())
	if err != nil {
		return fmt.Errorf("encode %s: %w", manifestFile, err)
	}
	if err := writeFile(filepath.Join(outputDir, manifestFile), manifest); err != nil {
		return err
	}

	mainModule := ""
	if len(mains) == 1 {
		mainModule = mains[0]
	} else {
		c.log.Warn("No module defines main, the binary will do nothing", "dir", outputDir)
	}
	return writeFile(filepath.Join(outputDir, crateRoot), []byte(crateRootSource(modules, mainModule)))
}

func (c *Compiler) manifest() *cargoManifest {
	return &cargoManifest{
		Package: cargoPackage{
			Name:    c.cfg.Build.PackageName,
			Version: "0.1.0",
			Edition: c.cfg.Build.Edition,
		},
		Bin: []cargoBin{
			{Name: c.cfg.Build.PackageName, Path: crateRoot},
		},
		Profile: cargoProfiles{
			Release: cargoProfile{OverflowChecks: true},
		},
	}
}

func crateRootSource(modules []string, mainModule string) string {
	var b strings.Builder
	b.WriteString("// Code generated by rustic. DO NOT EDIT.\n\n")
	for _, name := range modules {
		fmt.Fprintf(&b, "mod %s;\n", emitter.ModuleIdent(name))
	}

	b.WriteString("\nfn main() {\n")
	if mainModule != "" {
		fmt.Fprintf(&b, "    %s::main();\n", emitter.ModuleIdent(mainModule))
	}
	b.WriteString("}\n")
	return b.String()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
