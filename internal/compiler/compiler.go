package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/emitter"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/parser"
	"github.com/kendroooo/rustic/internal/semantic_analyzer"
)

const rustExtension = ".rs"

var (
	ErrDuplicateModule   = errors.New("duplicate module name")
	ErrInvalidModuleName = errors.New("invalid module name")
	ErrNoSources         = errors.New("no source files found")
)

// Module is one successfully compiled source file.
type Module struct {
	Name    string
	Path    string
	Output  string
	Program *ast.Program
	Info    *semantic_analyzer.Info
}

// Compiler drives the lexer, parser, analyzer and emitter over modules, one at
// a time. Its module registry lives as long as the Compiler.
type Compiler struct {
	eh  compiler_errors.ErrorHandler
	cfg Config
	log log15.Logger

	modules map[string]*Module
	order   []string
}

func New(eh compiler_errors.ErrorHandler, cfg Config, logger log15.Logger) *Compiler {
	if logger == nil {
		logger = log15.Root()
	}
	if cfg.Compiler.Extension == "" {
		cfg.Compiler.Extension = DefaultConfig.Compiler.Extension
	}

	return &Compiler{
		eh:      eh,
		cfg:     cfg,
		log:     logger.New("component", "compiler"),
		modules: make(map[string]*Module),
		order:   make([]string, 0),
	}
}

// Modules returns the registered modules in the order they were compiled.
func (c *Compiler) Modules() []*Module {
	modules := make([]*Module, len(c.order))
	for i, name := range c.order {
		modules[i] = c.modules[name]
	}
	return modules
}

func (c *Compiler) Module(name string) (*Module, bool) {
	m, ok := c.modules[name]
	return m, ok
}

// CompileSource runs the whole pipeline over source in memory and returns the
// generated Rust code. Diagnostics go to the error handler; the returned
// error wraps the sentinel of the stage that stopped.
func (c *Compiler) CompileSource(source, moduleName, filePath string) (string, error) {
	if !isIdentifier(moduleName) {
		return "", &ModuleError{Module: moduleName, Path: filePath, Err: ErrInvalidModuleName}
	}
	if existing, ok := c.modules[moduleName]; ok {
		return "", &ModuleError{
			Module: moduleName,
			Path:   filePath,
			Err:    fmt.Errorf("%w: already compiled from %s", ErrDuplicateModule, existing.Path),
		}
	}

	log := c.log.New("module", moduleName, "path", filePath)
	start := time.Now()

	text := []byte(source)
	c.eh.AddSource(filePath, text)

	tokens, err := lexer.NewLexer(text, filePath, c.eh).Tokenize()
	if err != nil {
		return "", &ModuleError{Module: moduleName, Path: filePath, Err: err}
	}
	log.Debug("Lexed module", "tokens", len(tokens))

	program, err := parser.NewParser(lexer.NewTokenScanner(tokens), c.eh).Parse()
	if err != nil {
		return "", &ModuleError{Module: moduleName, Path: filePath, Err: err}
	}
	log.Debug("Parsed module", "imports", len(program.Imports), "items", len(program.Items))

	info, err := semantic_analyzer.NewSemanticAnalyzer(c.eh, program).Analyze()
	if err != nil {
		return "", &ModuleError{Module: moduleName, Path: filePath, Err: err}
	}

	code, err := emitter.NewEmitter(c.eh, program, info, moduleName).Emit()
	if err != nil {
		return "", &ModuleError{Module: moduleName, Path: filePath, Err: err}
	}

	c.modules[moduleName] = &Module{
		Name:    moduleName,
		Path:    filePath,
		Program: program,
		Info:    info,
	}
	c.order = append(c.order, moduleName)

	log.Debug("Generated module", "bytes", len(code), "elapsed", time.Since(start))
	return code, nil
}

// CompileFile compiles one source file into <outputDir>/<stem>.rs.
func (c *Compiler) CompileFile(inputPath, outputDir string) ([]string, error) {
	name := moduleName(inputPath)

	text, err := c.readSource(inputPath)
	if err != nil {
		return nil, err
	}

	code, err := c.CompileSource(string(text), name, inputPath)
	if err != nil {
		return nil, err
	}

	output, err := c.writeModule(name, code, outputDir)
	if err != nil {
		return nil, err
	}
	return []string{output}, nil
}

// CompileDirectory compiles every source file below inputDir in lexical path
// order. The first failing module stops the run unless KeepGoing is set, in
// which case all failures are joined into the returned error. Outputs written
// before a failure are returned alongside it.
func (c *Compiler) CompileDirectory(inputDir, outputDir string) ([]string, error) {
	sources, err := c.discover(inputDir)
	if err != nil {
		return nil, err
	}
	c.log.Info("Compiling directory", "path", inputDir, "modules", len(sources))

	outputs := make([]string, 0, len(sources))
	failures := make([]error, 0)
	for _, source := range sources {
		files, err := c.CompileFile(source, outputDir)
		if err != nil {
			var ioErr *IOError
			if !c.cfg.Compiler.KeepGoing || errors.As(err, &ioErr) {
				return outputs, err
			}

			c.log.Warn("Module failed, continuing", "path", source, "err", err)
			failures = append(failures, err)
			continue
		}
		outputs = append(outputs, files...)
	}

	if len(failures) > 0 {
		return outputs, errors.Join(failures...)
	}
	return outputs, nil
}

// Tokenize runs only the lexer over a file.
func (c *Compiler) Tokenize(filePath string) ([]lexer.Token, error) {
	text, err := c.readSource(filePath)
	if err != nil {
		return nil, err
	}
	c.eh.AddSource(filePath, text)
	return lexer.NewLexer(text, filePath, c.eh).Tokenize()
}

// Parse runs the lexer and parser over a file without analyzing it.
func (c *Compiler) Parse(filePath string) (*ast.Program, error) {
	tokens, err := c.Tokenize(filePath)
	if err != nil {
		return nil, err
	}
	return parser.NewParser(lexer.NewTokenScanner(tokens), c.eh).Parse()
}

func (c *Compiler) readSource(path string) ([]byte, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return text, nil
}

func (c *Compiler) writeModule(name, code, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &IOError{Op: "create directory", Path: outputDir, Err: err}
	}

	output := filepath.Join(outputDir, name+rustExtension)
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		return "", &IOError{Op: "write", Path: output, Err: err}
	}

	c.modules[name].Output = output
	c.log.Info("Wrote module", "module", name, "path", output)
	return output, nil
}

// discover lists the source files below dir. Module names must be unique
// identifiers, so clashing or malformed stems are rejected before anything
// is compiled.
func (c *Compiler) discover(dir string) ([]string, error) {
	sources := make([]string, 0)
	seen := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		if d.IsDir() || filepath.Ext(path) != c.cfg.Compiler.Extension {
			return nil
		}

		name := moduleName(path)
		if !isIdentifier(name) {
			return &ModuleError{Module: name, Path: path, Err: ErrInvalidModuleName}
		}
		if first, ok := seen[name]; ok {
			return &ModuleError{
				Module: name,
				Path:   path,
				Err:    fmt.Errorf("%w: also defined by %s", ErrDuplicateModule, first),
			}
		}

		seen[name] = path
		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: %w with extension %s", dir, ErrNoSources, c.cfg.Compiler.Extension)
	}
	return sources, nil
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
