package compiler_errors

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type ErrorHandler interface {
	Report(err CompilerError)
	AddSource(fileName string, text []byte)

	HasErrors() bool
	ErrorCount() int
	WarningCount() int
	Diagnostics() []CompilerError

	EmitAll()
}

// DiagnosticEngine collects the diagnostics of one compiler run.
type DiagnosticEngine struct {
	errors       []CompilerError
	errorCount   int
	warningCount int

	writer   io.Writer
	sources  *SourceCache
	renderer *Renderer
}

type Option func(*DiagnosticEngine)

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(de *DiagnosticEngine) {
		de.renderer.SetColor(enabled)
	}
}

func NewErrorHandler(outputWriter io.Writer, opts ...Option) ErrorHandler {
	color := false
	if f, ok := outputWriter.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if color {
			outputWriter = colorable.NewColorable(f)
		}
	}

	sources := NewSourceCache(defaultSourceCacheSize)
	de := &DiagnosticEngine{
		errors:   make([]CompilerError, 0),
		writer:   outputWriter,
		sources:  sources,
		renderer: NewRenderer(sources, color),
	}
	for _, opt := range opts {
		opt(de)
	}
	return de
}

func (de *DiagnosticEngine) Report(err CompilerError) {
	de.errors = append(de.errors, err)

	switch err.GetSeverity() {
	case Error:
		de.errorCount++
	case Warning:
		de.warningCount++
	}
}

func (de *DiagnosticEngine) AddSource(fileName string, text []byte) {
	de.sources.AddSource(fileName, text)
}

func (de *DiagnosticEngine) HasErrors() bool   { return de.errorCount > 0 }
func (de *DiagnosticEngine) ErrorCount() int   { return de.errorCount }
func (de *DiagnosticEngine) WarningCount() int { return de.warningCount }

// Diagnostics returns the collected diagnostics in file, line, column order.
// Diagnostics at the same position keep their report order.
func (de *DiagnosticEngine) Diagnostics() []CompilerError {
	sorted := make([]CompilerError, len(de.errors))
	copy(sorted, de.errors)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].GetSpan(), sorted[j].GetSpan()
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Before(b)
	})
	return sorted
}

func (de *DiagnosticEngine) EmitAll() {
	if len(de.errors) == 0 {
		return
	}

	for _, err := range de.Diagnostics() {
		de.renderer.Render(de.writer, err)
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s)", de.errorCount, de.warningCount)
	if de.errorCount > 0 {
		fmt.Fprintf(de.writer, "Build failed with %s\n", summary)
		return
	}
	fmt.Fprintf(de.writer, "Build succeeded with %s\n", summary)
}
