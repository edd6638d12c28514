package compiler_errors

import (
	"fmt"

	"github.com/kendroooo/rustic/internal/source"
)

type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		panic(fmt.Sprintf("Severity.String(): received illegal severity: %d", s))
	}
}

// Stage names the pipeline stage that produced a diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageSemantic Stage = "semantic"
	StageEmitter  Stage = "emitter"
)

type CompilerError interface {
	GetMessage() string
	GetSpan() source.Span
	GetSeverity() Severity
	GetStage() Stage
}

// Diagnostic is the generic CompilerError. Stage specific errors live next to their stage.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Span     source.Span
	Notes    []string
}

func NewError(stage Stage, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Stage:    stage,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

func NewWarning(stage Stage, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Stage:    stage,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// WithNote returns a copy of the diagnostic with an extra note line.
func (d *Diagnostic) WithNote(format string, args ...any) *Diagnostic {
	nd := *d
	nd.Notes = append(append([]string(nil), d.Notes...), fmt.Sprintf(format, args...))
	return &nd
}

func (d *Diagnostic) GetMessage() string    { return d.Message }
func (d *Diagnostic) GetSpan() source.Span  { return d.Span }
func (d *Diagnostic) GetSeverity() Severity { return d.Severity }
func (d *Diagnostic) GetStage() Stage       { return d.Stage }

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
}

func (d *Diagnostic) GetNotes() []string { return d.Notes }

// NotedError is implemented by errors that carry extra note lines.
type NotedError interface {
	GetNotes() []string
}
