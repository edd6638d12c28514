package compiler_errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Renderer prints one diagnostic with a source snippet:
//
//	error: type mismatch: expected Int, found Str
//	  --> main.rsc:1:14
//	   |
//	 1 | let x: Int = "hi";
//	   |              ^~~~
type Renderer struct {
	sources *SourceCache

	errorColor   *color.Color
	warningColor *color.Color
	gutterColor  *color.Color
	noteColor    *color.Color
}

func NewRenderer(sources *SourceCache, enableColor bool) *Renderer {
	r := &Renderer{
		sources:      sources,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		gutterColor:  color.New(color.FgBlue, color.Bold),
		noteColor:    color.New(color.FgCyan),
	}
	r.SetColor(enableColor)
	return r
}

func (r *Renderer) SetColor(enabled bool) {
	for _, c := range []*color.Color{r.errorColor, r.warningColor, r.gutterColor, r.noteColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func (r *Renderer) Render(w io.Writer, err CompilerError) {
	severityColor := r.errorColor
	if err.GetSeverity() == Warning {
		severityColor = r.warningColor
	}

	fmt.Fprintf(w, "%s: %s\n", severityColor.Sprint(err.GetSeverity().String()), err.GetMessage())

	span := err.GetSpan()
	if !span.IsValid() {
		r.renderNotes(w, err, "")
		return
	}

	lineNum := fmt.Sprint(span.StartLine)
	pad := strings.Repeat(" ", len(lineNum))
	fmt.Fprintf(w, "%s%s %s\n", pad, r.gutterColor.Sprint("-->"), span)

	line, ok := r.sources.GetLine(span.File, span.StartLine)
	if !ok {
		r.renderNotes(w, err, pad)
		return
	}

	fmt.Fprintf(w, "%s %s\n", pad, r.gutterColor.Sprint("|"))
	fmt.Fprintf(w, "%s %s %s\n", r.gutterColor.Sprint(lineNum), r.gutterColor.Sprint("|"), line)
	fmt.Fprintf(w, "%s %s %s\n", pad, r.gutterColor.Sprint("|"), severityColor.Sprint(underline(line, span.StartCol, span.EndCol, span.StartLine == span.EndLine)))
	r.renderNotes(w, err, pad)
}

func (r *Renderer) renderNotes(w io.Writer, err CompilerError, pad string) {
	noted, ok := err.(NotedError)
	if !ok {
		return
	}
	for _, note := range noted.GetNotes() {
		fmt.Fprintf(w, "%s %s %s\n", pad, r.gutterColor.Sprint("="), r.noteColor.Sprint("note: "+note))
	}
}

// underline builds the caret line. Tabs in the prefix are kept so the caret lines up.
func underline(line string, startCol, endCol int, sameLine bool) string {
	if startCol < 1 {
		startCol = 1
	}
	if startCol > len(line)+1 {
		startCol = len(line) + 1
	}

	var sb strings.Builder
	for i := 0; i < startCol-1; i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}

	width := 1
	if sameLine && endCol > startCol {
		width = endCol - startCol
	} else if !sameLine {
		width = len(line) - startCol + 1
	}
	if width < 1 {
		width = 1
	}

	sb.WriteByte('^')
	sb.WriteString(strings.Repeat("~", width-1))
	return sb.String()
}
