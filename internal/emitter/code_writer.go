package emitter

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// codeWriter accumulates Rust source with block indentation.
type codeWriter struct {
	buf   strings.Builder
	depth int
}

func (w *codeWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat(indentUnit, w.depth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *codeWriter) blank() {
	w.buf.WriteByte('\n')
}

// raw writes pre-formatted multi-line text as is.
func (w *codeWriter) raw(text string) {
	w.buf.WriteString(text)
}

func (w *codeWriter) indent() {
	w.depth++
}

func (w *codeWriter) dedent() {
	if w.depth == 0 {
		panic("codeWriter.dedent(): unbalanced block")
	}
	w.depth--
}

func (w *codeWriter) String() string {
	return w.buf.String()
}
