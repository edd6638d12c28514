package source

import "fmt"

// Span is a range in one source file. Lines and columns are 1-based, the end is exclusive.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
	}
	return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
}

func (s Span) IsValid() bool {
	return s.StartLine > 0 && s.StartCol > 0
}

// To returns a span from the start of s to the end of end.
func (s Span) To(end Span) Span {
	return Span{
		File:      s.File,
		StartLine: s.StartLine,
		StartCol:  s.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Before reports whether s starts before other in the same file.
func (s Span) Before(other Span) bool {
	if s.StartLine != other.StartLine {
		return s.StartLine < other.StartLine
	}
	return s.StartCol < other.StartCol
}
