package ast

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether offset falls inside the span, end inclusive so
// that a caret placed right after an identifier still hits it.
func (s Span) Contains(offset int) bool {
	return s.Start.IsValid() && offset >= s.Start.Offset && offset <= s.End.Offset
}
