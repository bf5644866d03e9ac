package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/codedom/csharp/ast"
)

// Encoder writes a tree in one output format. MarshalText returns the
// text of the node passed to the last Encode call.
type Encoder interface {
	encoding.TextMarshaler
	Encode(n ast.Node) error
}

// NewEncoder returns the encoder registered under name: "source",
// "description", "line" or "json".
func NewEncoder(name string, w io.Writer, opts ...Option) (Encoder, error) {
	switch name {
	case "", "source":
		return NewSourceEncoder(w, Source, opts...), nil
	case "description":
		return NewSourceEncoder(w, Description, opts...), nil
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewASTJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}

type SourceEncoder struct {
	w       io.Writer
	printer *Printer
	node    ast.Node
}

func NewSourceEncoder(w io.Writer, flags Flags, opts ...Option) *SourceEncoder {
	return &SourceEncoder{w: w, printer: NewPrinter(flags, opts...)}
}

func (e *SourceEncoder) Encode(n ast.Node) error {
	e.node = n
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *SourceEncoder) MarshalText() ([]byte, error) {
	if e.node == nil {
		return nil, nil
	}
	return []byte(e.printer.Render(e.node)), nil
}
