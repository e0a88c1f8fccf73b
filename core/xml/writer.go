package xml

import (
	"bytes"
	"fmt"

	"github.com/evergreen-health/recordkit/core/encoding"
)

// Writer builds XML fragments element by element. It is the write-side
// counterpart of Node: item serialization pushes elements onto the writer
// and the writer takes care of escaping and tag balancing.
//
// Attributes must be written before any content is added to the open
// element; writing one later is a programming error and returns an error
// from Err.
type Writer struct {
	buf     bytes.Buffer
	stack   []string
	pending bool // an open tag has not yet been closed with ">"
	err     error
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// StartElement opens a new element.
func (w *Writer) StartElement(name string) {
	if w.err != nil {
		return
	}
	w.closePending()
	w.buf.WriteString("<")
	w.buf.WriteString(name)
	w.stack = append(w.stack, name)
	w.pending = true
}

// Attribute writes an attribute on the currently open element.
func (w *Writer) Attribute(name, value string) {
	if w.err != nil {
		return
	}
	if !w.pending {
		w.err = fmt.Errorf("attribute %q written after element content", name)
		return
	}
	w.buf.WriteString(" ")
	w.buf.WriteString(name)
	w.buf.WriteString("=\"")
	w.buf.WriteString(encoding.EscapeXMLAttr(value))
	w.buf.WriteString("\"")
}

// Text writes escaped character data inside the current element.
func (w *Writer) Text(s string) {
	if w.err != nil {
		return
	}
	w.closePending()
	w.buf.WriteString(encoding.EscapeXMLText(s))
}

// Raw writes pre-serialized XML verbatim inside the current element.
// Used for opaque payloads (data-xml bodies, extensions) that are carried
// through without re-parsing.
func (w *Writer) Raw(s string) {
	if w.err != nil {
		return
	}
	w.closePending()
	w.buf.WriteString(s)
}

// EndElement closes the most recently opened element.
func (w *Writer) EndElement() {
	if w.err != nil {
		return
	}
	if len(w.stack) == 0 {
		w.err = fmt.Errorf("end element with no open element")
		return
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	if w.pending {
		w.buf.WriteString("/>")
		w.pending = false
		return
	}
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteString(">")
}

// ElementString writes <name>text</name> in one call. Empty text still
// produces an element so mandatory-but-empty markers round-trip.
func (w *Writer) ElementString(name, text string) {
	w.StartElement(name)
	if text != "" {
		w.Text(text)
	}
	w.EndElement()
}

// OptionalElementString writes <name>text</name> only when text is non-empty.
func (w *Writer) OptionalElementString(name, text string) {
	if text == "" {
		return
	}
	w.ElementString(name, text)
}

// Err returns the first structural error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Bytes returns the serialized fragment. All opened elements must have
// been closed.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.stack) != 0 {
		return nil, fmt.Errorf("unclosed element %q", w.stack[len(w.stack)-1])
	}
	return w.buf.Bytes(), nil
}

// String returns the serialized fragment as a string, ignoring structural
// errors. Use Bytes when errors must be surfaced.
func (w *Writer) String() string {
	return w.buf.String()
}

func (w *Writer) closePending() {
	if w.pending {
		w.buf.WriteString(">")
		w.pending = false
	}
}
