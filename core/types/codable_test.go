package types

import (
	"errors"
	"testing"

	rkerrors "github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// writeFragment serializes a value through a fresh writer and returns the
// produced XML.
func writeFragment(t *testing.T, write func(w *xml.Writer) error) []byte {
	t.Helper()
	w := xml.NewWriter()
	if err := write(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("writer state invalid: %v", err)
	}
	return data
}

// reparse parses a fragment back into a node.
func reparse(t *testing.T, data []byte) *xml.Node {
	t.Helper()
	node, err := xml.ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed on %q: %v", data, err)
	}
	return node
}

func TestCodedValueRoundTrip(t *testing.T) {
	original := CodedValue{
		Value:   "kg",
		Family:  "wc",
		Type:    "weight-units",
		Version: "1",
	}

	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("code", w)
	})

	var parsed CodedValue
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", parsed, original)
	}
}

func TestCodedValueValidation(t *testing.T) {
	tests := []struct {
		name string
		code CodedValue
	}{
		{"missing value", CodedValue{Type: "weight-units"}},
		{"missing type", CodedValue{Value: "kg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := xml.NewWriter()
			err := tt.code.WriteXml("code", w)
			var serErr *rkerrors.SerializationError
			if !errors.As(err, &serErr) {
				t.Errorf("expected SerializationError, got %v", err)
			}
		})
	}
}

func TestCodableValueRoundTrip(t *testing.T) {
	original := NewCodedCodableValue("Aspirin", "aspirin", "medications", "wc", "2")
	if err := original.AddCode(CodedValue{Value: "1191", Type: "RxNorm", Family: "RxNorm"}); err != nil {
		t.Fatalf("AddCode failed: %v", err)
	}

	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("name", w)
	})

	var parsed CodableValue
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.Text != "Aspirin" {
		t.Errorf("Text = %q, want Aspirin", parsed.Text)
	}
	if len(parsed.Codes) != 2 {
		t.Fatalf("got %d codes, want 2", len(parsed.Codes))
	}
	if parsed.Codes[1].Value != "1191" || parsed.Codes[1].Type != "RxNorm" {
		t.Errorf("second code = %+v", parsed.Codes[1])
	}
}

func TestCodableValueMandatoryText(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		node := reparse(t, []byte("<name><code><value>x</value><type>y</type></code></name>"))
		var cv CodableValue
		err := cv.ParseXml(node)
		var deserErr *rkerrors.DeserializationError
		if !errors.As(err, &deserErr) {
			t.Errorf("expected DeserializationError, got %v", err)
		}
	})

	t.Run("write", func(t *testing.T) {
		var cv CodableValue
		err := cv.WriteXml("name", xml.NewWriter())
		var serErr *rkerrors.SerializationError
		if !errors.As(err, &serErr) {
			t.Errorf("expected SerializationError, got %v", err)
		}
	})

	t.Run("setter", func(t *testing.T) {
		var cv CodableValue
		if err := cv.SetText(""); err == nil {
			t.Errorf("expected error for empty text")
		}
		if err := cv.SetText("Penicillin"); err != nil {
			t.Errorf("SetText failed: %v", err)
		}
		if cv.String() != "Penicillin" {
			t.Errorf("String() = %q", cv.String())
		}
	})
}

func TestAddCodeRejectsInvalid(t *testing.T) {
	cv := NewCodableValue("x")
	if err := cv.AddCode(CodedValue{Value: "no-type"}); err == nil {
		t.Errorf("expected error for code with no vocabulary type")
	}
	if len(cv.Codes) != 0 {
		t.Errorf("invalid code must not be appended")
	}
}
