package encoding

import (
	"bytes"
	"testing"
)

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"ampersand", "a & b", "a &amp; b"},
		{"angle brackets", "<note>", "&lt;note&gt;"},
		{"quotes untouched", `say "hi"`, `say "hi"`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLText(tt.input); got != tt.want {
				t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"quotes", `say "hi"`, "say &quot;hi&quot;"},
		{"mixed", `<a href="x">`, "&lt;a href=&quot;x&quot;&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLAttr(tt.input); got != tt.want {
				t.Errorf("EscapeXMLAttr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXML(t *testing.T) {
	got := EscapeXML("a < b & c")
	want := "a &lt; b &amp; c"
	if got != want {
		t.Errorf("EscapeXML() = %q, want %q", got, want)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xfe, 0xff, 'a', 'b'}
	encoded := EncodeBase64(data)

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, data)
	}
}

func TestDecodeBase64Whitespace(t *testing.T) {
	// Pretty-printed XML wraps inline content in whitespace.
	decoded, err := DecodeBase64("\n  aGVsbG8=\n  ")
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if string(decoded) != "hello" {
		t.Errorf("got %q, want %q", decoded, "hello")
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("!!not base64!!"); err == nil {
		t.Errorf("expected error for invalid base64")
	}
}
