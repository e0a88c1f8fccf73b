package blob

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evergreen-health/recordkit/core/xml"
)

func TestInlineBlobRoundTrip(t *testing.T) {
	content := []byte("fake image bytes")
	original := NewInlineBlob("photo", "image/jpeg", content)

	w := xml.NewWriter()
	if err := original.WriteXml(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("writer state invalid: %v", err)
	}

	node, err := xml.ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	var parsed Blob
	if err := parsed.ParseXml(node); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}

	if parsed.Name != "photo" || parsed.ContentType != "image/jpeg" {
		t.Errorf("identity lost: %+v", parsed)
	}
	if !bytes.Equal(parsed.Inline, content) {
		t.Errorf("inline data lost")
	}
	if parsed.ContentLength != int64(len(content)) {
		t.Errorf("content length = %d, want %d", parsed.ContentLength, len(content))
	}
	if parsed.HashAlgorithm != HashAlgorithmSHA256Block || parsed.BlockSize != DefaultBlockSize {
		t.Errorf("hash info lost: %+v", parsed)
	}
	if err := parsed.Verify(); err != nil {
		t.Errorf("Verify failed after round trip: %v", err)
	}
}

func TestBlobVerifyDetectsTamper(t *testing.T) {
	b := NewInlineBlob("", "text/plain", []byte("original"))
	b.Inline = []byte("tampered")
	if err := b.Verify(); err == nil {
		t.Errorf("expected verification failure")
	}
}

func TestBlobReferenceRoundTrip(t *testing.T) {
	original := &Blob{
		Name:          "scan",
		ContentType:   "application/pdf",
		ContentLength: 1 << 24,
		RefURL:        "https://platform.example.com/streaming/blob?ref=abc",
	}

	w := xml.NewWriter()
	if err := original.WriteXml(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, _ := w.Bytes()
	if !strings.Contains(string(data), "<blob-ref-url>") {
		t.Fatalf("expected blob-ref-url element: %s", data)
	}

	node, err := xml.ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	var parsed Blob
	if err := parsed.ParseXml(node); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.RefURL != original.RefURL || parsed.Inline != nil {
		t.Errorf("reference lost: %+v", parsed)
	}
}

func TestBlobWriteValidation(t *testing.T) {
	tests := []struct {
		name string
		blob Blob
	}{
		{"no content type", Blob{Inline: []byte("x")}},
		{"no data or reference", Blob{ContentType: "text/plain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.blob.WriteXml(xml.NewWriter()); err == nil {
				t.Errorf("expected error for %+v", tt.blob)
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	var payload Payload
	payload.Add(NewInlineBlob("", "text/plain", []byte("default blob")))
	payload.Add(NewInlineBlob("notes", "text/plain", []byte("some notes")))

	w := xml.NewWriter()
	if err := payload.WriteXml(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, _ := w.Bytes()

	node, err := xml.ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if node.Name() != "blob-payload" {
		t.Fatalf("root = %q", node.Name())
	}

	var parsed Payload
	if err := parsed.ParseXml(node); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if len(parsed.Blobs) != 2 {
		t.Fatalf("got %d blobs, want 2", len(parsed.Blobs))
	}
	if parsed.Get("notes") == nil || string(parsed.Get("notes").Inline) != "some notes" {
		t.Errorf("named blob lost")
	}
	if parsed.Get("") == nil {
		t.Errorf("default blob lost")
	}
}

func TestPayloadAddReplacesSameName(t *testing.T) {
	var payload Payload
	payload.Add(NewInlineBlob("a", "text/plain", []byte("one")))
	payload.Add(NewInlineBlob("a", "text/plain", []byte("two")))
	if len(payload.Blobs) != 1 {
		t.Fatalf("got %d blobs, want 1", len(payload.Blobs))
	}
	if string(payload.Get("a").Inline) != "two" {
		t.Errorf("replacement did not take effect")
	}
}

func TestEmptyPayloadWritesNothing(t *testing.T) {
	var payload Payload
	w := xml.NewWriter()
	if err := payload.WriteXml(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, _ := w.Bytes()
	if len(data) != 0 {
		t.Errorf("empty payload should write nothing, got %s", data)
	}
}
