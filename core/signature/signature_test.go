package signature

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/evergreen-health/recordkit/core/xml"
)

// testKey is generated once; 1024 bits keeps the test fast and is fine
// for signature plumbing tests.
var testKey = mustGenerateKey()

func mustGenerateKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		panic(err)
	}
	return key
}

func TestComputeDigestStability(t *testing.T) {
	payload := []byte("<weight><when/><value><kg>72</kg></value></weight>")
	items := []BlobSignatureItem{
		{Name: "photo", ContentType: "image/jpeg", Hash: []byte{1, 2, 3}},
	}

	d1, err := ComputeDigest(MethodRSASHA256, payload, items)
	if err != nil {
		t.Fatalf("ComputeDigest failed: %v", err)
	}
	d2, err := ComputeDigest(MethodRSASHA256, payload, items)
	if err != nil {
		t.Fatalf("ComputeDigest failed: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Errorf("digest not deterministic")
	}

	d3, _ := ComputeDigest(MethodRSASHA256, []byte("<weight/>"), items)
	if bytes.Equal(d1, d3) {
		t.Errorf("different payloads must digest differently")
	}

	d4, _ := ComputeDigest(MethodRSASHA256, payload, nil)
	if bytes.Equal(d1, d4) {
		t.Errorf("blob manifest must be covered by the digest")
	}

	if _, err := ComputeDigest("HMAC-MD5", payload, nil); err == nil {
		t.Errorf("expected error for unknown method")
	}
}

func TestSignAndVerify(t *testing.T) {
	payload := []byte("<medication><name><text>Aspirin</text></name></medication>")
	items := []BlobSignatureItem{
		{Name: "label", ContentType: "image/png", Hash: []byte{9, 8, 7}},
	}

	info, err := Sign(testKey, nil, payload, items)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if info.Method != MethodRSASHA256 {
		t.Errorf("Method = %q", info.Method)
	}

	if err := info.Verify(&testKey.PublicKey, payload); err != nil {
		t.Errorf("Verify failed on untampered item: %v", err)
	}

	t.Run("tampered payload", func(t *testing.T) {
		if err := info.Verify(&testKey.PublicKey, []byte("<medication/>")); err == nil {
			t.Errorf("expected verification failure")
		}
	})

	t.Run("tampered blob manifest", func(t *testing.T) {
		tampered := *info
		tampered.BlobItems = []BlobSignatureItem{
			{Name: "label", ContentType: "image/png", Hash: []byte{0, 0, 0}},
		}
		if err := tampered.Verify(&testKey.PublicKey, payload); err == nil {
			t.Errorf("expected verification failure")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey := mustGenerateKey()
		if err := info.Verify(&otherKey.PublicKey, payload); err == nil {
			t.Errorf("expected verification failure")
		}
	})
}

func TestSignatureInfoRoundTrip(t *testing.T) {
	payload := []byte("<condition><name><text>Asthma</text></name></condition>")
	original, err := Sign(testKey, nil, payload, []BlobSignatureItem{
		{Name: "report", ContentType: "application/pdf", Hash: []byte{4, 5, 6}},
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	original.CertThumbprint = "ab12cd34"

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
	var parsed Info
	if err := parsed.ParseXml(node); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}

	if parsed.Method != original.Method || parsed.AlgorithmTag != original.AlgorithmTag {
		t.Errorf("method lost: %+v", parsed)
	}
	if !bytes.Equal(parsed.SignatureValue, original.SignatureValue) {
		t.Errorf("signature value lost")
	}
	if parsed.CertThumbprint != "ab12cd34" {
		t.Errorf("thumbprint lost: %q", parsed.CertThumbprint)
	}
	if len(parsed.BlobItems) != 1 || parsed.BlobItems[0].Name != "report" {
		t.Fatalf("blob manifest lost: %+v", parsed.BlobItems)
	}
	if !bytes.Equal(parsed.BlobItems[0].Hash, []byte{4, 5, 6}) {
		t.Errorf("blob hash lost")
	}

	// The re-parsed envelope still verifies.
	if err := parsed.Verify(&testKey.PublicKey, payload); err != nil {
		t.Errorf("Verify failed after round trip: %v", err)
	}
}

func TestSignatureInfoParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing sig-data", "<signature-info><signature>YWJj</signature></signature-info>"},
		{"missing method", "<signature-info><sig-data/><signature>YWJj</signature></signature-info>"},
		{"missing signature", "<signature-info><sig-data><method>RSA-SHA256</method></sig-data></signature-info>"},
		{"bad signature base64", "<signature-info><sig-data><method>RSA-SHA256</method></sig-data><signature>!!</signature></signature-info>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := xml.ParseFragment([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseFragment failed: %v", err)
			}
			var info Info
			if err := info.ParseXml(node); err == nil {
				t.Errorf("expected parse error")
			}
		})
	}
}
