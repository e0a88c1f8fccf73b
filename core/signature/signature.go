// Package signature models the <signature-info> envelope carried on
// signed health record items: the signature method, the blob manifest
// covered by the signature, and the signature value itself. Digest and
// RSA operations are delegated to the platform crypto libraries.
package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"

	"github.com/evergreen-health/recordkit/core/encoding"
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// Signature methods defined by the service. The SHA-1 method exists only
// to verify signatures written by old clients; new signatures always use
// SHA-256.
const (
	MethodRSASHA1   = "RSA-SHA1"
	MethodRSASHA256 = "RSA-SHA256"
)

// BlobSignatureItem records one blob covered by an item signature.
// Signing covers the blob's identity and digest rather than its bytes,
// so reference blobs can be signed without local content.
type BlobSignatureItem struct {
	Name        string
	ContentType string
	Hash        []byte
}

// Info is one signature envelope on an item. An item may carry several,
// each from a different signer.
type Info struct {
	Method         string
	AlgorithmTag   string
	BlobItems      []BlobSignatureItem
	SignatureValue []byte
	CertThumbprint string
}

// Thumbprint returns the hex SHA-1 thumbprint of a certificate, the
// conventional identifier for the signing certificate.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// ComputeDigest computes the canonical digest the signature covers: the
// serialized type payload followed by each blob item's identity and
// digest, in payload order.
func ComputeDigest(method string, dataXML []byte, blobItems []BlobSignatureItem) ([]byte, error) {
	var h crypto.Hash
	switch method {
	case MethodRSASHA1:
		h = crypto.SHA1
	case MethodRSASHA256:
		h = crypto.SHA256
	default:
		return nil, errors.NewUnsupported("signature method", method)
	}
	hasher := h.New()
	hasher.Write(dataXML)
	for _, item := range blobItems {
		hasher.Write([]byte(item.Name))
		hasher.Write([]byte{0})
		hasher.Write([]byte(item.ContentType))
		hasher.Write([]byte{0})
		hasher.Write(item.Hash)
	}
	return hasher.Sum(nil), nil
}

// Sign produces a signature envelope over the given type payload and
// blob manifest. The certificate is optional; when present its
// thumbprint is recorded so verifiers can locate the public key.
func Sign(priv *rsa.PrivateKey, cert *x509.Certificate, dataXML []byte, blobItems []BlobSignatureItem) (*Info, error) {
	digest, err := ComputeDigest(MethodRSASHA256, dataXML, blobItems)
	if err != nil {
		return nil, err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest)
	if err != nil {
		return nil, errors.Wrap(err, "signing item digest")
	}
	info := &Info{
		Method:         MethodRSASHA256,
		AlgorithmTag:   "rsa-sha256",
		BlobItems:      blobItems,
		SignatureValue: sig,
	}
	if cert != nil {
		info.CertThumbprint = Thumbprint(cert)
	}
	return info, nil
}

// Verify checks the signature against the given public key and type
// payload. The blob manifest recorded in the envelope is the one
// covered, so tampering with either the payload or a blob digest fails
// verification.
func (i *Info) Verify(pub *rsa.PublicKey, dataXML []byte) error {
	digest, err := ComputeDigest(i.Method, dataXML, i.BlobItems)
	if err != nil {
		return err
	}
	var h crypto.Hash
	if i.Method == MethodRSASHA1 {
		h = crypto.SHA1
	} else {
		h = crypto.SHA256
	}
	if err := rsa.VerifyPKCS1v15(pub, h, digest, i.SignatureValue); err != nil {
		return errors.Wrap(err, "item signature invalid")
	}
	return nil
}

// ParseXml populates the envelope from a <signature-info> element.
func (i *Info) ParseXml(node *xml.Node) error {
	sigData := node.Child("sig-data")
	if sigData == nil {
		return errors.NewDeserialization("signature-info", "sig-data", "mandatory element missing")
	}
	i.Method = sigData.ChildText("method")
	if i.Method == "" {
		return errors.NewDeserialization("signature-info", "method", "mandatory element missing")
	}
	i.AlgorithmTag = sigData.ChildText("algorithm-tag")

	i.BlobItems = nil
	if blobInfo := sigData.Child("blob-signature-info"); blobInfo != nil {
		for _, itemNode := range blobInfo.ChildrenNamed("item") {
			item := BlobSignatureItem{
				Name:        itemNode.ChildText("name"),
				ContentType: itemNode.ChildText("content-type"),
			}
			if hashText := itemNode.ChildText("hash"); hashText != "" {
				digest, err := encoding.DecodeBase64(hashText)
				if err != nil {
					return errors.NewDeserializationWrap("signature-info", "hash", err)
				}
				item.Hash = digest
			}
			i.BlobItems = append(i.BlobItems, item)
		}
	}

	sigNode := node.Child("signature")
	if sigNode == nil {
		return errors.NewDeserialization("signature-info", "signature", "mandatory element missing")
	}
	sig, err := encoding.DecodeBase64(sigNode.Text())
	if err != nil {
		return errors.NewDeserializationWrap("signature-info", "signature", err)
	}
	i.SignatureValue = sig
	i.CertThumbprint = sigNode.Attr("thumbprint")
	return nil
}

// WriteXml writes the envelope as a <signature-info> element.
func (i *Info) WriteXml(w *xml.Writer) error {
	if i.Method == "" {
		return errors.NewSerialization("signature-info", "method", "mandatory element missing")
	}
	if len(i.SignatureValue) == 0 {
		return errors.NewSerialization("signature-info", "signature", "mandatory element missing")
	}
	w.StartElement("signature-info")
	w.StartElement("sig-data")
	w.ElementString("method", i.Method)
	w.OptionalElementString("algorithm-tag", i.AlgorithmTag)
	if len(i.BlobItems) > 0 {
		w.StartElement("blob-signature-info")
		for _, item := range i.BlobItems {
			w.StartElement("item")
			w.ElementString("name", item.Name)
			w.ElementString("content-type", item.ContentType)
			if len(item.Hash) > 0 {
				w.ElementString("hash", encoding.EncodeBase64(item.Hash))
			}
			w.EndElement()
		}
		w.EndElement()
	}
	w.EndElement()
	w.StartElement("signature")
	if i.CertThumbprint != "" {
		w.Attribute("thumbprint", i.CertThumbprint)
	}
	w.Text(encoding.EncodeBase64(i.SignatureValue))
	w.EndElement()
	w.EndElement()
	return w.Err()
}
