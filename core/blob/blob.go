// Package blob models BLOB attachments on health record items and
// provides a local content-addressed store for their payloads.
package blob

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/evergreen-health/recordkit/core/encoding"
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// DefaultBlockSize is the hash block size the service uses for blob
// integrity checks.
const DefaultBlockSize = 1 << 21 // 2 MB

// HashAlgorithmSHA256Block is the only blob hash algorithm the service
// currently defines.
const HashAlgorithmSHA256Block = "SHA256Block"

// Blob is a single named attachment on an item. Small blobs are carried
// inline as base64; large ones are referenced by URL and streamed
// separately.
type Blob struct {
	Name                  string // "" is the default, unnamed blob
	ContentType           string
	ContentLength         int64
	HashAlgorithm         string
	BlockSize             int
	Hash                  []byte // SHA256Block digest
	Inline                []byte // decoded inline data, nil when referenced
	RefURL                string
	ContentEncoding       string
	LegacyContentEncoding string
}

// NewInlineBlob creates a blob carried inline, computing its digest and
// content length.
func NewInlineBlob(name, contentType string, data []byte) *Blob {
	digest := sha256.Sum256(data)
	return &Blob{
		Name:          name,
		ContentType:   contentType,
		ContentLength: int64(len(data)),
		HashAlgorithm: HashAlgorithmSHA256Block,
		BlockSize:     DefaultBlockSize,
		Hash:          digest[:],
		Inline:        data,
	}
}

// Verify recomputes the digest of inline data against the recorded hash.
// Referenced blobs cannot be verified locally and return nil.
func (b *Blob) Verify() error {
	if b.Inline == nil || len(b.Hash) == 0 {
		return nil
	}
	digest := sha256.Sum256(b.Inline)
	if string(digest[:]) != string(b.Hash) {
		return errors.NewValidation("hash", fmt.Sprintf("blob %q content does not match its digest", b.Name))
	}
	return nil
}

// ParseXml populates the blob from a <blob> element.
func (b *Blob) ParseXml(node *xml.Node) error {
	info, err := requireChild(node, "blob-info")
	if err != nil {
		return err
	}
	b.Name = info.ChildText("name")
	b.ContentType = info.ChildText("content-type")

	b.HashAlgorithm = ""
	b.BlockSize = 0
	b.Hash = nil
	if hashInfo := info.Child("hash-info"); hashInfo != nil {
		b.HashAlgorithm = hashInfo.ChildText("algorithm")
		if params := hashInfo.Child("params"); params != nil {
			if bs := params.ChildText("block-size"); bs != "" {
				size, err := strconv.Atoi(bs)
				if err != nil {
					return errors.NewDeserializationWrap("blob", "block-size", err)
				}
				b.BlockSize = size
			}
		}
		if hashText := hashInfo.ChildText("hash"); hashText != "" {
			digest, err := encoding.DecodeBase64(hashText)
			if err != nil {
				return errors.NewDeserializationWrap("blob", "hash", err)
			}
			b.Hash = digest
		}
	}

	b.ContentLength = 0
	if lengthText := node.ChildText("content-length"); lengthText != "" {
		length, err := strconv.ParseInt(lengthText, 10, 64)
		if err != nil {
			return errors.NewDeserializationWrap("blob", "content-length", err)
		}
		b.ContentLength = length
	}

	b.Inline = nil
	b.RefURL = ""
	if dataNode := node.Child("base64data"); dataNode != nil {
		data, err := encoding.DecodeBase64(dataNode.Text())
		if err != nil {
			return errors.NewDeserializationWrap("blob", "base64data", err)
		}
		b.Inline = data
	} else if refNode := node.Child("blob-ref-url"); refNode != nil {
		b.RefURL = refNode.Text()
	}

	b.LegacyContentEncoding = node.ChildText("legacy-content-encoding")
	b.ContentEncoding = node.ChildText("current-content-encoding")
	return nil
}

// WriteXml writes the blob as a <blob> element.
func (b *Blob) WriteXml(w *xml.Writer) error {
	if b.ContentType == "" {
		return errors.NewSerialization("blob", "content-type", "mandatory element missing")
	}
	if b.Inline == nil && b.RefURL == "" {
		return errors.NewSerialization("blob", "base64data", "blob carries neither inline data nor a reference URL")
	}
	w.StartElement("blob")
	w.StartElement("blob-info")
	w.ElementString("name", b.Name)
	w.ElementString("content-type", b.ContentType)
	if b.HashAlgorithm != "" {
		w.StartElement("hash-info")
		w.ElementString("algorithm", b.HashAlgorithm)
		if b.BlockSize > 0 {
			w.StartElement("params")
			w.ElementString("block-size", strconv.Itoa(b.BlockSize))
			w.EndElement()
		}
		if len(b.Hash) > 0 {
			w.ElementString("hash", encoding.EncodeBase64(b.Hash))
		}
		w.EndElement()
	}
	w.EndElement()
	if b.ContentLength > 0 {
		w.ElementString("content-length", strconv.FormatInt(b.ContentLength, 10))
	}
	if b.Inline != nil {
		w.ElementString("base64data", encoding.EncodeBase64(b.Inline))
	} else {
		w.ElementString("blob-ref-url", b.RefURL)
	}
	w.OptionalElementString("legacy-content-encoding", b.LegacyContentEncoding)
	w.OptionalElementString("current-content-encoding", b.ContentEncoding)
	w.EndElement()
	return w.Err()
}

func (b *Blob) String() string {
	name := b.Name
	if name == "" {
		name = "(default)"
	}
	return fmt.Sprintf("%s [%s, %d bytes]", name, b.ContentType, b.ContentLength)
}

// Payload is the named blob collection attached to one item. Blob names
// are unique within a payload; order is preserved for round-tripping.
type Payload struct {
	Blobs []*Blob
}

// Get returns the blob with the given name, or nil.
func (p *Payload) Get(name string) *Blob {
	for _, b := range p.Blobs {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Add adds a blob, replacing any existing blob with the same name.
func (p *Payload) Add(b *Blob) {
	for i, existing := range p.Blobs {
		if existing.Name == b.Name {
			p.Blobs[i] = b
			return
		}
	}
	p.Blobs = append(p.Blobs, b)
}

// ParseXml populates the payload from a <blob-payload> element.
func (p *Payload) ParseXml(node *xml.Node) error {
	p.Blobs = nil
	for _, blobNode := range node.ChildrenNamed("blob") {
		b := &Blob{}
		if err := b.ParseXml(blobNode); err != nil {
			return err
		}
		p.Blobs = append(p.Blobs, b)
	}
	return nil
}

// WriteXml writes the payload as a <blob-payload> element. An empty
// payload writes nothing.
func (p *Payload) WriteXml(w *xml.Writer) error {
	if len(p.Blobs) == 0 {
		return nil
	}
	w.StartElement("blob-payload")
	for _, b := range p.Blobs {
		if err := b.WriteXml(w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func requireChild(node *xml.Node, name string) (*xml.Node, error) {
	child := node.Child(name)
	if child == nil {
		return nil, errors.NewDeserialization("blob", name, "mandatory element missing")
	}
	return child, nil
}
