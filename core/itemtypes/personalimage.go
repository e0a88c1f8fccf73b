package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/blob"
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/xml"
)

// PersonalImageTypeID identifies personal image items.
var PersonalImageTypeID = register("a5294488-f865-4ce3-92fa-187cd3b58930", func() thing.TypedItem { return &PersonalImage{} })

// PersonalImage is the person's profile picture. The image bytes live in
// the unnamed blob of the payload; the type payload itself is empty.
type PersonalImage struct {
	thing.Thing
}

// NewPersonalImage creates a personal image item carrying the given
// image bytes.
func NewPersonalImage(data []byte, contentType string) (*PersonalImage, error) {
	p := &PersonalImage{Thing: *thing.New(PersonalImageTypeID)}
	p.TypeName = "Personal Image"
	if err := p.SetImage(data, contentType); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PersonalImage) Item() *thing.Thing  { return &p.Thing }
func (p *PersonalImage) RootElement() string { return "personal-image" }

// SetImage replaces the image bytes.
func (p *PersonalImage) SetImage(data []byte, contentType string) error {
	if len(data) == 0 {
		return errors.NewValidation("image", "image data must not be empty")
	}
	if contentType == "" {
		return errors.NewValidation("content-type", "content type is mandatory")
	}
	p.Blobs.Add(blob.NewInlineBlob("", contentType, data))
	return nil
}

// Image returns the image bytes and content type.
func (p *PersonalImage) Image() ([]byte, string, error) {
	b := p.Blobs.Get("")
	if b == nil {
		return nil, "", errors.NewNotFound("blob", "personal image")
	}
	if err := b.Verify(); err != nil {
		return nil, "", err
	}
	return b.Inline, b.ContentType, nil
}

func (p *PersonalImage) ParseTypeData(node *xml.Node) error {
	// The payload root carries no children; the image is in the blob
	// payload section.
	return nil
}

func (p *PersonalImage) WriteTypeData(w *xml.Writer) error {
	w.StartElement("personal-image")
	w.EndElement()
	return w.Err()
}

func (p *PersonalImage) String() string {
	if b := p.Blobs.Get(""); b != nil {
		return "personal image (" + b.ContentType + ")"
	}
	return "personal image (empty)"
}
