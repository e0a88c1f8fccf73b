package thing

import (
	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// Key uniquely identifies one version of an item: the item ID is stable
// across updates, the version stamp changes on every write. Items that
// have never been committed to the service have no key.
type Key struct {
	ID           uuid.UUID
	VersionStamp uuid.UUID
}

// NewKey creates a key with a fresh item ID and version stamp. Used by
// tests and offline fixtures; real keys are assigned by the service.
func NewKey() *Key {
	return &Key{ID: uuid.New(), VersionStamp: uuid.New()}
}

// ParseXml populates the key from a <thing-id> element whose text is the
// item ID and whose version-stamp attribute is the version.
func (k *Key) ParseXml(node *xml.Node) error {
	id, err := uuid.Parse(node.Text())
	if err != nil {
		return errors.NewDeserializationWrap("thing", "thing-id", err)
	}
	k.ID = id
	k.VersionStamp = uuid.Nil
	if stamp := node.Attr("version-stamp"); stamp != "" {
		vs, err := uuid.Parse(stamp)
		if err != nil {
			return errors.NewDeserializationWrap("thing", "version-stamp", err)
		}
		k.VersionStamp = vs
	}
	return nil
}

// WriteXml writes the key as a <thing-id> element.
func (k *Key) WriteXml(w *xml.Writer) {
	w.StartElement("thing-id")
	if k.VersionStamp != uuid.Nil {
		w.Attribute("version-stamp", k.VersionStamp.String())
	}
	w.Text(k.ID.String())
	w.EndElement()
}

func (k *Key) String() string {
	return k.ID.String()
}
