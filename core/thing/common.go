package thing

import (
	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// RelatedItem links an item to another item in the same record, such as
// an annotation attached to a lab result.
type RelatedItem struct {
	ID           uuid.UUID
	VersionStamp uuid.UUID
	Relationship string
}

// ParseXml populates the relation from a <related-thing> element.
func (r *RelatedItem) ParseXml(node *xml.Node) error {
	idText := node.ChildText("thing-id")
	if idText == "" {
		return errors.NewDeserialization("related-thing", "thing-id", "mandatory element missing")
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return errors.NewDeserializationWrap("related-thing", "thing-id", err)
	}
	r.ID = id
	r.VersionStamp = uuid.Nil
	if stampText := node.ChildText("version-stamp"); stampText != "" {
		stamp, err := uuid.Parse(stampText)
		if err != nil {
			return errors.NewDeserializationWrap("related-thing", "version-stamp", err)
		}
		r.VersionStamp = stamp
	}
	r.Relationship = node.ChildText("relationship-type")
	return nil
}

// WriteXml writes the relation as a <related-thing> element.
func (r *RelatedItem) WriteXml(w *xml.Writer) error {
	if r.ID == uuid.Nil {
		return errors.NewSerialization("related-thing", "thing-id", "mandatory element missing")
	}
	w.StartElement("related-thing")
	w.ElementString("thing-id", r.ID.String())
	if r.VersionStamp != uuid.Nil {
		w.ElementString("version-stamp", r.VersionStamp.String())
	}
	w.OptionalElementString("relationship-type", r.Relationship)
	w.EndElement()
	return nil
}

// CommonData is the data shared by all item types: provenance, free-text
// note, client-assigned ID, relations, and application extensions. It is
// carried inside data-xml next to the type payload.
type CommonData struct {
	Source   string
	Note     string
	ClientID string
	Related  []RelatedItem
	// Extensions are opaque <extension> elements preserved verbatim so
	// foreign applications' data survives a round trip.
	Extensions []string
}

// IsEmpty reports whether there is nothing to serialize.
func (c *CommonData) IsEmpty() bool {
	return c.Source == "" && c.Note == "" && c.ClientID == "" &&
		len(c.Related) == 0 && len(c.Extensions) == 0
}

// ParseXml populates the common data from a <common> element.
func (c *CommonData) ParseXml(node *xml.Node) error {
	c.Source = node.ChildText("source")
	c.Note = node.ChildText("note")
	c.ClientID = node.ChildText("client-thing-id")
	c.Related = nil
	for _, relNode := range node.ChildrenNamed("related-thing") {
		var rel RelatedItem
		if err := rel.ParseXml(relNode); err != nil {
			return err
		}
		c.Related = append(c.Related, rel)
	}
	c.Extensions = nil
	for _, extNode := range node.ChildrenNamed("extension") {
		c.Extensions = append(c.Extensions, extNode.OuterXML())
	}
	return nil
}

// WriteXml writes the common data as a <common> element. Empty common
// data writes nothing.
func (c *CommonData) WriteXml(w *xml.Writer) error {
	if c.IsEmpty() {
		return nil
	}
	w.StartElement("common")
	w.OptionalElementString("source", c.Source)
	w.OptionalElementString("note", c.Note)
	for _, ext := range c.Extensions {
		w.Raw(ext)
	}
	for i := range c.Related {
		if err := c.Related[i].WriteXml(w); err != nil {
			return err
		}
	}
	w.OptionalElementString("client-thing-id", c.ClientID)
	w.EndElement()
	return w.Err()
}
