// Package thing implements the health record item base: the metadata,
// versioning, BLOB, tag, and signature plumbing shared by every item
// type, and its XML (de)serialization contract against the service
// "thing" schema.
package thing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/blob"
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/signature"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// effDateLayout is the service format for effective dates: local
// date-time without zone designator.
const effDateLayout = "2006-01-02T15:04:05"

// Thing is one health record item: typed payload plus the metadata the
// service maintains around it.
type Thing struct {
	// Key is nil until the item has been committed to the service.
	Key *Key

	TypeID   uuid.UUID
	TypeName string // name attribute on type-id, informational

	State State
	Flags Flags

	// EffectiveDate is the clinically relevant date of the item, as
	// opposed to the audit timestamps which record when it was stored.
	EffectiveDate time.Time
	// UpdatedEndDate closes the effective window for items that span
	// time, such as sleep sessions.
	UpdatedEndDate time.Time

	Created *types.AuditInfo
	Updated *types.AuditInfo

	Common CommonData
	Tags   []string

	Blobs      blob.Payload
	Signatures []*signature.Info

	Permissions          []string
	PermissionsImmutable bool

	// Sections selects what serializes; parsing sets it to the sections
	// found on the wire.
	Sections Sections

	// typeXML carries the raw payload element for item types without a
	// registered Go type, so unknown items round-trip losslessly.
	typeXML      string
	typeRootName string
}

// New creates an uncommitted item of the given type.
func New(typeID uuid.UUID) *Thing {
	return &Thing{
		TypeID:   typeID,
		State:    StateActive,
		Sections: SectionsDefault,
	}
}

// IsPersonal reports whether the user flagged the item as personal.
func (t *Thing) IsPersonal() bool { return t.Flags.Has(FlagPersonal) }

// IsReadOnly reports whether the item cannot be updated.
func (t *Thing) IsReadOnly() bool { return !t.Flags.IsWritable() }

// IsSigned reports whether the item carries at least one signature.
func (t *Thing) IsSigned() bool { return len(t.Signatures) > 0 }

// RawTypeXML returns the raw payload element captured during parsing for
// item types without a registered Go type.
func (t *Thing) RawTypeXML() string { return t.typeXML }

// SetRawTypeXML sets the raw payload element and its root name for
// generic items built locally.
func (t *Thing) SetRawTypeXML(rootName, outerXML string) {
	t.typeRootName = rootName
	t.typeXML = outerXML
}

// ParseXml populates the item from a <thing> element. Sections is set to
// the sections present on the wire.
func (t *Thing) ParseXml(node *xml.Node) error {
	if node.Name() != "thing" {
		return errors.NewDeserialization("thing", node.Name(), "expected thing element")
	}
	t.Sections = SectionCore

	t.Key = nil
	if idNode := node.Child("thing-id"); idNode != nil {
		key := &Key{}
		if err := key.ParseXml(idNode); err != nil {
			return err
		}
		t.Key = key
	}

	typeNode := node.Child("type-id")
	if typeNode == nil {
		return errors.NewDeserialization("thing", "type-id", "mandatory element missing")
	}
	typeID, err := uuid.Parse(typeNode.Text())
	if err != nil {
		return errors.NewDeserializationWrap("thing", "type-id", err)
	}
	t.TypeID = typeID
	t.TypeName = typeNode.Attr("name")

	t.State = StateActive
	if stateText := node.ChildText("thing-state"); stateText != "" {
		t.State = State(stateText)
	}

	t.Flags = 0
	if flagsText := node.ChildText("flags"); flagsText != "" {
		flags, err := strconv.Atoi(flagsText)
		if err != nil {
			return errors.NewDeserializationWrap("thing", "flags", err)
		}
		t.Flags = Flags(flags)
	}

	t.EffectiveDate = time.Time{}
	if effText := node.ChildText("eff-date"); effText != "" {
		eff, err := parseServiceTime(effText)
		if err != nil {
			return errors.NewDeserializationWrap("thing", "eff-date", err)
		}
		t.EffectiveDate = eff
	}
	t.UpdatedEndDate = time.Time{}
	if endText := node.ChildText("updated-end-date"); endText != "" {
		end, err := parseServiceTime(endText)
		if err != nil {
			return errors.NewDeserializationWrap("thing", "updated-end-date", err)
		}
		t.UpdatedEndDate = end
	}

	t.Created = nil
	t.Updated = nil
	if createdNode := node.Child("created"); createdNode != nil {
		audit := &types.AuditInfo{}
		if err := audit.ParseXml(createdNode); err != nil {
			return err
		}
		t.Created = audit
		t.Sections |= SectionAudits
	}
	if updatedNode := node.Child("updated"); updatedNode != nil {
		audit := &types.AuditInfo{}
		if err := audit.ParseXml(updatedNode); err != nil {
			return err
		}
		t.Updated = audit
		t.Sections |= SectionAudits
	}

	t.Common = CommonData{}
	t.typeXML = ""
	t.typeRootName = ""
	if dataNode := node.Child("data-xml"); dataNode != nil {
		for _, child := range dataNode.Children() {
			if child.Name() == "common" {
				if err := t.Common.ParseXml(child); err != nil {
					return err
				}
				continue
			}
			if t.typeRootName != "" {
				return errors.NewDeserialization("thing", "data-xml", "multiple payload elements")
			}
			t.typeRootName = child.Name()
			t.typeXML = child.OuterXML()
		}
	}

	t.Tags = nil
	if tagsNode := node.Child("tags"); tagsNode != nil {
		t.Sections |= SectionTags
		for _, tag := range strings.Split(tagsNode.Text(), ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				t.Tags = append(t.Tags, tag)
			}
		}
	}

	t.Blobs = blob.Payload{}
	if blobNode := node.Child("blob-payload"); blobNode != nil {
		t.Sections |= SectionBlobPayload
		if err := t.Blobs.ParseXml(blobNode); err != nil {
			return err
		}
	}

	t.Permissions = nil
	t.PermissionsImmutable = false
	if permNode := node.Child("eff-permissions"); permNode != nil {
		t.Sections |= SectionEffectivePermissions
		t.PermissionsImmutable = permNode.Attr("immutable") == "true"
		for _, p := range permNode.ChildrenNamed("permission") {
			t.Permissions = append(t.Permissions, p.Text())
		}
	}

	t.Signatures = nil
	for _, sigNode := range node.ChildrenNamed("signature-info") {
		t.Sections |= SectionSignature
		info := &signature.Info{}
		if err := info.ParseXml(sigNode); err != nil {
			return err
		}
		t.Signatures = append(t.Signatures, info)
	}

	return nil
}

// WriteXml writes the item as a <thing> element. writeBody, when
// non-nil, writes the type payload into data-xml; otherwise the raw
// payload captured during parsing is reused.
func (t *Thing) WriteXml(w *xml.Writer, writeBody func(*xml.Writer) error) error {
	if t.TypeID == uuid.Nil {
		return errors.NewSerialization("thing", "type-id", "mandatory element missing")
	}

	w.StartElement("thing")
	if t.Key != nil {
		t.Key.WriteXml(w)
	}

	w.StartElement("type-id")
	if t.TypeName != "" {
		w.Attribute("name", t.TypeName)
	}
	w.Text(t.TypeID.String())
	w.EndElement()

	if t.State != "" {
		w.ElementString("thing-state", string(t.State))
	}
	if t.Flags != 0 {
		w.ElementString("flags", strconv.Itoa(int(t.Flags)))
	}
	if !t.EffectiveDate.IsZero() {
		w.ElementString("eff-date", t.EffectiveDate.Format(effDateLayout))
	}

	if t.Sections.Has(SectionAudits) {
		if t.Created != nil {
			if err := t.Created.WriteXml("created", w); err != nil {
				return err
			}
		}
		if t.Updated != nil {
			if err := t.Updated.WriteXml("updated", w); err != nil {
				return err
			}
		}
	}

	w.StartElement("data-xml")
	if writeBody != nil {
		if err := writeBody(w); err != nil {
			return err
		}
	} else if t.typeXML != "" {
		w.Raw(t.typeXML)
	}
	if err := t.Common.WriteXml(w); err != nil {
		return err
	}
	w.EndElement()

	if t.Sections.Has(SectionBlobPayload) {
		if err := t.Blobs.WriteXml(w); err != nil {
			return err
		}
	}

	if t.Sections.Has(SectionEffectivePermissions) && len(t.Permissions) > 0 {
		w.StartElement("eff-permissions")
		if t.PermissionsImmutable {
			w.Attribute("immutable", "true")
		}
		for _, p := range t.Permissions {
			w.ElementString("permission", p)
		}
		w.EndElement()
	}

	if t.Sections.Has(SectionTags) && len(t.Tags) > 0 {
		w.ElementString("tags", strings.Join(t.Tags, ","))
	}

	if t.Sections.Has(SectionSignature) {
		for _, sig := range t.Signatures {
			if err := sig.WriteXml(w); err != nil {
				return err
			}
		}
	}

	if !t.UpdatedEndDate.IsZero() {
		w.ElementString("updated-end-date", t.UpdatedEndDate.Format(effDateLayout))
	}

	w.EndElement()
	return w.Err()
}

// Serialize writes the generic item to a <thing> fragment.
func (t *Thing) Serialize() ([]byte, error) {
	w := xml.NewWriter()
	if err := t.WriteXml(w, nil); err != nil {
		return nil, err
	}
	return w.Bytes()
}

func (t *Thing) String() string {
	name := t.TypeName
	if name == "" {
		name = t.TypeID.String()
	}
	if t.Key == nil {
		return fmt.Sprintf("%s (uncommitted)", name)
	}
	return fmt.Sprintf("%s %s", name, t.Key.ID)
}

// Parse parses a <thing> fragment into a generic Thing.
func Parse(data []byte) (*Thing, error) {
	node, err := xml.ParseFragment(data)
	if err != nil {
		return nil, errors.NewDeserializationWrap("thing", "", err)
	}
	t := &Thing{}
	if err := t.ParseXml(node); err != nil {
		return nil, err
	}
	return t, nil
}

func parseServiceTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(effDateLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}
