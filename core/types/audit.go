package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// AuditAction identifies what a service audit block recorded.
type AuditAction string

// Audit actions recorded by the service.
const (
	AuditActionCreated AuditAction = "Created"
	AuditActionUpdated AuditAction = "Updated"
	AuditActionDeleted AuditAction = "Deleted"
)

// auditTimeLayout is the service timestamp format: RFC 3339 with
// millisecond precision in UTC.
const auditTimeLayout = "2006-01-02T15:04:05.000Z"

// AuditInfo records who touched an item and when. The service attaches
// one block for creation and one for the latest update.
type AuditInfo struct {
	Timestamp       time.Time
	ApplicationID   uuid.UUID
	ApplicationName string
	PersonID        uuid.UUID
	PersonName      string
	Action          AuditAction
}

// ParseXml populates the audit block from a <created> or <updated>
// element.
func (a *AuditInfo) ParseXml(node *xml.Node) error {
	tsNode, err := requireChild(node, "audit", "timestamp")
	if err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, tsNode.Text())
	if err != nil {
		return errors.NewDeserializationWrap("audit", "timestamp", err)
	}
	a.Timestamp = ts

	if appNode := node.Child("app-id"); appNode != nil {
		id, err := uuid.Parse(appNode.Text())
		if err != nil {
			return errors.NewDeserializationWrap("audit", "app-id", err)
		}
		a.ApplicationID = id
		a.ApplicationName = appNode.Attr("name")
	}
	if personNode := node.Child("person-id"); personNode != nil {
		id, err := uuid.Parse(personNode.Text())
		if err != nil {
			return errors.NewDeserializationWrap("audit", "person-id", err)
		}
		a.PersonID = id
		a.PersonName = personNode.Attr("name")
	}
	a.Action = AuditAction(node.ChildText("audit-action"))
	return nil
}

// WriteXml writes the audit block under the given element name.
func (a *AuditInfo) WriteXml(name string, w *xml.Writer) error {
	if a.Timestamp.IsZero() {
		return missingOnWrite("audit", "timestamp")
	}
	w.StartElement(name)
	w.ElementString("timestamp", a.Timestamp.UTC().Format(auditTimeLayout))
	if a.ApplicationID != uuid.Nil {
		w.StartElement("app-id")
		if a.ApplicationName != "" {
			w.Attribute("name", a.ApplicationName)
		}
		w.Text(a.ApplicationID.String())
		w.EndElement()
	}
	if a.PersonID != uuid.Nil {
		w.StartElement("person-id")
		if a.PersonName != "" {
			w.Attribute("name", a.PersonName)
		}
		w.Text(a.PersonID.String())
		w.EndElement()
	}
	if a.Action != "" {
		w.ElementString("audit-action", string(a.Action))
	}
	w.EndElement()
	return nil
}
