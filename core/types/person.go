package types

import (
	"github.com/evergreen-health/recordkit/core/xml"
)

// PersonItem identifies a person referenced by an item, such as the
// prescriber on a medication or a relative in a family history.
type PersonItem struct {
	Name                 Name
	Organization         string
	ProfessionalTraining string
	ID                   string
	Contact              *ContactInfo
	Type                 *CodableValue
}

// ParseXml populates the person from an element with a mandatory <name>
// child.
func (p *PersonItem) ParseXml(node *xml.Node) error {
	nameNode, err := requireChild(node, "person", "name")
	if err != nil {
		return err
	}
	if err := p.Name.ParseXml(nameNode); err != nil {
		return err
	}
	p.Organization = node.ChildText("organization")
	p.ProfessionalTraining = node.ChildText("professional-training")
	p.ID = node.ChildText("id")
	p.Contact = nil
	p.Type = nil
	if contactNode := node.Child("contact"); contactNode != nil {
		var contact ContactInfo
		if err := contact.ParseXml(contactNode); err != nil {
			return err
		}
		p.Contact = &contact
	}
	if typeNode := node.Child("type"); typeNode != nil {
		var personType CodableValue
		if err := personType.ParseXml(typeNode); err != nil {
			return err
		}
		p.Type = &personType
	}
	return nil
}

// WriteXml writes the person under the given element name.
func (p *PersonItem) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	if err := p.Name.WriteXml("name", w); err != nil {
		return err
	}
	w.OptionalElementString("organization", p.Organization)
	w.OptionalElementString("professional-training", p.ProfessionalTraining)
	w.OptionalElementString("id", p.ID)
	if p.Contact != nil {
		if err := p.Contact.WriteXml("contact", w); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := p.Type.WriteXml("type", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (p *PersonItem) String() string {
	return p.Name.String()
}
