package types

import (
	"github.com/evergreen-health/recordkit/core/xml"
)

// Address is a postal address. At least one street line plus city,
// postcode, and country are mandatory on the wire.
type Address struct {
	Description string
	IsPrimary   *bool
	Street      []string
	City        string
	State       string
	Postcode    string
	Country     string
	County      string
}

// ParseXml populates the address from an <address> element.
func (a *Address) ParseXml(node *xml.Node) error {
	a.Description = node.ChildText("description")
	a.IsPrimary = nil
	if primaryNode := node.Child("is-primary"); primaryNode != nil {
		primary, err := parseBoolText("address", "is-primary", primaryNode.Text())
		if err != nil {
			return err
		}
		a.IsPrimary = &primary
	}
	a.Street = nil
	for _, streetNode := range node.ChildrenNamed("street") {
		a.Street = append(a.Street, streetNode.Text())
	}
	if len(a.Street) == 0 {
		return missingElement("address", "street")
	}
	a.City = node.ChildText("city")
	if a.City == "" {
		return missingElement("address", "city")
	}
	a.State = node.ChildText("state")
	a.Postcode = node.ChildText("postcode")
	if a.Postcode == "" {
		return missingElement("address", "postcode")
	}
	a.Country = node.ChildText("country")
	if a.Country == "" {
		return missingElement("address", "country")
	}
	a.County = node.ChildText("county")
	return nil
}

// WriteXml writes the address under the given element name.
func (a *Address) WriteXml(name string, w *xml.Writer) error {
	if len(a.Street) == 0 {
		return missingOnWrite("address", "street")
	}
	for _, field := range []struct{ element, value string }{
		{"city", a.City},
		{"postcode", a.Postcode},
		{"country", a.Country},
	} {
		if field.value == "" {
			return missingOnWrite("address", field.element)
		}
	}
	w.StartElement(name)
	w.OptionalElementString("description", a.Description)
	if a.IsPrimary != nil {
		w.ElementString("is-primary", formatBool(*a.IsPrimary))
	}
	for _, street := range a.Street {
		w.ElementString("street", street)
	}
	w.ElementString("city", a.City)
	w.OptionalElementString("state", a.State)
	w.ElementString("postcode", a.Postcode)
	w.ElementString("country", a.Country)
	w.OptionalElementString("county", a.County)
	w.EndElement()
	return nil
}

// Phone is a telephone number with optional description.
type Phone struct {
	Description string
	IsPrimary   *bool
	Number      string
}

// ParseXml populates the phone from a <phone> element.
func (p *Phone) ParseXml(node *xml.Node) error {
	p.Description = node.ChildText("description")
	p.IsPrimary = nil
	if primaryNode := node.Child("is-primary"); primaryNode != nil {
		primary, err := parseBoolText("phone", "is-primary", primaryNode.Text())
		if err != nil {
			return err
		}
		p.IsPrimary = &primary
	}
	p.Number = node.ChildText("number")
	if p.Number == "" {
		return missingElement("phone", "number")
	}
	return nil
}

// WriteXml writes the phone under the given element name.
func (p *Phone) WriteXml(name string, w *xml.Writer) error {
	if p.Number == "" {
		return missingOnWrite("phone", "number")
	}
	w.StartElement(name)
	w.OptionalElementString("description", p.Description)
	if p.IsPrimary != nil {
		w.ElementString("is-primary", formatBool(*p.IsPrimary))
	}
	w.ElementString("number", p.Number)
	w.EndElement()
	return nil
}

// Email is an email address with optional description.
type Email struct {
	Description string
	IsPrimary   *bool
	Address     string
}

// ParseXml populates the email from an <email> element.
func (e *Email) ParseXml(node *xml.Node) error {
	e.Description = node.ChildText("description")
	e.IsPrimary = nil
	if primaryNode := node.Child("is-primary"); primaryNode != nil {
		primary, err := parseBoolText("email", "is-primary", primaryNode.Text())
		if err != nil {
			return err
		}
		e.IsPrimary = &primary
	}
	e.Address = node.ChildText("address")
	if e.Address == "" {
		return missingElement("email", "address")
	}
	return nil
}

// WriteXml writes the email under the given element name.
func (e *Email) WriteXml(name string, w *xml.Writer) error {
	if e.Address == "" {
		return missingOnWrite("email", "address")
	}
	w.StartElement(name)
	w.OptionalElementString("description", e.Description)
	if e.IsPrimary != nil {
		w.ElementString("is-primary", formatBool(*e.IsPrimary))
	}
	w.ElementString("address", e.Address)
	w.EndElement()
	return nil
}

// ContactInfo groups a person's addresses, phone numbers, and email
// addresses.
type ContactInfo struct {
	Addresses []Address
	Phones    []Phone
	Emails    []Email
}

// ParseXml populates the contact info from a <contact> element.
func (c *ContactInfo) ParseXml(node *xml.Node) error {
	c.Addresses = nil
	c.Phones = nil
	c.Emails = nil
	for _, addrNode := range node.ChildrenNamed("address") {
		var addr Address
		if err := addr.ParseXml(addrNode); err != nil {
			return err
		}
		c.Addresses = append(c.Addresses, addr)
	}
	for _, phoneNode := range node.ChildrenNamed("phone") {
		var phone Phone
		if err := phone.ParseXml(phoneNode); err != nil {
			return err
		}
		c.Phones = append(c.Phones, phone)
	}
	for _, emailNode := range node.ChildrenNamed("email") {
		var email Email
		if err := email.ParseXml(emailNode); err != nil {
			return err
		}
		c.Emails = append(c.Emails, email)
	}
	return nil
}

// WriteXml writes the contact info under the given element name.
func (c *ContactInfo) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	for i := range c.Addresses {
		if err := c.Addresses[i].WriteXml("address", w); err != nil {
			return err
		}
	}
	for i := range c.Phones {
		if err := c.Phones[i].WriteXml("phone", w); err != nil {
			return err
		}
	}
	for i := range c.Emails {
		if err := c.Emails[i].WriteXml("email", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}
