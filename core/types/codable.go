package types

import (
	"github.com/evergreen-health/recordkit/core/xml"
)

// CodedValue is a single vocabulary-coded representation of a value:
// the code itself plus the vocabulary (type), family, and version that
// define it.
type CodedValue struct {
	Value   string // code value, mandatory
	Family  string // vocabulary family (e.g., "wc")
	Type    string // vocabulary name, mandatory
	Version string // vocabulary version
}

// Validate checks the mandatory fields.
func (c *CodedValue) Validate() error {
	if c.Value == "" {
		return missingOnWrite("coded-value", "value")
	}
	if c.Type == "" {
		return missingOnWrite("coded-value", "type")
	}
	return nil
}

// ParseXml populates the coded value from a <code> element.
func (c *CodedValue) ParseXml(node *xml.Node) error {
	c.Value = node.ChildText("value")
	c.Family = node.ChildText("family")
	c.Type = node.ChildText("type")
	c.Version = node.ChildText("version")
	if c.Value == "" {
		return missingElement("coded-value", "value")
	}
	if c.Type == "" {
		return missingElement("coded-value", "type")
	}
	return nil
}

// WriteXml writes the coded value under the given element name.
func (c *CodedValue) WriteXml(name string, w *xml.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	w.StartElement(name)
	w.ElementString("value", c.Value)
	w.OptionalElementString("family", c.Family)
	w.ElementString("type", c.Type)
	w.OptionalElementString("version", c.Version)
	w.EndElement()
	return nil
}

func (c *CodedValue) String() string {
	return c.Value
}

// CodableValue is a display text paired with zero or more vocabulary-coded
// representations.
type CodableValue struct {
	Text  string // display text, mandatory
	Codes []CodedValue
}

// NewCodableValue creates a codable value with display text only.
func NewCodableValue(text string) *CodableValue {
	return &CodableValue{Text: text}
}

// NewCodedCodableValue creates a codable value with display text and a
// single code from the given vocabulary.
func NewCodedCodableValue(text, code, vocabulary, family, version string) *CodableValue {
	return &CodableValue{
		Text: text,
		Codes: []CodedValue{
			{Value: code, Type: vocabulary, Family: family, Version: version},
		},
	}
}

// SetText sets the display text. Empty text is rejected since the wire
// schema requires it.
func (c *CodableValue) SetText(text string) error {
	if text == "" {
		return missingOnWrite("codable-value", "text")
	}
	c.Text = text
	return nil
}

// AddCode appends a coded representation after validating it.
func (c *CodableValue) AddCode(code CodedValue) error {
	if err := code.Validate(); err != nil {
		return err
	}
	c.Codes = append(c.Codes, code)
	return nil
}

// ParseXml populates the codable value from an element holding
// <text> and <code> children.
func (c *CodableValue) ParseXml(node *xml.Node) error {
	c.Text = node.ChildText("text")
	if c.Text == "" {
		return missingElement("codable-value", "text")
	}
	c.Codes = nil
	for _, codeNode := range node.ChildrenNamed("code") {
		var code CodedValue
		if err := code.ParseXml(codeNode); err != nil {
			return err
		}
		c.Codes = append(c.Codes, code)
	}
	return nil
}

// WriteXml writes the codable value under the given element name.
func (c *CodableValue) WriteXml(name string, w *xml.Writer) error {
	if c.Text == "" {
		return missingOnWrite("codable-value", "text")
	}
	w.StartElement(name)
	w.ElementString("text", c.Text)
	for i := range c.Codes {
		if err := c.Codes[i].WriteXml("code", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (c *CodableValue) String() string {
	return c.Text
}
