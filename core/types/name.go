package types

import (
	"github.com/evergreen-health/recordkit/core/xml"
)

// Name is a person's name with a mandatory full form and optional parts.
type Name struct {
	Full   string
	Title  *CodableValue
	First  string
	Middle string
	Last   string
	Suffix *CodableValue
}

// SetFull sets the full name, which is mandatory on the wire.
func (n *Name) SetFull(full string) error {
	if full == "" {
		return missingOnWrite("name", "full")
	}
	n.Full = full
	return nil
}

// ParseXml populates the name from an element with <full> and optional
// part children.
func (n *Name) ParseXml(node *xml.Node) error {
	n.Full = node.ChildText("full")
	if n.Full == "" {
		return missingElement("name", "full")
	}
	n.Title = nil
	n.Suffix = nil
	if titleNode := node.Child("title"); titleNode != nil {
		var title CodableValue
		if err := title.ParseXml(titleNode); err != nil {
			return err
		}
		n.Title = &title
	}
	n.First = node.ChildText("first")
	n.Middle = node.ChildText("middle")
	n.Last = node.ChildText("last")
	if suffixNode := node.Child("suffix"); suffixNode != nil {
		var suffix CodableValue
		if err := suffix.ParseXml(suffixNode); err != nil {
			return err
		}
		n.Suffix = &suffix
	}
	return nil
}

// WriteXml writes the name under the given element name.
func (n *Name) WriteXml(name string, w *xml.Writer) error {
	if n.Full == "" {
		return missingOnWrite("name", "full")
	}
	w.StartElement(name)
	w.ElementString("full", n.Full)
	if n.Title != nil {
		if err := n.Title.WriteXml("title", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("first", n.First)
	w.OptionalElementString("middle", n.Middle)
	w.OptionalElementString("last", n.Last)
	if n.Suffix != nil {
		if err := n.Suffix.WriteXml("suffix", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (n *Name) String() string {
	return n.Full
}
