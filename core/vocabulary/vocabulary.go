// Package vocabulary models the coded value dictionaries used to
// resolve CodableValue codes into display text, such as medication
// name or lab result unit vocabularies.
package vocabulary

import (
	"fmt"
	"sort"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// Key identifies one vocabulary. Family defaults to "wc" and version to
// the latest when empty.
type Key struct {
	Name    string
	Family  string
	Version string
}

// NewKey creates a vocabulary key. The name is mandatory.
func NewKey(name, family, version string) (Key, error) {
	if name == "" {
		return Key{}, errors.NewValidation("name", "vocabulary name is mandatory")
	}
	return Key{Name: name, Family: family, Version: version}, nil
}

func (k Key) String() string {
	s := k.Name
	if k.Family != "" {
		s += ":" + k.Family
	}
	if k.Version != "" {
		s += ":" + k.Version
	}
	return s
}

// ParseXml populates the key from a <vocabulary-key> element.
func (k *Key) ParseXml(node *xml.Node) error {
	name := node.ChildText("name")
	if name == "" {
		return errors.NewDeserialization("vocabulary-key", "name", "mandatory element missing")
	}
	k.Name = name
	k.Family = node.ChildText("family")
	k.Version = node.ChildText("version")
	return nil
}

// WriteXml writes the key under the given element name.
func (k *Key) WriteXml(name string, w *xml.Writer) error {
	if k.Name == "" {
		return errors.NewSerialization("vocabulary-key", "name", "mandatory element missing")
	}
	w.StartElement(name)
	w.ElementString("name", k.Name)
	w.OptionalElementString("family", k.Family)
	w.OptionalElementString("version", k.Version)
	w.EndElement()
	return nil
}

// Item is one code in a vocabulary.
type Item struct {
	Value        string
	DisplayText  string
	Abbreviation string
	// InfoXML carries arbitrary extra data about the code, preserved
	// verbatim.
	InfoXML string
}

// ParseXml populates the item from a <code-item> element.
func (i *Item) ParseXml(node *xml.Node) error {
	value := node.ChildText("code-value")
	if value == "" {
		return errors.NewDeserialization("code-item", "code-value", "mandatory element missing")
	}
	i.Value = value
	i.DisplayText = node.ChildText("display-text")
	i.Abbreviation = node.ChildText("abbreviation-text")
	i.InfoXML = ""
	if infoNode := node.Child("info-xml"); infoNode != nil {
		i.InfoXML = infoNode.InnerXML()
	}
	return nil
}

// WriteXml writes the item as a <code-item> element.
func (i *Item) WriteXml(w *xml.Writer) error {
	if i.Value == "" {
		return errors.NewSerialization("code-item", "code-value", "mandatory element missing")
	}
	w.StartElement("code-item")
	w.ElementString("code-value", i.Value)
	w.OptionalElementString("display-text", i.DisplayText)
	w.OptionalElementString("abbreviation-text", i.Abbreviation)
	if i.InfoXML != "" {
		w.StartElement("info-xml")
		w.Raw(i.InfoXML)
		w.EndElement()
	}
	w.EndElement()
	return nil
}

// Vocabulary is one dictionary of codes.
type Vocabulary struct {
	Key   Key
	items map[string]Item
}

// New creates an empty vocabulary for the given key.
func New(key Key) *Vocabulary {
	return &Vocabulary{Key: key, items: map[string]Item{}}
}

// Add inserts or replaces an item by code value.
func (v *Vocabulary) Add(item Item) error {
	if item.Value == "" {
		return errors.NewValidation("code-value", "code value is mandatory")
	}
	if v.items == nil {
		v.items = map[string]Item{}
	}
	v.items[item.Value] = item
	return nil
}

// Find returns the item for a code value.
func (v *Vocabulary) Find(value string) (Item, error) {
	item, ok := v.items[value]
	if !ok {
		return Item{}, errors.NewNotFound("code", v.Key.String()+"/"+value)
	}
	return item, nil
}

// Len returns the number of codes.
func (v *Vocabulary) Len() int { return len(v.items) }

// Items returns all codes sorted by value.
func (v *Vocabulary) Items() []Item {
	items := make([]Item, 0, len(v.items))
	for _, item := range v.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Value < items[j].Value })
	return items
}

// Codable builds a CodableValue for a code in this vocabulary, using the
// item's display text.
func (v *Vocabulary) Codable(value string) (*types.CodableValue, error) {
	item, err := v.Find(value)
	if err != nil {
		return nil, err
	}
	text := item.DisplayText
	if text == "" {
		text = item.Value
	}
	return types.NewCodedCodableValue(text, item.Value, v.Key.Name, v.Key.Family, v.Key.Version), nil
}

// ParseXml populates the vocabulary from a <vocabulary> element holding
// the key elements and <code-item> children.
func (v *Vocabulary) ParseXml(node *xml.Node) error {
	if err := v.Key.ParseXml(node); err != nil {
		return err
	}
	v.items = map[string]Item{}
	for _, itemNode := range node.ChildrenNamed("code-item") {
		var item Item
		if err := item.ParseXml(itemNode); err != nil {
			return err
		}
		v.items[item.Value] = item
	}
	return nil
}

// WriteXml writes the vocabulary as a <vocabulary> element.
func (v *Vocabulary) WriteXml(w *xml.Writer) error {
	if v.Key.Name == "" {
		return errors.NewSerialization("vocabulary", "name", "mandatory element missing")
	}
	w.StartElement("vocabulary")
	w.ElementString("name", v.Key.Name)
	w.OptionalElementString("family", v.Key.Family)
	w.OptionalElementString("version", v.Key.Version)
	for _, item := range v.Items() {
		if err := item.WriteXml(w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

// Store is an in-memory set of vocabularies used to resolve codes.
type Store struct {
	vocabularies map[Key]*Vocabulary
}

// NewStore creates an empty vocabulary store.
func NewStore() *Store {
	return &Store{vocabularies: map[Key]*Vocabulary{}}
}

// Add registers a vocabulary, replacing any previous one with the same
// key.
func (s *Store) Add(v *Vocabulary) {
	s.vocabularies[v.Key] = v
}

// Get returns the vocabulary for a key.
func (s *Store) Get(key Key) (*Vocabulary, error) {
	v, ok := s.vocabularies[key]
	if !ok {
		return nil, errors.NewNotFound("vocabulary", key.String())
	}
	return v, nil
}

// Resolve fills in missing display text on a codable value by looking up
// its first resolvable code. Values with no codes, or with codes from
// unknown vocabularies, are returned unchanged.
func (s *Store) Resolve(cv *types.CodableValue) error {
	if cv == nil {
		return errors.NewValidation("codable-value", "value must not be nil")
	}
	if cv.Text != "" || len(cv.Codes) == 0 {
		return nil
	}
	for _, code := range cv.Codes {
		v, ok := s.vocabularies[Key{Name: code.Type, Family: code.Family, Version: code.Version}]
		if !ok {
			continue
		}
		item, err := v.Find(code.Value)
		if err != nil {
			continue
		}
		if item.DisplayText != "" {
			return cv.SetText(item.DisplayText)
		}
	}
	return errors.NewNotFound("code", fmt.Sprintf("no vocabulary resolves %v", cv.Codes))
}
