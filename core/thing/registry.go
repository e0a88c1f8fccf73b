package thing

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// TypedItem is implemented by item types with a structured Go
// representation. Implementations embed Thing and add typed payload
// fields.
type TypedItem interface {
	// Item returns the embedded base item.
	Item() *Thing
	// RootElement names the payload root inside data-xml.
	RootElement() string
	// ParseTypeData populates the payload fields from the payload root.
	ParseTypeData(node *xml.Node) error
	// WriteTypeData writes the payload root and its children.
	WriteTypeData(w *xml.Writer) error
}

var (
	registryMu sync.RWMutex
	registry   = map[uuid.UUID]func() TypedItem{}
)

// Register associates an item type ID with a factory for its typed
// representation. Later registrations for the same ID win, so an
// application can override a built-in type.
func Register(typeID uuid.UUID, factory func() TypedItem) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeID] = factory
}

// NewTypedItem returns a fresh typed item for the given type ID, or nil
// if the type is not registered.
func NewTypedItem(typeID uuid.UUID) TypedItem {
	registryMu.RLock()
	factory := registry[typeID]
	registryMu.RUnlock()
	if factory == nil {
		return nil
	}
	return factory()
}

// RegisteredTypes returns the registered type IDs in sorted order.
func RegisteredTypes() []uuid.UUID {
	registryMu.RLock()
	ids := make([]uuid.UUID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	registryMu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// GenericItem wraps an item whose type has no registered Go
// representation. The payload is kept as raw XML and round-trips
// unchanged.
type GenericItem struct {
	Thing
}

// Item returns the embedded base item.
func (g *GenericItem) Item() *Thing { return &g.Thing }

// RootElement returns the payload root name captured during parsing.
func (g *GenericItem) RootElement() string { return g.typeRootName }

// ParseTypeData keeps the payload as raw XML.
func (g *GenericItem) ParseTypeData(node *xml.Node) error {
	g.typeRootName = node.Name()
	g.typeXML = node.OuterXML()
	return nil
}

// WriteTypeData replays the captured payload verbatim.
func (g *GenericItem) WriteTypeData(w *xml.Writer) error {
	if g.typeXML != "" {
		w.Raw(g.typeXML)
	}
	return w.Err()
}

// Deserialize parses a <thing> fragment and dispatches to the registered
// typed representation of its type ID, falling back to GenericItem for
// unregistered types.
func Deserialize(data []byte) (TypedItem, error) {
	node, err := xml.ParseFragment(data)
	if err != nil {
		return nil, errors.NewDeserializationWrap("thing", "", err)
	}
	return DeserializeNode(node)
}

// DeserializeNode is Deserialize over an already-parsed <thing> element.
func DeserializeNode(node *xml.Node) (TypedItem, error) {
	base := &Thing{}
	if err := base.ParseXml(node); err != nil {
		return nil, err
	}

	item := NewTypedItem(base.TypeID)
	if item == nil {
		item = &GenericItem{}
	}
	*item.Item() = *base

	if base.typeXML != "" {
		payload, err := xml.ParseFragment([]byte(base.typeXML))
		if err != nil {
			return nil, errors.NewDeserializationWrap("thing", base.typeRootName, err)
		}
		if err := item.ParseTypeData(payload); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// Serialize writes a typed item to a <thing> fragment, including its
// typed payload.
func Serialize(item TypedItem) ([]byte, error) {
	w := xml.NewWriter()
	if err := item.Item().WriteXml(w, item.WriteTypeData); err != nil {
		return nil, err
	}
	return w.Bytes()
}
