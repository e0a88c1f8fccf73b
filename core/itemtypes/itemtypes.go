// Package itemtypes provides the typed Go representations of the built
// in health record item types. Each type embeds thing.Thing, registers
// its type ID, and implements thing.TypedItem so thing.Deserialize
// returns the typed form.
package itemtypes

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/xml"
)

func register(id string, factory func() thing.TypedItem) uuid.UUID {
	typeID := uuid.MustParse(id)
	thing.Register(typeID, factory)
	return typeID
}

func requireChild(node *xml.Node, itemType, element string) (*xml.Node, error) {
	child := node.Child(element)
	if child == nil {
		return nil, errors.NewDeserialization(itemType, element, "mandatory element missing")
	}
	return child, nil
}

func parseChildInt(node *xml.Node, itemType, element string) (int, error) {
	child, err := requireChild(node, itemType, element)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(child.Text())
	if err != nil {
		return 0, errors.NewDeserializationWrap(itemType, element, err)
	}
	return value, nil
}

func parseOptionalInt(node *xml.Node, itemType, element string) (*int, error) {
	child := node.Child(element)
	if child == nil {
		return nil, nil
	}
	value, err := strconv.Atoi(child.Text())
	if err != nil {
		return nil, errors.NewDeserializationWrap(itemType, element, err)
	}
	return &value, nil
}

func parseOptionalBool(node *xml.Node, itemType, element string) (*bool, error) {
	child := node.Child(element)
	if child == nil {
		return nil, nil
	}
	switch child.Text() {
	case "true", "1":
		v := true
		return &v, nil
	case "false", "0":
		v := false
		return &v, nil
	}
	return nil, errors.NewDeserialization(itemType, element, "invalid boolean "+strconv.Quote(child.Text()))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
