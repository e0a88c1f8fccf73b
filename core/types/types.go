// Package types provides the reusable value types shared across health
// record item types: codable values, structured dates and times,
// measurements, names, contact details, and audit blocks. Each type
// parses itself from an XML fragment node and writes itself back through
// an xml.Writer, enforcing the mandatory-element rules of the wire schema.
package types

import (
	"strconv"
	"strings"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

func missingElement(itemType, element string) error {
	return errors.NewDeserialization(itemType, element, "mandatory element missing")
}

func missingOnWrite(itemType, element string) error {
	return errors.NewSerialization(itemType, element, "mandatory element missing")
}

func invalidValue(field, message string) error {
	return errors.NewValidation(field, message)
}

func parseIntText(itemType, element, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.NewDeserializationWrap(itemType, element, err)
	}
	return v, nil
}

func parseFloatText(itemType, element, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errors.NewDeserializationWrap(itemType, element, err)
	}
	return v, nil
}

func parseBoolText(itemType, element, text string) (bool, error) {
	switch strings.TrimSpace(text) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, errors.NewDeserialization(itemType, element, "not a boolean")
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// requireChild returns the named child element or a DeserializationError.
func requireChild(node *xml.Node, itemType, element string) (*xml.Node, error) {
	child := node.Child(element)
	if child == nil {
		return nil, missingElement(itemType, element)
	}
	return child, nil
}
