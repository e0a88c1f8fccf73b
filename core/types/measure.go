package types

import (
	"fmt"

	"github.com/evergreen-health/recordkit/core/xml"
)

// DisplayValue is the value as the user originally entered it, in the
// units they chose, kept alongside the canonical base-unit value.
type DisplayValue struct {
	Value     float64
	Units     string // display units (e.g., "lb")
	UnitsCode string // vocabulary code for the units
}

// ParseXml populates the display value from a <display> element.
func (d *DisplayValue) ParseXml(node *xml.Node) error {
	v, err := parseFloatText("display", node.Name(), node.Text())
	if err != nil {
		return err
	}
	d.Value = v
	d.Units = node.Attr("units")
	d.UnitsCode = node.Attr("units-code")
	return nil
}

// WriteXml writes the display value under the given element name.
func (d *DisplayValue) WriteXml(name string, w *xml.Writer) error {
	if d.Units == "" {
		return missingOnWrite("display", "units")
	}
	w.StartElement(name)
	w.Attribute("units", d.Units)
	if d.UnitsCode != "" {
		w.Attribute("units-code", d.UnitsCode)
	}
	w.Text(formatFloat(d.Value))
	w.EndElement()
	return nil
}

func (d *DisplayValue) String() string {
	return fmt.Sprintf("%s %s", formatFloat(d.Value), d.Units)
}

// WeightValue is a weight in kilograms with an optional display value in
// the user's chosen units.
type WeightValue struct {
	Kilograms float64
	Display   *DisplayValue
}

// SetKilograms sets the canonical weight. Negative weights are rejected.
func (v *WeightValue) SetKilograms(kg float64) error {
	if kg < 0 {
		return invalidValue("kg", "weight must not be negative")
	}
	v.Kilograms = kg
	return nil
}

// ParseXml populates the weight from an element with <kg> and optional
// <display> children.
func (v *WeightValue) ParseXml(node *xml.Node) error {
	kgNode, err := requireChild(node, "weight-value", "kg")
	if err != nil {
		return err
	}
	if v.Kilograms, err = parseFloatText("weight-value", "kg", kgNode.Text()); err != nil {
		return err
	}
	v.Display = nil
	if displayNode := node.Child("display"); displayNode != nil {
		var d DisplayValue
		if err := d.ParseXml(displayNode); err != nil {
			return err
		}
		v.Display = &d
	}
	return nil
}

// WriteXml writes the weight under the given element name.
func (v *WeightValue) WriteXml(name string, w *xml.Writer) error {
	if v.Kilograms < 0 {
		return invalidValue("kg", "weight must not be negative")
	}
	w.StartElement(name)
	w.ElementString("kg", formatFloat(v.Kilograms))
	if v.Display != nil {
		if err := v.Display.WriteXml("display", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (v *WeightValue) String() string {
	if v.Display != nil {
		return v.Display.String()
	}
	return fmt.Sprintf("%s kg", formatFloat(v.Kilograms))
}

// Length is a length in meters with an optional display value.
type Length struct {
	Meters  float64
	Display *DisplayValue
}

// SetMeters sets the canonical length. Non-positive lengths are rejected.
func (l *Length) SetMeters(m float64) error {
	if m <= 0 {
		return invalidValue("m", "length must be positive")
	}
	l.Meters = m
	return nil
}

// ParseXml populates the length from an element with <m> and optional
// <display> children.
func (l *Length) ParseXml(node *xml.Node) error {
	mNode, err := requireChild(node, "length-value", "m")
	if err != nil {
		return err
	}
	if l.Meters, err = parseFloatText("length-value", "m", mNode.Text()); err != nil {
		return err
	}
	l.Display = nil
	if displayNode := node.Child("display"); displayNode != nil {
		var d DisplayValue
		if err := d.ParseXml(displayNode); err != nil {
			return err
		}
		l.Display = &d
	}
	return nil
}

// WriteXml writes the length under the given element name.
func (l *Length) WriteXml(name string, w *xml.Writer) error {
	if l.Meters <= 0 {
		return invalidValue("m", "length must be positive")
	}
	w.StartElement(name)
	w.ElementString("m", formatFloat(l.Meters))
	if l.Display != nil {
		if err := l.Display.WriteXml("display", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (l *Length) String() string {
	if l.Display != nil {
		return l.Display.String()
	}
	return fmt.Sprintf("%s m", formatFloat(l.Meters))
}

// BloodGlucoseValue is a glucose concentration in mmol/L with an
// optional display value.
type BloodGlucoseValue struct {
	MillimolesPerLiter float64
	Display            *DisplayValue
}

// SetMillimolesPerLiter sets the canonical concentration. Negative
// values are rejected.
func (v *BloodGlucoseValue) SetMillimolesPerLiter(mmol float64) error {
	if mmol < 0 {
		return invalidValue("mmolPerL", "concentration must not be negative")
	}
	v.MillimolesPerLiter = mmol
	return nil
}

// ParseXml populates the value from an element with <mmolPerL> and
// optional <display> children.
func (v *BloodGlucoseValue) ParseXml(node *xml.Node) error {
	mmolNode, err := requireChild(node, "blood-glucose-value", "mmolPerL")
	if err != nil {
		return err
	}
	if v.MillimolesPerLiter, err = parseFloatText("blood-glucose-value", "mmolPerL", mmolNode.Text()); err != nil {
		return err
	}
	v.Display = nil
	if displayNode := node.Child("display"); displayNode != nil {
		var d DisplayValue
		if err := d.ParseXml(displayNode); err != nil {
			return err
		}
		v.Display = &d
	}
	return nil
}

// WriteXml writes the value under the given element name.
func (v *BloodGlucoseValue) WriteXml(name string, w *xml.Writer) error {
	if v.MillimolesPerLiter < 0 {
		return invalidValue("mmolPerL", "concentration must not be negative")
	}
	w.StartElement(name)
	w.ElementString("mmolPerL", formatFloat(v.MillimolesPerLiter))
	if v.Display != nil {
		if err := v.Display.WriteXml("display", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (v *BloodGlucoseValue) String() string {
	if v.Display != nil {
		return v.Display.String()
	}
	return fmt.Sprintf("%s mmol/L", formatFloat(v.MillimolesPerLiter))
}

// StructuredMeasurement is a single value with coded units, used inside
// general measurements such as lab results and exercise details.
type StructuredMeasurement struct {
	Value float64
	Units CodableValue
}

// ParseXml populates the measurement from an element with <value> and
// <units> children.
func (m *StructuredMeasurement) ParseXml(node *xml.Node) error {
	valueNode, err := requireChild(node, "structured-measurement", "value")
	if err != nil {
		return err
	}
	if m.Value, err = parseFloatText("structured-measurement", "value", valueNode.Text()); err != nil {
		return err
	}
	unitsNode, err := requireChild(node, "structured-measurement", "units")
	if err != nil {
		return err
	}
	return m.Units.ParseXml(unitsNode)
}

// WriteXml writes the measurement under the given element name.
func (m *StructuredMeasurement) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	w.ElementString("value", formatFloat(m.Value))
	if err := m.Units.WriteXml("units", w); err != nil {
		return err
	}
	w.EndElement()
	return nil
}

// GeneralMeasurement is a measurement with a free-text display form and
// zero or more structured representations.
type GeneralMeasurement struct {
	Display    string
	Structured []StructuredMeasurement
}

// ParseXml populates from an element with <display> and <structured>
// children.
func (g *GeneralMeasurement) ParseXml(node *xml.Node) error {
	g.Display = node.ChildText("display")
	if g.Display == "" {
		return missingElement("general-measurement", "display")
	}
	g.Structured = nil
	for _, sn := range node.ChildrenNamed("structured") {
		var m StructuredMeasurement
		if err := m.ParseXml(sn); err != nil {
			return err
		}
		g.Structured = append(g.Structured, m)
	}
	return nil
}

// WriteXml writes the measurement under the given element name.
func (g *GeneralMeasurement) WriteXml(name string, w *xml.Writer) error {
	if g.Display == "" {
		return missingOnWrite("general-measurement", "display")
	}
	w.StartElement(name)
	w.ElementString("display", g.Display)
	for i := range g.Structured {
		if err := g.Structured[i].WriteXml("structured", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (g *GeneralMeasurement) String() string {
	return g.Display
}
