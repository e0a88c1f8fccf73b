package itemtypes

import (
	"fmt"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// LabTestResultsTypeID identifies lab test result items.
var LabTestResultsTypeID = register("5800eab5-a8c2-482a-a4d6-f1db25ae08c3", func() thing.TypedItem { return &LabTestResults{} })

// LabTestResultValue is the outcome of a single test: a measurement plus
// any interpretation flags such as "high" or "out of range".
type LabTestResultValue struct {
	Measurement types.GeneralMeasurement
	Flags       []types.CodableValue
}

// ParseXml populates the value from a <value> element.
func (v *LabTestResultValue) ParseXml(node *xml.Node) error {
	measurementNode, err := requireChild(node, "lab-test-result-value", "measurement")
	if err != nil {
		return err
	}
	if err := v.Measurement.ParseXml(measurementNode); err != nil {
		return err
	}
	v.Flags = nil
	for _, flagNode := range node.ChildrenNamed("flag") {
		var flag types.CodableValue
		if err := flag.ParseXml(flagNode); err != nil {
			return err
		}
		v.Flags = append(v.Flags, flag)
	}
	return nil
}

// WriteXml writes the value under the given element name.
func (v *LabTestResultValue) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	if err := v.Measurement.WriteXml("measurement", w); err != nil {
		return err
	}
	for i := range v.Flags {
		if err := v.Flags[i].WriteXml("flag", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

// LabTestResultDetails is a single test within a result group.
type LabTestResultDetails struct {
	When             *types.ApproximateDateTime
	Name             string
	Substance        *types.CodableValue
	CollectionMethod *types.CodableValue
	ClinicalCode     *types.CodableValue
	Value            *LabTestResultValue
	Status           *types.CodableValue
	Note             string
}

// ParseXml populates the details from a single test element.
func (d *LabTestResultDetails) ParseXml(node *xml.Node) error {
	d.When = nil
	if whenNode := node.Child("when"); whenNode != nil {
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(whenNode); err != nil {
			return err
		}
		d.When = &adt
	}
	d.Name = node.ChildText("name")
	parseCodable := func(element string, dst **types.CodableValue) error {
		*dst = nil
		child := node.Child(element)
		if child == nil {
			return nil
		}
		var cv types.CodableValue
		if err := cv.ParseXml(child); err != nil {
			return err
		}
		*dst = &cv
		return nil
	}
	if err := parseCodable("substance", &d.Substance); err != nil {
		return err
	}
	if err := parseCodable("collection-method", &d.CollectionMethod); err != nil {
		return err
	}
	if err := parseCodable("clinical-code", &d.ClinicalCode); err != nil {
		return err
	}
	d.Value = nil
	if valueNode := node.Child("value"); valueNode != nil {
		var value LabTestResultValue
		if err := value.ParseXml(valueNode); err != nil {
			return err
		}
		d.Value = &value
	}
	if err := parseCodable("status", &d.Status); err != nil {
		return err
	}
	d.Note = node.ChildText("note")
	return nil
}

// WriteXml writes the details under the given element name.
func (d *LabTestResultDetails) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	if d.When != nil {
		if err := d.When.WriteXml("when", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("name", d.Name)
	if d.Substance != nil {
		if err := d.Substance.WriteXml("substance", w); err != nil {
			return err
		}
	}
	if d.CollectionMethod != nil {
		if err := d.CollectionMethod.WriteXml("collection-method", w); err != nil {
			return err
		}
	}
	if d.ClinicalCode != nil {
		if err := d.ClinicalCode.WriteXml("clinical-code", w); err != nil {
			return err
		}
	}
	if d.Value != nil {
		if err := d.Value.WriteXml("value", w); err != nil {
			return err
		}
	}
	if d.Status != nil {
		if err := d.Status.WriteXml("status", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("note", d.Note)
	w.EndElement()
	return nil
}

// LabTestResultGroup groups tests from one panel, possibly nested.
type LabTestResultGroup struct {
	GroupName      types.CodableValue
	LaboratoryName *types.CodableValue
	Status         *types.CodableValue
	SubGroups      []LabTestResultGroup
	Results        []LabTestResultDetails
}

// ParseXml populates the group from a group element.
func (g *LabTestResultGroup) ParseXml(node *xml.Node) error {
	nameNode, err := requireChild(node, "lab-test-result-group", "group-name")
	if err != nil {
		return err
	}
	if err := g.GroupName.ParseXml(nameNode); err != nil {
		return err
	}
	g.LaboratoryName = nil
	if labNode := node.Child("laboratory-name"); labNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(labNode); err != nil {
			return err
		}
		g.LaboratoryName = &cv
	}
	g.Status = nil
	if statusNode := node.Child("status"); statusNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(statusNode); err != nil {
			return err
		}
		g.Status = &cv
	}
	g.SubGroups = nil
	for _, subNode := range node.ChildrenNamed("sub-groups") {
		var sub LabTestResultGroup
		if err := sub.ParseXml(subNode); err != nil {
			return err
		}
		g.SubGroups = append(g.SubGroups, sub)
	}
	g.Results = nil
	for _, resultNode := range node.ChildrenNamed("lab-test-result") {
		var details LabTestResultDetails
		if err := details.ParseXml(resultNode); err != nil {
			return err
		}
		g.Results = append(g.Results, details)
	}
	return nil
}

// WriteXml writes the group under the given element name.
func (g *LabTestResultGroup) WriteXml(name string, w *xml.Writer) error {
	if g.GroupName.Text == "" {
		return errors.NewSerialization("lab-test-result-group", "group-name", "mandatory element missing")
	}
	w.StartElement(name)
	if err := g.GroupName.WriteXml("group-name", w); err != nil {
		return err
	}
	if g.LaboratoryName != nil {
		if err := g.LaboratoryName.WriteXml("laboratory-name", w); err != nil {
			return err
		}
	}
	if g.Status != nil {
		if err := g.Status.WriteXml("status", w); err != nil {
			return err
		}
	}
	for i := range g.SubGroups {
		if err := g.SubGroups[i].WriteXml("sub-groups", w); err != nil {
			return err
		}
	}
	for i := range g.Results {
		if err := g.Results[i].WriteXml("lab-test-result", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

// LabTestResults is a set of lab results received from a laboratory.
type LabTestResults struct {
	thing.Thing

	When      *types.ApproximateDateTime
	Groups    []LabTestResultGroup
	OrderedBy *types.CodableValue
}

// NewLabTestResults creates a lab result item with at least one group.
func NewLabTestResults(groups []LabTestResultGroup) (*LabTestResults, error) {
	if len(groups) == 0 {
		return nil, errors.NewValidation("lab-group", "at least one result group is required")
	}
	l := &LabTestResults{Thing: *thing.New(LabTestResultsTypeID)}
	l.TypeName = "Lab Test Results"
	l.Groups = groups
	return l, nil
}

func (l *LabTestResults) Item() *thing.Thing  { return &l.Thing }
func (l *LabTestResults) RootElement() string { return "lab-test-results" }

func (l *LabTestResults) ParseTypeData(node *xml.Node) error {
	l.When = nil
	if whenNode := node.Child("when"); whenNode != nil {
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(whenNode); err != nil {
			return err
		}
		l.When = &adt
	}
	l.Groups = nil
	for _, groupNode := range node.ChildrenNamed("lab-group") {
		var group LabTestResultGroup
		if err := group.ParseXml(groupNode); err != nil {
			return err
		}
		l.Groups = append(l.Groups, group)
	}
	if len(l.Groups) == 0 {
		return errors.NewDeserialization("lab-test-results", "lab-group", "mandatory element missing")
	}
	l.OrderedBy = nil
	if orderedNode := node.Child("ordered-by"); orderedNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(orderedNode); err != nil {
			return err
		}
		l.OrderedBy = &cv
	}
	return nil
}

func (l *LabTestResults) WriteTypeData(w *xml.Writer) error {
	if len(l.Groups) == 0 {
		return errors.NewSerialization("lab-test-results", "lab-group", "mandatory element missing")
	}
	w.StartElement("lab-test-results")
	if l.When != nil {
		if err := l.When.WriteXml("when", w); err != nil {
			return err
		}
	}
	for i := range l.Groups {
		if err := l.Groups[i].WriteXml("lab-group", w); err != nil {
			return err
		}
	}
	if l.OrderedBy != nil {
		if err := l.OrderedBy.WriteXml("ordered-by", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (l *LabTestResults) String() string {
	return fmt.Sprintf("lab results (%d groups)", len(l.Groups))
}
