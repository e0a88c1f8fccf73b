package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// MedicationTypeID identifies medication items.
var MedicationTypeID = register("30cafccc-047d-4288-94ef-643571f7919d", func() thing.TypedItem { return &Medication{} })

// Medication is one medication the person takes or took.
type Medication struct {
	thing.Thing

	Name        types.CodableValue
	GenericName *types.CodableValue
	Dose        *types.GeneralMeasurement
	Strength    *types.GeneralMeasurement
	// Frequency is how often the dose is taken, such as "1 tablet
	// twice daily".
	Frequency        *types.GeneralMeasurement
	Route            *types.CodableValue
	Indication       *types.CodableValue
	DateStarted      *types.ApproximateDateTime
	DateDiscontinued *types.ApproximateDateTime
	PrescriptionType *types.CodableValue
}

// NewMedication creates a medication item with the given name.
func NewMedication(name *types.CodableValue) (*Medication, error) {
	if name == nil || name.Text == "" {
		return nil, errors.NewValidation("name", "medication name is mandatory")
	}
	m := &Medication{Thing: *thing.New(MedicationTypeID)}
	m.TypeName = "Medication"
	m.Name = *name
	return m, nil
}

func (m *Medication) Item() *thing.Thing  { return &m.Thing }
func (m *Medication) RootElement() string { return "medication" }

func (m *Medication) ParseTypeData(node *xml.Node) error {
	nameNode, err := requireChild(node, "medication", "name")
	if err != nil {
		return err
	}
	if err := m.Name.ParseXml(nameNode); err != nil {
		return err
	}

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
	parseMeasurement := func(element string, dst **types.GeneralMeasurement) error {
		*dst = nil
		child := node.Child(element)
		if child == nil {
			return nil
		}
		var gm types.GeneralMeasurement
		if err := gm.ParseXml(child); err != nil {
			return err
		}
		*dst = &gm
		return nil
	}
	parseApproxDateTime := func(element string, dst **types.ApproximateDateTime) error {
		*dst = nil
		child := node.Child(element)
		if child == nil {
			return nil
		}
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(child); err != nil {
			return err
		}
		*dst = &adt
		return nil
	}

	if err := parseCodable("generic-name", &m.GenericName); err != nil {
		return err
	}
	if err := parseMeasurement("dose", &m.Dose); err != nil {
		return err
	}
	if err := parseMeasurement("strength", &m.Strength); err != nil {
		return err
	}
	if err := parseMeasurement("frequency", &m.Frequency); err != nil {
		return err
	}
	if err := parseCodable("route", &m.Route); err != nil {
		return err
	}
	if err := parseCodable("indication", &m.Indication); err != nil {
		return err
	}
	if err := parseApproxDateTime("date-started", &m.DateStarted); err != nil {
		return err
	}
	if err := parseApproxDateTime("date-discontinued", &m.DateDiscontinued); err != nil {
		return err
	}
	return parseCodable("prescribed", &m.PrescriptionType)
}

func (m *Medication) WriteTypeData(w *xml.Writer) error {
	if m.Name.Text == "" {
		return errors.NewSerialization("medication", "name", "mandatory element missing")
	}
	w.StartElement("medication")
	if err := m.Name.WriteXml("name", w); err != nil {
		return err
	}
	if m.GenericName != nil {
		if err := m.GenericName.WriteXml("generic-name", w); err != nil {
			return err
		}
	}
	if m.Dose != nil {
		if err := m.Dose.WriteXml("dose", w); err != nil {
			return err
		}
	}
	if m.Strength != nil {
		if err := m.Strength.WriteXml("strength", w); err != nil {
			return err
		}
	}
	if m.Frequency != nil {
		if err := m.Frequency.WriteXml("frequency", w); err != nil {
			return err
		}
	}
	if m.Route != nil {
		if err := m.Route.WriteXml("route", w); err != nil {
			return err
		}
	}
	if m.Indication != nil {
		if err := m.Indication.WriteXml("indication", w); err != nil {
			return err
		}
	}
	if m.DateStarted != nil {
		if err := m.DateStarted.WriteXml("date-started", w); err != nil {
			return err
		}
	}
	if m.DateDiscontinued != nil {
		if err := m.DateDiscontinued.WriteXml("date-discontinued", w); err != nil {
			return err
		}
	}
	if m.PrescriptionType != nil {
		if err := m.PrescriptionType.WriteXml("prescribed", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (m *Medication) String() string {
	return m.Name.Text
}
