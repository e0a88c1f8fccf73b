package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// ImmunizationTypeID identifies immunization items.
var ImmunizationTypeID = register("cd3587b5-b6e1-4565-ab3b-1c3ad45eb04f", func() thing.TypedItem { return &Immunization{} })

// Immunization is one administered vaccine.
type Immunization struct {
	thing.Thing

	Name               types.CodableValue
	AdministrationDate *types.ApproximateDateTime
	Administrator      *types.PersonItem
	Manufacturer       *types.CodableValue
	Lot                string
	Route              *types.CodableValue
	ExpirationDate     *types.ApproximateDate
	// Sequence is the dose position in a series, such as "2 of 3".
	Sequence        string
	AnatomicSurface *types.CodableValue
	AdverseEvent    string
	Consent         string
}

// NewImmunization creates an immunization item with the given vaccine name.
func NewImmunization(name *types.CodableValue) (*Immunization, error) {
	if name == nil || name.Text == "" {
		return nil, errors.NewValidation("name", "vaccine name is mandatory")
	}
	i := &Immunization{Thing: *thing.New(ImmunizationTypeID)}
	i.TypeName = "Immunization"
	i.Name = *name
	return i, nil
}

func (i *Immunization) Item() *thing.Thing  { return &i.Thing }
func (i *Immunization) RootElement() string { return "immunization" }

func (i *Immunization) ParseTypeData(node *xml.Node) error {
	nameNode, err := requireChild(node, "immunization", "name")
	if err != nil {
		return err
	}
	if err := i.Name.ParseXml(nameNode); err != nil {
		return err
	}

	i.AdministrationDate = nil
	if dateNode := node.Child("administration-date"); dateNode != nil {
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(dateNode); err != nil {
			return err
		}
		i.AdministrationDate = &adt
	}
	i.Administrator = nil
	if adminNode := node.Child("administrator"); adminNode != nil {
		var person types.PersonItem
		if err := person.ParseXml(adminNode); err != nil {
			return err
		}
		i.Administrator = &person
	}
	i.Manufacturer = nil
	if mfrNode := node.Child("manufacturer"); mfrNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(mfrNode); err != nil {
			return err
		}
		i.Manufacturer = &cv
	}
	i.Lot = node.ChildText("lot")
	i.Route = nil
	if routeNode := node.Child("route"); routeNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(routeNode); err != nil {
			return err
		}
		i.Route = &cv
	}
	i.ExpirationDate = nil
	if expNode := node.Child("expiration-date"); expNode != nil {
		var ad types.ApproximateDate
		if err := ad.ParseXml(expNode); err != nil {
			return err
		}
		i.ExpirationDate = &ad
	}
	i.Sequence = node.ChildText("sequence")
	i.AnatomicSurface = nil
	if surfaceNode := node.Child("anatomic-surface"); surfaceNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(surfaceNode); err != nil {
			return err
		}
		i.AnatomicSurface = &cv
	}
	i.AdverseEvent = node.ChildText("adverse-event")
	i.Consent = node.ChildText("consent")
	return nil
}

func (i *Immunization) WriteTypeData(w *xml.Writer) error {
	if i.Name.Text == "" {
		return errors.NewSerialization("immunization", "name", "mandatory element missing")
	}
	w.StartElement("immunization")
	if err := i.Name.WriteXml("name", w); err != nil {
		return err
	}
	if i.AdministrationDate != nil {
		if err := i.AdministrationDate.WriteXml("administration-date", w); err != nil {
			return err
		}
	}
	if i.Administrator != nil {
		if err := i.Administrator.WriteXml("administrator", w); err != nil {
			return err
		}
	}
	if i.Manufacturer != nil {
		if err := i.Manufacturer.WriteXml("manufacturer", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("lot", i.Lot)
	if i.Route != nil {
		if err := i.Route.WriteXml("route", w); err != nil {
			return err
		}
	}
	if i.ExpirationDate != nil {
		if err := i.ExpirationDate.WriteXml("expiration-date", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("sequence", i.Sequence)
	if i.AnatomicSurface != nil {
		if err := i.AnatomicSurface.WriteXml("anatomic-surface", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("adverse-event", i.AdverseEvent)
	w.OptionalElementString("consent", i.Consent)
	w.EndElement()
	return w.Err()
}

func (i *Immunization) String() string {
	return i.Name.Text
}
