package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// FamilyHistoryTypeID identifies family history items.
var FamilyHistoryTypeID = register("4a04fcc8-19c1-4d59-a8c7-2031a03f21de", func() thing.TypedItem { return &FamilyHistory{} })

// FamilyHistoryRelative identifies the relative the history concerns.
type FamilyHistoryRelative struct {
	Relationship types.CodableValue
	Name         *types.PersonItem
	DateOfBirth  *types.ApproximateDate
	DateOfDeath  *types.ApproximateDate
}

// ParseXml populates the relative from a <relative> element.
func (r *FamilyHistoryRelative) ParseXml(node *xml.Node) error {
	relNode, err := requireChild(node, "relative", "relationship")
	if err != nil {
		return err
	}
	if err := r.Relationship.ParseXml(relNode); err != nil {
		return err
	}
	r.Name = nil
	if nameNode := node.Child("relative-name"); nameNode != nil {
		var person types.PersonItem
		if err := person.ParseXml(nameNode); err != nil {
			return err
		}
		r.Name = &person
	}
	r.DateOfBirth = nil
	if dobNode := node.Child("date-of-birth"); dobNode != nil {
		var ad types.ApproximateDate
		if err := ad.ParseXml(dobNode); err != nil {
			return err
		}
		r.DateOfBirth = &ad
	}
	r.DateOfDeath = nil
	if dodNode := node.Child("date-of-death"); dodNode != nil {
		var ad types.ApproximateDate
		if err := ad.ParseXml(dodNode); err != nil {
			return err
		}
		r.DateOfDeath = &ad
	}
	return nil
}

// WriteXml writes the relative as a <relative> element.
func (r *FamilyHistoryRelative) WriteXml(w *xml.Writer) error {
	if r.Relationship.Text == "" {
		return errors.NewSerialization("relative", "relationship", "mandatory element missing")
	}
	w.StartElement("relative")
	if err := r.Relationship.WriteXml("relationship", w); err != nil {
		return err
	}
	if r.Name != nil {
		if err := r.Name.WriteXml("relative-name", w); err != nil {
			return err
		}
	}
	if r.DateOfBirth != nil {
		if err := r.DateOfBirth.WriteXml("date-of-birth", w); err != nil {
			return err
		}
	}
	if r.DateOfDeath != nil {
		if err := r.DateOfDeath.WriteXml("date-of-death", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

// FamilyHistoryCondition is one condition of the relative.
type FamilyHistoryCondition struct {
	Name      types.CodableValue
	OnsetDate *types.ApproximateDate
}

// ParseXml populates the condition from a <condition> element.
func (c *FamilyHistoryCondition) ParseXml(node *xml.Node) error {
	nameNode, err := requireChild(node, "family-history-condition", "name")
	if err != nil {
		return err
	}
	if err := c.Name.ParseXml(nameNode); err != nil {
		return err
	}
	c.OnsetDate = nil
	if onsetNode := node.Child("onset-date"); onsetNode != nil {
		var ad types.ApproximateDate
		if err := ad.ParseXml(onsetNode); err != nil {
			return err
		}
		c.OnsetDate = &ad
	}
	return nil
}

// WriteXml writes the condition as a <condition> element.
func (c *FamilyHistoryCondition) WriteXml(w *xml.Writer) error {
	if c.Name.Text == "" {
		return errors.NewSerialization("family-history-condition", "name", "mandatory element missing")
	}
	w.StartElement("condition")
	if err := c.Name.WriteXml("name", w); err != nil {
		return err
	}
	if c.OnsetDate != nil {
		if err := c.OnsetDate.WriteXml("onset-date", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

// FamilyHistory records a relative's medical conditions.
type FamilyHistory struct {
	thing.Thing

	Relative   *FamilyHistoryRelative
	Conditions []FamilyHistoryCondition
}

// NewFamilyHistory creates a family history item for the given relative.
func NewFamilyHistory(relative *FamilyHistoryRelative) (*FamilyHistory, error) {
	if relative == nil || relative.Relationship.Text == "" {
		return nil, errors.NewValidation("relationship", "relative relationship is mandatory")
	}
	f := &FamilyHistory{Thing: *thing.New(FamilyHistoryTypeID)}
	f.TypeName = "Family History"
	f.Relative = relative
	return f, nil
}

func (f *FamilyHistory) Item() *thing.Thing  { return &f.Thing }
func (f *FamilyHistory) RootElement() string { return "family-history" }

func (f *FamilyHistory) ParseTypeData(node *xml.Node) error {
	f.Relative = nil
	if relNode := node.Child("relative"); relNode != nil {
		var relative FamilyHistoryRelative
		if err := relative.ParseXml(relNode); err != nil {
			return err
		}
		f.Relative = &relative
	}
	f.Conditions = nil
	for _, condNode := range node.ChildrenNamed("condition") {
		var cond FamilyHistoryCondition
		if err := cond.ParseXml(condNode); err != nil {
			return err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	return nil
}

func (f *FamilyHistory) WriteTypeData(w *xml.Writer) error {
	w.StartElement("family-history")
	for i := range f.Conditions {
		if err := f.Conditions[i].WriteXml(w); err != nil {
			return err
		}
	}
	if f.Relative != nil {
		if err := f.Relative.WriteXml(w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (f *FamilyHistory) String() string {
	if f.Relative != nil {
		return "family history: " + f.Relative.Relationship.Text
	}
	return "family history"
}
