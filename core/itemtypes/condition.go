package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// ConditionTypeID identifies medical condition items.
var ConditionTypeID = register("7ea7a1f9-880b-4bd4-b593-f5660f20eda8", func() thing.TypedItem { return &Condition{} })

// Condition is a medical condition, diagnosis, or problem.
type Condition struct {
	thing.Thing

	Name      types.CodableValue
	OnsetDate *types.ApproximateDateTime
	// Status is the clinical state, such as acute or chronic.
	Status     *types.CodableValue
	StopDate   *types.ApproximateDateTime
	StopReason string
}

// NewCondition creates a condition item with the given name.
func NewCondition(name *types.CodableValue) (*Condition, error) {
	if name == nil || name.Text == "" {
		return nil, errors.NewValidation("name", "condition name is mandatory")
	}
	c := &Condition{Thing: *thing.New(ConditionTypeID)}
	c.TypeName = "Condition"
	c.Name = *name
	return c, nil
}

func (c *Condition) Item() *thing.Thing  { return &c.Thing }
func (c *Condition) RootElement() string { return "condition" }

func (c *Condition) ParseTypeData(node *xml.Node) error {
	nameNode, err := requireChild(node, "condition", "name")
	if err != nil {
		return err
	}
	if err := c.Name.ParseXml(nameNode); err != nil {
		return err
	}
	c.OnsetDate = nil
	if onsetNode := node.Child("onset-date"); onsetNode != nil {
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(onsetNode); err != nil {
			return err
		}
		c.OnsetDate = &adt
	}
	c.Status = nil
	if statusNode := node.Child("status"); statusNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(statusNode); err != nil {
			return err
		}
		c.Status = &cv
	}
	c.StopDate = nil
	if stopNode := node.Child("stop-date"); stopNode != nil {
		var adt types.ApproximateDateTime
		if err := adt.ParseXml(stopNode); err != nil {
			return err
		}
		c.StopDate = &adt
	}
	c.StopReason = node.ChildText("stop-reason")
	return nil
}

func (c *Condition) WriteTypeData(w *xml.Writer) error {
	if c.Name.Text == "" {
		return errors.NewSerialization("condition", "name", "mandatory element missing")
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
	if c.Status != nil {
		if err := c.Status.WriteXml("status", w); err != nil {
			return err
		}
	}
	if c.StopDate != nil {
		if err := c.StopDate.WriteXml("stop-date", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("stop-reason", c.StopReason)
	w.EndElement()
	return w.Err()
}

func (c *Condition) String() string {
	return c.Name.Text
}
