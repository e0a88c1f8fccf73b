package itemtypes

import (
	"time"

	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// WeightTypeID identifies weight measurement items.
var WeightTypeID = register("3d34d87e-7fc1-4153-800f-f56592cb0d17", func() thing.TypedItem { return &Weight{} })

// Weight is a single body weight measurement.
type Weight struct {
	thing.Thing

	When  types.DateTime
	Value types.WeightValue
}

// NewWeight creates a weight measurement at the given instant.
func NewWeight(when time.Time, kilograms float64) (*Weight, error) {
	w := &Weight{Thing: *thing.New(WeightTypeID)}
	w.TypeName = "Weight Measurement"
	w.When = types.DateTimeOf(when)
	w.EffectiveDate = when
	if err := w.Value.SetKilograms(kilograms); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Weight) Item() *thing.Thing  { return &w.Thing }
func (w *Weight) RootElement() string { return "weight" }

func (w *Weight) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "weight", "when")
	if err != nil {
		return err
	}
	if err := w.When.ParseXml(whenNode); err != nil {
		return err
	}
	valueNode, err := requireChild(node, "weight", "value")
	if err != nil {
		return err
	}
	return w.Value.ParseXml(valueNode)
}

func (w *Weight) WriteTypeData(wr *xml.Writer) error {
	wr.StartElement("weight")
	if err := w.When.WriteXml("when", wr); err != nil {
		return err
	}
	if err := w.Value.WriteXml("value", wr); err != nil {
		return err
	}
	wr.EndElement()
	return wr.Err()
}

func (w *Weight) String() string {
	return w.Value.String() + " at " + w.When.String()
}
