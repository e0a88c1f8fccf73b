package itemtypes

import (
	"time"

	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// HeightTypeID identifies height measurement items.
var HeightTypeID = register("40750a6a-89b2-455c-bd8d-b420a4cb500b", func() thing.TypedItem { return &Height{} })

// Height is a single body height measurement.
type Height struct {
	thing.Thing

	When  types.DateTime
	Value types.Length
}

// NewHeight creates a height measurement at the given instant.
func NewHeight(when time.Time, meters float64) (*Height, error) {
	h := &Height{Thing: *thing.New(HeightTypeID)}
	h.TypeName = "Height Measurement"
	h.When = types.DateTimeOf(when)
	h.EffectiveDate = when
	if err := h.Value.SetMeters(meters); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Height) Item() *thing.Thing  { return &h.Thing }
func (h *Height) RootElement() string { return "height" }

func (h *Height) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "height", "when")
	if err != nil {
		return err
	}
	if err := h.When.ParseXml(whenNode); err != nil {
		return err
	}
	valueNode, err := requireChild(node, "height", "value")
	if err != nil {
		return err
	}
	return h.Value.ParseXml(valueNode)
}

func (h *Height) WriteTypeData(w *xml.Writer) error {
	w.StartElement("height")
	if err := h.When.WriteXml("when", w); err != nil {
		return err
	}
	if err := h.Value.WriteXml("value", w); err != nil {
		return err
	}
	w.EndElement()
	return w.Err()
}

func (h *Height) String() string {
	return h.Value.String() + " at " + h.When.String()
}
