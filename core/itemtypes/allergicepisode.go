package itemtypes

import (
	"time"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// AllergicEpisodeTypeID identifies allergic episode items.
var AllergicEpisodeTypeID = register("d65ad514-c492-4b59-bd05-f3f6cb43ceb3", func() thing.TypedItem { return &AllergicEpisode{} })

// AllergicEpisode is one occurrence of an allergic reaction.
type AllergicEpisode struct {
	thing.Thing

	When      types.DateTime
	Name      types.CodableValue
	Reaction  *types.CodableValue
	Treatment *types.CodableValue
}

// NewAllergicEpisode creates an episode of the named allergy.
func NewAllergicEpisode(when time.Time, name *types.CodableValue) (*AllergicEpisode, error) {
	if name == nil || name.Text == "" {
		return nil, errors.NewValidation("name", "allergen name is mandatory")
	}
	a := &AllergicEpisode{Thing: *thing.New(AllergicEpisodeTypeID)}
	a.TypeName = "Allergic Episode"
	a.When = types.DateTimeOf(when)
	a.EffectiveDate = when
	a.Name = *name
	return a, nil
}

func (a *AllergicEpisode) Item() *thing.Thing  { return &a.Thing }
func (a *AllergicEpisode) RootElement() string { return "allergic-episode" }

func (a *AllergicEpisode) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "allergic-episode", "when")
	if err != nil {
		return err
	}
	if err := a.When.ParseXml(whenNode); err != nil {
		return err
	}
	nameNode, err := requireChild(node, "allergic-episode", "name")
	if err != nil {
		return err
	}
	if err := a.Name.ParseXml(nameNode); err != nil {
		return err
	}
	a.Reaction = nil
	if reactionNode := node.Child("reaction"); reactionNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(reactionNode); err != nil {
			return err
		}
		a.Reaction = &cv
	}
	a.Treatment = nil
	if treatmentNode := node.Child("treatment"); treatmentNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(treatmentNode); err != nil {
			return err
		}
		a.Treatment = &cv
	}
	return nil
}

func (a *AllergicEpisode) WriteTypeData(w *xml.Writer) error {
	if a.Name.Text == "" {
		return errors.NewSerialization("allergic-episode", "name", "mandatory element missing")
	}
	w.StartElement("allergic-episode")
	if err := a.When.WriteXml("when", w); err != nil {
		return err
	}
	if err := a.Name.WriteXml("name", w); err != nil {
		return err
	}
	if a.Reaction != nil {
		if err := a.Reaction.WriteXml("reaction", w); err != nil {
			return err
		}
	}
	if a.Treatment != nil {
		if err := a.Treatment.WriteXml("treatment", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (a *AllergicEpisode) String() string {
	return a.Name.Text
}
