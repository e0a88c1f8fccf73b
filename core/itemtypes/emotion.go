package itemtypes

import (
	"fmt"
	"strconv"
	"time"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// EmotionTypeID identifies emotional state items.
var EmotionTypeID = register("4b7971d6-e427-427d-bf2c-2fbe064aa1b2", func() thing.TypedItem { return &Emotion{} })

// RelativeRating is a five point scale from very low to very high. Zero
// means not rated.
type RelativeRating int

// Rating values.
const (
	RatingNone RelativeRating = iota
	RatingVeryLow
	RatingLow
	RatingModerate
	RatingHigh
	RatingVeryHigh
)

func (r RelativeRating) String() string {
	switch r {
	case RatingVeryLow:
		return "VeryLow"
	case RatingLow:
		return "Low"
	case RatingModerate:
		return "Moderate"
	case RatingHigh:
		return "High"
	case RatingVeryHigh:
		return "VeryHigh"
	}
	return "None"
}

func parseRating(node *xml.Node, element string) (RelativeRating, error) {
	child := node.Child(element)
	if child == nil {
		return RatingNone, nil
	}
	value, err := strconv.Atoi(child.Text())
	if err != nil {
		return RatingNone, errors.NewDeserializationWrap("emotion", element, err)
	}
	if value < int(RatingNone) || value > int(RatingVeryHigh) {
		return RatingNone, errors.NewDeserialization("emotion", element, "rating out of range")
	}
	return RelativeRating(value), nil
}

// Emotion records a subjective emotional state.
type Emotion struct {
	thing.Thing

	When      types.DateTime
	Mood      RelativeRating
	Stress    RelativeRating
	Wellbeing RelativeRating
}

// NewEmotion creates an emotional state entry at the given instant.
func NewEmotion(when time.Time) *Emotion {
	e := &Emotion{Thing: *thing.New(EmotionTypeID)}
	e.TypeName = "Emotional State"
	e.When = types.DateTimeOf(when)
	e.EffectiveDate = when
	return e
}

func (e *Emotion) Item() *thing.Thing  { return &e.Thing }
func (e *Emotion) RootElement() string { return "emotion" }

func (e *Emotion) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "emotion", "when")
	if err != nil {
		return err
	}
	if err := e.When.ParseXml(whenNode); err != nil {
		return err
	}
	if e.Mood, err = parseRating(node, "mood"); err != nil {
		return err
	}
	if e.Stress, err = parseRating(node, "stress"); err != nil {
		return err
	}
	e.Wellbeing, err = parseRating(node, "wellbeing")
	return err
}

func (e *Emotion) WriteTypeData(w *xml.Writer) error {
	w.StartElement("emotion")
	if err := e.When.WriteXml("when", w); err != nil {
		return err
	}
	if e.Mood != RatingNone {
		w.ElementString("mood", strconv.Itoa(int(e.Mood)))
	}
	if e.Stress != RatingNone {
		w.ElementString("stress", strconv.Itoa(int(e.Stress)))
	}
	if e.Wellbeing != RatingNone {
		w.ElementString("wellbeing", strconv.Itoa(int(e.Wellbeing)))
	}
	w.EndElement()
	return w.Err()
}

func (e *Emotion) String() string {
	return fmt.Sprintf("mood %s, stress %s, wellbeing %s", e.Mood, e.Stress, e.Wellbeing)
}
