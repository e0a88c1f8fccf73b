package itemtypes

import (
	"strconv"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// ExerciseTypeID identifies exercise session items.
var ExerciseTypeID = register("85a21ddb-db20-4c65-8d30-33c899ccf612", func() thing.TypedItem { return &Exercise{} })

// ExerciseDetail is one named measurement captured during a session,
// such as elevation gain or average power.
type ExerciseDetail struct {
	Name  types.CodedValue
	Value types.StructuredMeasurement
}

// ParseXml populates the detail from a <detail> element.
func (d *ExerciseDetail) ParseXml(node *xml.Node) error {
	nameNode, err := requireChild(node, "exercise-detail", "name")
	if err != nil {
		return err
	}
	if err := d.Name.ParseXml(nameNode); err != nil {
		return err
	}
	valueNode, err := requireChild(node, "exercise-detail", "value")
	if err != nil {
		return err
	}
	return d.Value.ParseXml(valueNode)
}

// WriteXml writes the detail as a <detail> element.
func (d *ExerciseDetail) WriteXml(w *xml.Writer) error {
	w.StartElement("detail")
	if err := d.Name.WriteXml("name", w); err != nil {
		return err
	}
	if err := d.Value.WriteXml("value", w); err != nil {
		return err
	}
	w.EndElement()
	return nil
}

// Exercise is one physical activity session.
type Exercise struct {
	thing.Thing

	When     types.ApproximateDateTime
	Activity types.CodableValue
	Title    string
	Distance *types.Length
	// Duration is the session length in minutes.
	Duration *float64
	Details  []ExerciseDetail
	Segments []string // opaque segment XML preserved verbatim
}

// NewExercise creates an exercise session for the given activity.
func NewExercise(when types.ApproximateDateTime, activity *types.CodableValue) (*Exercise, error) {
	if activity == nil || activity.Text == "" {
		return nil, errors.NewValidation("activity", "activity is mandatory")
	}
	e := &Exercise{Thing: *thing.New(ExerciseTypeID)}
	e.TypeName = "Exercise"
	e.When = when
	e.Activity = *activity
	return e, nil
}

func (e *Exercise) Item() *thing.Thing  { return &e.Thing }
func (e *Exercise) RootElement() string { return "exercise" }

func (e *Exercise) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "exercise", "when")
	if err != nil {
		return err
	}
	if err := e.When.ParseXml(whenNode); err != nil {
		return err
	}
	activityNode, err := requireChild(node, "exercise", "activity")
	if err != nil {
		return err
	}
	if err := e.Activity.ParseXml(activityNode); err != nil {
		return err
	}
	e.Title = node.ChildText("title")
	e.Distance = nil
	if distNode := node.Child("distance"); distNode != nil {
		var dist types.Length
		if err := dist.ParseXml(distNode); err != nil {
			return err
		}
		e.Distance = &dist
	}
	e.Duration = nil
	if durNode := node.Child("duration"); durNode != nil {
		dur, err := strconv.ParseFloat(durNode.Text(), 64)
		if err != nil {
			return errors.NewDeserializationWrap("exercise", "duration", err)
		}
		e.Duration = &dur
	}
	e.Details = nil
	for _, detailNode := range node.ChildrenNamed("detail") {
		var detail ExerciseDetail
		if err := detail.ParseXml(detailNode); err != nil {
			return err
		}
		e.Details = append(e.Details, detail)
	}
	e.Segments = nil
	for _, segNode := range node.ChildrenNamed("segment") {
		e.Segments = append(e.Segments, segNode.OuterXML())
	}
	return nil
}

func (e *Exercise) WriteTypeData(w *xml.Writer) error {
	if e.Activity.Text == "" {
		return errors.NewSerialization("exercise", "activity", "mandatory element missing")
	}
	w.StartElement("exercise")
	if err := e.When.WriteXml("when", w); err != nil {
		return err
	}
	if err := e.Activity.WriteXml("activity", w); err != nil {
		return err
	}
	w.OptionalElementString("title", e.Title)
	if e.Distance != nil {
		if err := e.Distance.WriteXml("distance", w); err != nil {
			return err
		}
	}
	if e.Duration != nil {
		w.ElementString("duration", formatFloat(*e.Duration))
	}
	for i := range e.Details {
		if err := e.Details[i].WriteXml(w); err != nil {
			return err
		}
	}
	for _, seg := range e.Segments {
		w.Raw(seg)
	}
	w.EndElement()
	return w.Err()
}

func (e *Exercise) String() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Activity.Text
}
