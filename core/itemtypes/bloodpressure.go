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

// BloodPressureTypeID identifies blood pressure measurement items.
var BloodPressureTypeID = register("ca3c57f4-f4c1-4e15-be67-0a3caf5414ed", func() thing.TypedItem { return &BloodPressure{} })

// BloodPressure is a single blood pressure reading in mmHg.
type BloodPressure struct {
	thing.Thing

	When      types.DateTime
	Systolic  int
	Diastolic int
	// Pulse is the heart rate in beats per minute taken with the
	// reading, when the device reports it.
	Pulse              *int
	IrregularHeartbeat *bool
}

// NewBloodPressure creates a blood pressure reading at the given instant.
func NewBloodPressure(when time.Time, systolic, diastolic int) (*BloodPressure, error) {
	bp := &BloodPressure{Thing: *thing.New(BloodPressureTypeID)}
	bp.TypeName = "Blood Pressure Measurement"
	bp.When = types.DateTimeOf(when)
	bp.EffectiveDate = when
	if err := bp.SetReading(systolic, diastolic); err != nil {
		return nil, err
	}
	return bp, nil
}

// SetReading sets both pressures, rejecting non-positive values.
func (bp *BloodPressure) SetReading(systolic, diastolic int) error {
	if systolic <= 0 {
		return errors.NewValidation("systolic", "pressure must be positive")
	}
	if diastolic <= 0 {
		return errors.NewValidation("diastolic", "pressure must be positive")
	}
	bp.Systolic = systolic
	bp.Diastolic = diastolic
	return nil
}

func (bp *BloodPressure) Item() *thing.Thing  { return &bp.Thing }
func (bp *BloodPressure) RootElement() string { return "blood-pressure" }

func (bp *BloodPressure) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "blood-pressure", "when")
	if err != nil {
		return err
	}
	if err := bp.When.ParseXml(whenNode); err != nil {
		return err
	}
	if bp.Systolic, err = parseChildInt(node, "blood-pressure", "systolic"); err != nil {
		return err
	}
	if bp.Diastolic, err = parseChildInt(node, "blood-pressure", "diastolic"); err != nil {
		return err
	}
	if bp.Pulse, err = parseOptionalInt(node, "blood-pressure", "pulse"); err != nil {
		return err
	}
	bp.IrregularHeartbeat, err = parseOptionalBool(node, "blood-pressure", "irregular-heartbeat")
	return err
}

func (bp *BloodPressure) WriteTypeData(w *xml.Writer) error {
	if bp.Systolic <= 0 || bp.Diastolic <= 0 {
		return errors.NewSerialization("blood-pressure", "systolic", "pressures must be positive")
	}
	w.StartElement("blood-pressure")
	if err := bp.When.WriteXml("when", w); err != nil {
		return err
	}
	w.ElementString("systolic", strconv.Itoa(bp.Systolic))
	w.ElementString("diastolic", strconv.Itoa(bp.Diastolic))
	if bp.Pulse != nil {
		w.ElementString("pulse", strconv.Itoa(*bp.Pulse))
	}
	if bp.IrregularHeartbeat != nil {
		w.ElementString("irregular-heartbeat", writeBool(*bp.IrregularHeartbeat))
	}
	w.EndElement()
	return w.Err()
}

func (bp *BloodPressure) String() string {
	return fmt.Sprintf("%d/%d mmHg", bp.Systolic, bp.Diastolic)
}
