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

// HeartRateTypeID identifies heart rate measurement items.
var HeartRateTypeID = register("b81eb4a6-6eac-4292-ae93-3872d6870994", func() thing.TypedItem { return &HeartRate{} })

// HeartRate is a heart rate measurement in beats per minute.
type HeartRate struct {
	thing.Thing

	When types.DateTime
	Rate int
	// MeasurementMethod describes how the rate was taken, such as a
	// chest strap or pulse oximetry.
	MeasurementMethod     *types.CodableValue
	MeasurementConditions *types.CodableValue
}

// NewHeartRate creates a heart rate measurement at the given instant.
func NewHeartRate(when time.Time, bpm int) (*HeartRate, error) {
	hr := &HeartRate{Thing: *thing.New(HeartRateTypeID)}
	hr.TypeName = "Heart Rate"
	hr.When = types.DateTimeOf(when)
	hr.EffectiveDate = when
	if err := hr.SetRate(bpm); err != nil {
		return nil, err
	}
	return hr, nil
}

// SetRate sets the rate, rejecting non-positive values.
func (hr *HeartRate) SetRate(bpm int) error {
	if bpm <= 0 {
		return errors.NewValidation("value", "heart rate must be positive")
	}
	hr.Rate = bpm
	return nil
}

func (hr *HeartRate) Item() *thing.Thing  { return &hr.Thing }
func (hr *HeartRate) RootElement() string { return "heart-rate" }

func (hr *HeartRate) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "heart-rate", "when")
	if err != nil {
		return err
	}
	if err := hr.When.ParseXml(whenNode); err != nil {
		return err
	}
	if hr.Rate, err = parseChildInt(node, "heart-rate", "value"); err != nil {
		return err
	}
	hr.MeasurementMethod = nil
	if methodNode := node.Child("measurement-method"); methodNode != nil {
		var method types.CodableValue
		if err := method.ParseXml(methodNode); err != nil {
			return err
		}
		hr.MeasurementMethod = &method
	}
	hr.MeasurementConditions = nil
	if condNode := node.Child("measurement-conditions"); condNode != nil {
		var cond types.CodableValue
		if err := cond.ParseXml(condNode); err != nil {
			return err
		}
		hr.MeasurementConditions = &cond
	}
	return nil
}

func (hr *HeartRate) WriteTypeData(w *xml.Writer) error {
	if hr.Rate <= 0 {
		return errors.NewSerialization("heart-rate", "value", "heart rate must be positive")
	}
	w.StartElement("heart-rate")
	if err := hr.When.WriteXml("when", w); err != nil {
		return err
	}
	w.ElementString("value", strconv.Itoa(hr.Rate))
	if hr.MeasurementMethod != nil {
		if err := hr.MeasurementMethod.WriteXml("measurement-method", w); err != nil {
			return err
		}
	}
	if hr.MeasurementConditions != nil {
		if err := hr.MeasurementConditions.WriteXml("measurement-conditions", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (hr *HeartRate) String() string {
	return fmt.Sprintf("%d bpm", hr.Rate)
}
