package types

import (
	"testing"

	"github.com/evergreen-health/recordkit/core/xml"
)

func TestWeightValueRoundTrip(t *testing.T) {
	original := WeightValue{
		Kilograms: 72.57,
		Display:   &DisplayValue{Value: 160, Units: "lb", UnitsCode: "lb"},
	}

	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("value", w)
	})
	want := `<value><kg>72.57</kg><display units="lb" units-code="lb">160</display></value>`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var parsed WeightValue
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.Kilograms != original.Kilograms {
		t.Errorf("kg = %v, want %v", parsed.Kilograms, original.Kilograms)
	}
	if parsed.Display == nil || parsed.Display.Value != 160 || parsed.Display.Units != "lb" {
		t.Errorf("display lost: %+v", parsed.Display)
	}
}

func TestWeightValueSetters(t *testing.T) {
	var v WeightValue
	if err := v.SetKilograms(-1); err == nil {
		t.Errorf("expected error for negative weight")
	}
	if err := v.SetKilograms(80); err != nil {
		t.Errorf("SetKilograms failed: %v", err)
	}
	if v.String() != "80 kg" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestWeightValueMissingKg(t *testing.T) {
	var v WeightValue
	if err := v.ParseXml(reparse(t, []byte("<value><display units=\"lb\">160</display></value>"))); err == nil {
		t.Errorf("expected error for missing kg")
	}
}

func TestLengthRoundTrip(t *testing.T) {
	original := Length{Meters: 1.8}
	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("value", w)
	})

	var parsed Length
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.Meters != 1.8 {
		t.Errorf("meters = %v", parsed.Meters)
	}

	var invalid Length
	if err := invalid.WriteXml("value", xml.NewWriter()); err == nil {
		t.Errorf("expected error for zero length")
	}
}

func TestDisplayValueRequiresUnits(t *testing.T) {
	d := DisplayValue{Value: 10}
	if err := d.WriteXml("display", xml.NewWriter()); err == nil {
		t.Errorf("expected error for display value without units")
	}
}

func TestGeneralMeasurementRoundTrip(t *testing.T) {
	original := GeneralMeasurement{
		Display: "120 mg/dL",
		Structured: []StructuredMeasurement{
			{Value: 120, Units: *NewCodedCodableValue("mg/dL", "mg-per-dl", "lab-result-units", "wc", "1")},
		},
	}

	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("value", w)
	})

	var parsed GeneralMeasurement
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.Display != "120 mg/dL" {
		t.Errorf("display = %q", parsed.Display)
	}
	if len(parsed.Structured) != 1 || parsed.Structured[0].Value != 120 {
		t.Fatalf("structured lost: %+v", parsed.Structured)
	}
	if parsed.Structured[0].Units.Text != "mg/dL" {
		t.Errorf("units text = %q", parsed.Structured[0].Units.Text)
	}

	var empty GeneralMeasurement
	if err := empty.WriteXml("value", xml.NewWriter()); err == nil {
		t.Errorf("expected error for empty display")
	}
}

func TestBloodGlucoseValueRoundTrip(t *testing.T) {
	original := BloodGlucoseValue{
		MillimolesPerLiter: 5.5,
		Display:            &DisplayValue{Value: 99, Units: "mg/dL", UnitsCode: "mg-per-dl"},
	}

	data := writeFragment(t, func(w *xml.Writer) error {
		return original.WriteXml("value", w)
	})
	want := `<value><mmolPerL>5.5</mmolPerL><display units="mg/dL" units-code="mg-per-dl">99</display></value>`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var parsed BloodGlucoseValue
	if err := parsed.ParseXml(reparse(t, data)); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.MillimolesPerLiter != original.MillimolesPerLiter {
		t.Errorf("mmolPerL = %v, want %v", parsed.MillimolesPerLiter, original.MillimolesPerLiter)
	}
	if parsed.Display == nil || parsed.Display.Units != "mg/dL" {
		t.Errorf("display lost: %+v", parsed.Display)
	}
}

func TestBloodGlucoseValueSetters(t *testing.T) {
	var v BloodGlucoseValue
	if err := v.SetMillimolesPerLiter(-1); err == nil {
		t.Errorf("expected error for negative concentration")
	}
	if err := v.SetMillimolesPerLiter(4.8); err != nil {
		t.Errorf("SetMillimolesPerLiter failed: %v", err)
	}
	if v.String() != "4.8 mmol/L" {
		t.Errorf("String() = %q", v.String())
	}
}
