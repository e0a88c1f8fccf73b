package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/xml"
)

// StructuredDate is an exact calendar date carried as separate
// year/month/day elements.
type StructuredDate struct {
	Year  int
	Month int
	Day   int
}

// DateOf builds a StructuredDate from a time.Time.
func DateOf(t time.Time) StructuredDate {
	return StructuredDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Validate checks the date fields for calendar plausibility.
func (d *StructuredDate) Validate() error {
	if d.Year < 1 {
		return errors.NewValidation("y", "year must be positive")
	}
	if d.Month < 1 || d.Month > 12 {
		return errors.NewValidation("m", "month must be between 1 and 12")
	}
	if d.Day < 1 || d.Day > 31 {
		return errors.NewValidation("d", "day must be between 1 and 31")
	}
	return nil
}

// ParseXml populates the date from a <date> element with <y>, <m>, <d>
// children.
func (d *StructuredDate) ParseXml(node *xml.Node) error {
	var err error
	for _, part := range []struct {
		element string
		dst     *int
	}{
		{"y", &d.Year},
		{"m", &d.Month},
		{"d", &d.Day},
	} {
		child := node.Child(part.element)
		if child == nil {
			return missingElement("date", part.element)
		}
		if *part.dst, err = parseIntText("date", part.element, child.Text()); err != nil {
			return err
		}
	}
	if err := d.Validate(); err != nil {
		return errors.NewDeserializationWrap("date", "", err)
	}
	return nil
}

// WriteXml writes the date under the given element name.
func (d *StructuredDate) WriteXml(name string, w *xml.Writer) error {
	if err := d.Validate(); err != nil {
		return errors.NewSerialization("date", name, err.Error())
	}
	w.StartElement(name)
	w.ElementString("y", strconv.Itoa(d.Year))
	w.ElementString("m", strconv.Itoa(d.Month))
	w.ElementString("d", strconv.Itoa(d.Day))
	w.EndElement()
	return nil
}

func (d *StructuredDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// StructuredTime is a time of day carried as separate hour/minute
// elements with optional seconds and milliseconds.
type StructuredTime struct {
	Hour        int
	Minute      int
	Second      *int
	Millisecond *int
}

// TimeOf builds a StructuredTime from a time.Time, including seconds.
func TimeOf(t time.Time) StructuredTime {
	sec := t.Second()
	return StructuredTime{Hour: t.Hour(), Minute: t.Minute(), Second: &sec}
}

// Validate checks the time fields.
func (t *StructuredTime) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return errors.NewValidation("h", "hour must be between 0 and 23")
	}
	if t.Minute < 0 || t.Minute > 59 {
		return errors.NewValidation("m", "minute must be between 0 and 59")
	}
	if t.Second != nil && (*t.Second < 0 || *t.Second > 59) {
		return errors.NewValidation("s", "second must be between 0 and 59")
	}
	if t.Millisecond != nil && (*t.Millisecond < 0 || *t.Millisecond > 999) {
		return errors.NewValidation("f", "millisecond must be between 0 and 999")
	}
	return nil
}

// ParseXml populates the time from a <time> element with <h>, <m> and
// optional <s>, <f> children.
func (t *StructuredTime) ParseXml(node *xml.Node) error {
	var err error
	h := node.Child("h")
	if h == nil {
		return missingElement("time", "h")
	}
	if t.Hour, err = parseIntText("time", "h", h.Text()); err != nil {
		return err
	}
	m := node.Child("m")
	if m == nil {
		return missingElement("time", "m")
	}
	if t.Minute, err = parseIntText("time", "m", m.Text()); err != nil {
		return err
	}
	t.Second = nil
	t.Millisecond = nil
	if s := node.Child("s"); s != nil {
		sec, err := parseIntText("time", "s", s.Text())
		if err != nil {
			return err
		}
		t.Second = &sec
	}
	if f := node.Child("f"); f != nil {
		ms, err := parseIntText("time", "f", f.Text())
		if err != nil {
			return err
		}
		t.Millisecond = &ms
	}
	if err := t.Validate(); err != nil {
		return errors.NewDeserializationWrap("time", "", err)
	}
	return nil
}

// WriteXml writes the time under the given element name.
func (t *StructuredTime) WriteXml(name string, w *xml.Writer) error {
	if err := t.Validate(); err != nil {
		return errors.NewSerialization("time", name, err.Error())
	}
	w.StartElement(name)
	w.ElementString("h", strconv.Itoa(t.Hour))
	w.ElementString("m", strconv.Itoa(t.Minute))
	if t.Second != nil {
		w.ElementString("s", strconv.Itoa(*t.Second))
	}
	if t.Millisecond != nil {
		w.ElementString("f", strconv.Itoa(*t.Millisecond))
	}
	w.EndElement()
	return nil
}

func (t *StructuredTime) String() string {
	if t.Second != nil {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, *t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ApproximateTime is a time of day where seconds and milliseconds are
// optional. It shares StructuredTime's wire shape.
type ApproximateTime = StructuredTime

// DateTime is the exact service date-time used on item effective dates
// and type payloads: a structured date, optional time of day, and
// optional time zone.
type DateTime struct {
	Date     StructuredDate
	Time     *StructuredTime
	TimeZone *CodableValue
}

// DateTimeOf builds a DateTime from a time.Time, including time of day.
func DateTimeOf(t time.Time) DateTime {
	st := TimeOf(t)
	return DateTime{Date: DateOf(t), Time: &st}
}

// ToTime converts to a time.Time in the local zone. Missing time-of-day
// parts default to zero.
func (d *DateTime) ToTime() time.Time {
	hour, minute, sec := 0, 0, 0
	if d.Time != nil {
		hour = d.Time.Hour
		minute = d.Time.Minute
		if d.Time.Second != nil {
			sec = *d.Time.Second
		}
	}
	return time.Date(d.Date.Year, time.Month(d.Date.Month), d.Date.Day, hour, minute, sec, 0, time.Local)
}

// ParseXml populates the date-time from an element holding <date> and
// optional <time> and <tz> children.
func (d *DateTime) ParseXml(node *xml.Node) error {
	dateNode, err := requireChild(node, "date-time", "date")
	if err != nil {
		return err
	}
	if err := d.Date.ParseXml(dateNode); err != nil {
		return err
	}
	d.Time = nil
	d.TimeZone = nil
	if timeNode := node.Child("time"); timeNode != nil {
		var st StructuredTime
		if err := st.ParseXml(timeNode); err != nil {
			return err
		}
		d.Time = &st
	}
	if tzNode := node.Child("tz"); tzNode != nil {
		var tz CodableValue
		if err := tz.ParseXml(tzNode); err != nil {
			return err
		}
		d.TimeZone = &tz
	}
	return nil
}

// WriteXml writes the date-time under the given element name.
func (d *DateTime) WriteXml(name string, w *xml.Writer) error {
	w.StartElement(name)
	if err := d.Date.WriteXml("date", w); err != nil {
		return err
	}
	if d.Time != nil {
		if err := d.Time.WriteXml("time", w); err != nil {
			return err
		}
	}
	if d.TimeZone != nil {
		if err := d.TimeZone.WriteXml("tz", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return nil
}

func (d *DateTime) String() string {
	if d.Time != nil {
		return d.Date.String() + " " + d.Time.String()
	}
	return d.Date.String()
}

// ApproximateDate is a date where only the year is mandatory.
type ApproximateDate struct {
	Year  int
	Month *int
	Day   *int
}

// ParseXml populates the approximate date from an element with <y> and
// optional <m>, <d> children.
func (d *ApproximateDate) ParseXml(node *xml.Node) error {
	y := node.Child("y")
	if y == nil {
		return missingElement("approx-date", "y")
	}
	var err error
	if d.Year, err = parseIntText("approx-date", "y", y.Text()); err != nil {
		return err
	}
	d.Month = nil
	d.Day = nil
	if m := node.Child("m"); m != nil {
		month, err := parseIntText("approx-date", "m", m.Text())
		if err != nil {
			return err
		}
		d.Month = &month
	}
	if dd := node.Child("d"); dd != nil {
		day, err := parseIntText("approx-date", "d", dd.Text())
		if err != nil {
			return err
		}
		d.Day = &day
	}
	return nil
}

// WriteXml writes the approximate date under the given element name.
func (d *ApproximateDate) WriteXml(name string, w *xml.Writer) error {
	if d.Year < 1 {
		return missingOnWrite("approx-date", "y")
	}
	// Day without month cannot be represented on the wire.
	if d.Day != nil && d.Month == nil {
		return errors.NewSerialization("approx-date", "m", "day set without month")
	}
	w.StartElement(name)
	w.ElementString("y", strconv.Itoa(d.Year))
	if d.Month != nil {
		w.ElementString("m", strconv.Itoa(*d.Month))
	}
	if d.Day != nil {
		w.ElementString("d", strconv.Itoa(*d.Day))
	}
	w.EndElement()
	return nil
}

func (d *ApproximateDate) String() string {
	switch {
	case d.Day != nil && d.Month != nil:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, *d.Month, *d.Day)
	case d.Month != nil:
		return fmt.Sprintf("%04d-%02d", d.Year, *d.Month)
	default:
		return fmt.Sprintf("%04d", d.Year)
	}
}

// ApproximateDateTime is either a structured approximate date-time or a
// free-text description such as "as a child". Exactly one representation
// is carried on the wire.
type ApproximateDateTime struct {
	Date        *ApproximateDate
	Time        *StructuredTime
	TimeZone    *CodableValue
	Description string
}

// ParseXml populates from an element holding either <structured> or
// <descriptive>.
func (a *ApproximateDateTime) ParseXml(node *xml.Node) error {
	a.Date = nil
	a.Time = nil
	a.TimeZone = nil
	a.Description = ""

	if structured := node.Child("structured"); structured != nil {
		dateNode, err := requireChild(structured, "approx-date-time", "date")
		if err != nil {
			return err
		}
		var date ApproximateDate
		if err := date.ParseXml(dateNode); err != nil {
			return err
		}
		a.Date = &date
		if timeNode := structured.Child("time"); timeNode != nil {
			var st StructuredTime
			if err := st.ParseXml(timeNode); err != nil {
				return err
			}
			a.Time = &st
		}
		if tzNode := structured.Child("tz"); tzNode != nil {
			var tz CodableValue
			if err := tz.ParseXml(tzNode); err != nil {
				return err
			}
			a.TimeZone = &tz
		}
		return nil
	}

	if descriptive := node.Child("descriptive"); descriptive != nil {
		a.Description = descriptive.Text()
		return nil
	}

	return missingElement("approx-date-time", "structured")
}

// WriteXml writes the approximate date-time under the given element name.
func (a *ApproximateDateTime) WriteXml(name string, w *xml.Writer) error {
	if a.Date == nil && a.Description == "" {
		return missingOnWrite("approx-date-time", "structured")
	}
	w.StartElement(name)
	if a.Date != nil {
		w.StartElement("structured")
		if err := a.Date.WriteXml("date", w); err != nil {
			return err
		}
		if a.Time != nil {
			if err := a.Time.WriteXml("time", w); err != nil {
				return err
			}
		}
		if a.TimeZone != nil {
			if err := a.TimeZone.WriteXml("tz", w); err != nil {
				return err
			}
		}
		w.EndElement()
	} else {
		w.ElementString("descriptive", a.Description)
	}
	w.EndElement()
	return nil
}

func (a *ApproximateDateTime) String() string {
	if a.Date != nil {
		return a.Date.String()
	}
	return a.Description
}
