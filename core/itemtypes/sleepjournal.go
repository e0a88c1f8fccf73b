package itemtypes

import (
	"fmt"
	"strconv"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// SleepJournalAMTypeID identifies morning sleep journal items.
var SleepJournalAMTypeID = register("11c52484-7f1a-11db-aeac-87d355d89593", func() thing.TypedItem { return &SleepJournalAM{} })

// WakeState describes how the person felt on waking.
type WakeState int

// Wake states.
const (
	WakeStateUnknown WakeState = iota
	WakeStateWideAwake
	WakeStateAwakeButTired
	WakeStateSleepy
)

func (s WakeState) String() string {
	switch s {
	case WakeStateWideAwake:
		return "WideAwake"
	case WakeStateAwakeButTired:
		return "AwakeButTired"
	case WakeStateSleepy:
		return "Sleepy"
	}
	return "Unknown"
}

// SleepAwakening is one period of being awake during the night.
type SleepAwakening struct {
	When    types.StructuredTime
	Minutes int
}

// ParseXml populates the awakening from an <awakening> element.
func (a *SleepAwakening) ParseXml(node *xml.Node) error {
	whenNode, err := requireChild(node, "awakening", "when")
	if err != nil {
		return err
	}
	if err := a.When.ParseXml(whenNode); err != nil {
		return err
	}
	a.Minutes, err = parseChildInt(node, "awakening", "minutes")
	return err
}

// WriteXml writes the awakening as an <awakening> element.
func (a *SleepAwakening) WriteXml(w *xml.Writer) error {
	w.StartElement("awakening")
	if err := a.When.WriteXml("when", w); err != nil {
		return err
	}
	w.ElementString("minutes", strconv.Itoa(a.Minutes))
	w.EndElement()
	return nil
}

// SleepJournalAM is a morning sleep journal entry covering the previous
// night.
type SleepJournalAM struct {
	thing.Thing

	When    types.DateTime
	Bedtime types.StructuredTime
	// WakeTime is when the person got up; the effective window of the
	// item spans bedtime to wake time.
	WakeTime types.StructuredTime
	// SleepMinutes is the total time asleep.
	SleepMinutes int
	// SettlingMinutes is the time it took to fall asleep.
	SettlingMinutes int
	Awakenings      []SleepAwakening
	Medications     *types.CodableValue
	WakeState       WakeState
}

// NewSleepJournalAM creates a sleep journal entry.
func NewSleepJournalAM(when types.DateTime, bedtime, wakeTime types.StructuredTime, sleepMinutes, settlingMinutes int, wakeState WakeState) (*SleepJournalAM, error) {
	if sleepMinutes < 0 {
		return nil, errors.NewValidation("sleep-minutes", "must not be negative")
	}
	if settlingMinutes < 0 {
		return nil, errors.NewValidation("settling-minutes", "must not be negative")
	}
	s := &SleepJournalAM{Thing: *thing.New(SleepJournalAMTypeID)}
	s.TypeName = "Sleep Session"
	s.When = when
	s.Bedtime = bedtime
	s.WakeTime = wakeTime
	s.SleepMinutes = sleepMinutes
	s.SettlingMinutes = settlingMinutes
	s.WakeState = wakeState
	return s, nil
}

func (s *SleepJournalAM) Item() *thing.Thing  { return &s.Thing }
func (s *SleepJournalAM) RootElement() string { return "sleep-am" }

func (s *SleepJournalAM) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "sleep-am", "when")
	if err != nil {
		return err
	}
	if err := s.When.ParseXml(whenNode); err != nil {
		return err
	}
	bedNode, err := requireChild(node, "sleep-am", "bed-time")
	if err != nil {
		return err
	}
	if err := s.Bedtime.ParseXml(bedNode); err != nil {
		return err
	}
	wakeNode, err := requireChild(node, "sleep-am", "wake-time")
	if err != nil {
		return err
	}
	if err := s.WakeTime.ParseXml(wakeNode); err != nil {
		return err
	}
	if s.SleepMinutes, err = parseChildInt(node, "sleep-am", "sleep-minutes"); err != nil {
		return err
	}
	if s.SettlingMinutes, err = parseChildInt(node, "sleep-am", "settling-minutes"); err != nil {
		return err
	}
	s.Awakenings = nil
	for _, awakeningNode := range node.ChildrenNamed("awakening") {
		var awakening SleepAwakening
		if err := awakening.ParseXml(awakeningNode); err != nil {
			return err
		}
		s.Awakenings = append(s.Awakenings, awakening)
	}
	s.Medications = nil
	if medNode := node.Child("medications"); medNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(medNode); err != nil {
			return err
		}
		s.Medications = &cv
	}
	state, err := parseChildInt(node, "sleep-am", "wake-state")
	if err != nil {
		return err
	}
	if state < int(WakeStateWideAwake) || state > int(WakeStateSleepy) {
		return errors.NewDeserialization("sleep-am", "wake-state", "value out of range")
	}
	s.WakeState = WakeState(state)
	return nil
}

func (s *SleepJournalAM) WriteTypeData(w *xml.Writer) error {
	if s.WakeState == WakeStateUnknown {
		return errors.NewSerialization("sleep-am", "wake-state", "mandatory element missing")
	}
	w.StartElement("sleep-am")
	if err := s.When.WriteXml("when", w); err != nil {
		return err
	}
	if err := s.Bedtime.WriteXml("bed-time", w); err != nil {
		return err
	}
	if err := s.WakeTime.WriteXml("wake-time", w); err != nil {
		return err
	}
	w.ElementString("sleep-minutes", strconv.Itoa(s.SleepMinutes))
	w.ElementString("settling-minutes", strconv.Itoa(s.SettlingMinutes))
	for i := range s.Awakenings {
		if err := s.Awakenings[i].WriteXml(w); err != nil {
			return err
		}
	}
	if s.Medications != nil {
		if err := s.Medications.WriteXml("medications", w); err != nil {
			return err
		}
	}
	w.ElementString("wake-state", strconv.Itoa(int(s.WakeState)))
	w.EndElement()
	return w.Err()
}

func (s *SleepJournalAM) String() string {
	return fmt.Sprintf("slept %dm, woke %s", s.SleepMinutes, s.WakeState)
}
