package itemtypes

import (
	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// InsurancePlanTypeID identifies insurance plan (payer) items.
var InsurancePlanTypeID = register("9366440c-ec81-4b89-b231-308a4c4d70ed", func() thing.TypedItem { return &InsurancePlan{} })

// InsurancePlan describes an insurance plan covering the person.
type InsurancePlan struct {
	thing.Thing

	PlanName     string
	CoverageType *types.CodableValue
	// CarrierID is the insurer's identifier for itself, as printed on
	// the member card.
	CarrierID      string
	GroupNumber    string
	PlanCode       string
	SubscriberID   string
	PersonCode     string
	SubscriberName string
	SubscriberDOB  *types.DateTime
	IsPrimary      *bool
	ExpirationDate *types.DateTime
	Contact        *types.ContactInfo
}

// NewInsurancePlan creates a payer item with the given plan name.
func NewInsurancePlan(planName string) (*InsurancePlan, error) {
	if planName == "" {
		return nil, errors.NewValidation("plan-name", "plan name is mandatory")
	}
	p := &InsurancePlan{Thing: *thing.New(InsurancePlanTypeID)}
	p.TypeName = "Insurance Plan"
	p.PlanName = planName
	return p, nil
}

func (p *InsurancePlan) Item() *thing.Thing  { return &p.Thing }
func (p *InsurancePlan) RootElement() string { return "payer" }

func (p *InsurancePlan) ParseTypeData(node *xml.Node) error {
	nameNode, err := requireChild(node, "payer", "plan-name")
	if err != nil {
		return err
	}
	p.PlanName = nameNode.Text()
	p.CoverageType = nil
	if coverageNode := node.Child("coverage-type"); coverageNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(coverageNode); err != nil {
			return err
		}
		p.CoverageType = &cv
	}
	p.CarrierID = node.ChildText("carrier-id")
	p.GroupNumber = node.ChildText("group-num")
	p.PlanCode = node.ChildText("plan-code")
	p.SubscriberID = node.ChildText("subscriber-id")
	p.PersonCode = node.ChildText("person-code")
	p.SubscriberName = node.ChildText("subscriber-name")
	p.SubscriberDOB = nil
	if dobNode := node.Child("subscriber-dob"); dobNode != nil {
		var dt types.DateTime
		if err := dt.ParseXml(dobNode); err != nil {
			return err
		}
		p.SubscriberDOB = &dt
	}
	if p.IsPrimary, err = parseOptionalBool(node, "payer", "is-primary"); err != nil {
		return err
	}
	p.ExpirationDate = nil
	if expNode := node.Child("expiration-date"); expNode != nil {
		var dt types.DateTime
		if err := dt.ParseXml(expNode); err != nil {
			return err
		}
		p.ExpirationDate = &dt
	}
	p.Contact = nil
	if contactNode := node.Child("contact"); contactNode != nil {
		var contact types.ContactInfo
		if err := contact.ParseXml(contactNode); err != nil {
			return err
		}
		p.Contact = &contact
	}
	return nil
}

func (p *InsurancePlan) WriteTypeData(w *xml.Writer) error {
	if p.PlanName == "" {
		return errors.NewSerialization("payer", "plan-name", "mandatory element missing")
	}
	w.StartElement("payer")
	w.ElementString("plan-name", p.PlanName)
	if p.CoverageType != nil {
		if err := p.CoverageType.WriteXml("coverage-type", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("carrier-id", p.CarrierID)
	w.OptionalElementString("group-num", p.GroupNumber)
	w.OptionalElementString("plan-code", p.PlanCode)
	w.OptionalElementString("subscriber-id", p.SubscriberID)
	w.OptionalElementString("person-code", p.PersonCode)
	w.OptionalElementString("subscriber-name", p.SubscriberName)
	if p.SubscriberDOB != nil {
		if err := p.SubscriberDOB.WriteXml("subscriber-dob", w); err != nil {
			return err
		}
	}
	if p.IsPrimary != nil {
		w.ElementString("is-primary", writeBool(*p.IsPrimary))
	}
	if p.ExpirationDate != nil {
		if err := p.ExpirationDate.WriteXml("expiration-date", w); err != nil {
			return err
		}
	}
	if p.Contact != nil {
		if err := p.Contact.WriteXml("contact", w); err != nil {
			return err
		}
	}
	w.EndElement()
	return w.Err()
}

func (p *InsurancePlan) String() string {
	return p.PlanName
}
