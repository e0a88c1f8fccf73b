package itemtypes

import (
	"time"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

// DeviceInfoTypeID identifies medical device items.
var DeviceInfoTypeID = register("ef9cf8d5-6c0b-4292-997f-4047240bc7be", func() thing.TypedItem { return &DeviceInfo{} })

// DeviceInfo describes a medical device the person uses, such as a
// glucose meter or pacemaker.
type DeviceInfo struct {
	thing.Thing

	When         types.DateTime
	DeviceName   string
	Vendor       *types.PersonItem
	Model        string
	SerialNumber string
	AnatomicSite *types.CodableValue
	Description  string
}

// NewDeviceInfo creates a device item first used at the given instant.
func NewDeviceInfo(when time.Time, deviceName string) (*DeviceInfo, error) {
	if deviceName == "" {
		return nil, errors.NewValidation("device-name", "device name is mandatory")
	}
	d := &DeviceInfo{Thing: *thing.New(DeviceInfoTypeID)}
	d.TypeName = "Device"
	d.When = types.DateTimeOf(when)
	d.EffectiveDate = when
	d.DeviceName = deviceName
	return d, nil
}

func (d *DeviceInfo) Item() *thing.Thing  { return &d.Thing }
func (d *DeviceInfo) RootElement() string { return "device" }

func (d *DeviceInfo) ParseTypeData(node *xml.Node) error {
	whenNode, err := requireChild(node, "device", "when")
	if err != nil {
		return err
	}
	if err := d.When.ParseXml(whenNode); err != nil {
		return err
	}
	nameNode, err := requireChild(node, "device", "device-name")
	if err != nil {
		return err
	}
	d.DeviceName = nameNode.Text()
	d.Vendor = nil
	if vendorNode := node.Child("vendor"); vendorNode != nil {
		var person types.PersonItem
		if err := person.ParseXml(vendorNode); err != nil {
			return err
		}
		d.Vendor = &person
	}
	d.Model = node.ChildText("model")
	d.SerialNumber = node.ChildText("serial-number")
	d.AnatomicSite = nil
	if siteNode := node.Child("anatomic-site"); siteNode != nil {
		var cv types.CodableValue
		if err := cv.ParseXml(siteNode); err != nil {
			return err
		}
		d.AnatomicSite = &cv
	}
	d.Description = node.ChildText("description")
	return nil
}

func (d *DeviceInfo) WriteTypeData(w *xml.Writer) error {
	if d.DeviceName == "" {
		return errors.NewSerialization("device", "device-name", "mandatory element missing")
	}
	w.StartElement("device")
	if err := d.When.WriteXml("when", w); err != nil {
		return err
	}
	w.ElementString("device-name", d.DeviceName)
	if d.Vendor != nil {
		if err := d.Vendor.WriteXml("vendor", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("model", d.Model)
	w.OptionalElementString("serial-number", d.SerialNumber)
	if d.AnatomicSite != nil {
		if err := d.AnatomicSite.WriteXml("anatomic-site", w); err != nil {
			return err
		}
	}
	w.OptionalElementString("description", d.Description)
	w.EndElement()
	return w.Err()
}

func (d *DeviceInfo) String() string {
	if d.Model != "" {
		return d.DeviceName + " (" + d.Model + ")"
	}
	return d.DeviceName
}
