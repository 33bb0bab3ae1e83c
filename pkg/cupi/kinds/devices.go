package kinds

import (
	"context"
	"fmt"
	"net/url"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
)

type DeviceType string

const (
	PhoneDevice DeviceType = "phone"
	PagerDevice DeviceType = "pager"
	SmtpDevice  DeviceType = "smtp"
	HtmlDevice  DeviceType = "html"
)

const (
	ActiveField      string = "Active"
	PhoneNumberField string = "PhoneNumber"
	SmtpAddressField string = "SmtpAddress"
)

func deviceFields(extra ...fields.Field) []fields.Field {
	return append([]fields.Field{
		fields.NewImmutable(ObjectIdField, fields.String),
		fields.NewImmutable("SubscriberObjectId", fields.Reference),
		fields.NewMutable(DisplayNameField, fields.String, fields.Required),
		fields.NewMutable(ActiveField, fields.Boolean),
		fields.NewLazy(UndeletableField, fields.Boolean),
	}, extra...)
}

var notificationDevicePolicies = map[DeviceType]*fields.Policy{
	PhoneDevice: fields.NewPolicy("PhoneDevice", ObjectIdField, DisplayNameField, deviceFields(
		fields.NewMutable(PhoneNumberField, fields.String, fields.Required),
		fields.NewMutable("MediaSwitchObjectId", fields.Reference, fields.Required),
		fields.NewLazy("SendCallerId", fields.Boolean),
	)...),
	PagerDevice: fields.NewPolicy("PagerDevice", ObjectIdField, DisplayNameField, deviceFields(
		fields.NewMutable(PhoneNumberField, fields.String, fields.Required),
		fields.NewMutable("MediaSwitchObjectId", fields.Reference, fields.Required),
	)...),
	SmtpDevice: fields.NewPolicy("SmtpDevice", ObjectIdField, DisplayNameField, deviceFields(
		fields.NewMutable(SmtpAddressField, fields.String, fields.Required),
		fields.NewLazy("StaticText", fields.String),
	)...),
	HtmlDevice: fields.NewPolicy("HtmlDevice", ObjectIdField, DisplayNameField, deviceFields(
		fields.NewMutable(SmtpAddressField, fields.String, fields.Required),
		fields.NewLazy("NotificationTemplateID", fields.Reference),
	)...),
}

// NotificationDeviceResource describes the devices of one type that belong to
// the user identified by userID.
func NotificationDeviceResource(userID string, deviceType DeviceType) (client.Resource, error) {
	policy, ok := notificationDevicePolicies[deviceType]
	if !ok {
		return client.Resource{}, errors.NewValidationError(fmt.Sprintf("unknown notification device type %q", deviceType))
	}

	if userID == "" {
		return client.Resource{}, errors.NewValidationError("notification devices require a user id")
	}

	return client.Resource{
		Path:   fmt.Sprintf("/vmrest/users/%s/notificationdevices/%sdevices", url.PathEscape(userID), deviceType),
		Policy: policy,
	}, nil
}

func NotificationDevices(c *client.Client, userID string, deviceType DeviceType) (*client.Repository, error) {
	r, err := NotificationDeviceResource(userID, deviceType)
	if err != nil {
		return nil, err
	}
	return c.Repository(r), nil
}

type NotificationDevice struct {
	*entities.Entity
}

func NewNotificationDevice(e *entities.Entity) *NotificationDevice {
	return &NotificationDevice{Entity: e}
}

func (d *NotificationDevice) DisplayName() string { return peekString(d.Entity, DisplayNameField) }
func (d *NotificationDevice) Active() bool        { return peekBool(d.Entity, ActiveField) }

// Destination is the phone number or the mail address that notifications are
// sent to, depending on the type of device.
func (d *NotificationDevice) Destination() string {
	if _, ok := d.Policy().Lookup(SmtpAddressField); ok {
		return peekString(d.Entity, SmtpAddressField)
	}
	return peekString(d.Entity, PhoneNumberField)
}

func (d *NotificationDevice) Undeletable(ctx context.Context) (bool, error) {
	return d.GetBool(ctx, UndeletableField)
}

func (d *NotificationDevice) SetActive(b bool) error { return d.Set(ActiveField, b) }
