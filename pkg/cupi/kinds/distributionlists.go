package kinds

import (
	"context"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
)

const AllowContactsField string = "AllowContacts"

var DistributionListPolicy = fields.NewPolicy("DistributionList", ObjectIdField, AliasField,
	fields.NewImmutable(ObjectIdField, fields.String),
	fields.NewMutable(AliasField, fields.String, fields.Required),
	fields.NewMutable(DisplayNameField, fields.String, fields.Required),
	fields.NewMutable("DtmfAccessId", fields.String),
	fields.NewMutable(AllowContactsField, fields.Boolean),
	fields.NewMutable("PartitionObjectId", fields.Reference),
	fields.NewImmutable(CreationTimeField, fields.Timestamp),
	fields.NewLazy("AllowForeignMessage", fields.Boolean),
	fields.NewLazy(UndeletableField, fields.Boolean),
	fields.NewLazy(VoiceNameURIField, fields.Reference),
)

var DistributionListResource = client.Resource{Path: "/vmrest/distributionlists", Policy: DistributionListPolicy}

func DistributionLists(c *client.Client) *client.Repository {
	return c.Repository(DistributionListResource)
}

type DistributionList struct {
	*entities.Entity
}

func NewDistributionList(e *entities.Entity) *DistributionList {
	return &DistributionList{Entity: e}
}

func (d *DistributionList) Alias() string           { return peekString(d.Entity, AliasField) }
func (d *DistributionList) DisplayName() string     { return peekString(d.Entity, DisplayNameField) }
func (d *DistributionList) AllowContacts() bool     { return peekBool(d.Entity, AllowContactsField) }
func (d *DistributionList) CreationTime() time.Time { return peekTime(d.Entity, CreationTimeField) }

func (d *DistributionList) Undeletable(ctx context.Context) (bool, error) {
	return d.GetBool(ctx, UndeletableField)
}

func (d *DistributionList) VoiceNameURI(ctx context.Context) (string, error) {
	return d.GetString(ctx, VoiceNameURIField)
}

func (d *DistributionList) SetDisplayName(name string) error { return d.Set(DisplayNameField, name) }
func (d *DistributionList) SetAllowContacts(b bool) error    { return d.Set(AllowContactsField, b) }
