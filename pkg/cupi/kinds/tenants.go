package kinds

import (
	"context"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
)

var TenantPolicy = fields.NewPolicy("Tenant", ObjectIdField, AliasField,
	fields.NewImmutable(ObjectIdField, fields.String),
	fields.NewMutable(AliasField, fields.String, fields.Required),
	fields.NewMutable("Description", fields.String),
	fields.NewMutable("SmtpDomain", fields.String, fields.Required),
	fields.NewMutable("PilotNumber", fields.String),
	fields.NewImmutable("PartitionObjectId", fields.Reference),
	fields.NewImmutable("MailboxStoreObjectId", fields.Reference),
	fields.NewLazy("TimeZone", fields.Integer),
)

var TenantResource = client.Resource{Path: "/vmrest/tenants", Policy: TenantPolicy}

func Tenants(c *client.Client) *client.Repository {
	return c.Repository(TenantResource)
}

type Tenant struct {
	*entities.Entity
}

func NewTenant(e *entities.Entity) *Tenant {
	return &Tenant{Entity: e}
}

func (t *Tenant) Alias() string       { return peekString(t.Entity, AliasField) }
func (t *Tenant) Description() string { return peekString(t.Entity, "Description") }
func (t *Tenant) SmtpDomain() string  { return peekString(t.Entity, "SmtpDomain") }

func (t *Tenant) TimeZone(ctx context.Context) (int64, error) {
	return t.GetInt(ctx, "TimeZone")
}
