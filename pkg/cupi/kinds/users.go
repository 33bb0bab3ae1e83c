package kinds

import (
	"context"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
)

const (
	DtmfAccessIdField    string = "DtmfAccessId"
	ListInDirectoryField string = "ListInDirectory"
)

var UserPolicy = fields.NewPolicy("User", ObjectIdField, AliasField,
	fields.NewImmutable(ObjectIdField, fields.String),
	fields.NewMutable(AliasField, fields.String, fields.Required),
	fields.NewMutable(DisplayNameField, fields.String),
	fields.NewMutable("FirstName", fields.String),
	fields.NewMutable("LastName", fields.String),
	fields.NewMutable(DtmfAccessIdField, fields.String, fields.Required),
	fields.NewMutable("EmailAddress", fields.String),
	fields.NewMutable("TimeZone", fields.Integer),
	fields.NewImmutable("CallHandlerObjectId", fields.Reference),
	fields.NewImmutable("MailboxStoreObjectId", fields.Reference),
	fields.NewImmutable(CreationTimeField, fields.Timestamp),
	fields.NewLazy(ListInDirectoryField, fields.Boolean),
	fields.NewLazy("IsVmEnrolled", fields.Boolean),
	fields.NewLazy(UndeletableField, fields.Boolean),
	fields.NewLazy(VoiceNameURIField, fields.Reference),
)

var UserResource = client.Resource{Path: "/vmrest/users", Policy: UserPolicy}

func Users(c *client.Client) *client.Repository {
	return c.Repository(UserResource)
}

type User struct {
	*entities.Entity
}

func NewUser(e *entities.Entity) *User {
	return &User{Entity: e}
}

func (u *User) Alias() string        { return peekString(u.Entity, AliasField) }
func (u *User) DisplayName() string  { return peekString(u.Entity, DisplayNameField) }
func (u *User) FirstName() string    { return peekString(u.Entity, "FirstName") }
func (u *User) LastName() string     { return peekString(u.Entity, "LastName") }
func (u *User) DtmfAccessId() string { return peekString(u.Entity, DtmfAccessIdField) }
func (u *User) EmailAddress() string { return peekString(u.Entity, "EmailAddress") }
func (u *User) TimeZone() int64      { return peekInt(u.Entity, "TimeZone") }

func (u *User) CreationTime() time.Time {
	return peekTime(u.Entity, CreationTimeField)
}

func (u *User) ListInDirectory(ctx context.Context) (bool, error) {
	return u.GetBool(ctx, ListInDirectoryField)
}

func (u *User) IsVmEnrolled(ctx context.Context) (bool, error) {
	return u.GetBool(ctx, "IsVmEnrolled")
}

func (u *User) VoiceNameURI(ctx context.Context) (string, error) {
	return u.GetString(ctx, VoiceNameURIField)
}

func (u *User) SetDisplayName(name string) error  { return u.Set(DisplayNameField, name) }
func (u *User) SetEmailAddress(addr string) error { return u.Set("EmailAddress", addr) }
func (u *User) SetListInDirectory(b bool) error   { return u.Set(ListInDirectoryField, b) }

// CreateUserFromTemplate creates a user with the mandatory alias and extension,
// letting the server fill in everything else from the named user template.
func CreateUserFromTemplate(ctx context.Context, repo *client.Repository, templateAlias, alias, extension string, optional types.Fields, opts ...client.CreateOption) (*client.CreateResult, error) {
	required := types.Fields{
		AliasField:        alias,
		DtmfAccessIdField: extension,
	}
	opts = append(opts, client.Template(templateAlias))
	return repo.Create(ctx, required, optional, opts...)
}

var UserTemplatePolicy = fields.NewPolicy("UserTemplate", ObjectIdField, AliasField,
	fields.NewImmutable(ObjectIdField, fields.String),
	fields.NewMutable(AliasField, fields.String, fields.Required),
	fields.NewMutable(DisplayNameField, fields.String, fields.Required),
	fields.NewMutable("TimeZone", fields.Integer),
	fields.NewLazy(ListInDirectoryField, fields.Boolean),
	fields.NewLazy("ClassOfServiceObjectId", fields.Reference),
	fields.NewLazy(UndeletableField, fields.Boolean),
)

var UserTemplateResource = client.Resource{Path: "/vmrest/usertemplates", Policy: UserTemplatePolicy}

func UserTemplates(c *client.Client) *client.Repository {
	return c.Repository(UserTemplateResource)
}

type UserTemplate struct {
	*entities.Entity
}

func NewUserTemplate(e *entities.Entity) *UserTemplate {
	return &UserTemplate{Entity: e}
}

func (t *UserTemplate) Alias() string       { return peekString(t.Entity, AliasField) }
func (t *UserTemplate) DisplayName() string { return peekString(t.Entity, DisplayNameField) }

func (t *UserTemplate) ClassOfServiceObjectId(ctx context.Context) (string, error) {
	return t.GetString(ctx, "ClassOfServiceObjectId")
}
