package entities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
)

type State int

const (
	// Uninitialized entities were built locally and never populated from the server.
	Uninitialized State = iota
	// Partial entities were populated from a list payload with a reduced field set.
	Partial
	// Full entities were populated from a detail payload.
	Full
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Partial:
		return "partial"
	case Full:
		return "full"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Entity is the local mirror of a single remote resource. It tracks the fields
// changed by the caller so that only those are submitted on update, and loads
// withheld fields on demand when it was populated from a list payload.
//
// An Entity is not safe for concurrent use.
type Entity struct {
	policy  *fields.Policy
	loader  types.Loader
	values  types.Fields
	changes *ChangeTracker
	state   State
}

// New creates an empty entity. The loader is used to fetch the complete
// resource on lazy upgrade and may be shared between many entities.
func New(policy *fields.Policy, loader types.Loader) *Entity {
	return &Entity{
		policy:  policy,
		loader:  loader,
		values:  types.Fields{},
		changes: NewChangeTracker(),
		state:   Uninitialized,
	}
}

// NewFromFields creates an entity populated from a decoded server payload.
func NewFromFields(policy *fields.Policy, loader types.Loader, f types.Fields, detail bool) (*Entity, error) {
	e := New(policy, loader)

	err := e.PopulateFrom(f, detail)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Entity) Policy() *fields.Policy {
	return e.policy
}

func (e *Entity) ID() string {
	id, _ := e.values[e.policy.IDField()].(string)
	return id
}

func (e *Entity) State() State {
	return e.state
}

func (e *Entity) IsFullyLoaded() bool {
	return e.state == Full
}

// Peek returns the stored value of a field without triggering a lazy load.
func (e *Entity) Peek(name string) any {
	return e.values[name]
}

// Get returns the value of a field. Reading a lazy field on a partially
// loaded entity fetches the complete resource first. If that fetch fails the
// stored value is returned together with the error. Entities that were never
// populated from the server, such as those built by the caller, never lazy
// load and return whatever has been stored locally.
func (e *Entity) Get(ctx context.Context, name string) (any, error) {
	if _, ok := e.policy.Lookup(name); !ok {
		return nil, e.unknownField(name)
	}

	if e.state == Partial && e.policy.RequiresFullFetch(name) {
		err := e.Refresh(ctx)
		if err != nil {
			return e.values[name], err
		}
	}

	return e.values[name], nil
}

func (e *Entity) GetString(ctx context.Context, name string) (string, error) {
	v, err := e.Get(ctx, name)
	s, _ := v.(string)
	return s, err
}

func (e *Entity) GetInt(ctx context.Context, name string) (int64, error) {
	v, err := e.Get(ctx, name)
	i, _ := v.(int64)
	return i, err
}

func (e *Entity) GetBool(ctx context.Context, name string) (bool, error) {
	v, err := e.Get(ctx, name)
	b, _ := v.(bool)
	return b, err
}

func (e *Entity) GetTime(ctx context.Context, name string) (time.Time, error) {
	v, err := e.Get(ctx, name)
	t, _ := v.(time.Time)
	return t, err
}

// Refresh replaces all fields with the complete resource as currently known
// by the server. Pending changes are discarded.
func (e *Entity) Refresh(ctx context.Context) error {
	id := e.ID()
	if id == "" {
		return errors.NewNotFoundError(
			fmt.Sprintf("unable to load %s without %s", e.policy.Tag(), e.policy.IDField()),
		)
	}

	if e.loader == nil {
		return errors.NewNotFoundError(fmt.Sprintf("%s %s is not bound to a server", e.policy.Tag(), id))
	}

	f, err := e.loader.RetrieveFields(ctx, id)
	if err != nil {
		return err
	}

	return e.PopulateFrom(f, true)
}

// Set assigns a value to a field. Immutable fields only accept a value while
// they are unset and silently ignore later writes. All other fields are
// marked dirty on every write.
func (e *Entity) Set(name string, value any) error {
	f, ok := e.policy.Lookup(name)
	if !ok {
		return e.unknownField(name)
	}

	v, err := fields.Coerce(f.Type, value)
	if err != nil {
		return errors.NewValidationError(
			fmt.Sprintf("invalid value for %s.%s: %s", e.policy.Tag(), name, err.Error()),
		)
	}

	if f.Kind == fields.Immutable {
		if fields.IsEmpty(e.values[name]) {
			e.values[name] = v
		}
		return nil
	}

	e.values[name] = v
	e.changes.MarkDirty(name)

	return nil
}

// PopulateFrom assigns the recognized fields of a server payload without
// marking them dirty. A detail payload replaces every stored value and makes
// the entity fully loaded, a list payload is merged into the stored values
// and leaves the entity partially loaded. Pending changes are always cleared.
func (e *Entity) PopulateFrom(f types.Fields, detail bool) error {
	coerced := make(types.Fields, len(f))

	for name, raw := range f {
		field, ok := e.policy.Lookup(name)
		if !ok {
			continue
		}

		v, err := fields.Coerce(field.Type, raw)
		if err != nil {
			return errors.NewProtocolError(
				fmt.Sprintf("unexpected value for %s.%s: %s", e.policy.Tag(), name, err.Error()),
			)
		}

		coerced[name] = v
	}

	if detail {
		e.values = coerced
		e.state = Full
	} else {
		for name, v := range coerced {
			e.values[name] = v
		}
		e.state = Partial
	}

	e.changes.Clear()

	return nil
}

// ClearPendingChanges forgets the named dirty fields, or all of them if no
// names are given. Stored values are left untouched.
func (e *Entity) ClearPendingChanges(names ...string) {
	if len(names) == 0 {
		e.changes.Clear()
		return
	}
	e.changes.ClearFields(names...)
}

func (e *Entity) HasPendingChanges() bool {
	return e.changes.HasChanges()
}

func (e *Entity) PendingChanges() []string {
	return e.changes.DirtyFields()
}

// DirtySnapshot returns a copy of the current values of all dirty fields.
func (e *Entity) DirtySnapshot() types.Fields {
	snapshot := make(types.Fields, e.changes.Count())
	for _, name := range e.changes.DirtyFields() {
		snapshot[name] = e.values[name]
	}
	return snapshot
}

// ForEachField calls callback for every declared field in declaration order,
// with the stored value or nil.
func (e *Entity) ForEachField(callback func(f fields.Field, value any)) {
	for _, f := range e.policy.Fields() {
		callback(f, e.values[f.Name])
	}
}

func (e *Entity) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.policy.Tag())
	sb.WriteString("{")

	first := true
	e.ForEachField(func(f fields.Field, value any) {
		if value == nil {
			return
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(f.Name)
		sb.WriteString("=")
		sb.WriteString(fields.Format(value))
	})

	sb.WriteString("}")
	return sb.String()
}

func (e *Entity) unknownField(name string) error {
	return errors.NewValidationError(fmt.Sprintf("%s has no field named %q", e.policy.Tag(), name))
}
