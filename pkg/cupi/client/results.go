package client

import (
	"github.com/diwise/cupi-client/pkg/cupi/entities"
)

// ListResult holds one page of entities. TotalCount is -1 when the server did
// not report the number of matching results.
type ListResult struct {
	Entities   []*entities.Entity
	TotalCount int64
}

type CreateResult struct {
	location string
	id       string
	entity   *entities.Entity
}

func (r CreateResult) Location() string {
	return r.location
}

// ID is empty when the server accepted the create request without telling us
// the identity of the new resource.
func (r CreateResult) ID() string {
	return r.id
}

// Entity is only set when the created entity was requested with ReturnCreated.
func (r CreateResult) Entity() *entities.Entity {
	return r.entity
}

type createOptions struct {
	returnCreated bool
	template      string
}

type CreateOption func(*createOptions)

// ReturnCreated fetches the new resource after it has been created.
func ReturnCreated() CreateOption {
	return func(o *createOptions) {
		o.returnCreated = true
	}
}

// Template asks the server to create the resource based on a named template.
func Template(alias string) CreateOption {
	return func(o *createOptions) {
		o.template = alias
	}
}

type updateOptions struct {
	refetch bool
}

type UpdateOption func(*updateOptions)

// Refetch reloads the complete entity after a successful update.
func Refetch() UpdateOption {
	return func(o *updateOptions) {
		o.refetch = true
	}
}
