package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository performs the remote operations for one kind of entity. Entities
// created or fetched by a repository keep a reference to it so that they can
// load withheld fields on demand.
type Repository struct {
	client   *Client
	resource Resource
}

func (r *Repository) Resource() Resource {
	return r.resource
}

// New returns an empty entity that is bound to this repository.
func (r *Repository) New() *entities.Entity {
	return entities.New(r.resource.Policy, r)
}

func (r *Repository) List(ctx context.Context, params ...RequestDecoratorFunc) (*ListResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "list-entities",
		trace.WithAttributes(attribute.String(TraceAttributeResource, r.resource.Path)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	queryParams := []string{}
	for _, decorate := range params {
		queryParams = decorate(queryParams)
	}

	endpoint := r.collectionURL()
	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + strings.Join(queryParams, "&")
	}

	resp, err := r.client.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	items, total, err := r.client.codec.DecodeList(resp.Body, r.resource.Policy.Tag())
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Entities:   make([]*entities.Entity, 0, len(items)),
		TotalCount: total,
	}

	for _, item := range items {
		var e *entities.Entity
		e, err = entities.NewFromFields(r.resource.Policy, r, item, false)
		if err != nil {
			return nil, err
		}
		result.Entities = append(result.Entities, e)
	}

	return result, nil
}

// RetrieveFields fetches the complete field set of a single resource.
func (r *Repository) RetrieveFields(ctx context.Context, id string) (types.Fields, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-entity",
		trace.WithAttributes(attribute.String(TraceAttributeResource, r.resource.Path)),
		trace.WithAttributes(attribute.String(TraceAttributeEntityID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if strings.TrimSpace(id) == "" {
		err = errors.NewValidationError("an id is required to retrieve a " + r.resource.Policy.Tag())
		return nil, err
	}

	resp, err := r.client.do(ctx, http.MethodGet, r.entityURL(id), nil)
	if err != nil {
		return nil, err
	}

	f, err := r.client.codec.Decode(resp.Body, r.resource.Policy.Tag())
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Entity, error) {
	f, err := r.RetrieveFields(ctx, id)
	if err != nil {
		return nil, err
	}

	return entities.NewFromFields(r.resource.Policy, r, f, true)
}

// GetByAlternateKey resolves key to an id through a filtered list request and
// then fetches the matching entity. When several candidates match the key
// without regard to case, the first one in response order wins.
func (r *Repository) GetByAlternateKey(ctx context.Context, key string) (*entities.Entity, error) {
	keyField := r.resource.Policy.KeyField()

	if strings.TrimSpace(key) == "" {
		return nil, errors.NewValidationError("an alternate key is required")
	}

	if keyField == "" {
		return nil, errors.NewValidationError(r.resource.Policy.Tag() + " has no alternate key")
	}

	candidates, err := r.List(ctx, Where(strings.ToLower(keyField), "is", key))
	if err != nil {
		return nil, err
	}

	for _, e := range candidates.Entities {
		value, ok := e.Peek(keyField).(string)
		if ok && strings.EqualFold(value, key) {
			return r.GetByID(ctx, e.ID())
		}
	}

	return nil, errors.NewNotFoundError(fmt.Sprintf("no %s with %s %q", r.resource.Policy.Tag(), keyField, key))
}

// Get fetches an entity by id if one is given, or else by its alternate key.
func (r *Repository) Get(ctx context.Context, id, key string) (*entities.Entity, error) {
	if strings.TrimSpace(id) != "" {
		return r.GetByID(ctx, id)
	}

	if strings.TrimSpace(key) != "" {
		return r.GetByAlternateKey(ctx, key)
	}

	return nil, errors.NewValidationError("either an id or an alternate key is required")
}

// Create validates and submits a new resource. The fields in required must
// all be non empty, along with the fields that the policy marks as required.
//
// If the server accepts the request but the new id cannot be determined, the
// returned error matches both ErrProtocol and ErrCreatedWithoutID. Unless
// ReturnCreated was requested, a result holding whatever location was
// returned accompanies the error.
func (r *Repository) Create(ctx context.Context, required, optional types.Fields, opts ...CreateOption) (*CreateResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-entity",
		trace.WithAttributes(attribute.String(TraceAttributeResource, r.resource.Path)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	options := &createOptions{}
	for _, opt := range opts {
		opt(options)
	}

	payload, err := r.validateCreate(required, optional)
	if err != nil {
		return nil, err
	}

	body, err := r.client.codec.Encode(payload, r.resource.Policy.Tag())
	if err != nil {
		return nil, err
	}

	endpoint := r.collectionURL()
	if options.template != "" {
		endpoint = endpoint + "?" + strings.Join(Param("templateAlias", options.template)(nil), "&")
	}

	resp, err := r.client.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	location := resp.Location
	if location == "" {
		log := logging.GetFromContext(ctx)
		log.Warn("server failed to provide a location header with created response", "resource", r.resource.Path)
		location = strings.Trim(strings.TrimSpace(string(resp.Body)), `"`)
	}

	id, ok := parseResourceIDFromURL(location)
	if !ok {
		err = errors.NewCreatedWithoutIDError(
			fmt.Sprintf("%s was created but the response did not identify it", r.resource.Policy.Tag()),
		)
		if options.returnCreated {
			return nil, err
		}
		return &CreateResult{location: location}, err
	}

	span.SetAttributes(attribute.String(TraceAttributeEntityID, id))

	result := &CreateResult{
		location: location,
		id:       id,
	}

	if options.returnCreated {
		result.entity, err = r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Update submits the pending changes of e. Only the names that were submitted
// are cleared from the entity on success, and nothing is cleared on failure.
func (r *Repository) Update(ctx context.Context, e *entities.Entity, opts ...UpdateOption) error {
	var err error

	if e == nil {
		return errors.NewValidationError("cannot update a nil entity")
	}

	id := e.ID()

	ctx, span := tracer.Start(ctx, "update-entity",
		trace.WithAttributes(attribute.String(TraceAttributeResource, r.resource.Path)),
		trace.WithAttributes(attribute.String(TraceAttributeEntityID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	options := &updateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if strings.TrimSpace(id) == "" {
		err = errors.NewValidationError("cannot update a " + r.resource.Policy.Tag() + " without an id")
		return err
	}

	if !e.HasPendingChanges() {
		err = errors.NewNoPendingChangesError(fmt.Sprintf("%s %s has no pending changes", r.resource.Policy.Tag(), id))
		return err
	}

	snapshot := e.DirtySnapshot()

	body, err := r.client.codec.Encode(snapshot, r.resource.Policy.Tag())
	if err != nil {
		return err
	}

	_, err = r.client.do(ctx, http.MethodPut, r.entityURL(id), body)
	if err != nil {
		return err
	}

	submitted := make([]string, 0, len(snapshot))
	for name := range snapshot {
		submitted = append(submitted, name)
	}
	e.ClearPendingChanges(submitted...)

	if options.refetch {
		err = e.Refresh(ctx)
	}

	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	var err error

	ctx, span := tracer.Start(ctx, "delete-entity",
		trace.WithAttributes(attribute.String(TraceAttributeResource, r.resource.Path)),
		trace.WithAttributes(attribute.String(TraceAttributeEntityID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if strings.TrimSpace(id) == "" {
		err = errors.NewValidationError("an id is required to delete a " + r.resource.Policy.Tag())
		return err
	}

	_, err = r.client.do(ctx, http.MethodDelete, r.entityURL(id), nil)
	return err
}

func (r *Repository) validateCreate(required, optional types.Fields) (types.Fields, error) {
	policy := r.resource.Policy
	payload := types.Fields{}

	var result error

	merged := optional.Copy()
	for name, value := range required {
		merged[name] = value
	}

	for name, value := range merged {
		field, ok := policy.Lookup(name)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%s: unknown field", name))
			continue
		}

		v, err := fields.Coerce(field.Type, value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if v != nil {
			payload[name] = v
		}
	}

	mandatory := map[string]struct{}{}
	for _, name := range policy.Required() {
		mandatory[name] = struct{}{}
	}
	for name := range required {
		mandatory[name] = struct{}{}
	}

	names := make([]string, 0, len(mandatory))
	for name := range mandatory {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := validateRequired(payload[name])
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	if result != nil {
		return nil, errors.NewValidationError(
			fmt.Sprintf("invalid %s: %s", policy.Tag(), result.Error()),
		)
	}

	return payload, nil
}

func validateRequired(value any) error {
	switch value.(type) {
	case bool, int64:
		return validation.Validate(value, validation.NotNil)
	}
	return validation.Validate(value, validation.Required)
}

func (r *Repository) collectionURL() string {
	return r.client.baseURL + r.resource.Path
}

func (r *Repository) entityURL(id string) string {
	return r.collectionURL() + "/" + url.PathEscape(id)
}

// parseResourceIDFromURL returns the trailing path segment of a location.
func parseResourceIDFromURL(location string) (string, bool) {
	if location == "" || strings.ContainsAny(location, " \t\r\n<>{}") {
		return "", false
	}

	if u, err := url.Parse(location); err == nil {
		location = u.Path
	}

	location = strings.TrimSuffix(location, "/")
	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return "", false
	}

	id, err := url.PathUnescape(location[idx+1:])
	if err != nil || id == "" {
		return "", false
	}

	return id, true
}
