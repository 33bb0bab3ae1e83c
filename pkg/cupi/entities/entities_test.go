package entities

import (
	"context"
	"errors"
	"testing"
	"time"

	cupierrors "github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	"github.com/matryer/is"
)

var testPolicy = fields.NewPolicy("DistributionList", "ObjectId", "Alias",
	fields.NewImmutable("ObjectId", fields.String),
	fields.NewMutable("Alias", fields.String, fields.Required),
	fields.NewMutable("DisplayName", fields.String, fields.Required),
	fields.NewMutable("AllowContacts", fields.Boolean),
	fields.NewLazy("VoiceNameURI", fields.Reference),
	fields.NewLazy("Undeletable", fields.Boolean),
	fields.NewImmutable("CreationTime", fields.Timestamp),
)

type loaderFunc func(ctx context.Context, id string) (types.Fields, error)

type countingLoader struct {
	calls int
	load  loaderFunc
}

func (l *countingLoader) RetrieveFields(ctx context.Context, id string) (types.Fields, error) {
	l.calls++
	return l.load(ctx, id)
}

func detailLoader(f types.Fields) *countingLoader {
	return &countingLoader{
		load: func(ctx context.Context, id string) (types.Fields, error) {
			return f, nil
		},
	}
}

func partialEntity(is *is.I, loader types.Loader) *Entity {
	e, err := NewFromFields(testPolicy, loader, types.Fields{
		"ObjectId":    "abc-123",
		"Alias":       "sales",
		"DisplayName": "Sales Team",
	}, false)
	is.NoErr(err)
	return e
}

func TestImmutableFieldIgnoresSecondWrite(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)

	err := e.Set("ObjectId", "other-id")

	is.NoErr(err) // writing an immutable field is not an error
	is.Equal(e.ID(), "abc-123")
	is.True(!e.HasPendingChanges())
}

func TestImmutableFieldAcceptsFirstWrite(t *testing.T) {
	is := is.New(t)
	e := New(testPolicy, nil)

	is.NoErr(e.Set("ObjectId", "abc-123"))
	is.NoErr(e.Set("ObjectId", "def-456"))

	is.Equal(e.ID(), "abc-123")
	is.True(!e.HasPendingChanges()) // immutable fields never become dirty
}

func TestSettingTheSameFieldTwiceKeepsItDirtyOnce(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)

	is.NoErr(e.Set("DisplayName", "New Name"))
	is.NoErr(e.Set("DisplayName", "Newer Name"))

	is.Equal(e.PendingChanges(), []string{"DisplayName"})
	is.Equal(e.Peek("DisplayName"), "Newer Name")
}

func TestWritingAnUnchangedValueStillMarksDirty(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)

	is.NoErr(e.Set("Alias", "sales"))

	is.Equal(e.PendingChanges(), []string{"Alias"})
}

func TestPopulationClearsPendingChanges(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)

	is.NoErr(e.Set("DisplayName", "Changed"))
	is.NoErr(e.Set("AllowContacts", true))
	is.True(e.HasPendingChanges())

	is.NoErr(e.PopulateFrom(types.Fields{"ObjectId": "abc-123", "DisplayName": "From Server"}, false))

	is.True(!e.HasPendingChanges())
	is.Equal(e.Peek("DisplayName"), "From Server")
	is.Equal(e.State(), Partial)
}

func TestPopulationCoercesWireValues(t *testing.T) {
	is := is.New(t)

	e, err := NewFromFields(testPolicy, nil, types.Fields{
		"ObjectId":      "abc-123",
		"AllowContacts": "true",
		"CreationTime":  "2013-03-19 18:43:34.593",
		"SomethingElse": "ignored",
	}, true)
	is.NoErr(err)

	is.Equal(e.Peek("AllowContacts"), true)
	is.Equal(e.Peek("SomethingElse"), nil) // unknown fields are skipped
	created, _ := e.GetTime(context.Background(), "CreationTime")
	is.Equal(created.Year(), 2013)
}

func TestPopulationRejectsMalformedValuesWithoutTouchingState(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)

	err := e.PopulateFrom(types.Fields{"DisplayName": "x", "AllowContacts": "perhaps"}, true)

	is.True(errors.Is(err, cupierrors.ErrProtocol))
	is.Equal(e.Peek("DisplayName"), "Sales Team")
	is.Equal(e.State(), Partial)
}

func TestReadingLazyFieldTwiceFetchesOnce(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	loader := detailLoader(types.Fields{
		"ObjectId":     "abc-123",
		"Alias":        "sales",
		"DisplayName":  "Sales Team",
		"VoiceNameURI": "/vmrest/distributionlists/abc-123/voicename",
	})
	e := partialEntity(is, loader)
	is.NoErr(e.Set("DisplayName", "Unsaved"))

	v, err := e.Get(ctx, "VoiceNameURI")
	is.NoErr(err)
	is.Equal(v, "/vmrest/distributionlists/abc-123/voicename")
	is.True(e.IsFullyLoaded())
	is.True(!e.HasPendingChanges()) // the lazy load is not a caller edit

	_, err = e.Get(ctx, "VoiceNameURI")
	is.NoErr(err)
	is.Equal(loader.calls, 1)
}

func TestReadingNonLazyFieldDoesNotFetch(t *testing.T) {
	is := is.New(t)
	loader := detailLoader(types.Fields{})
	e := partialEntity(is, loader)

	v, err := e.GetString(context.Background(), "Alias")

	is.NoErr(err)
	is.Equal(v, "sales")
	is.Equal(loader.calls, 0)
	is.Equal(e.State(), Partial)
}

func TestLocallyBuiltEntityNeverFetches(t *testing.T) {
	is := is.New(t)
	loader := detailLoader(types.Fields{})
	e := New(testPolicy, loader)
	is.NoErr(e.Set("VoiceNameURI", "/some/uri"))

	v, err := e.Get(context.Background(), "VoiceNameURI")

	is.NoErr(err)
	is.Equal(v, "/some/uri")
	is.Equal(loader.calls, 0)

	withID := New(testPolicy, loader)
	is.NoErr(withID.Set("ObjectId", "1a2b"))

	v, err = withID.Get(context.Background(), "Undeletable")

	is.NoErr(err)
	is.Equal(v, nil)
	is.Equal(loader.calls, 0) // an id alone does not make a caller built entity lazy load
	is.True(!withID.IsFullyLoaded())
}

func TestLazyLoadWithoutIDReturnsStaleValueAndNotFound(t *testing.T) {
	is := is.New(t)
	loader := detailLoader(types.Fields{})

	e, err := NewFromFields(testPolicy, loader, types.Fields{"Alias": "sales", "Undeletable": "false"}, false)
	is.NoErr(err)

	v, err := e.GetBool(context.Background(), "Undeletable")

	is.True(errors.Is(err, cupierrors.ErrNotFound))
	is.Equal(v, false)
	is.Equal(loader.calls, 0)
	is.Equal(e.State(), Partial)
}

func TestLazyLoadFailureIsSurfacedToTheReader(t *testing.T) {
	is := is.New(t)
	failure := cupierrors.NewTransportError("connection refused")
	loader := &countingLoader{
		load: func(ctx context.Context, id string) (types.Fields, error) {
			return nil, failure
		},
	}

	e, err := NewFromFields(testPolicy, loader, types.Fields{
		"ObjectId":     "abc-123",
		"VoiceNameURI": "/stale",
	}, false)
	is.NoErr(err)

	v, err := e.Get(context.Background(), "VoiceNameURI")

	is.True(errors.Is(err, cupierrors.ErrTransport))
	is.Equal(v, "/stale")
	is.True(!e.IsFullyLoaded())
}

func TestUnknownFieldsAreValidationErrors(t *testing.T) {
	is := is.New(t)
	e := New(testPolicy, nil)

	err := e.Set("Nope", "x")
	is.True(errors.Is(err, cupierrors.ErrValidation))

	_, err = e.Get(context.Background(), "Nope")
	is.True(errors.Is(err, cupierrors.ErrValidation))
}

func TestInvalidValueIsRejectedAndNotDirty(t *testing.T) {
	is := is.New(t)
	e := New(testPolicy, nil)

	err := e.Set("AllowContacts", "sometimes")

	is.True(errors.Is(err, cupierrors.ErrValidation))
	is.True(!e.HasPendingChanges())
}

func TestDirtySnapshotIsACopy(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)
	is.NoErr(e.Set("DisplayName", "A"))

	snapshot := e.DirtySnapshot()
	is.NoErr(e.Set("DisplayName", "B"))

	is.Equal(snapshot, types.Fields{"DisplayName": "A"})
}

func TestClearNamedPendingChanges(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)
	is.NoErr(e.Set("DisplayName", "A"))
	is.NoErr(e.Set("AllowContacts", false))

	e.ClearPendingChanges("DisplayName")

	is.Equal(e.PendingChanges(), []string{"AllowContacts"})
	is.Equal(e.Peek("DisplayName"), "A")
}

func TestStringUsesDeclarationOrder(t *testing.T) {
	is := is.New(t)
	e := partialEntity(is, nil)
	is.NoErr(e.Set("AllowContacts", true))

	is.Equal(e.String(), "DistributionList{ObjectId=abc-123, Alias=sales, DisplayName=Sales Team, AllowContacts=true}")
}

func TestDecodeIntoStruct(t *testing.T) {
	is := is.New(t)

	e, err := NewFromFields(testPolicy, nil, types.Fields{
		"ObjectId":      "abc-123",
		"Alias":         "sales",
		"AllowContacts": "true",
		"CreationTime":  "2020-01-02 03:04:05.000",
	}, true)
	is.NoErr(err)

	out := struct {
		ID            string    `cupi:"ObjectId"`
		Alias         string    `cupi:"Alias"`
		AllowContacts bool      `cupi:"AllowContacts"`
		CreationTime  time.Time `cupi:"CreationTime"`
	}{}

	is.NoErr(Decode(e, &out))
	is.Equal(out.ID, "abc-123")
	is.Equal(out.Alias, "sales")
	is.True(out.AllowContacts)
	is.Equal(out.CreationTime.Year(), 2020)
}
