package fields

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"
)

func testPolicy() *Policy {
	return NewPolicy("DistributionList", "ObjectId", "Alias",
		NewImmutable("ObjectId", String),
		NewMutable("Alias", String, Required),
		NewMutable("DisplayName", String, Required),
		NewLazy("VoiceNameURI", Reference),
		NewImmutable("CreationTime", Timestamp),
	)
}

func TestClassify(t *testing.T) {
	is := is.New(t)
	p := testPolicy()

	k, ok := p.Classify("ObjectId")
	is.True(ok)
	is.Equal(k, Immutable)

	k, _ = p.Classify("DisplayName")
	is.Equal(k, Mutable)

	k, _ = p.Classify("VoiceNameURI")
	is.Equal(k, LazyMutable)

	_, ok = p.Classify("NoSuchField")
	is.True(!ok) // unknown fields are not classified
}

func TestDirtyAndFetchRules(t *testing.T) {
	is := is.New(t)
	p := testPolicy()

	is.True(!p.MarksDirty("ObjectId"))
	is.True(p.MarksDirty("Alias"))
	is.True(p.MarksDirty("VoiceNameURI"))
	is.True(!p.MarksDirty("NoSuchField"))

	is.True(p.RequiresFullFetch("VoiceNameURI"))
	is.True(!p.RequiresFullFetch("Alias"))
}

func TestFieldsKeepDeclarationOrder(t *testing.T) {
	is := is.New(t)
	p := testPolicy()

	names := []string{}
	for _, f := range p.Fields() {
		names = append(names, f.Name)
	}

	is.Equal(names, []string{"ObjectId", "Alias", "DisplayName", "VoiceNameURI", "CreationTime"})
	is.Equal(p.Required(), []string{"Alias", "DisplayName"})
}

func TestRedeclaredFieldReplacesEarlierDeclaration(t *testing.T) {
	is := is.New(t)

	p := NewPolicy("T", "ObjectId", "", NewMutable("A", String), NewLazy("A", String))

	is.Equal(len(p.Fields()), 1)
	is.True(p.RequiresFullFetch("A"))
}

func TestCoerceWireStrings(t *testing.T) {
	is := is.New(t)

	v, err := Coerce(Boolean, "true")
	is.NoErr(err)
	is.Equal(v, true)

	v, err = Coerce(Integer, " 42 ")
	is.NoErr(err)
	is.Equal(v, int64(42))

	v, err = Coerce(Integer, json.Number("7"))
	is.NoErr(err)
	is.Equal(v, int64(7))

	v, err = Coerce(Timestamp, "2013-03-19 18:43:34.593")
	is.NoErr(err)
	is.True(v.(time.Time).Equal(time.Date(2013, 3, 19, 18, 43, 34, 593000000, time.UTC)))

	v, err = Coerce(Integer, "")
	is.NoErr(err)
	is.Equal(v, nil)
}

func TestCoerceRejectsMismatchedTypes(t *testing.T) {
	is := is.New(t)

	_, err := Coerce(Boolean, "maybe")
	is.True(err != nil)

	_, err = Coerce(Integer, 1.5)
	is.True(err != nil)

	_, err = Coerce(String, []string{"a"})
	is.True(err != nil)
}

func TestFormat(t *testing.T) {
	is := is.New(t)

	is.Equal(Format(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)), "2020-01-02 03:04:05.000")
	is.Equal(Format(true), "true")
	is.Equal(Format(int64(12)), "12")
	is.Equal(Format(nil), "")
}

func TestIsEmpty(t *testing.T) {
	is := is.New(t)

	is.True(IsEmpty(nil))
	is.True(IsEmpty(""))
	is.True(IsEmpty(time.Time{}))
	is.True(!IsEmpty(false))
	is.True(!IsEmpty(int64(0)))
}
