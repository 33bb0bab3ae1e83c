package fields

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Kind decides how writes and reads of a field are treated by an entity.
type Kind int

const (
	// Immutable fields are assigned once. Later writes are ignored.
	Immutable Kind = iota
	// Mutable fields are marked dirty on every write.
	Mutable
	// LazyMutable fields are mutable, but withheld from list payloads. Reading
	// one on a partially loaded entity fetches the complete resource first.
	LazyMutable
)

func (k Kind) String() string {
	switch k {
	case Immutable:
		return "immutable"
	case Mutable:
		return "mutable"
	case LazyMutable:
		return "lazy"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type ValueType int

const (
	String ValueType = iota
	Integer
	Boolean
	Timestamp
	Reference
)

func (t ValueType) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Timestamp:
		return "timestamp"
	case Reference:
		return "reference"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// TimestampLayout is the format the server uses for timestamps on the wire.
const TimestampLayout string = "2006-01-02 15:04:05.000"

type Field struct {
	Name     string
	Kind     Kind
	Type     ValueType
	Required bool
}

type FieldOption func(f *Field)

// Required marks a field as mandatory when creating a new resource.
func Required(f *Field) {
	f.Required = true
}

func newField(name string, kind Kind, typ ValueType, options ...FieldOption) Field {
	f := Field{Name: name, Kind: kind, Type: typ}
	for _, option := range options {
		option(&f)
	}
	return f
}

func NewImmutable(name string, typ ValueType, options ...FieldOption) Field {
	return newField(name, Immutable, typ, options...)
}

func NewMutable(name string, typ ValueType, options ...FieldOption) Field {
	return newField(name, Mutable, typ, options...)
}

func NewLazy(name string, typ ValueType, options ...FieldOption) Field {
	return newField(name, LazyMutable, typ, options...)
}

// Coerce converts a wire or caller supplied value into the canonical
// representation for typ. Empty strings and nil coerce to nil for every type
// except String.
func Coerce(typ ValueType, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if s, ok := value.(string); ok && s == "" && typ != String && typ != Reference {
		return nil, nil
	}

	switch typ {
	case String, Reference:
		return coerceString(value)
	case Integer:
		return coerceInteger(value)
	case Boolean:
		return coerceBoolean(value)
	case Timestamp:
		return coerceTimestamp(value)
	}

	return nil, fmt.Errorf("unsupported value type %s", typ)
}

func coerceString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return nil, fmt.Errorf("cannot use %T as a string", value)
}

func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return nil, fmt.Errorf("cannot use %T as an integer", value)
}

func coerceBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	return nil, fmt.Errorf("cannot use %T as a boolean", value)
}

func coerceTimestamp(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return dateparse.ParseIn(strings.TrimSpace(v), time.UTC)
	}
	return nil, fmt.Errorf("cannot use %T as a timestamp", value)
}

// IsEmpty reports whether value counts as unset for first-write-wins fields.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}

// Format renders a canonical value the way the server expects it in text form.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(TimestampLayout)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprint(value)
}
