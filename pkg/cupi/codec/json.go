package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
)

const JSONContentType string = "application/json"

const totalAttribute string = "@total"

type jsonCodec struct{}

// NewJSON returns a codec for the JSON representation. List payloads look like
// {"@total":"2","User":[{...},{...}]}, where a single result is given as an
// object rather than an array. Detail payloads are plain objects.
func NewJSON() types.Codec {
	return jsonCodec{}
}

func (jsonCodec) ContentType() string {
	return JSONContentType
}

func (c jsonCodec) Decode(payload []byte, tag string) (types.Fields, error) {
	obj, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}

	// tolerate detail payloads wrapped in their entity tag
	if len(obj) == 1 {
		if inner, ok := obj[tag].(map[string]any); ok {
			obj = inner
		}
	}

	return types.Fields(obj), nil
}

func (c jsonCodec) DecodeList(payload []byte, tag string) ([]types.Fields, int64, error) {
	obj, err := decodeObject(payload)
	if err != nil {
		return nil, 0, err
	}

	items := []types.Fields{}

	switch v := obj[tag].(type) {
	case nil:
	case map[string]any:
		items = append(items, types.Fields(v))
	case []any:
		for idx, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, 0, errors.NewProtocolError(
					fmt.Sprintf("element %d of %s list is a %T, not an object", idx, tag, item),
				)
			}
			items = append(items, types.Fields(m))
		}
	default:
		return nil, 0, errors.NewProtocolError(fmt.Sprintf("unexpected %T for %s list", v, tag))
	}

	total, err := parseTotal(obj[totalAttribute])
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (c jsonCodec) Encode(f types.Fields, tag string) ([]byte, error) {
	body := make(map[string]any, len(f))
	for name, v := range f {
		if t, ok := v.(time.Time); ok {
			body[name] = fields.Format(t)
			continue
		}
		body[name] = v
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", tag, err)
	}

	return b, nil
}

func decodeObject(payload []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errors.NewProtocolError("empty response payload")
	}

	d := json.NewDecoder(bytes.NewReader(payload))
	d.UseNumber()

	var obj map[string]any
	err := d.Decode(&obj)
	if err != nil {
		return nil, errors.NewProtocolError(fmt.Sprintf("failed to unmarshal response payload: %s", err.Error()))
	}

	if obj == nil {
		return nil, errors.NewProtocolError("response payload is not an object")
	}

	return obj, nil
}

// UnknownTotal is reported when a list payload does not state the total
// number of matching results.
const UnknownTotal int64 = -1

func parseTotal(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return UnknownTotal, nil
	case string:
		total, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.NewProtocolError(fmt.Sprintf("invalid result total %q", t))
		}
		return total, nil
	case json.Number:
		total, err := t.Int64()
		if err != nil {
			return 0, errors.NewProtocolError(fmt.Sprintf("invalid result total %q", t.String()))
		}
		return total, nil
	}

	return 0, errors.NewProtocolError(fmt.Sprintf("invalid result total of type %T", v))
}
