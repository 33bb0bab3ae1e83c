package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/diwise/cupi-client/pkg/cupi/errors"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/types"
)

const XMLContentType string = "application/xml"

type xmlCodec struct{}

// NewXML returns a codec for the legacy XML representation, where every field
// is wrapped in an element of the same name: <Alias>sales</Alias>. List
// payloads carry the result count in a total attribute on the root element.
func NewXML() types.Codec {
	return xmlCodec{}
}

func (xmlCodec) ContentType() string {
	return XMLContentType
}

type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n node) fields() types.Fields {
	f := types.Fields{}
	for _, child := range n.Nodes {
		if len(child.Nodes) > 0 {
			// nested resources are not part of the flat field set
			continue
		}
		f[child.XMLName.Local] = child.Content
	}
	return f
}

func (n node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (c xmlCodec) Decode(payload []byte, tag string) (types.Fields, error) {
	root, err := decodeNode(payload)
	if err != nil {
		return nil, err
	}

	if root.XMLName.Local != tag {
		return nil, errors.NewProtocolError(
			fmt.Sprintf("expected element <%s> but found <%s>", tag, root.XMLName.Local),
		)
	}

	return root.fields(), nil
}

func (c xmlCodec) DecodeList(payload []byte, tag string) ([]types.Fields, int64, error) {
	root, err := decodeNode(payload)
	if err != nil {
		return nil, 0, err
	}

	items := []types.Fields{}
	for _, child := range root.Nodes {
		if child.XMLName.Local == tag {
			items = append(items, child.fields())
		}
	}

	var total any
	if t, ok := root.attr("total"); ok {
		total = t
	}

	count, err := parseTotal(total)
	if err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (c xmlCodec) Encode(f types.Fields, tag string) ([]byte, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := &bytes.Buffer{}
	enc := xml.NewEncoder(buf)

	root := xml.StartElement{Name: xml.Name{Local: tag}}
	err := enc.EncodeToken(root)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", tag, err)
	}

	for _, name := range names {
		err = enc.EncodeElement(fields.Format(f[name]), xml.StartElement{Name: xml.Name{Local: name}})
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s.%s: %w", tag, name, err)
		}
	}

	err = enc.EncodeToken(root.End())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", tag, err)
	}

	err = enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", tag, err)
	}

	return buf.Bytes(), nil
}

func decodeNode(payload []byte) (*node, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errors.NewProtocolError("empty response payload")
	}

	root := &node{}
	err := xml.Unmarshal(payload, root)
	if err != nil {
		return nil, errors.NewProtocolError(fmt.Sprintf("failed to unmarshal response payload: %s", err.Error()))
	}

	return root, nil
}
