package fields

// Policy is the static field table of one entity type. Field order is the
// declaration order and is used for diagnostics.
type Policy struct {
	tag      string
	idField  string
	keyField string
	fields   []Field
	index    map[string]int
}

// NewPolicy declares the fields of the entity named tag. idField names the
// server assigned identifier and keyField the alternate lookup key, if any.
func NewPolicy(tag, idField, keyField string, fields ...Field) *Policy {
	p := &Policy{
		tag:      tag,
		idField:  idField,
		keyField: keyField,
		fields:   make([]Field, 0, len(fields)),
		index:    make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if idx, ok := p.index[f.Name]; ok {
			p.fields[idx] = f
			continue
		}
		p.index[f.Name] = len(p.fields)
		p.fields = append(p.fields, f)
	}

	return p
}

func (p *Policy) Tag() string      { return p.tag }
func (p *Policy) IDField() string  { return p.idField }
func (p *Policy) KeyField() string { return p.keyField }

func (p *Policy) Lookup(name string) (Field, bool) {
	idx, ok := p.index[name]
	if !ok {
		return Field{}, false
	}
	return p.fields[idx], true
}

func (p *Policy) Classify(name string) (Kind, bool) {
	f, ok := p.Lookup(name)
	return f.Kind, ok
}

// MarksDirty reports whether writing the field adds it to the dirty set.
func (p *Policy) MarksDirty(name string) bool {
	k, ok := p.Classify(name)
	return ok && k != Immutable
}

// RequiresFullFetch reports whether reading the field on a partially loaded
// entity must fetch the complete resource first.
func (p *Policy) RequiresFullFetch(name string) bool {
	k, ok := p.Classify(name)
	return ok && k == LazyMutable
}

func (p *Policy) Fields() []Field {
	fields := make([]Field, len(p.fields))
	copy(fields, p.fields)
	return fields
}

func (p *Policy) Required() []string {
	required := []string{}
	for _, f := range p.fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}
