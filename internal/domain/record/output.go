package record

// Field is one named output value. Values are float32, int32, int8 (flags),
// uint32, uint64 or slices of float32, int32 and int8.
type Field struct {
	Name  string
	Value any
}

// Output is an ordered flat output record. Field order is the order of the
// first Set call for each name.
type Output struct {
	fields []Field
	index  map[string]int
}

// NewOutput returns an empty output record.
func NewOutput() *Output {
	return &Output{index: make(map[string]int)}
}

// Reset drops every field so the record can be rebuilt for the next event.
func (o *Output) Reset() {
	o.fields = o.fields[:0]
	for k := range o.index {
		delete(o.index, k)
	}
}

// Set stores a value, replacing an earlier value with the same name.
func (o *Output) Set(name string, v any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[name]; ok {
		o.fields[i].Value = v
		return
	}
	o.index[name] = len(o.fields)
	o.fields = append(o.fields, Field{Name: name, Value: v})
}

// Get returns the value stored under name.
func (o *Output) Get(name string) (any, bool) {
	i, ok := o.index[name]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

// Fields returns the fields in insertion order. The slice is owned by the
// record and only valid until the next Reset.
func (o *Output) Fields() []Field { return o.fields }

// Len returns the number of fields.
func (o *Output) Len() int { return len(o.fields) }

// Map returns a copy of the record as a map.
func (o *Output) Map() map[string]any {
	m := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Flag converts a boolean to the small-integer flag representation.
func Flag(b bool) int8 {
	if b {
		return 1
	}
	return 0
}
