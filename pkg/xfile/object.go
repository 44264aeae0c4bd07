package xfile

// ValueKind identifies the shape of a parsed member value.
type ValueKind uint8

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueGUID
	ValueArray
	ValueObject
)

// Value is one parsed member value: a primitive, a homogeneous array, or a
// nested inline object.
type Value struct {
	Kind   ValueKind
	Int    int64
	Float  float64
	Str    string
	Array  []Value
	Object *DataObject
}

// AsFloat returns the numeric value of an int or float Value.
func (v Value) AsFloat() float64 {
	if v.Kind == ValueInt {
		return float64(v.Int)
	}
	return v.Float
}

// MemberValue pairs a schema member name with its parsed value.
type MemberValue struct {
	Name  string
	Value Value
}

// Reference is an unresolved `{ name-or-guid }` child, recorded during
// parsing and resolved by the scene builder.
type Reference struct {
	Name   string
	GUID   string
	Offset int
}

// DataObject is a parsed instance of a template. Members follow the schema's
// declared order; Children holds nested named objects of open templates.
// DataObjects are transient: the scene builder consumes them and they are
// dropped.
type DataObject struct {
	Template string
	Name     string
	GUID     string
	Members  []MemberValue
	Children []*DataObject
	Refs     []Reference
	Offset   int
}

// Member returns the named member value, or false if absent.
func (o *DataObject) Member(name string) (Value, bool) {
	for i := range o.Members {
		if o.Members[i].Name == name {
			return o.Members[i].Value, true
		}
	}
	return Value{}, false
}

// Int returns the named integer member, or def if absent.
func (o *DataObject) Int(name string, def int64) int64 {
	if v, ok := o.Member(name); ok && v.Kind == ValueInt {
		return v.Int
	}
	return def
}

// ChildrenNamed returns all direct children of the given template.
func (o *DataObject) ChildrenNamed(template string) []*DataObject {
	var out []*DataObject
	for _, c := range o.Children {
		if c.Template == template {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child of the given template, or nil.
func (o *DataObject) FirstChild(template string) *DataObject {
	for _, c := range o.Children {
		if c.Template == template {
			return c
		}
	}
	return nil
}

// Document is the parsed object tree of one .X file.
type Document struct {
	Header  Header
	Objects []*DataObject
}
