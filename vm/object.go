package vm

import "strings"

// ---------------------------------------------------------------------------
// Heap objects and the heap arena
// ---------------------------------------------------------------------------

// ObjectKind distinguishes heap object flavours.
type ObjectKind string

const (
	ObjObject ObjectKind = "object"
	ObjArray  ObjectKind = "array"
	ObjLambda ObjectKind = "lambda"
	ObjString ObjectKind = "string"
)

// Field is one named slot of a heap object. Map-like objects repurpose the
// field list as their entry table, with the stringified key as the name.
type Field struct {
	Name  string
	Type  string `cbor:",omitempty"`
	Value Value
}

// HeapObject is one allocation. Objects persist for the whole session;
// there is no reclamation.
type HeapObject struct {
	ID            int
	Kind          ObjectKind
	ClassName     string
	Fields        []Field `cbor:",omitempty"`
	ArrayElements []Value `cbor:",omitempty"`
	ArrayLength   int     `cbor:",omitempty"`
	ElemType      string  `cbor:",omitempty"`
	StringValue   string  `cbor:",omitempty"`
	LambdaInfo    string  `cbor:",omitempty"`
	Captured      []Value `cbor:",omitempty"`
	CreatedAtStep int
}

// GetField returns the named field value, or null when absent.
func (o *HeapObject) GetField(name string) Value {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			return o.Fields[i].Value
		}
	}
	return NullValue()
}

// HasField reports whether the named field exists.
func (o *HeapObject) HasField(name string) bool {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			return true
		}
	}
	return false
}

// SetField updates the named field, creating it if absent.
func (o *HeapObject) SetField(name string, value Value) {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields[i].Value = value
			return
		}
	}
	o.Fields = append(o.Fields, Field{Name: name, Value: value})
}

// RemoveField deletes the named field, reporting whether it existed.
func (o *HeapObject) RemoveField(name string) bool {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields = append(o.Fields[:i], o.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// UserFieldCount counts fields excluding internal $-prefixed bookkeeping.
func (o *HeapObject) UserFieldCount() int {
	n := 0
	for i := range o.Fields {
		if !strings.HasPrefix(o.Fields[i].Name, "$") {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Heap arena
// ---------------------------------------------------------------------------

// Heap is a flat arena of objects addressed by id. Ids start at 1 so that
// 0 can mean the null reference.
type Heap struct {
	Objects []*HeapObject
	NextID  int
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{NextID: 1}
}

// Alloc places obj in the arena and assigns its id.
func (h *Heap) Alloc(obj *HeapObject) int {
	obj.ID = h.NextID
	h.NextID++
	h.Objects = append(h.Objects, obj)
	return obj.ID
}

// Get returns the object with the given id, or nil.
func (h *Heap) Get(id int) *HeapObject {
	if id <= 0 || id > len(h.Objects) {
		return nil
	}
	return h.Objects[id-1]
}

// NewObject allocates a plain object of the given class.
func (h *Heap) NewObject(className string, step int) *HeapObject {
	obj := &HeapObject{
		Kind:          ObjObject,
		ClassName:     className,
		CreatedAtStep: step,
	}
	h.Alloc(obj)
	return obj
}

// NewArray allocates an array with every element defaulted.
func (h *Heap) NewArray(elemType string, length int, step int) *HeapObject {
	if length < 0 {
		length = 0
	}
	elems := make([]Value, length)
	for i := range elems {
		elems[i] = DefaultValue(elemType)
	}
	obj := &HeapObject{
		Kind:          ObjArray,
		ClassName:     elemType + "[]",
		ArrayElements: elems,
		ArrayLength:   length,
		ElemType:      elemType,
		CreatedAtStep: step,
	}
	h.Alloc(obj)
	return obj
}

// NewLambda allocates a lambda object carrying its descriptor.
func (h *Heap) NewLambda(info string, captured []Value, step int) *HeapObject {
	obj := &HeapObject{
		Kind:          ObjLambda,
		ClassName:     "Lambda",
		LambdaInfo:    info,
		Captured:      captured,
		CreatedAtStep: step,
	}
	obj.Fields = []Field{{Name: "info", Value: StringValue(info)}}
	h.Alloc(obj)
	return obj
}

// NewString allocates a heap-resident String object.
func (h *Heap) NewString(s string, step int) *HeapObject {
	obj := &HeapObject{
		Kind:          ObjString,
		ClassName:     "String",
		StringValue:   s,
		CreatedAtStep: step,
	}
	h.Alloc(obj)
	return obj
}
