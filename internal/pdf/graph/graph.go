package graph

import (
	"cmp"
	"fmt"
)

// ObjectID addresses one indirect object within a document
type ObjectID struct {
	Number     int `json:"number"`
	Generation int `json:"generation"`
}

// ID is shorthand for ObjectID{Number: number, Generation: generation}
func ID(number, generation int) ObjectID {
	return ObjectID{Number: number, Generation: generation}
}

// Compare orders identifiers by object number, then generation number
func (id ObjectID) Compare(other ObjectID) int {
	if c := cmp.Compare(id.Number, other.Number); c != 0 {
		return c
	}
	return cmp.Compare(id.Generation, other.Generation)
}

// String renders the identifier the way it appears in a PDF file
func (id ObjectID) String() string {
	return fmt.Sprintf("%d %d R", id.Number, id.Generation)
}

// Value is one of the closed set of object value variants
type Value interface {
	isValue()
}

type (
	Null      struct{}
	Boolean   bool
	Number    float64
	String    string
	Name      string
	Array     []Value
	Dict      map[string]Value
	Reference ObjectID
)

// Stream is a dictionary plus an opaque payload
type Stream struct {
	Dict Dict
	Data []byte
}

func (Null) isValue()      {}
func (Boolean) isValue()   {}
func (Number) isValue()    {}
func (String) isValue()    {}
func (Name) isValue()      {}
func (Array) isValue()     {}
func (Dict) isValue()      {}
func (Reference) isValue() {}
func (Stream) isValue()    {}

// IsNull reports whether v is the null object
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	}
	return false
}

// ReferenceIDs returns the identifiers of arr when every element is an
// indirect reference. An empty array qualifies.
func ReferenceIDs(arr Array) ([]ObjectID, bool) {
	ids := make([]ObjectID, 0, len(arr))
	for _, v := range arr {
		ref, ok := v.(Reference)
		if !ok {
			return nil, false
		}
		ids = append(ids, ObjectID(ref))
	}
	return ids, true
}

// Refs builds an array of indirect references
func Refs(ids ...ObjectID) Array {
	arr := make(Array, len(ids))
	for i, id := range ids {
		arr[i] = Reference(id)
	}
	return arr
}

// PageRef ties a 1-based page number to the page dictionary's identifier
type PageRef struct {
	Number int      `json:"number"`
	ID     ObjectID `json:"id"`
}

// Document is the capability set the annotation recoverer needs from a
// parsed document.
type Document interface {
	// ObjectIDs lists every object in ascending identifier order.
	ObjectIDs() []ObjectID
	Object(id ObjectID) (Value, bool)
	Pages() ([]PageRef, error)
	// SetDictEntry replaces key in the dictionary object id.
	SetDictEntry(id ObjectID, key string, v Value) error
}
