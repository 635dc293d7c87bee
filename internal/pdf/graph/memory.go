package graph

import (
	"fmt"
	"maps"
	"slices"
)

// Memory is an in-memory Document. The zero value is not usable; construct
// it with NewMemory.
type Memory struct {
	objects map[ObjectID]Value
	pages   []ObjectID
}

// NewMemory creates an empty in-memory document
func NewMemory() *Memory {
	return &Memory{objects: make(map[ObjectID]Value)}
}

// Set stores v under id, replacing any existing object
func (m *Memory) Set(id ObjectID, v Value) *Memory {
	if v == nil {
		v = Null{}
	}
	m.objects[id] = v
	return m
}

// AddPage stores a page dictionary under id and appends it to the page list
func (m *Memory) AddPage(id ObjectID, page Dict) *Memory {
	m.Set(id, page)
	m.pages = append(m.pages, id)
	return m
}

// AddPageRef appends id to the page list without storing an object
func (m *Memory) AddPageRef(id ObjectID) *Memory {
	m.pages = append(m.pages, id)
	return m
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	return len(m.objects)
}

// ObjectIDs lists every object in ascending identifier order
func (m *Memory) ObjectIDs() []ObjectID {
	ids := slices.Collect(maps.Keys(m.objects))
	slices.SortFunc(ids, ObjectID.Compare)
	return ids
}

// Object looks up an object by identifier
func (m *Memory) Object(id ObjectID) (Value, bool) {
	v, ok := m.objects[id]
	return v, ok
}

// Pages returns the page list in insertion order
func (m *Memory) Pages() ([]PageRef, error) {
	refs := make([]PageRef, len(m.pages))
	for i, id := range m.pages {
		refs[i] = PageRef{Number: i + 1, ID: id}
	}
	return refs, nil
}

// SetDictEntry replaces key in the dictionary object id
func (m *Memory) SetDictEntry(id ObjectID, key string, v Value) error {
	obj, ok := m.objects[id]
	if !ok {
		return fmt.Errorf("object %s not found", id)
	}
	d, ok := obj.(Dict)
	if !ok {
		return fmt.Errorf("object %s is %T, not a dictionary", id, obj)
	}
	d[key] = v
	return nil
}

// Clone returns a deep copy of the document
func (m *Memory) Clone() *Memory {
	c := &Memory{
		objects: make(map[ObjectID]Value, len(m.objects)),
		pages:   slices.Clone(m.pages),
	}
	for id, v := range m.objects {
		c.objects[id] = CloneValue(v)
	}
	return c
}

// CloneValue deep-copies arrays, dictionaries and streams
func CloneValue(v Value) Value {
	switch t := v.(type) {
	case Array:
		arr := make(Array, len(t))
		for i, e := range t {
			arr[i] = CloneValue(e)
		}
		return arr
	case Dict:
		return cloneDict(t)
	case Stream:
		return Stream{Dict: cloneDict(t.Dict), Data: slices.Clone(t.Data)}
	default:
		return v
	}
}

func cloneDict(d Dict) Dict {
	if d == nil {
		return nil
	}
	c := make(Dict, len(d))
	for k, e := range d {
		c[k] = CloneValue(e)
	}
	return c
}
