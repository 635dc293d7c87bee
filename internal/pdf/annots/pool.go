package annots

import (
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/graph"
)

type idSet map[graph.ObjectID]struct{}

// candidate is an array object made only of references. ordered keeps the
// array as written; set is used for comparison.
type candidate struct {
	id      graph.ObjectID
	ordered []graph.ObjectID
	set     idSet
}

type pool []candidate

// buildPool scans every object once. It collects reference-only arrays in
// ascending identifier order, plus the identifiers of null objects so later
// mutations cannot change how dead entries are classified.
func buildPool(doc graph.Document) (pool, idSet) {
	var candidates pool
	nulls := make(idSet)

	for _, id := range doc.ObjectIDs() {
		obj, ok := doc.Object(id)
		if !ok {
			continue
		}
		if graph.IsNull(obj) {
			nulls[id] = struct{}{}
			continue
		}
		arr, ok := obj.(graph.Array)
		if !ok {
			continue
		}
		ordered, ok := graph.ReferenceIDs(arr)
		if !ok {
			continue
		}
		set := make(idSet, len(ordered))
		for _, ref := range ordered {
			set[ref] = struct{}{}
		}
		candidates = append(candidates, candidate{id: id, ordered: ordered, set: set})
	}

	return candidates, nulls
}

// firstStrictSuperset returns the first candidate that contains every
// element of current plus at least one more.
func (p pool) firstStrictSuperset(current idSet) *candidate {
	for i := range p {
		c := &p[i]
		if len(c.set) == len(current) || !c.contains(current) {
			continue
		}
		return c
	}
	return nil
}

func (c *candidate) contains(s idSet) bool {
	if len(s) > len(c.set) {
		return false
	}
	for id := range s {
		if _, ok := c.set[id]; !ok {
			return false
		}
	}
	return true
}
