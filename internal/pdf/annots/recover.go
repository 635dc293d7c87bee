// Package annots restores page annotation lists that were truncated or lost
// while a complete copy of the reference set still exists elsewhere in the
// document.
package annots

import (
	"fmt"

	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/graph"
)

// AnnotsKey is the page dictionary key holding the annotation list
const AnnotsKey = "Annots"

// PageRepair describes one page whose annotation list was replaced
type PageRepair struct {
	Page   int              `json:"page"`
	PageID graph.ObjectID   `json:"page_id"`
	Source graph.ObjectID   `json:"source"`
	Before int              `json:"before"`
	After  int              `json:"after"`
	Added  int              `json:"added"`
	Annots []graph.ObjectID `json:"annots"`
}

// Result is the outcome of one recovery run. Repaired is the number of
// annotations added across all pages, not the number of pages changed.
type Result struct {
	Repaired     int          `json:"repaired"`
	PagesChecked int          `json:"pages_checked"`
	Candidates   int          `json:"candidates"`
	Repairs      []PageRepair `json:"repairs,omitempty"`
}

// Recover rewrites the annotation list of every page for which a strict
// superset reference array exists in doc. The analysis phase completes
// before any mutation, so on error doc is left untouched.
func Recover(doc graph.Document) (*Result, error) {
	result, err := Plan(doc)
	if err != nil {
		return nil, err
	}

	for _, r := range result.Repairs {
		if err := doc.SetDictEntry(r.PageID, AnnotsKey, graph.Refs(r.Annots...)); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeNotADictionary,
				"unable to update page annotations", err).
				WithPage(r.Page).WithObject(r.PageID.Number, r.PageID.Generation)
		}
	}

	return result, nil
}

// Plan performs the analysis half of Recover without touching doc
func Plan(doc graph.Document) (*Result, error) {
	pool, nulls := buildPool(doc)

	pages, err := doc.Pages()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeUnresolvedPage, "unable to enumerate pages", err)
	}

	result := &Result{Candidates: len(pool)}
	for _, page := range pages {
		current, err := currentAnnots(doc, page, nulls)
		if err != nil {
			return nil, err
		}
		result.PagesChecked++
		if current == nil {
			continue
		}

		match := pool.firstStrictSuperset(current)
		if match == nil {
			continue
		}

		added := len(match.set) - len(current)
		result.Repaired += added
		result.Repairs = append(result.Repairs, PageRepair{
			Page:   page.Number,
			PageID: page.ID,
			Source: match.id,
			Before: len(current),
			After:  len(match.set),
			Added:  added,
			Annots: match.ordered,
		})
	}

	return result, nil
}

// currentAnnots returns the page's live annotation identifiers, or nil when
// the page has no annotation list at all.
func currentAnnots(doc graph.Document, page graph.PageRef, nulls idSet) (idSet, error) {
	obj, ok := doc.Object(page.ID)
	if !ok {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeUnresolvedPage, "unable to get page object").
			WithPage(page.Number).WithObject(page.ID.Number, page.ID.Generation)
	}
	dict, ok := obj.(graph.Dict)
	if !ok {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNotADictionary, "page object is not a dictionary").
			WithPage(page.Number).WithObject(page.ID.Number, page.ID.Generation).
			WithContext(fmt.Sprintf("got %T", obj))
	}

	value, ok := dict[AnnotsKey]
	if !ok {
		return nil, nil
	}

	switch v := value.(type) {
	case graph.Reference:
		return idSet{graph.ObjectID(v): {}}, nil
	case graph.Array:
		set := make(idSet, len(v))
		for _, e := range v {
			ref, ok := e.(graph.Reference)
			if !ok {
				continue
			}
			id := graph.ObjectID(ref)
			if _, dead := nulls[id]; dead {
				continue
			}
			set[id] = struct{}{}
		}
		return set, nil
	default:
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidAnnotationList,
			"annotations are neither an array nor a single reference").
			WithPage(page.Number).WithObject(page.ID.Number, page.ID.Generation).
			WithContext(fmt.Sprintf("got %T", value))
	}
}
