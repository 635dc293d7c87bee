package pdf

import (
	"bytes"

	"github.com/a3tai/pdf-annot-fixer/internal/pdf/annots"
	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/wrapper"
)

// FixResult is the in-memory outcome of one repair
type FixResult struct {
	*annots.Result
	Pages    int  `json:"pages"`
	Verified bool `json:"verified"`
}

// Outcome classifies a successful result
func (r *FixResult) Outcome() Outcome {
	if r.Repaired > 0 {
		return OutcomeRepaired
	}
	return OutcomeNothingToFix
}

// Fixer runs parse, recover and serialize over a byte slice
type Fixer struct {
	library  wrapper.Library
	verifier *wrapper.Verifier
}

// NewFixer creates a fixer backed by pdfcpu with ledongthuc read-back
func NewFixer() *Fixer {
	return &Fixer{
		library:  wrapper.NewPDFCPULibrary(),
		verifier: wrapper.NewVerifier(),
	}
}

// Fix repairs data. With dryRun set the document is only analyzed and no
// bytes are returned. Output bytes are returned only on full success.
func (f *Fixer) Fix(data []byte, dryRun, verify bool) (*FixResult, []byte, error) {
	doc, err := f.library.Open(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	result := &FixResult{Pages: doc.PageCount()}
	if dryRun {
		result.Result, err = annots.Plan(doc)
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil
	}

	result.Result, err = annots.Recover(doc)
	if err != nil {
		return nil, nil, err
	}

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, nil, err
	}

	if verify {
		if err := f.verifier.Verify(out.Bytes(), result.Pages, expectations(result.Result)); err != nil {
			return nil, nil, pdferrors.WrapError(pdferrors.ErrorTypeSerialize,
				"written document failed read-back verification", err)
		}
		result.Verified = true
	}

	return result, out.Bytes(), nil
}

func expectations(r *annots.Result) []wrapper.PageExpectation {
	expect := make([]wrapper.PageExpectation, 0, len(r.Repairs))
	for _, repair := range r.Repairs {
		expect = append(expect, wrapper.PageExpectation{Page: repair.Page, Annots: len(repair.Annots)})
	}
	return expect
}
