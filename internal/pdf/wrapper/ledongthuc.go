package wrapper

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageExpectation is the annotation count a written page must carry
type PageExpectation struct {
	Page   int
	Annots int
}

// Verifier re-reads written output with ledongthuc/pdf, a parser that shares
// no code with the writer.
type Verifier struct{}

// NewVerifier creates a new read-back verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// GetLibraryType returns the library type
func (v *Verifier) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// Verify checks the page count and the annotation list length of every
// expected page.
func (v *Verifier) Verify(data []byte, pageCount int, expect []PageExpectation) (err error) {
	// ledongthuc/pdf reports malformed input by panicking
	defer func() {
		if r := recover(); r != nil {
			err = &WrapperError{Library: LibraryLedongthuc, Op: "verify", Err: fmt.Errorf("reader panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &WrapperError{Library: LibraryLedongthuc, Op: "verify", Err: fmt.Errorf("failed to open PDF: %w", err)}
	}

	if got := reader.NumPage(); got != pageCount {
		return &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "verify",
			Err:     fmt.Errorf("page count mismatch: got %d, want %d", got, pageCount),
		}
	}

	for _, e := range expect {
		page := reader.Page(e.Page)
		if page.V.IsNull() {
			return &WrapperError{Library: LibraryLedongthuc, Op: "verify", Err: fmt.Errorf("page %d not found", e.Page)}
		}
		annots := page.V.Key("Annots")
		if annots.Kind() != pdf.Array {
			return &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "verify",
				Err:     fmt.Errorf("page %d: annotation list is %v, not an array", e.Page, annots.Kind()),
			}
		}
		if got := annots.Len(); got != e.Annots {
			return &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "verify",
				Err:     fmt.Errorf("page %d: got %d annotations, want %d", e.Page, got, e.Annots),
			}
		}
	}

	return nil
}
