package wrapper

import (
	"fmt"
	"io"

	"github.com/a3tai/pdf-annot-fixer/internal/pdf/graph"
)

// Library opens a byte stream as an editable document object graph
type Library interface {
	Open(reader io.ReadSeeker) (Document, error)
	GetLibraryType() LibraryType
}

// Document is a parsed object graph that can be written back out
type Document interface {
	graph.Document
	Write(w io.Writer) error
	PageCount() int
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// WrapperError reports a failure inside one of the wrapped libraries
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}
