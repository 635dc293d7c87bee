package errors

import (
	"errors"
	"fmt"
	"strings"
)

// PDFError describes why an annotation repair run was aborted
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	ObjectNum  int       `json:"object_num,omitempty"`
	GenNum     int       `json:"generation_num,omitempty"`
	HasObject  bool      `json:"-"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType is the flat taxonomy of terminal failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeParse
	ErrorTypeUnresolvedPage
	ErrorTypeNotADictionary
	ErrorTypeInvalidAnnotationList
	ErrorTypeSerialize
	ErrorTypeInvalidInput
	ErrorTypeOutputExists
)

// Sentinels for errors.Is matching on kind alone
var (
	ErrParse                 = &PDFError{Type: ErrorTypeParse}
	ErrUnresolvedPage        = &PDFError{Type: ErrorTypeUnresolvedPage}
	ErrNotADictionary        = &PDFError{Type: ErrorTypeNotADictionary}
	ErrInvalidAnnotationList = &PDFError{Type: ErrorTypeInvalidAnnotationList}
	ErrSerialize             = &PDFError{Type: ErrorTypeSerialize}
	ErrInvalidInput          = &PDFError{Type: ErrorTypeInvalidInput}
	ErrOutputExists          = &PDFError{Type: ErrorTypeOutputExists}
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeParse:
		return "PARSE_ERROR"
	case ErrorTypeUnresolvedPage:
		return "UNRESOLVED_PAGE"
	case ErrorTypeNotADictionary:
		return "NOT_A_DICTIONARY"
	case ErrorTypeInvalidAnnotationList:
		return "INVALID_ANNOTATION_LIST"
	case ErrorTypeSerialize:
		return "SERIALIZE_ERROR"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeOutputExists:
		return "OUTPUT_EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Phase names the step of the run in which errors of this type occur
func (et ErrorType) Phase() string {
	switch et {
	case ErrorTypeParse:
		return "parse"
	case ErrorTypeUnresolvedPage:
		return "page lookup"
	case ErrorTypeNotADictionary:
		return "dictionary validation"
	case ErrorTypeInvalidAnnotationList:
		return "annotation-key validation"
	case ErrorTypeSerialize:
		return "serialize"
	case ErrorTypeInvalidInput, ErrorTypeOutputExists:
		return "input validation"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (e *PDFError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if e.PageNumber > 0 {
		fmt.Fprintf(&b, " (page %d", e.PageNumber)
		if e.HasObject {
			fmt.Fprintf(&b, ", object %d %d R", e.ObjectNum, e.GenNum)
		}
		b.WriteString(")")
	} else if e.HasObject {
		fmt.Fprintf(&b, " (object %d %d R)", e.ObjectNum, e.GenNum)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, ": %s", e.Context)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying library error
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is matches any PDFError of the same type, which makes the package
// sentinels usable with errors.Is.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Phase names the step of the run that failed
func (e *PDFError) Phase() string {
	return e.Type.Phase()
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a library error as a PDFError of the given type
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithObject records the object the error is about
func (e *PDFError) WithObject(objNum, genNum int) *PDFError {
	e.ObjectNum = objNum
	e.GenNum = genNum
	e.HasObject = true
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the ErrorType of the first PDFError in err's chain
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}
