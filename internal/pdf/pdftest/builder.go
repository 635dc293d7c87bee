// Package pdftest builds small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Build writes objects numbered 1..len(objects) with a classic xref table.
// Object 1 must be the catalog.
func Build(objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

const mediaBox = "/MediaBox [0 0 612 792]"

// Annot returns the body of a text annotation
func Annot(contents string) string {
	return fmt.Sprintf("<< /Type /Annot /Subtype /Text /Rect [10 10 30 30] /Contents (%s) >>", contents)
}

// TruncatedAnnots is a two-page document. Page 1 (object 3) lists
// annotations 5 and 6, page 2 (object 4) has no /Annots, and object 9 holds
// the complete list [5 6 7 8].
func TruncatedAnnots() []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" /Annots [5 0 R 6 0 R] >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" >>",
		Annot("one"),
		Annot("two"),
		Annot("three"),
		Annot("four"),
		"[5 0 R 6 0 R 7 0 R 8 0 R]",
	)
}

// Intact is a one-page document whose annotation list already matches the
// only reference array in the file.
func Intact() []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" /Annots [4 0 R 5 0 R] >>",
		Annot("one"),
		Annot("two"),
		"[4 0 R 5 0 R]",
	)
}

// InvalidAnnots is a one-page document whose /Annots is a number
func InvalidAnnots() []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" /Annots 42 >>",
	)
}

// CustomEntries is TruncatedAnnots with private data on keys no PDF writer
// interprets: the catalog's /AppData (object 10, which refers on to object
// 12) and page 1's /Custom (object 11).
func CustomEntries() []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R /AppData 10 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" /Annots [5 0 R 6 0 R] /Custom 11 0 R >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" >>",
		Annot("one"),
		Annot("two"),
		Annot("three"),
		Annot("four"),
		"[5 0 R 6 0 R 7 0 R 8 0 R]",
		"<< /Owner (app) /Settings 12 0 R >>",
		"<< /Foo (bar) >>",
		"[1 2 3]",
	)
}

// IntactCustomEntries is Intact with the same kind of private data as
// CustomEntries: catalog /AppData (object 7) and page /Custom (object 8).
func IntactCustomEntries() []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R /AppData 7 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R "+mediaBox+" /Annots [4 0 R 5 0 R] /Custom 8 0 R >>",
		Annot("one"),
		Annot("two"),
		"[4 0 R 5 0 R]",
		"<< /Owner (app) >>",
		"<< /Foo (bar) >>",
	)
}
