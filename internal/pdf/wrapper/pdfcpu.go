package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/graph"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPULibrary parses and writes documents with pdfcpu
type PDFCPULibrary struct{}

// NewPDFCPULibrary creates a new pdfcpu library wrapper
func NewPDFCPULibrary() *PDFCPULibrary {
	return &PDFCPULibrary{}
}

// Open parses a whole document into memory
func (p *PDFCPULibrary) Open(reader io.ReadSeeker) (Document, error) {
	return p.OpenDocument(reader)
}

// OpenDocument is Open with the concrete return type
func (p *PDFCPULibrary) OpenDocument(reader io.ReadSeeker) (*PDFCPUDocument, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	// classic xref output stays readable by the verifier
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	ctx, err := api.ReadContext(reader, conf)
	if err != nil {
		return nil, parseError("failed to read PDF context", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, parseError("failed to ensure page count", err)
	}

	return &PDFCPUDocument{ctx: ctx, src: reader}, nil
}

// GetLibraryType returns the library type
func (p *PDFCPULibrary) GetLibraryType() LibraryType {
	return LibraryPDFCPU
}

func parseError(msg string, err error) error {
	return pdferrors.WrapError(pdferrors.ErrorTypeParse, "unable to parse pdf document",
		&WrapperError{Library: LibraryPDFCPU, Op: "open", Err: fmt.Errorf("%s: %w", msg, err)})
}

// PDFCPUDocument exposes a pdfcpu xref table as a graph.Document
type PDFCPUDocument struct {
	ctx *model.Context
	src io.ReadSeeker
}

// Context returns the underlying pdfcpu context
func (d *PDFCPUDocument) Context() *model.Context {
	return d.ctx
}

// PageCount returns the number of pages in the page tree
func (d *PDFCPUDocument) PageCount() int {
	return d.ctx.PageCount
}

// ObjectIDs lists every in-use xref entry in ascending identifier order
func (d *PDFCPUDocument) ObjectIDs() []graph.ObjectID {
	nums := slices.Sorted(maps.Keys(d.ctx.Table))
	ids := make([]graph.ObjectID, 0, len(nums))
	for _, nr := range nums {
		entry := d.ctx.Table[nr]
		if nr == 0 || entry == nil || entry.Free {
			continue
		}
		ids = append(ids, graph.ID(nr, generation(entry)))
	}
	return ids
}

// Object converts the object stored under id
func (d *PDFCPUDocument) Object(id graph.ObjectID) (graph.Value, bool) {
	obj, ok := d.lookup(id)
	if !ok {
		return nil, false
	}
	return fromPDFCPU(obj), true
}

// Pages resolves every page of the page tree to its indirect reference
func (d *PDFCPUDocument) Pages() ([]graph.PageRef, error) {
	pages := make([]graph.PageRef, 0, d.ctx.PageCount)
	for i := 1; i <= d.ctx.PageCount; i++ {
		_, ir, _, err := d.ctx.PageDict(i, false)
		if err != nil {
			return nil, &WrapperError{Library: LibraryPDFCPU, Op: "get_page", Err: fmt.Errorf("page %d: %w", i, err)}
		}
		if ir == nil {
			return nil, &WrapperError{Library: LibraryPDFCPU, Op: "get_page", Err: fmt.Errorf("page %d is not an indirect object", i)}
		}
		pages = append(pages, graph.PageRef{
			Number: i,
			ID:     graph.ID(ir.ObjectNumber.Value(), ir.GenerationNumber.Value()),
		})
	}
	return pages, nil
}

// SetDictEntry replaces key in the dictionary object id
func (d *PDFCPUDocument) SetDictEntry(id graph.ObjectID, key string, v graph.Value) error {
	obj, ok := d.lookup(id)
	if !ok {
		return &WrapperError{Library: LibraryPDFCPU, Op: "set_dict_entry", Err: fmt.Errorf("object %s not found", id)}
	}
	dict, ok := obj.(types.Dict)
	if !ok {
		return &WrapperError{Library: LibraryPDFCPU, Op: "set_dict_entry", Err: fmt.Errorf("object %s is %T, not a dictionary", id, obj)}
	}
	dict[key] = toPDFCPU(v)
	d.ctx.Write.IncrementWithObjNr(id.Number)
	return nil
}

// Modified lists the objects changed since the document was opened
func (d *PDFCPUDocument) Modified() []int {
	return slices.Sorted(slices.Values(d.ctx.Write.ObjNrs))
}

// Write serializes the document as its original bytes followed by an
// incremental update holding only the modified objects. Every object of the
// input, reachable or not, survives unchanged. An unmodified document is
// written back byte for byte.
func (d *PDFCPUDocument) Write(w io.Writer) error {
	if _, err := d.src.Seek(0, io.SeekStart); err != nil {
		return serializeError("read_source", err)
	}
	original, err := io.ReadAll(d.src)
	if err != nil {
		return serializeError("read_source", err)
	}

	if len(d.ctx.Write.ObjNrs) == 0 {
		if _, err := w.Write(original); err != nil {
			return serializeError("write", err)
		}
		return nil
	}

	prev := d.ctx.Write.OffsetPrevXRef
	if prev == nil || *prev <= 0 || *prev >= int64(len(original)) {
		// no usable xref section to chain to
		return d.rewrite(w)
	}

	if !bytes.HasSuffix(original, []byte("\n")) && !bytes.HasSuffix(original, []byte("\r")) {
		original = append(original, '\n')
	}
	if _, err := w.Write(original); err != nil {
		return serializeError("write", err)
	}

	wc := d.ctx.Write
	wc.Increment = true
	wc.Offset = int64(len(original))
	wc.Table = map[int]int64{}
	// ledongthuc only chains /Prev between sections of the same kind
	d.ctx.WriteXRefStream = d.ctx.Read.UsingXRefStreams

	if err := api.WriteIncrement(d.ctx, w); err != nil {
		return serializeError("write_increment", err)
	}
	return nil
}

// rewrite serializes the whole document from its catalog
func (d *PDFCPUDocument) rewrite(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return serializeError("write", err)
	}
	return nil
}

func serializeError(op string, err error) error {
	return pdferrors.WrapError(pdferrors.ErrorTypeSerialize, "unable to save pdf document",
		&WrapperError{Library: LibraryPDFCPU, Op: op, Err: err})
}

func (d *PDFCPUDocument) lookup(id graph.ObjectID) (types.Object, bool) {
	entry, ok := d.ctx.Table[id.Number]
	if !ok || entry == nil || entry.Free || generation(entry) != id.Generation {
		return nil, false
	}
	obj, err := d.ctx.Dereference(*types.NewIndirectRef(id.Number, id.Generation))
	if err != nil {
		return nil, false
	}
	return obj, true
}

func generation(entry *model.XRefTableEntry) int {
	if entry.Generation == nil {
		return 0
	}
	return *entry.Generation
}

func fromPDFCPU(obj types.Object) graph.Value {
	switch v := obj.(type) {
	case nil:
		return graph.Null{}
	case types.Boolean:
		return graph.Boolean(v.Value())
	case types.Integer:
		return graph.Number(v.Value())
	case types.Float:
		return graph.Number(v.Value())
	case types.Name:
		return graph.Name(v.Value())
	case types.StringLiteral:
		return graph.String(v.Value())
	case types.HexLiteral:
		return graph.String(v.Value())
	case types.IndirectRef:
		return graph.Reference(graph.ID(v.ObjectNumber.Value(), v.GenerationNumber.Value()))
	case *types.IndirectRef:
		return graph.Reference(graph.ID(v.ObjectNumber.Value(), v.GenerationNumber.Value()))
	case types.Array:
		arr := make(graph.Array, len(v))
		for i, e := range v {
			arr[i] = fromPDFCPU(e)
		}
		return arr
	case types.Dict:
		return dictFromPDFCPU(v)
	case types.StreamDict:
		return graph.Stream{Dict: dictFromPDFCPU(v.Dict), Data: v.Raw}
	case types.ObjectStreamDict:
		return graph.Stream{Dict: dictFromPDFCPU(v.Dict), Data: v.Raw}
	case types.XRefStreamDict:
		return graph.Stream{Dict: dictFromPDFCPU(v.Dict), Data: v.Raw}
	default:
		// opaque to the recoverer
		return graph.Stream{}
	}
}

func dictFromPDFCPU(d types.Dict) graph.Dict {
	out := make(graph.Dict, len(d))
	for k, e := range d {
		out[k] = fromPDFCPU(e)
	}
	return out
}

func toPDFCPU(v graph.Value) types.Object {
	switch t := v.(type) {
	case nil, graph.Null:
		return nil
	case graph.Boolean:
		return types.Boolean(t)
	case graph.Number:
		if f := float64(t); f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			return types.Integer(int(f))
		}
		return types.Float(t)
	case graph.Name:
		return types.Name(t)
	case graph.String:
		return types.StringLiteral(t)
	case graph.Reference:
		return *types.NewIndirectRef(t.Number, t.Generation)
	case graph.Array:
		arr := make(types.Array, len(t))
		for i, e := range t {
			arr[i] = toPDFCPU(e)
		}
		return arr
	case graph.Dict:
		d := types.NewDict()
		for k, e := range t {
			d[k] = toPDFCPU(e)
		}
		return d
	default:
		return nil
	}
}
