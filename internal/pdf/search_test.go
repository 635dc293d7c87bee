package pdf

import (
	"testing"

	"github.com/spf13/afero"
)

func TestSearch_FindPDFsInDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"/docs/b.pdf", "/docs/a.PDF", "/docs/c.txt", "/docs/sub/d.pdf"} {
		afero.WriteFile(fs, name, []byte("%PDF-1.7"), 0o644)
	}
	afero.WriteFile(fs, "/docs/empty.pdf", nil, 0o644)

	search := NewSearch(fs, NewValidator(fs, 1024))

	files, err := search.FindPDFsInDirectory("/docs")
	if err != nil {
		t.Fatalf("FindPDFsInDirectory() unexpected error: %v", err)
	}

	want := []string{"a.PDF", "b.pdf"}
	if len(files) != len(want) {
		t.Fatalf("FindPDFsInDirectory() found %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.Name != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.Name, want[i])
		}
		if f.Size != 8 {
			t.Errorf("files[%d].Size = %d, want 8", i, f.Size)
		}
	}

	limited, err := search.FindPDFsInDirectoryLimited("/docs", 1)
	if err != nil {
		t.Fatalf("FindPDFsInDirectoryLimited() unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].Name != "a.PDF" {
		t.Errorf("FindPDFsInDirectoryLimited() = %+v, want only a.PDF", limited)
	}

	if _, err := search.FindPDFsInDirectory("/missing"); err == nil {
		t.Error("FindPDFsInDirectory() on missing directory should fail")
	}
	if _, err := search.FindPDFsInDirectory(""); err == nil {
		t.Error("FindPDFsInDirectory() on empty directory name should fail")
	}
}

func TestSearch_ListPDFFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/docs/a.pdf", []byte("%PDF-1.7"), 0o644)
	afero.WriteFile(fs, "/docs/big.pdf", make([]byte, 2048), 0o644)
	afero.WriteFile(fs, "/docs/empty.pdf", nil, 0o644)
	afero.WriteFile(fs, "/docs/notes.txt", []byte("text"), 0o644)
	fs.MkdirAll("/docs/dir.pdf", 0o755)

	search := NewSearch(fs, NewValidator(fs, 1024))

	files, err := search.ListPDFFiles("/docs")
	if err != nil {
		t.Fatalf("ListPDFFiles() unexpected error: %v", err)
	}

	want := []string{"a.pdf", "big.pdf", "empty.pdf"}
	if len(files) != len(want) {
		t.Fatalf("ListPDFFiles() found %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.Name != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.Name, want[i])
		}
	}

	valid, err := search.FindPDFsInDirectory("/docs")
	if err != nil {
		t.Fatalf("FindPDFsInDirectory() unexpected error: %v", err)
	}
	if len(valid) != 1 || valid[0].Name != "a.pdf" {
		t.Errorf("FindPDFsInDirectory() = %+v, want only a.pdf", valid)
	}
}
