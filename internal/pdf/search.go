package pdf

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Search discovers PDF files for batch runs
type Search struct {
	fs        afero.Fs
	validator *Validator
}

// NewSearch creates a new PDF search handler
func NewSearch(fs afero.Fs, validator *Validator) *Search {
	return &Search{
		fs:        fs,
		validator: validator,
	}
}

// FindPDFsInDirectory lists the PDF files directly inside directory, sorted
// by name. Empty, oversized and non-regular files are skipped.
func (s *Search) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	return s.FindPDFsInDirectoryLimited(directory, 0)
}

// FindPDFsInDirectoryLimited is FindPDFsInDirectory returning at most limit
// files. A limit of zero or less means no limit.
func (s *Search) FindPDFsInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	return s.find(directory, limit, true)
}

// ListPDFFiles lists every regular PDF file directly inside directory, sorted
// by name, including files that would fail input validation
func (s *Search) ListPDFFiles(directory string) ([]FileInfo, error) {
	return s.find(directory, 0, false)
}

func (s *Search) find(directory string, limit int, validate bool) ([]FileInfo, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	entries, err := afero.ReadDir(s.fs, directory)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []FileInfo
	for _, info := range entries {
		if !IsPDFFile(info.Name()) || !info.Mode().IsRegular() {
			continue
		}
		path := filepath.Join(directory, info.Name())
		if validate {
			if err := s.validator.ValidateFileInfo(path, info); err != nil {
				continue
			}
		}
		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		if limit > 0 && len(files) >= limit {
			break
		}
	}

	return files, nil
}
