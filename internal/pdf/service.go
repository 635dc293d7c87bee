package pdf

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/security"
)

// Service handles PDF file operations by orchestrating the repair components
type Service struct {
	fs            afero.Fs
	maxFileSize   int64
	fixer         *Fixer
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
	logger        *log.Logger
}

// NewService creates a new PDF service. When root is non-empty every path
// is resolved against it and must stay inside it. A nil logger discards.
func NewService(fs afero.Fs, maxFileSize int64, root string, logger *log.Logger) (*Service, error) {
	if fs == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var pathValidator *security.PathValidator
	if root != "" {
		var err error
		pathValidator, err = security.NewPathValidator(root)
		if err != nil {
			return nil, fmt.Errorf("failed to create path validator: %w", err)
		}
	}

	validator := NewValidator(fs, maxFileSize)
	return &Service{
		fs:            fs,
		maxFileSize:   maxFileSize,
		fixer:         NewFixer(),
		validator:     validator,
		search:        NewSearch(fs, validator),
		pathValidator: pathValidator,
		logger:        logger,
	}, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Root returns the confinement directory, or "" when paths are unconfined
func (s *Service) Root() string {
	if s.pathValidator == nil {
		return ""
	}
	return s.pathValidator.Root()
}

// FixBytes repairs an in-memory document
func (s *Service) FixBytes(input []byte) (*FixResult, []byte, error) {
	return s.fixer.Fix(input, false, false)
}

// FixFile repairs req.Input into req.Output. The output is only created
// once the whole repair has succeeded, and never on a dry run.
func (s *Service) FixFile(req FixFileRequest) (*FixFileResult, error) {
	input, err := s.resolve(req.Input)
	if err != nil {
		return nil, err
	}
	info, err := s.validator.ValidateInput(input)
	if err != nil {
		return nil, err
	}

	var output string
	if !req.DryRun {
		output, err = s.resolve(req.Output)
		if err != nil {
			return nil, err
		}
		if err := s.validator.ValidateOutput(input, output, req.Force); err != nil {
			return nil, err
		}
	}

	data, err := afero.ReadFile(s.fs, input)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "unable to read input pdf", err).
			WithFile(input)
	}

	fixed, out, err := s.fixer.Fix(data, req.DryRun, req.Verify && !req.DryRun)
	if err != nil {
		return nil, withFile(err, input)
	}

	result := &FixFileResult{
		Input:      input,
		Output:     output,
		Size:       info.Size(),
		Pages:      fixed.Pages,
		Candidates: fixed.Candidates,
		Repaired:   fixed.Repaired,
		Repairs:    fixed.Repairs,
		Outcome:    fixed.Outcome(),
		DryRun:     req.DryRun,
		Verified:   fixed.Verified,
	}

	if req.DryRun {
		s.logger.Printf("analyzed %s: %d annotations recoverable", input, fixed.Repaired)
		return result, nil
	}

	if err := s.writeAtomic(output, out, req.Force); err != nil {
		return nil, err
	}
	result.OutputWritten = true
	s.logger.Printf("fixed %s -> %s: %d annotations recovered", input, output, fixed.Repaired)

	return result, nil
}

// AnalyzeFile reports what FixFile would change without writing anything
func (s *Service) AnalyzeFile(req AnalyzeFileRequest) (*FixFileResult, error) {
	return s.FixFile(FixFileRequest{Input: req.Path, DryRun: true})
}

// FindPDFsInDirectory finds all PDF files directly inside a directory
func (s *Service) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	dir, err := s.resolveDirectory(directory)
	if err != nil {
		return nil, err
	}
	return s.search.FindPDFsInDirectory(dir)
}

// writeAtomic writes data to a temporary sibling of path and renames it into
// place, so a partially written file is never visible under path. Without
// force, path is claimed with O_EXCL first and the rename only ever replaces
// that empty placeholder.
func (s *Service) writeAtomic(path string, data []byte, force bool) error {
	if !force {
		placeholder, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				return pdferrors.NewPDFError(pdferrors.ErrorTypeOutputExists,
					"unable to open output file. does it already exist?").WithFile(path)
			}
			return pdferrors.WrapError(pdferrors.ErrorTypeSerialize, "unable to open output file", err).WithFile(path)
		}
		placeholder.Close()
	}

	fail := func(tmpName, msg string, err error) error {
		if tmpName != "" {
			s.fs.Remove(tmpName)
		}
		if !force {
			s.fs.Remove(path)
		}
		return pdferrors.WrapError(pdferrors.ErrorTypeSerialize, msg, err).WithFile(path)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fail("", "unable to open output file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fail(tmpName, "unable to write output pdf", err)
	}
	if err := tmp.Close(); err != nil {
		return fail(tmpName, "unable to write output pdf", err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		return fail(tmpName, "unable to write output pdf", err)
	}
	return nil
}

func (s *Service) resolve(path string) (string, error) {
	if path == "" {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "path cannot be empty")
	}
	if s.pathValidator == nil {
		return path, nil
	}
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "security validation failed", err).
			WithFile(path)
	}
	return resolved, nil
}

func (s *Service) resolveDirectory(dir string) (string, error) {
	if dir == "" {
		dir = s.Root()
	}
	if dir == "" {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "directory cannot be empty")
	}
	resolved, err := s.resolve(dir)
	if err != nil {
		return "", err
	}
	if s.pathValidator != nil {
		if err := s.pathValidator.ValidateDirectory(resolved); err != nil {
			return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "security validation failed", err).
				WithFile(dir)
		}
	}
	info, err := s.fs.Stat(resolved)
	if os.IsNotExist(err) {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "directory does not exist").
			WithFile(resolved)
	}
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "cannot access directory", err).
			WithFile(resolved)
	}
	if !info.IsDir() {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "path is not a directory").
			WithFile(resolved)
	}
	return resolved, nil
}

// withFile attaches path to PDF errors that do not carry one yet
func withFile(err error, path string) error {
	var pdfErr *pdferrors.PDFError
	if errors.As(err, &pdfErr) && pdfErr.FilePath == "" {
		return pdfErr.WithFile(path)
	}
	return err
}
