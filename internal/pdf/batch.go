package pdf

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
)

// DefaultSuffix is appended to the base name of every file a directory run writes
const DefaultSuffix = "-fixed"

// FixDirectory repairs every PDF directly inside req.Directory. Files are
// processed in parallel, each independently; one failure never stops the
// others. Empty or oversized files are reported as failed items. Files that
// already carry the suffix are skipped so repeated runs do not compound.
func (s *Service) FixDirectory(req FixDirectoryRequest) (*FixDirectoryResult, error) {
	dir, err := s.resolveDirectory(req.Directory)
	if err != nil {
		return nil, err
	}

	outDir := dir
	if req.OutputDirectory != "" {
		outDir, err = s.resolve(req.OutputDirectory)
		if err != nil {
			return nil, err
		}
		if err := s.fs.MkdirAll(outDir, 0o755); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput,
				"unable to create output directory", err).WithFile(outDir)
		}
	}

	suffix := req.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if strings.ContainsAny(suffix, `/\`) {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput,
			fmt.Sprintf("invalid suffix %q", suffix))
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	files, err := s.search.ListPDFFiles(dir)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "unable to list directory", err).
			WithFile(dir)
	}

	p := pool.NewWithResults[FixDirectoryItem]().WithMaxGoroutines(workers)
	for _, file := range files {
		if outDir == dir && strings.HasSuffix(strings.TrimSuffix(file.Name, filepath.Ext(file.Name)), suffix) {
			continue
		}
		p.Go(func() FixDirectoryItem {
			return s.fixOne(file, outDir, suffix, req)
		})
	}
	items := p.Wait()

	// results arrive in completion order
	byInput := make(map[string]FixDirectoryItem, len(items))
	for _, item := range items {
		byInput[item.Input] = item
	}

	result := &FixDirectoryResult{
		Directory:       dir,
		OutputDirectory: outDir,
		Files:           make([]FixDirectoryItem, 0, len(items)),
	}
	for _, file := range files {
		item, ok := byInput[file.Path]
		if !ok {
			continue
		}
		result.Files = append(result.Files, item)
		result.TotalFiles++
		if item.err != nil {
			result.FailedFiles++
			result.err = multierr.Append(result.err, fmt.Errorf("%s: %w", file.Name, item.err))
			continue
		}
		if item.Outcome == OutcomeRepaired {
			result.RepairedFiles++
		}
		result.TotalRepaired += item.Repaired
	}

	s.logger.Printf("fixed directory %s: %d files, %d repaired, %d failed",
		dir, result.TotalFiles, result.RepairedFiles, result.FailedFiles)

	return result, nil
}

func (s *Service) fixOne(file FileInfo, outDir, suffix string, req FixDirectoryRequest) FixDirectoryItem {
	base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	output := filepath.Join(outDir, base+suffix+filepath.Ext(file.Name))

	item := FixDirectoryItem{Input: file.Path, Output: output}
	fixed, err := s.FixFile(FixFileRequest{
		Input:  file.Path,
		Output: output,
		Force:  req.Force,
		Verify: req.Verify,
	})
	if err != nil {
		item.err = err
		item.Error = err.Error()
		return item
	}

	item.Repaired = fixed.Repaired
	item.Outcome = fixed.Outcome
	return item
}
