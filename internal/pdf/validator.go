package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
)

// Validator checks input and output paths before any parsing happens
type Validator struct {
	fs          afero.Fs
	maxFileSize int64
}

// NewValidator creates a new validator with the specified constraints
func NewValidator(fs afero.Fs, maxFileSize int64) *Validator {
	return &Validator{
		fs:          fs,
		maxFileSize: maxFileSize,
	}
}

// ValidateInput checks that filePath is a readable, non-empty file within
// the size limit and returns its info.
func (v *Validator) ValidateInput(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, invalidInput(filePath, "input path cannot be empty")
	}

	fileInfo, err := v.fs.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, invalidInput(filePath, "file does not exist")
	}
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "unable to open input pdf", err).
			WithFile(filePath)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	return fileInfo, nil
}

// ValidateFileInfo performs basic validation on file info without opening the file
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return invalidInput(filePath, "path is a directory, not a file")
	}

	if fileInfo.Size() == 0 {
		return invalidInput(filePath, "file is empty")
	}

	if fileInfo.Size() > v.maxFileSize {
		return invalidInput(filePath, fmt.Sprintf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize))
	}

	return nil
}

// ValidateOutput refuses to clobber an existing file unless force is set
func (v *Validator) ValidateOutput(input, output string, force bool) error {
	if output == "" {
		return invalidInput(output, "output path cannot be empty")
	}
	if output == input {
		return invalidInput(output, "output must differ from input")
	}

	info, err := v.fs.Stat(output)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "unable to open output file", err).
			WithFile(output)
	}
	if info.IsDir() {
		return invalidInput(output, "output path is a directory")
	}
	if !force {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeOutputExists,
			"unable to open output file. does it already exist?").WithFile(output)
	}
	return nil
}

// IsPDFFile reports whether name has a .pdf extension
func IsPDFFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func invalidInput(path, msg string) error {
	return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, msg).WithFile(path)
}
