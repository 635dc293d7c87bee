package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines the files a tool call may read or write to one root
// directory.
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for root. The root does not need to
// exist yet; until it does every path is accepted.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: abs}, nil
}

// Root returns the absolute root directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns a tool-supplied path into an absolute path inside the root.
// Relative paths are taken relative to the root.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := v.ValidatePath(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// ValidatePath checks that path, after symlink resolution, lies within the
// root. Paths that do not exist yet are checked through their nearest
// existing parent, so output files can be validated before creation.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(v.root); os.IsNotExist(err) {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}

	if !within(abs, v.root) && !within(abs, realRoot) {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}

	real, err := realPath(abs)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within(real, v.root) && !within(real, realRoot) {
		return fmt.Errorf("path resolves outside configured directory: %s", path)
	}

	return nil
}

// ValidateDirectory checks that dir is within the root and, when it exists,
// that it is a directory.
func (v *PathValidator) ValidateDirectory(dir string) error {
	if err := v.ValidatePath(dir); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}
	return nil
}

// realPath evaluates symlinks on the longest existing prefix of path
func realPath(path string) (string, error) {
	var rest []string
	current := filepath.Clean(path)
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		rest = append([]string{filepath.Base(current)}, rest...)
		current = parent
	}
}

func within(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
