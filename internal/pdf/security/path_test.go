package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path"},
		{name: "relative directory", dir: "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(validator.Root()) {
				t.Errorf("Root() = %q, want absolute path", validator.Root())
			}
		})
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	outside := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "in.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outside, "out.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	escape := filepath.Join(tempDir, "escape")
	if err := os.Symlink(outside, escape); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "file in root", path: filepath.Join(tempDir, "in.pdf")},
		{name: "root itself", path: tempDir},
		{name: "not yet created output", path: filepath.Join(subDir, "new", "fixed.pdf")},
		{name: "file outside root", path: filepath.Join(outside, "out.pdf"), wantError: true},
		{name: "dot-dot traversal", path: filepath.Join(tempDir, "..", filepath.Base(outside), "out.pdf"), wantError: true},
		{name: "symlink escaping root", path: filepath.Join(escape, "out.pdf"), wantError: true},
		{name: "new file behind escaping symlink", path: filepath.Join(escape, "new.pdf"), wantError: true},
		{name: "empty path", path: "", wantError: true},
		{name: "prefix sibling", path: tempDir + "-sibling/file.pdf", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError && err == nil {
				t.Errorf("ValidatePath(%q) expected error", tt.path)
			}
			if !tt.wantError && err != nil {
				t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
			}
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tempDir := t.TempDir()
	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	got, err := validator.Resolve("doc.pdf")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if want := filepath.Join(validator.Root(), "doc.pdf"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	if _, err := validator.Resolve("../elsewhere.pdf"); err == nil {
		t.Error("Resolve() should reject relative traversal")
	}
	if _, err := validator.Resolve(""); err == nil {
		t.Error("Resolve() should reject empty path")
	}
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "file.pdf")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	if err := validator.ValidateDirectory(tempDir); err != nil {
		t.Errorf("ValidateDirectory(root) unexpected error: %v", err)
	}
	if err := validator.ValidateDirectory(filepath.Join(tempDir, "missing")); err != nil {
		t.Errorf("ValidateDirectory(missing) unexpected error: %v", err)
	}
	if err := validator.ValidateDirectory(file); err == nil {
		t.Error("ValidateDirectory(file) expected error")
	}
}

func TestPathValidator_MissingRootAcceptsEverything(t *testing.T) {
	validator, err := NewPathValidator(filepath.Join(t.TempDir(), "not-created"))
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	if err := validator.ValidatePath("/etc/passwd"); err != nil {
		t.Errorf("ValidatePath() with missing root unexpected error: %v", err)
	}
}
