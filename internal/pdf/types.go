package pdf

import (
	"github.com/a3tai/pdf-annot-fixer/internal/pdf/annots"
)

// Outcome separates the two successful results a repair run can have.
// Failures are reported as errors, never as an Outcome.
type Outcome string

const (
	OutcomeRepaired     Outcome = "repaired"
	OutcomeNothingToFix Outcome = "nothing_to_fix"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FixFileRequest repairs one file into another
type FixFileRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Force  bool   `json:"force,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`
	Verify bool   `json:"verify,omitempty"`
}

// AnalyzeFileRequest reports what a repair would change without writing
type AnalyzeFileRequest struct {
	Path string `json:"path"`
}

// FixDirectoryRequest repairs every PDF directly inside Directory
type FixDirectoryRequest struct {
	Directory       string `json:"directory"`
	OutputDirectory string `json:"output_directory,omitempty"`
	Suffix          string `json:"suffix,omitempty"`
	Workers         int    `json:"workers,omitempty"`
	Force           bool   `json:"force,omitempty"`
	Verify          bool   `json:"verify,omitempty"`
}

// Response Types

// FixFileResult is the outcome of one repaired (or analyzed) file
type FixFileResult struct {
	Input         string              `json:"input"`
	Output        string              `json:"output,omitempty"`
	Size          int64               `json:"size"`
	Pages         int                 `json:"pages"`
	Candidates    int                 `json:"candidates"`
	Repaired      int                 `json:"repaired"`
	Repairs       []annots.PageRepair `json:"repairs,omitempty"`
	Outcome       Outcome             `json:"outcome"`
	DryRun        bool                `json:"dry_run"`
	OutputWritten bool                `json:"output_written"`
	Verified      bool                `json:"verified"`
}

// FixDirectoryItem is the per-file entry of a directory run
type FixDirectoryItem struct {
	Input    string  `json:"input"`
	Output   string  `json:"output,omitempty"`
	Repaired int     `json:"repaired"`
	Outcome  Outcome `json:"outcome,omitempty"`
	Error    string  `json:"error,omitempty"`

	err error
}

// FixDirectoryResult summarizes a directory run
type FixDirectoryResult struct {
	Directory       string             `json:"directory"`
	OutputDirectory string             `json:"output_directory"`
	Files           []FixDirectoryItem `json:"files"`
	TotalFiles      int                `json:"total_files"`
	RepairedFiles   int                `json:"repaired_files"`
	FailedFiles     int                `json:"failed_files"`
	TotalRepaired   int                `json:"total_repaired"`

	err error
}

// Err returns every per-file failure combined, or nil
func (r *FixDirectoryResult) Err() error {
	return r.err
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
