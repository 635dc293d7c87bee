package pdf

import (
	"fmt"
	"time"
)

// directoryScanLimit caps the listing returned with server info
const directoryScanLimit = 100

// ServerInfo returns server information, the tool list and the first PDFs
// found in the default directory.
func (s *Service) ServerInfo(serverName, version string) (*ServerInfoResult, error) {
	root := s.Root()

	directoryContents := []FileInfo{}
	if root != "" {
		resultChan := make(chan []FileInfo, 1)
		go func() {
			files, err := s.search.FindPDFsInDirectoryLimited(root, directoryScanLimit)
			if err != nil {
				files = nil
			}
			resultChan <- files
		}()

		// a slow or unreachable directory must not block the tool call
		select {
		case files := <-resultChan:
			if files != nil {
				directoryContents = files
			}
		case <-time.After(5 * time.Second):
		}
	}

	availableTools := []ToolInfo{
		{
			Name:        "pdf_fix_annotations",
			Description: "Restore truncated or missing page annotation lists and write a repaired copy",
			Usage: "Use this tool when annotations, comments or links are missing from some pages. " +
				"The input is never modified.",
			Parameters: "path (required), output (required unless dry_run), force (optional), " +
				"dry_run (optional), verify (optional)",
		},
		{
			Name:        "pdf_analyze_annotations",
			Description: "Report which pages would be repaired without writing a file",
			Usage:       "Use this tool before pdf_fix_annotations to see what would change.",
			Parameters:  "path (required): Path to the PDF file",
		},
		{
			Name:        "pdf_fix_directory",
			Description: "Repair every PDF file directly inside a directory",
			Usage:       "Use this tool for batches. Each file is repaired independently.",
			Parameters: "directory (optional, uses default if empty), output_directory (optional), " +
				"suffix (optional, default \"" + DefaultSuffix + "\"), force (optional)",
		},
		{
			Name:        "pdf_server_info",
			Description: "Get server information, available tools and directory contents",
			Usage:       "Use this tool to discover the default directory and its PDF files.",
			Parameters:  "none",
		},
	}

	usageGuidance := `PDF Annotation Fixer Usage Guide:

1. DISCOVER:
   - Use 'pdf_server_info' to list PDF files in the default directory

2. ANALYZE:
   - Use 'pdf_analyze_annotations' to see which pages lost annotations
   - A page is repairable only when a complete copy of its annotation list
     still exists in the file

3. FIX:
   - Use 'pdf_fix_annotations' with an output path
   - Use 'pdf_fix_directory' for many files at once

IMPORTANT NOTES:
- Relative paths are resolved against the default directory
- Existing output files are only replaced with force=true
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB`

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  root,
		MaxFileSize:       s.maxFileSize,
		AvailableTools:    availableTools,
		DirectoryContents: directoryContents,
		UsageGuidance:     usageGuidance,
	}, nil
}
