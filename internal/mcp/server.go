package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/a3tai/pdf-annot-fixer/internal/config"
	"github.com/a3tai/pdf-annot-fixer/internal/descriptions"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf"
	pdferrors "github.com/a3tai/pdf-annot-fixer/internal/pdf/errors"
)

// shutdownTimeout bounds how long the SSE server waits for open sessions
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fixTool := mcp.NewTool(
		"pdf_fix_annotations",
		mcp.WithDescription(descriptions.PDFFixAnnotationsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file to repair (relative paths use the default directory)"),
		),
		mcp.WithString("output",
			mcp.Description("Path of the repaired copy (required unless dry_run is true)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Replace the output file if it already exists"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Only report what would be repaired"),
		),
		mcp.WithBoolean("verify",
			mcp.Description("Re-read the written output with an independent parser"),
		),
	)
	s.mcpServer.AddTool(fixTool, s.handleFixAnnotations)

	analyzeTool := mcp.NewTool(
		"pdf_analyze_annotations",
		mcp.WithDescription(descriptions.PDFAnalyzeAnnotationsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeAnnotations)

	fixDirectoryTool := mcp.NewTool(
		"pdf_fix_directory",
		mcp.WithDescription(descriptions.PDFFixDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory containing the PDF files (uses default if empty)"),
		),
		mcp.WithString("output_directory",
			mcp.Description("Directory for repaired copies (defaults to the input directory)"),
		),
		mcp.WithString("suffix",
			mcp.Description("Suffix added to repaired file names (default \""+pdf.DefaultSuffix+"\")"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Replace existing output files"),
		),
	)
	s.mcpServer.AddTool(fixDirectoryTool, s.handleFixDirectory)

	serverInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.PDFServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleFixAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	req := pdf.FixFileRequest{
		Input:  path,
		Output: cast.ToString(args["output"]),
		Force:  cast.ToBool(args["force"]),
		DryRun: cast.ToBool(args["dry_run"]),
		Verify: cast.ToBool(args["verify"]),
	}
	result, err := s.pdfService.FixFile(req)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	return mcp.NewToolResultText(s.formatFixFileResult(result)), nil
}

func (s *Server) handleAnalyzeAnnotations(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.AnalyzeFile(pdf.AnalyzeFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	return mcp.NewToolResultText(s.formatFixFileResult(result)), nil
}

func (s *Server) handleFixDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir := cast.ToString(args["directory"]); dir != "" {
		directory = dir
	}

	req := pdf.FixDirectoryRequest{
		Directory:       directory,
		OutputDirectory: cast.ToString(args["output_directory"]),
		Suffix:          cast.ToString(args["suffix"]),
		Workers:         s.config.Workers,
		Force:           cast.ToBool(args["force"]),
	}
	result, err := s.pdfService.FixDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	return mcp.NewToolResultText(s.formatFixDirectoryResult(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// formatError names the phase a repair failed in
func formatError(err error) string {
	return fmt.Sprintf("unable to fix annotations (%s failed): %v", pdferrors.TypeOf(err).Phase(), err)
}

// Formatting methods
func (s *Server) formatFixFileResult(result *pdf.FixFileResult) string {
	var b strings.Builder

	switch {
	case result.DryRun && result.Outcome == pdf.OutcomeRepaired:
		fmt.Fprintf(&b, "Analysis of %s: %d annotations can be recovered\n", result.Input, result.Repaired)
	case result.DryRun:
		fmt.Fprintf(&b, "Analysis of %s: no annotations need recovery\n", result.Input)
	case result.Outcome == pdf.OutcomeRepaired:
		fmt.Fprintf(&b, "Recovered %d annotations: %s -> %s\n", result.Repaired, result.Input, result.Output)
	default:
		fmt.Fprintf(&b, "No annotations needed recovery: %s -> %s\n", result.Input, result.Output)
	}

	fmt.Fprintf(&b, "Outcome: %s\n", result.Outcome)
	fmt.Fprintf(&b, "Pages: %d\n", result.Pages)
	fmt.Fprintf(&b, "Candidate arrays: %d\n", result.Candidates)
	if result.Verified {
		b.WriteString("Verified: output re-read successfully\n")
	}

	if len(result.Repairs) > 0 {
		b.WriteString("\nRepaired pages:\n")
		for _, r := range result.Repairs {
			fmt.Fprintf(&b, "  Page %d (object %s): %d -> %d annotations, copied from object %s\n",
				r.Page, r.PageID, r.Before, r.After, r.Source)
		}
	}

	return b.String()
}

func (s *Server) formatFixDirectoryResult(result *pdf.FixDirectoryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Directory: %s\n", result.Directory)
	fmt.Fprintf(&b, "Output directory: %s\n", result.OutputDirectory)
	fmt.Fprintf(&b, "Files: %d, repaired: %d, failed: %d, annotations recovered: %d\n",
		result.TotalFiles, result.RepairedFiles, result.FailedFiles, result.TotalRepaired)

	if len(result.Files) == 0 {
		b.WriteString("\nNo PDF files found\n")
		return b.String()
	}

	b.WriteString("\nFiles:\n")
	for i, f := range result.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(&b, "%d. %s: error: %s\n", i+1, f.Input, f.Error)
		case f.Outcome == pdf.OutcomeRepaired:
			fmt.Fprintf(&b, "%d. %s: recovered %d annotations -> %s\n", i+1, f.Input, f.Repaired, f.Output)
		default:
			fmt.Fprintf(&b, "%d. %s: nothing to fix -> %s\n", i+1, f.Input, f.Output)
		}
	}

	return b.String()
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode and returns when ctx is
// cancelled or the transport stops.
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("mode %q does not run an MCP server", s.config.Mode)
	}
}

// runStdioMode serves MCP over the configured stdin and stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF annotation fixer in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.Default())
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	log.Printf("Starting PDF annotation fixer SSE server on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Start may not have created its http.Server yet, so retry until it returns
	for {
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down sse server: %w", err)
		}
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve sse: %w", err)
			}
			log.Printf("SSE server stopped")
			return nil
		case <-time.After(50 * time.Millisecond):
		case <-shutdownCtx.Done():
			return fmt.Errorf("failed to shut down sse server: %w", shutdownCtx.Err())
		}
	}
}
