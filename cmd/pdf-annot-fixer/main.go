package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-annot-fixer/internal/config"
	"github.com/a3tai/pdf-annot-fixer/internal/mcp"
	"github.com/a3tai/pdf-annot-fixer/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// serviceLogger returns the logger handed to the PDF service. CLI and batch
// runs only log per-file progress when debug is enabled.
func serviceLogger(cfg *config.Config) *log.Logger {
	if cfg.IsMCPMode() || cfg.IsDebug() {
		return log.Default()
	}
	return log.New(io.Discard, "", 0)
}

// serviceRoot confines MCP and batch paths to the configured directory.
// Single file repairs take paths as given.
func serviceRoot(cfg *config.Config) string {
	if cfg.IsCLIMode() {
		return ""
	}
	return cfg.PDFDirectory
}

// runFile repairs a single file and prints the outcome
func runFile(svc *pdf.Service, cfg *config.Config, stdout io.Writer) error {
	result, err := svc.FixFile(pdf.FixFileRequest{
		Input:  cfg.Input,
		Output: cfg.Output,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Verify: cfg.Verify,
	})
	if err != nil {
		return err
	}

	switch {
	case result.DryRun && result.Outcome == pdf.OutcomeRepaired:
		fmt.Fprintf(stdout, "would recover %d annotations\n", result.Repaired)
	case result.DryRun:
		fmt.Fprintln(stdout, "no annotations need recovery")
	case result.Outcome == pdf.OutcomeRepaired:
		fmt.Fprintf(stdout, "recovered %d annotations\n", result.Repaired)
	default:
		fmt.Fprintln(stdout, "no annotations needed recovery")
	}
	for _, r := range result.Repairs {
		fmt.Fprintf(stdout, "  page %d: %d -> %d annotations (from object %s)\n", r.Page, r.Before, r.After, r.Source)
	}
	return nil
}

// runBatch repairs every PDF in the configured directory. Per-file failures
// are printed and returned combined.
func runBatch(svc *pdf.Service, cfg *config.Config, stdout io.Writer) error {
	result, err := svc.FixDirectory(pdf.FixDirectoryRequest{
		Directory:       cfg.PDFDirectory,
		OutputDirectory: cfg.OutputDirectory,
		Suffix:          cfg.Suffix,
		Workers:         cfg.Workers,
		Force:           cfg.Force,
		Verify:          cfg.Verify,
	})
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(stdout, "%s: error: %s\n", f.Input, f.Error)
		case f.Outcome == pdf.OutcomeRepaired:
			fmt.Fprintf(stdout, "%s: recovered %d annotations -> %s\n", f.Input, f.Repaired, f.Output)
		default:
			fmt.Fprintf(stdout, "%s: no annotations needed recovery -> %s\n", f.Input, f.Output)
		}
	}
	fmt.Fprintf(stdout, "%d files, %d repaired, %d failed, %d annotations recovered\n",
		result.TotalFiles, result.RepairedFiles, result.FailedFiles, result.TotalRepaired)

	return result.Err()
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// the parent process controls our lifecycle by closing stdin
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		pflag.Usage()
		os.Exit(2)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := pdf.NewService(afero.NewOsFs(), cfg.MaxFileSize, serviceRoot(cfg), serviceLogger(cfg))
	if err != nil {
		log.Fatalf("Failed to create PDF service: %v", err)
	}

	switch {
	case cfg.IsCLIMode():
		if err := runFile(pdfService, cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "unable to fix annotations: %v\n", err)
			os.Exit(1)
		}
		return
	case cfg.IsBatchMode():
		if err := runBatch(pdfService, cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "unable to fix annotations: %v\n", err)
			os.Exit(1)
		}
		return
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Annotation Fixer\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
