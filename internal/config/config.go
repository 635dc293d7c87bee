package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI    = "cli"
	ModeStdio  = "stdio"
	ModeServer = "server"
	ModeBatch  = "batch"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultSuffix      = "-fixed"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_ANNOT"
)

// ErrVersionRequested is returned by LoadFromFlags when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the annotation fixer
type Config struct {
	// Mode selects the front end: "cli", "batch", "stdio" or "server"
	Mode string

	// Single file repair (cli mode)
	Input  string
	Output string
	Force  bool
	DryRun bool
	Verify bool

	// MCP server configuration
	Host string
	Port int

	// Root directory for MCP tools and batch runs
	PDFDirectory string

	// Batch configuration
	OutputDirectory string
	Suffix          string
	Workers         int

	// Application configuration
	ConfigFile  string
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		Suffix:       DefaultSuffix,
		Workers:      runtime.NumCPU(),
		Version:      "1.0.0",
		ServerName:   "pdf-annot-fixer",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags, environment and an optional
// config file, in that order of precedence.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)
	if err := applyPositionalArgs(cfg, pflag.Args()); err != nil {
		return nil, err
	}

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("out-dir", cfg.OutputDirectory)
	viper.SetDefault("suffix", cfg.Suffix)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' single file, 'batch' directory, "+
		"'stdio' MCP over standard I/O, 'server' MCP over HTTP/SSE")
	pflag.String("input", "", "Input PDF file (cli mode; also the first positional argument)")
	pflag.String("output", "", "Output PDF file (cli mode; also the second positional argument)")
	pflag.Bool("force", false, "Overwrite existing output files")
	pflag.Bool("dry-run", false, "Report what would be repaired without writing output")
	pflag.Bool("verify", false, "Re-read written output with an independent parser")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files (batch and MCP modes)")
	pflag.String("out-dir", cfg.OutputDirectory, "Output directory for batch mode (defaults to --dir)")
	pflag.String("suffix", cfg.Suffix, "Suffix added to output file names in batch mode")
	pflag.Int("workers", cfg.Workers, "Number of files repaired in parallel in batch mode")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("config", "", "Optional config file (yaml, json, toml)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "input", "output", "force", "dry-run", "verify", "host", "port",
		"dir", "out-dir", "suffix", "workers", "loglevel", "maxfilesize", "config",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Annotation Fixer - restores truncated page annotation lists\n\n")
		fmt.Fprintf(os.Stderr, "  %s [options] <input.pdf> <output.pdf>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s in.pdf out.pdf                          # repair one file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dry-run in.pdf                        # report only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=batch --dir=/pdfs --out-dir=/fixed # repair a directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/pdfs                # MCP over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081               # MCP over HTTP/SSE\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_MODE        Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_DIR         PDF directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_WORKERS     Batch workers\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_ANNOT_MAXFILESIZE Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// readConfigFile merges the file named by --config, if any
func readConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Input = viper.GetString("input")
	cfg.Output = viper.GetString("output")
	cfg.Force = viper.GetBool("force")
	cfg.DryRun = viper.GetBool("dry-run")
	cfg.Verify = viper.GetBool("verify")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("out-dir")
	cfg.Suffix = viper.GetString("suffix")
	cfg.Workers = viper.GetInt("workers")
	cfg.ConfigFile = viper.GetString("config")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// applyPositionalArgs fills Input and Output from "<input> <output>" when the
// flags left them empty.
func applyPositionalArgs(cfg *Config, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cfg.Mode != ModeCLI {
		return fmt.Errorf("unexpected arguments in %s mode: %v", cfg.Mode, args)
	}
	if len(args) > 2 {
		return fmt.Errorf("too many arguments: expected <input> <output>, got %d", len(args))
	}

	rest := args
	if cfg.Input == "" {
		cfg.Input, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 && cfg.Output == "" {
		cfg.Output, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return errors.New("input and output given both as flags and as arguments")
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCLI, ModeStdio, ModeServer, ModeBatch:
	default:
		return errors.New("mode must be one of 'cli', 'batch', 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	switch c.Mode {
	case ModeCLI:
		if c.Input == "" {
			return errors.New("input file is required")
		}
		if c.Output == "" && !c.DryRun {
			return errors.New("output file is required unless --dry-run is set")
		}
		if c.Output != "" && c.Output == c.Input {
			return errors.New("output file must differ from input file")
		}
	case ModeBatch:
		if c.Workers < 1 {
			return errors.New("workers must be at least 1")
		}
		if c.PDFDirectory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		info, err := os.Stat(c.PDFDirectory)
		if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
		}
	case ModeStdio, ModeServer:
		if c.PDFDirectory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, Workers: %d, "+
		"LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.Workers, c.LogLevel, c.MaxFileSize)
}

// IsCLIMode returns true for single file repair
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsBatchMode returns true for directory repair without an MCP front end
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsMCPMode returns true when an MCP server should be started
func (c *Config) IsMCPMode() bool {
	return c.IsStdioMode() || c.IsServerMode()
}
