package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeCLI {
		t.Errorf("DefaultConfig() Mode = %v, want %v", cfg.Mode, ModeCLI)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("DefaultConfig() Host = %v, want %v", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("DefaultConfig() Port = %v, want %v", cfg.Port, DefaultPort)
	}
	if cfg.Suffix != DefaultSuffix {
		t.Errorf("DefaultConfig() Suffix = %v, want %v", cfg.Suffix, DefaultSuffix)
	}
	if cfg.Workers < 1 {
		t.Errorf("DefaultConfig() Workers = %v, want >= 1", cfg.Workers)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("DefaultConfig() LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("DefaultConfig() MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.ServerName != "pdf-annot-fixer" {
		t.Errorf("DefaultConfig() ServerName = %v, want pdf-annot-fixer", cfg.ServerName)
	}
	if cfg.PDFDirectory == "" {
		t.Error("DefaultConfig() PDFDirectory should not be empty")
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "file.pdf")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	valid := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.PDFDirectory = tempDir
		cfg.Input = "in.pdf"
		cfg.Output = "out.pdf"
		mutate(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "cli with input and output", config: valid(func(c *Config) {})},
		{name: "cli dry run without output", config: valid(func(c *Config) { c.Output = ""; c.DryRun = true })},
		{name: "cli without input", config: valid(func(c *Config) { c.Input = "" }), wantErr: "input file is required"},
		{name: "cli without output", config: valid(func(c *Config) { c.Output = "" }), wantErr: "output file is required"},
		{name: "cli output equals input", config: valid(func(c *Config) { c.Output = c.Input }), wantErr: "must differ"},
		{name: "stdio mode", config: valid(func(c *Config) { c.Mode = ModeStdio })},
		{name: "server mode", config: valid(func(c *Config) { c.Mode = ModeServer })},
		{name: "batch mode", config: valid(func(c *Config) { c.Mode = ModeBatch })},
		{name: "invalid mode", config: valid(func(c *Config) { c.Mode = "invalid" }), wantErr: "mode must be one of"},
		{name: "server port too low", config: valid(func(c *Config) { c.Mode = ModeServer; c.Port = 0 }), wantErr: "port must be between"},
		{name: "server port too high", config: valid(func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }), wantErr: "port must be between"},
		{name: "port ignored outside server", config: valid(func(c *Config) { c.Port = 0 })},
		{name: "zero max file size", config: valid(func(c *Config) { c.MaxFileSize = 0 }), wantErr: "maximum file size must be positive"},
		{name: "invalid log level", config: valid(func(c *Config) { c.LogLevel = "verbose" }), wantErr: "invalid log level"},
		{name: "batch zero workers", config: valid(func(c *Config) { c.Mode = ModeBatch; c.Workers = 0 }), wantErr: "workers must be at least 1"},
		{
			name:    "batch missing directory",
			config:  valid(func(c *Config) { c.Mode = ModeBatch; c.PDFDirectory = filepath.Join(tempDir, "missing") }),
			wantErr: "cannot access PDF directory",
		},
		{
			name:    "batch directory is a file",
			config:  valid(func(c *Config) { c.Mode = ModeBatch; c.PDFDirectory = file }),
			wantErr: "is not a directory",
		},
		{name: "stdio empty directory", config: valid(func(c *Config) { c.Mode = ModeStdio; c.PDFDirectory = "" }), wantErr: "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "new", "pdfs")

	cfg := DefaultConfig()
	cfg.Mode = ModeStdio
	cfg.PDFDirectory = newDir

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	info, err := os.Stat(newDir)
	if err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 9090}
	if got := cfg.Address(); got != "localhost:9090" {
		t.Errorf("Address() = %v, want localhost:9090", got)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode                             string
		cli, batch, stdio, server, isMCP bool
	}{
		{mode: ModeCLI, cli: true},
		{mode: ModeBatch, batch: true},
		{mode: ModeStdio, stdio: true, isMCP: true},
		{mode: ModeServer, server: true, isMCP: true},
		{mode: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsCLIMode(); got != tt.cli {
				t.Errorf("IsCLIMode() = %v, want %v", got, tt.cli)
			}
			if got := cfg.IsBatchMode(); got != tt.batch {
				t.Errorf("IsBatchMode() = %v, want %v", got, tt.batch)
			}
			if got := cfg.IsStdioMode(); got != tt.stdio {
				t.Errorf("IsStdioMode() = %v, want %v", got, tt.stdio)
			}
			if got := cfg.IsServerMode(); got != tt.server {
				t.Errorf("IsServerMode() = %v, want %v", got, tt.server)
			}
			if got := cfg.IsMCPMode(); got != tt.isMCP {
				t.Errorf("IsMCPMode() = %v, want %v", got, tt.isMCP)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:         ModeServer,
		Host:         "127.0.0.1",
		Port:         8080,
		PDFDirectory: "/tmp/pdfs",
		Workers:      4,
		LogLevel:     "info",
		MaxFileSize:  1024,
	}

	got := cfg.String()
	for _, want := range []string{"Mode: server", "Port: 8080", "PDFDirectory: /tmp/pdfs", "Workers: 4"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestApplyPositionalArgs(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		args       []string
		wantInput  string
		wantOutput string
		wantErr    bool
	}{
		{name: "no args", cfg: Config{Mode: ModeCLI}},
		{name: "input only", cfg: Config{Mode: ModeCLI}, args: []string{"a.pdf"}, wantInput: "a.pdf"},
		{name: "input and output", cfg: Config{Mode: ModeCLI}, args: []string{"a.pdf", "b.pdf"}, wantInput: "a.pdf", wantOutput: "b.pdf"},
		{
			name: "output after input flag", cfg: Config{Mode: ModeCLI, Input: "a.pdf"}, args: []string{"b.pdf"},
			wantInput: "a.pdf", wantOutput: "b.pdf",
		},
		{
			name: "input with output flag", cfg: Config{Mode: ModeCLI, Output: "b.pdf"}, args: []string{"a.pdf"},
			wantInput: "a.pdf", wantOutput: "b.pdf",
		},
		{name: "both flags and args", cfg: Config{Mode: ModeCLI, Input: "a.pdf", Output: "b.pdf"}, args: []string{"c.pdf"}, wantErr: true},
		{name: "too many", cfg: Config{Mode: ModeCLI}, args: []string{"a", "b", "c"}, wantErr: true},
		{name: "args outside cli mode", cfg: Config{Mode: ModeStdio}, args: []string{"a.pdf"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := applyPositionalArgs(&cfg, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Error("applyPositionalArgs() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyPositionalArgs() unexpected error: %v", err)
			}
			if cfg.Input != tt.wantInput || cfg.Output != tt.wantOutput {
				t.Errorf("got input=%q output=%q, want input=%q output=%q",
					cfg.Input, cfg.Output, tt.wantInput, tt.wantOutput)
			}
		})
	}
}
