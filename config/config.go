// Package config loads tog.yaml, the per-project interpreter settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tog-lang/tog/lang"
)

// FileName is the name Find looks for.
const FileName = "tog.yaml"

// Config holds interpreter settings. Zero values are replaced by defaults.
type Config struct {
	// Path is the file the settings were read from, empty for defaults.
	Path string `yaml:"-"`

	Entry            string `yaml:"entry"`
	BatchSize        int    `yaml:"batch_size"`
	CheckAnnotations *bool  `yaml:"check_annotations"`
	REPL             REPL   `yaml:"repl"`
}

// REPL configures the interactive prompt.
type REPL struct {
	History string `yaml:"history"`
	Prompt  string `yaml:"prompt"`
}

// ValidationError aggregates invalid settings.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString("invalid settings:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the settings used when no tog.yaml is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Annotations reports whether type annotations are checked at run time.
func (c *Config) Annotations() bool {
	return c.CheckAnnotations == nil || *c.CheckAnnotations
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
			return nil, verr
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Decode reads settings from r. Unknown keys are rejected; an empty
// document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Find looks for tog.yaml in dir and its parents. It returns the defaults
// when none exists.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.BatchSize < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("batch_size must be positive, got %d", c.BatchSize))
	}
	if c.Entry != "" && strings.ContainsAny(c.Entry, " \t\n:(){}") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q is not a function name", c.Entry))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Entry == "" {
		c.Entry = "main"
	}
	if c.BatchSize == 0 {
		c.BatchSize = lang.DefaultBatchSize
	}
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "tog> "
	}
	if c.REPL.History == "" {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			c.REPL.History = filepath.Join(home, ".tog_history")
		}
	} else if strings.HasPrefix(c.REPL.History, "~/") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			c.REPL.History = filepath.Join(home, c.REPL.History[2:])
		}
	}
}
