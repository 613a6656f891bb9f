// Package config loads the sourcerer.yaml document that drives a
// generation run: database connection, output layout rules, and the
// ordered plugin list.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DanielFGray/pg-sourcerer-sub001/layout"
)

// DefaultPath is where the CLI looks for configuration when no --config
// flag is given.
const DefaultPath = "sourcerer.yaml"

// Database is the introspection connection block.
type Database struct {
	// Dialect is one of "postgres", "mysql", "sqlite".
	Dialect string `yaml:"dialect"`
	// URL is the driver connection string. The SOURCERER_DATABASE_URL
	// environment variable overrides it.
	URL string `yaml:"url"`
	// Schemas restricts introspection to these namespaces. Defaults to
	// ["public"] for postgres.
	Schemas []string `yaml:"schemas"`
}

// Output configures the emitted tree.
type Output struct {
	// Root is the directory generated files are written under.
	Root string `yaml:"root"`
	// ImportExtension replaces ".ts" in synthesized relative imports.
	ImportExtension *string `yaml:"importExtension"`
	// Header overrides the generated-file header comment.
	Header *string `yaml:"header"`
}

// RuleConfig is one file-assignment rule.
type RuleConfig struct {
	// Pattern is a capability string prefix, e.g. "queries:".
	Pattern string `yaml:"pattern"`
	// Dir is the output directory relative to the output root.
	Dir string `yaml:"dir"`
	// Filename is a template over {entity}, {base}, {variant}, {schema}
	// and {folder}, or a literal filename.
	Filename string `yaml:"filename"`
}

// PluginConfig names one plugin and its options, in execution order.
type PluginConfig struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

// Config is the full document.
type Config struct {
	Database Database       `yaml:"database"`
	Snapshot string         `yaml:"snapshot"`
	Output   Output         `yaml:"output"`
	Rules    []RuleConfig   `yaml:"rules"`
	Default  *RuleConfig    `yaml:"default"`
	Plugins  []PluginConfig `yaml:"plugins"`
	Hints    map[string]any `yaml:"hints"`
}

// Option mutates a loaded configuration before validation.
type Option func(*Config) error

// WithDatabaseURL overrides the connection string.
func WithDatabaseURL(url string) Option {
	return func(c *Config) error {
		if url != "" {
			c.Database.URL = url
		}
		return nil
	}
}

// WithOutputRoot overrides the output directory.
func WithOutputRoot(root string) Option {
	return func(c *Config) error {
		if root != "" {
			c.Output.Root = root
		}
		return nil
	}
}

// Parse decodes a YAML document and applies options.
func Parse(data []byte, opts ...Option) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("sourcerer: parse config: %w", err)
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses a configuration file.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sourcerer: read config: %w", err)
	}
	return Parse(data, opts...)
}

func (c *Config) applyDefaults() {
	if url := os.Getenv("SOURCERER_DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if c.Database.Dialect == "" {
		c.Database.Dialect = "postgres"
	}
	if len(c.Database.Schemas) == 0 && c.Database.Dialect == "postgres" {
		c.Database.Schemas = []string{"public"}
	}
	if c.Output.Root == "" {
		c.Output.Root = "src/generated"
	}
}

// Validate rejects documents the pipeline cannot run.
func (c *Config) Validate() error {
	switch c.Database.Dialect {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("sourcerer: unsupported dialect %q; use postgres, mysql, or sqlite", c.Database.Dialect)
	}
	if c.Database.URL == "" && c.Snapshot == "" {
		return fmt.Errorf("sourcerer: config needs a database url or a snapshot path")
	}
	if len(c.Plugins) == 0 {
		return fmt.Errorf("sourcerer: config lists no plugins")
	}
	seen := make(map[string]bool, len(c.Plugins))
	for _, p := range c.Plugins {
		if p.Name == "" {
			return fmt.Errorf("sourcerer: plugin entry without a name")
		}
		if seen[p.Name] {
			return fmt.Errorf("sourcerer: plugin %q listed twice", p.Name)
		}
		seen[p.Name] = true
	}
	for i, r := range c.Rules {
		if r.Pattern == "" {
			return fmt.Errorf("sourcerer: rule %d has no pattern", i)
		}
		if r.Filename == "" {
			return fmt.Errorf("sourcerer: rule %d (%s) has no filename", i, r.Pattern)
		}
	}
	if c.Default != nil && c.Default.Filename == "" {
		return fmt.Errorf("sourcerer: default rule has no filename")
	}
	return nil
}

// LayoutRules converts the rule block into the layout package's form.
func (c *Config) LayoutRules() []layout.Rule {
	rules := make([]layout.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, layout.Rule{
			Pattern: r.Pattern,
			Dir:     r.Dir,
			Name:    layout.TemplateName(r.Filename),
		})
	}
	return rules
}

// DefaultRule converts the default rule block, or nil.
func (c *Config) DefaultRule() *layout.Rule {
	if c.Default == nil {
		return nil
	}
	return &layout.Rule{
		Pattern: c.Default.Pattern,
		Dir:     c.Default.Dir,
		Name:    layout.TemplateName(c.Default.Filename),
	}
}
