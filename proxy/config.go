// Package proxy is the standalone reverse-proxy delivery adapter: it
// forwards everything to an origin and rewrites HTML responses through the
// mutation engine when the request opts in with a seed.
package proxy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/iwa/mutate"
)

// Deployment modes. Server-side mutation and the client runtime are
// mutually exclusive per deployment.
const (
	// ModeMutate rewrites HTML server-side before it reaches the client.
	ModeMutate = "mutate"
	// ModeClientRuntime leaves origin HTML untouched and injects a
	// configuration script plus a runtime asset tag; mutation is
	// delegated to client-side code.
	ModeClientRuntime = "client-runtime"
)

// Config is the proxy deployment configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	Origin    string `yaml:"origin"`
	ProjectID string `yaml:"project_id"`
	Mode      string `yaml:"mode"` // mutate | client-runtime
	SiteKey   string `yaml:"site_key"`

	PaletteDir    string `yaml:"palette_dir"`
	AuditDir      string `yaml:"audit_dir"`
	AuditMarkdown bool   `yaml:"audit_markdown"`
	AuditIndex    string `yaml:"audit_index"` // sqlite file, empty disables

	Phases mutate.PhaseConfig `yaml:"phases"`

	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoadConfigFile reads a YAML proxy configuration.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("proxy: parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults normalises zero values.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8880"
	}
	if c.Mode == "" {
		c.Mode = ModeMutate
	}
	if c.ProjectID == "" {
		c.ProjectID = "default"
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = 30 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 16 << 20
	}
	if !c.Phases.AnyEnabled() {
		c.Phases = mutate.DefaultPhaseConfig()
	}
}

// Validate rejects configurations the proxy cannot run with.
func (c *Config) Validate() error {
	if c.Origin == "" {
		return fmt.Errorf("proxy: origin is required")
	}
	if c.Mode != ModeMutate && c.Mode != ModeClientRuntime {
		return fmt.Errorf("proxy: unknown mode %q", c.Mode)
	}
	return nil
}
