// Package config loads the client deployment configuration: which relay
// to dial, which protocol profile the deployment speaks, and the cursor
// and editor tuning knobs.
//
// Files are YAML, validated against an embedded CUE schema before
// decoding so a typo'd policy name or out-of-range font size fails loudly
// at startup instead of surfacing as odd runtime behavior.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mirrorpad/internal/cursor"
	"github.com/roach88/mirrorpad/internal/protocol"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded client configuration.
type Config struct {
	Relay       string        `yaml:"relay"`
	Profile     ProfileConfig `yaml:"profile"`
	Cursor      CursorConfig  `yaml:"cursor"`
	Editor      EditorConfig  `yaml:"editor"`
	ArchivePath string        `yaml:"archive_path"`
}

// ProfileConfig selects or defines the protocol profile. A built-in name
// ("full", "legacy") wins; otherwise the explicit flags apply.
type ProfileConfig struct {
	Name             string `yaml:"name"`
	Bootstrap        bool   `yaml:"bootstrap"`
	RequireUserID    bool   `yaml:"require_user_id"`
	RequireToken     bool   `yaml:"require_token"`
	RequireProblemID bool   `yaml:"require_problem_id"`
}

// CursorConfig tunes the peer cursor tracker.
type CursorConfig struct {
	Policy       string `yaml:"policy"`
	FadeWindowMS int    `yaml:"fade_window_ms"`
}

// EditorConfig carries editor surface settings the core needs.
type EditorConfig struct {
	FontSize int `yaml:"font_size"`
}

// Default returns the configuration used when no file is given: the full
// multi-document profile, persistent cursors, 12px font.
func Default() *Config {
	return &Config{
		Relay:       "ws://localhost:8000/update-code",
		Profile:     ProfileConfig{Name: "full"},
		Cursor:      CursorConfig{Policy: "persistent", FadeWindowMS: 1000},
		Editor:      EditorConfig{FontSize: cursor.DefaultFontSize},
		ArchivePath: "mirrorpad.db",
	}
}

// Load reads, schema-validates, and decodes a YAML config file. Values
// absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes config bytes. The filename is used only in
// error positions.
func Parse(filename string, data []byte) (*Config, error) {
	if err := validateSchema(filename, data); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Cursor.FadeWindowMS <= 0 {
		cfg.Cursor.FadeWindowMS = 1000
	}
	return cfg, nil
}

// validateSchema unifies the YAML document with the embedded #Config
// definition. Definitions are closed, so unknown fields are rejected too.
func validateSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal: config schema does not compile: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("internal: #Config missing from schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	val := ctx.BuildFile(file)
	if err := val.Err(); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	merged := def.Unify(val)
	if err := merged.Err(); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// Protocol resolves the configured protocol profile.
func (c *Config) Protocol() (protocol.Profile, error) {
	switch c.Profile.Name {
	case "", "full":
		return protocol.FullProfile, nil
	case "legacy":
		return protocol.LegacyProfile, nil
	default:
		return protocol.Profile{
			Name:             c.Profile.Name,
			Bootstrap:        c.Profile.Bootstrap,
			RequireUserID:    c.Profile.RequireUserID,
			RequireToken:     c.Profile.RequireToken,
			RequireProblemID: c.Profile.RequireProblemID,
		}, nil
	}
}

// CursorPolicy resolves the configured indicator lifetime policy.
func (c *Config) CursorPolicy() (cursor.Policy, error) {
	switch c.Cursor.Policy {
	case "", "persistent":
		return cursor.PolicyPersistent, nil
	case "ephemeral":
		return cursor.PolicyEphemeral, nil
	default:
		return 0, fmt.Errorf("unknown cursor policy %q", c.Cursor.Policy)
	}
}

// FadeWindow returns the ephemeral fade timeout.
func (c *Config) FadeWindow() time.Duration {
	return time.Duration(c.Cursor.FadeWindowMS) * time.Millisecond
}
