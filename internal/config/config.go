package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/plan"
)

// ErrConfig marks every error that comes from loading or validating configuration.
var ErrConfig = errors.New("configuration error")

// Config is the complete stackplan configuration.
type Config struct {
	Remote RemoteConfig `mapstructure:"remote"`
	Push   PushConfig   `mapstructure:"push"`
	Editor EditorConfig `mapstructure:"editor"`
	Notes  NotesConfig  `mapstructure:"notes"`
	Log    LogConfig    `mapstructure:"log"`

	// Onto is the base revision; empty means detect origin/HEAD, main or master
	Onto string `mapstructure:"onto"`
}

// RemoteConfig controls where branches are pushed.
type RemoteConfig struct {
	// Default is used for targets that name no remote
	Default string `mapstructure:"default"`
}

// PushConfig controls how branches are pushed.
type PushConfig struct {
	// Mode is one of "force-with-lease", "force", "normal"
	Mode string `mapstructure:"mode"`
}

// EditorConfig selects the plan editor.
type EditorConfig struct {
	// Command overrides git's core.editor, $VISUAL and $EDITOR
	Command string `mapstructure:"command"`
}

// NotesConfig controls annotation persistence in git notes.
type NotesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Ref     string `mapstructure:"ref"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{Default: "origin"},
		Push:   PushConfig{Mode: string(gitx.PushForceWithLease)},
		Notes:  NotesConfig{Enabled: true, Ref: "refs/notes/stackplan"},
		Log:    LogConfig{Level: "WARN", Format: "text"},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("remote.default", defaults.Remote.Default)
	v.SetDefault("push.mode", defaults.Push.Mode)
	v.SetDefault("editor.command", defaults.Editor.Command)
	v.SetDefault("notes.enabled", defaults.Notes.Enabled)
	v.SetDefault("notes.ref", defaults.Notes.Ref)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("onto", defaults.Onto)
}

// Load reads configuration into a Config. configFile names an explicit file
// that must exist; when empty, paths.Config is read if present. Environment
// variables such as STACKPLAN_PUSH_MODE override file values.
func Load(v *viper.Viper, paths *Paths, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("STACKPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case configFile != "":
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfig, configFile, err)
		}
	case paths != nil:
		if _, err := os.Stat(paths.Config); err == nil {
			v.SetConfigFile(paths.Config)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfig, paths.Config, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfig, errs)
	}

	return &cfg, nil
}

// ValidationError is a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"DEBUG", "INFO", "WARN", "ERROR"}
}

// ValidLogFormats returns the accepted log.format values.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate returns every invalid value in c.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if !plan.ValidRemoteName(c.Remote.Default) {
		errs = append(errs, ValidationError{"remote.default", c.Remote.Default, "must be a non-empty alphanumeric remote name"})
	}
	if !gitx.PushMode(c.Push.Mode).Valid() {
		errs = append(errs, ValidationError{"push.mode", c.Push.Mode, "must be force-with-lease, force or normal"})
	}
	if c.Notes.Enabled && !strings.HasPrefix(c.Notes.Ref, "refs/notes/") {
		errs = append(errs, ValidationError{"notes.ref", c.Notes.Ref, "must start with refs/notes/"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToUpper(c.Log.Level)) {
		errs = append(errs, ValidationError{"log.level", c.Log.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}
	if !slices.Contains(ValidLogFormats(), c.Log.Format) {
		errs = append(errs, ValidationError{"log.format", c.Log.Format, "must be text or json"})
	}

	return errs
}
