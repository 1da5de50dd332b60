package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) *Paths {
	t.Helper()
	root := t.TempDir()
	paths := &Paths{Root: root, Config: filepath.Join(root, "config.yaml")}
	if body != "" {
		require.NoError(t, os.WriteFile(paths.Config, []byte(body), 0644))
	}
	return paths
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), writeConfig(t, ""), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	paths := writeConfig(t, `
remote:
  default: fork
push:
  mode: force
editor:
  command: nano
notes:
  enabled: false
log:
  level: debug
  format: json
onto: develop
`)

	cfg, err := Load(viper.New(), paths, "")
	require.NoError(t, err)

	assert.Equal(t, "fork", cfg.Remote.Default)
	assert.Equal(t, "force", cfg.Push.Mode)
	assert.Equal(t, "nano", cfg.Editor.Command)
	assert.False(t, cfg.Notes.Enabled)
	assert.Equal(t, "refs/notes/stackplan", cfg.Notes.Ref, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "develop", cfg.Onto)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	paths := writeConfig(t, "push:\n  mode: force\n")
	t.Setenv("STACKPLAN_PUSH_MODE", "normal")
	t.Setenv("STACKPLAN_REMOTE_DEFAULT", "upstream")

	cfg, err := Load(viper.New(), paths, "")
	require.NoError(t, err)
	assert.Equal(t, "normal", cfg.Push.Mode)
	assert.Equal(t, "upstream", cfg.Remote.Default)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(file, []byte("remote:\n  default: mine\n"), 0644))

		cfg, err := Load(viper.New(), writeConfig(t, "remote:\n  default: ignored\n"), file)
		require.NoError(t, err)
		assert.Equal(t, "mine", cfg.Remote.Default)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(viper.New(), nil, filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.Is(err, ErrConfig))
	})
}

func TestLoad_Invalid(t *testing.T) {
	paths := writeConfig(t, "push:\n  mode: yolo\nlog:\n  format: xml\n")

	_, err := Load(viper.New(), paths, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "push.mode")
	assert.Contains(t, err.Error(), "log.format")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty remote", func(c *Config) { c.Remote.Default = "" }, "remote.default"},
		{"remote with punctuation", func(c *Config) { c.Remote.Default = "my-fork" }, "remote.default"},
		{"bad push mode", func(c *Config) { c.Push.Mode = "always" }, "push.mode"},
		{"bad notes ref", func(c *Config) { c.Notes.Ref = "refs/heads/x" }, "notes.ref"},
		{"bad log level", func(c *Config) { c.Log.Level = "TRACE" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}

	t.Run("notes ref ignored when disabled", func(t *testing.T) {
		cfg := Default()
		cfg.Notes.Enabled = false
		cfg.Notes.Ref = ""
		assert.Empty(t, cfg.Validate())
	})

	t.Run("lowercase log level accepted", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Level = "debug"
		assert.Empty(t, cfg.Validate())
	})
}
