package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/stackplan/internal/clock"
	"github.com/danieljhkim/stackplan/internal/config"
	"github.com/danieljhkim/stackplan/internal/editor"
	"github.com/danieljhkim/stackplan/internal/engine"
	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/logging"
	"github.com/danieljhkim/stackplan/internal/notes"
	"github.com/danieljhkim/stackplan/internal/runner"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// engineOptions describe what a command needs from its engine.
type engineOptions struct {
	// interactive attaches an editor
	interactive bool
}

// newEngineFunc builds the engine for a command. Tests replace it with fakes.
var newEngineFunc = newEngine

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(cmd *cobra.Command, opts engineOptions) (*engine.Engine, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	cfg, err := config.Load(viper.New(), paths, configFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	gitRepo := gitx.NewRealGitRepo()

	var store notes.Store
	if cfg.Notes.Enabled {
		store = notes.NewGitNotesStore(cfg.Notes.Ref)
	}

	var ed editor.Editor
	if opts.interactive {
		cwd, err := currentDir()
		if err != nil {
			return nil, err
		}
		gitEditor, err := gitRepo.ConfigValue(cmd.Context(), cwd, "core.editor")
		if err != nil {
			logger.Warn("could not read core.editor", "error", err)
		}
		command := editor.Resolve(cfg.Editor.Command, gitEditor)
		logger.Debug("using editor", "command", command)
		ed = editor.NewCommand(command)
	}

	// Test output must not mix with machine-readable stdout.
	run := runner.NewShellRunner()
	if structuredOutput() {
		run.Stdout = cmd.ErrOrStderr()
	}

	settings := engine.Settings{
		DefaultRemote: cfg.Remote.Default,
		PushMode:      gitx.PushMode(cfg.Push.Mode),
		Onto:          cfg.Onto,
	}

	return engine.New(gitRepo, store, ed, run, clock.RealClock{}, logger, settings), nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(w, level, cfg.Log.Format)
}

// structuredOutput reports whether stdout carries JSON or YAML.
func structuredOutput() bool {
	return jsonOutput || outputFormat == formatJSON || outputFormat == formatYAML
}

// writeStructured writes v as JSON or YAML when requested and reports whether it did.
func writeStructured(v any) (bool, error) {
	switch {
	case jsonOutput || outputFormat == formatJSON:
		return true, outputJSON(v)
	case outputFormat == formatYAML:
		return true, outputYAML(v)
	default:
		return false, nil
	}
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML outputs a value as YAML to stdout.
func outputYAML(v any) error {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// currentDir returns the working directory commands operate on.
func currentDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
