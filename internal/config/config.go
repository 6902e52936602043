// Package config loads the shell's ambient settings: the history file
// location and capacity, and an optional prompt override. Aliases and
// startup scripting are not handled here; this mirrors a conventional
// file-plus-env-override config loader almost exactly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the shell's ambient configuration.
type Config struct {
	// HistoryFile is the path history is loaded from and persisted to.
	// Empty means history is not persisted across sessions.
	HistoryFile string `yaml:"history_file"`
	// HistoryCapacity caps the in-memory history buffer.
	HistoryCapacity int `yaml:"history_capacity"`
	// Prompt overrides the default "$ " prompt.
	Prompt string `yaml:"prompt"`
}

// defaultHistoryFile returns $HOME/.my_shell_history, falling back to the
// bare relative name if HOME cannot be resolved.
func defaultHistoryFile() string {
	const name = ".my_shell_history"
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return name
	}
	return filepath.Join(home, name)
}

func Default() *Config {
	return &Config{
		HistoryFile:     defaultHistoryFile(),
		HistoryCapacity: 1000,
		Prompt:          "$ ",
	}
}

// ConfigDir returns the directory the config file lives in. The default
// history file is not kept here; it is $HOME/.my_shell_history.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".corvus-shell"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads config.yaml if present, then applies environment overrides:
// HISTFILE for the history path (the readline/bash convention), CORVUS_HISTSIZE
// for the capacity, and CORVUS_PROMPT for the prompt.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if hist := os.Getenv("HISTFILE"); hist != "" {
		cfg.HistoryFile = hist
	}
	if size := os.Getenv("CORVUS_HISTSIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.HistoryCapacity = n
		}
	}
	if prompt := os.Getenv("CORVUS_PROMPT"); prompt != "" {
		cfg.Prompt = prompt
	}

	return cfg, nil
}

// Save writes cfg to ~/.corvus-shell/config.yaml.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
