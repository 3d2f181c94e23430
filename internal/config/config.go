// Package config loads and merges pwnmux settings from JSON files.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Hotkeys names the keys that drive replay navigation, in Bubble Tea
// key syntax.
type Hotkeys struct {
	Prev string `json:"prev"`
	Next string `json:"next"`
	Last string `json:"last"`
}

// Config holds all configurable pwnmux settings.
type Config struct {
	// HistoryLimit caps each view's replay history; 0 keeps it unbounded.
	HistoryLimit int `json:"history_limit"`
	TabStop      int `json:"tab_stop"`
	// HideHeaders turns off the per-pane view-name labels.
	HideHeaders bool   `json:"hide_headers"`
	HeaderColor string `json:"header_color"` // ANSI 256 color index
	// DisableLayouts stops automatic layout installation when a
	// debugger banner is recognized.
	DisableLayouts bool    `json:"disable_layouts"`
	Hotkeys        Hotkeys `json:"hotkeys"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		TabStop:     8,
		HeaderColor: "62",
		Hotkeys: Hotkeys{
			Prev: "pgup",
			Next: "pgdown",
			Last: "end",
		},
	}
}

// LoadGlobal reads ~/.config/pwnmux/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "pwnmux", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .pwnmuxrc in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".pwnmuxrc", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking
// precedence. Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.HistoryLimit > 0 {
			result.HistoryLimit = c.HistoryLimit
		}
		if c.TabStop > 0 {
			result.TabStop = c.TabStop
		}
		if c.HideHeaders {
			result.HideHeaders = true
		}
		if c.HeaderColor != "" {
			result.HeaderColor = c.HeaderColor
		}
		if c.DisableLayouts {
			result.DisableLayouts = true
		}
		if c.Hotkeys.Prev != "" {
			result.Hotkeys.Prev = c.Hotkeys.Prev
		}
		if c.Hotkeys.Next != "" {
			result.Hotkeys.Next = c.Hotkeys.Next
		}
		if c.Hotkeys.Last != "" {
			result.Hotkeys.Last = c.Hotkeys.Last
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
