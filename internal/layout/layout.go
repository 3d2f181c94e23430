// Package layout installs and activates the bundled pane layouts.
package layout

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed layouts/*.yml
var bundled embed.FS

// ErrUnknownLayout is returned when the named layout is not bundled.
var ErrUnknownLayout = errors.New("unknown layout")

// Names lists the bundled layout names, sorted.
func Names() []string {
	entries, err := bundled.ReadDir("layouts")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

// Source returns the bundled layout file content for name.
func Source(name string) ([]byte, error) {
	data, err := bundled.ReadFile("layouts/" + name + ".yml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return data, nil
}

// Dir returns the on-disk layout directory, ~/.config/pwnmux/layouts.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pwnmux", "layouts"), nil
}

// Path returns where the named layout lives (or would live) on disk.
func Path(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".yml"), nil
}

// IsInstalled reports whether the named layout file exists on disk.
func IsInstalled(name string) bool {
	path, err := Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Install copies the bundled layout to the layout directory and returns
// its path. An already installed layout is left untouched so user edits
// survive.
func Install(name string) (string, error) {
	data, err := Source(name)
	if err != nil {
		return "", err
	}
	path, err := Path(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing layout file: %w", err)
	}
	return path, nil
}

// Activate marks name as the layout the host multiplexer should apply,
// by writing it to the "active" file beside the layouts.
func Activate(name string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "active"), []byte(name+"\n"), 0o644)
}

// Installer satisfies the engine's layout-request seam. Requests are
// best-effort: a failed install or activation must never reach the
// parsing path, so errors only go to Logf when one is set.
type Installer struct {
	Logf func(format string, args ...any)
}

// RequestLayout installs and activates the named layout. Safe to call
// from a goroutine the engine spins up.
func (in *Installer) RequestLayout(name string) {
	if _, err := Install(name); err != nil {
		in.logf("layout %s: %v", name, err)
		return
	}
	if err := Activate(name); err != nil {
		in.logf("layout %s: %v", name, err)
	}
}

func (in *Installer) logf(format string, args ...any) {
	if in.Logf != nil {
		in.Logf(format, args...)
	}
}
