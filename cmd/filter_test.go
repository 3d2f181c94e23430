package cmd

import (
	"strings"
	"testing"

	"github.com/pwnmux/pwnmux/internal/config"
	"github.com/pwnmux/pwnmux/internal/render"
)

func filterConfig() config.Config {
	cfg := config.Defaults()
	cfg.DisableLayouts = true
	return cfg
}

func TestRunFilterPassthrough(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("plain gdb output\nno context here\n")
	if err := runFilter(in, &out, filterConfig()); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	if out.String() != "plain gdb output\nno context here\n" {
		t.Errorf("output = %q, want input unchanged", out.String())
	}
}

func TestRunFilterDeliversTrailingMarkerFragment(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("hello\nlegend")
	if err := runFilter(in, &out, filterConfig()); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	if out.String() != "hello\nlegend" {
		t.Errorf("output = %q, want %q: a held marker fragment must surface at end of stream", out.String(), "hello\nlegend")
	}
}

func TestRunFilterSuppressesAnnouncement(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader(" hyperpwn ctx1\n\n")
	if err := runFilter(in, &out, filterConfig()); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	if out.String() != render.HideCursor {
		t.Errorf("output = %q, want a bare cursor-hide", out.String())
	}
}

func TestRunFilterCapturesAndReplays(t *testing.T) {
	var out strings.Builder
	input := " hyperpwn ctx1\n\n" +
		"before\nlegend:\n──[ ctx1 ]──\n  body text \n──────\nafter"
	if err := runFilter(strings.NewReader(input), &out, filterConfig()); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "before\n") || !strings.Contains(got, "after") {
		t.Errorf("pass-through text missing from %q", got)
	}
	if !strings.Contains(got, render.ClearScreen+render.HideCursor+"body text") {
		t.Errorf("captured segment not replayed in %q", got)
	}
	if strings.Contains(got, "──[ ctx1 ]──") {
		t.Errorf("attributed section header leaked into the stream: %q", got)
	}
}
