package layout

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNamesListsBundledLayouts(t *testing.T) {
	names := Names()
	if len(names) != 2 || names[0] != "gef" || names[1] != "pwndbg" {
		t.Errorf("Names = %v, want [gef pwndbg]", names)
	}
}

func TestSourceUnknownLayout(t *testing.T) {
	_, err := Source("windbg")
	if !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("error = %v, want ErrUnknownLayout", err)
	}
}

func TestInstallAndActivate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if IsInstalled("gef") {
		t.Fatal("fresh home should have no layouts")
	}
	path, err := Install("gef")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !IsInstalled("gef") {
		t.Error("layout should report installed")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading installed layout: %v", err)
	}
	if !strings.Contains(string(data), "hyperpwn registers") {
		t.Errorf("installed layout missing view announcements:\n%s", data)
	}

	if err := Activate("gef"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	dir, _ := Dir()
	active, err := os.ReadFile(dir + "/active")
	if err != nil {
		t.Fatalf("reading active marker: %v", err)
	}
	if string(active) != "gef\n" {
		t.Errorf("active marker = %q, want %q", active, "gef\n")
	}
}

func TestInstallPreservesUserEdits(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Install("pwndbg")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	edited := []byte("# user edited\n")
	if err := os.WriteFile(path, edited, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Install("pwndbg"); err != nil {
		t.Fatalf("second Install: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != string(edited) {
		t.Error("reinstall must not clobber an edited layout")
	}
}

func TestInstallerRequestLayout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := &Installer{}
	in.RequestLayout("gef")
	if !IsInstalled("gef") {
		t.Error("RequestLayout should install the layout")
	}

	// Unknown layouts must fail silently; the request path sits behind
	// a live stream and may never propagate errors.
	var logged string
	in = &Installer{Logf: func(format string, args ...any) { logged = format }}
	in.RequestLayout("windbg")
	if logged == "" {
		t.Error("failed request should reach Logf when one is set")
	}
}
