package site

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"etldocs/internal/faults"
	"etldocs/internal/logging"
)

func testAssembler() *Assembler {
	a := NewAssembler(logging.New(&strings.Builder{}, false))
	a.now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAssemble_SpecScenario(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	a := testAssembler()
	err := a.Assemble(dir, "MySite", "desc", map[string]string{"data_report.md": "# Report"})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("index.md not written: %v", err)
	}
	for _, want := range []string{
		"# MySite",
		"desc",
		"## Available Reports",
		"- [Data Report](data_report.md)",
		"_Last updated:",
	} {
		if !strings.Contains(string(index), want) {
			t.Errorf("index.md missing %q; got:\n%s", want, index)
		}
	}

	page, err := os.ReadFile(filepath.Join(dir, "data_report.md"))
	if err != nil {
		t.Fatalf("data_report.md not written: %v", err)
	}
	if string(page) != "# Report" {
		t.Errorf("data_report.md = %q, want %q", page, "# Report")
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	files := map[string]string{"data_report.md": "# Report", "extra.md": "more"}

	a := testAssembler()
	if err := a.Assemble(dir, "S", "d", files); err != nil {
		t.Fatalf("first Assemble returned error: %v", err)
	}
	first := readDir(t, dir)

	if err := a.Assemble(dir, "S", "d", files); err != nil {
		t.Fatalf("second Assemble returned error: %v", err)
	}
	second := readDir(t, dir)

	if len(first) != len(second) {
		t.Fatalf("directory contents changed: %d files then %d", len(first), len(second))
	}
	for name, content := range first {
		if second[name] != content {
			t.Errorf("file %s differs between runs", name)
		}
	}
}

func TestAssemble_RemovesStagingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	a := testAssembler()
	if err := a.Assemble(dir, "S", "", map[string]string{"r.md": "x"}); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".staging-") {
			t.Errorf("staging dir %s left behind", e.Name())
		}
	}
}

func TestAssemble_RejectsBadInputs(t *testing.T) {
	a := testAssembler()

	if err := a.Assemble("", "S", "", nil); !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("empty dir: error = %v, want ErrInvalidInput", err)
	}
	if err := a.Assemble(t.TempDir(), "", "", nil); !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("empty site name: error = %v, want ErrInvalidInput", err)
	}
	err := a.Assemble(t.TempDir(), "S", "", map[string]string{"../evil.md": "x"})
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("path traversal name: error = %v, want ErrInvalidInput", err)
	}
}

func TestAssemble_UncreatableDirIsIOFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	a := testAssembler()
	err := a.Assemble(filepath.Join(blocker, "docs"), "S", "", nil)
	if err == nil {
		t.Fatal("expected error creating dir under a file, got nil")
	}
	if faults.KindOf(err) != faults.KindIOFailure {
		t.Errorf("kind = %s, want %s", faults.KindOf(err), faults.KindIOFailure)
	}
}

func TestPageTitle(t *testing.T) {
	cases := map[string]string{
		"data_report.md": "Data Report",
		"extra-notes.md": "Extra Notes",
		"index.md":       "Index",
	}
	for in, want := range cases {
		if got := pageTitle(in); got != want {
			t.Errorf("pageTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile returned error: %v", err)
		}
		out[e.Name()] = string(b)
	}
	return out
}
