package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a.TXT"), "a")
	writeFile(t, filepath.Join(root, "notes.pdf"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.md"), "c")
	writeFile(t, filepath.Join(root, ".hidden", "d.txt"), "d")
	writeFile(t, filepath.Join(root, ".e.txt"), "e")

	paths, stats, err := ScanDirectory(root, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.TXT"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "sub", "c.md"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %q, want %q", paths, want)
	}
	if stats.Matched != 3 || stats.Scanned != 4 {
		t.Errorf("stats = %+v", stats)
	}

	paths, _, err = ScanDirectory(root, []string{".pdf"}, false)
	if err != nil || len(paths) != 1 || !strings.HasSuffix(paths[0], "notes.pdf") {
		t.Errorf("pdf scan = %q, %v", paths, err)
	}
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	if _, _, err := ScanDirectory(filepath.Join(t.TempDir(), "nope"), nil, true); err == nil {
		t.Error("missing root accepted")
	}
	if _, _, err := ScanDirectory(" ", nil, true); err == nil {
		t.Error("blank root accepted")
	}
}

func TestReadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	writeFile(t, path, "Chief Complaint: cough")

	got, err := ReadReport(path, 1024)
	if err != nil || got != "Chief Complaint: cough" {
		t.Errorf("ReadReport = %q, %v", got, err)
	}
	if _, err := ReadReport(path, 5); !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}
