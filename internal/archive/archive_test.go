package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveEnrollment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "known_faces")

	a, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	name, err := a.SaveEnrollment(42, []byte("image bytes"))
	if err != nil {
		t.Fatalf("SaveEnrollment: %v", err)
	}
	if !strings.HasPrefix(name, "worker_42_") || !strings.HasSuffix(name, ".jpg") {
		t.Errorf("unexpected archive name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading archived file: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("archived content = %q", data)
	}
}

func TestSaveEnrollmentUniqueNames(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, _ := a.SaveEnrollment(1, []byte("a"))
	second, _ := a.SaveEnrollment(1, []byte("b"))
	if first == second {
		t.Errorf("archive names must be unique, got %q twice", first)
	}
}
