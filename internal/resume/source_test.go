package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadTextPlainFile(t *testing.T) {
	path := writeFile(t, "cv.txt", "\n  Jane Doe\nGo developer  \n")

	got, err := ReadText(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nGo developer" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestReadTextEmptyFile(t *testing.T) {
	path := writeFile(t, "cv.md", "   \n")

	if _, err := ReadText(path, nil); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestReadTextMissingFile(t *testing.T) {
	if _, err := ReadText(filepath.Join(t.TempDir(), "absent.txt"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadTextInvalidPDF(t *testing.T) {
	path := writeFile(t, "cv.PDF", "definitely not a pdf")

	if _, err := ReadText(path, nil); err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
}
