package upload

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"talento/internal/apperr"
)

func newTestStore(t *testing.T, max int64) *Store {
	t.Helper()
	s := New(Config{Dir: t.TempDir(), MaxBytes: max})
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSaveDocumentWritesFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	f, err := s.SaveDocument("questionnaires", "../my cv?.pdf", bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("SaveDocument error: %v", err)
	}
	if f.URL != "/uploads/questionnaires/1700000000000-my cv.pdf" {
		t.Fatalf("unexpected url %q", f.URL)
	}
	if f.Name != "../my cv?.pdf" {
		t.Fatalf("expected original name to be kept, got %q", f.Name)
	}
	if f.MIME != "application/pdf" {
		t.Fatalf("unexpected mime %q", f.MIME)
	}
	got, err := os.ReadFile(filepath.Join(s.Dir(), "questionnaires", "1700000000000-my cv.pdf"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(got, pdf) {
		t.Fatalf("saved content mismatch")
	}
}

func TestSaveDocumentRejectsWrongTypeAndSize(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 64)

	_, err := s.SaveDocument("cvs", "cv.txt", strings.NewReader("just text"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for text file, got %v", err)
	}

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 100)...)
	_, err = s.SaveDocument("cvs", "cv.pdf", bytes.NewReader(big))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for large file, got %v", err)
	}

	_, err = s.SaveDocument("cvs", "cv.pdf", bytes.NewReader(nil))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestSaveImage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	f, err := s.SaveImage("logos", "logo.png", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("SaveImage error: %v", err)
	}
	if f.MIME != "image/png" {
		t.Fatalf("unexpected mime %q", f.MIME)
	}
}

func TestSafeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"report (1).docx":  "report (1).docx",
		"../../etc/passwd": "passwd",
		"a\\b\\evil.pdf":   "evil.pdf",
		"Анкет.pdf":        ".pdf",
		"???":              "file",
	}
	for in, want := range cases {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenResolvesSavedURL(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	saved, err := s.SaveDocument("cvs", "cv.pdf", bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("SaveDocument error: %v", err)
	}

	f, err := s.Open(saved.URL)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read opened file: %v", err)
	}
	if !bytes.Equal(got, pdf) {
		t.Fatalf("opened content mismatch")
	}

	for _, url := range []string{
		"/elsewhere/cvs/1700000000000-cv.pdf",
		"/uploads/../../etc/passwd",
		"/uploads/",
		"/uploads/cvs/missing.pdf",
	} {
		if _, err := s.Open(url); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("Open(%q) expected not-exist, got %v", url, err)
		}
	}
}
