package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestSaveAcceptsAllowedImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	path, err := store.Save(fileHeader(t, "cat.png", "image/png", []byte("pngdata")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(path, URLPrefix+"/") {
		t.Errorf("path %q must be under %s/", path, URLPrefix)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path %q must keep the original extension", path)
	}

	onDisk := filepath.Join(store.Dir, strings.TrimPrefix(path, URLPrefix+"/"))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "pngdata" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestSaveRejectsMismatchedContentType(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// Extension allowed, declared type not an image: both must match.
	if _, err := store.Save(fileHeader(t, "cat.png", "text/plain", []byte("x"))); err != ErrUnsupportedType {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save(fileHeader(t, "script.svg", "image/svg+xml", []byte("x"))); err != ErrUnsupportedType {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := store.Save(fileHeader(t, "doc.pdf", "application/pdf", []byte("x"))); err != ErrUnsupportedType {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveJpegVariants(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save(fileHeader(t, "a.jpg", "image/jpeg", []byte("x"))); err != nil {
		t.Errorf("jpg with image/jpeg rejected: %v", err)
	}
	if _, err := store.Save(fileHeader(t, "b.jpeg", "image/jpg", []byte("x"))); err != nil {
		t.Errorf("jpeg with image/jpg rejected: %v", err)
	}
	if _, err := store.Save(fileHeader(t, "c.webp", "image/webp", []byte("x"))); err != nil {
		t.Errorf("webp rejected: %v", err)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		path, err := store.Save(fileHeader(t, "same.png", "image/png", []byte("x")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[path] {
			t.Fatalf("duplicate path %q", path)
		}
		seen[path] = true
	}
}

func TestAbsoluteURL(t *testing.T) {
	if got := AbsoluteURL("", "http://example.com"); got != "" {
		t.Errorf("empty path must stay empty, got %q", got)
	}
	if got := AbsoluteURL("/uploads/a.png", "http://example.com"); got != "http://example.com/uploads/a.png" {
		t.Errorf("unexpected url %q", got)
	}
	if got := AbsoluteURL("/uploads/a.png", "http://example.com/"); got != "http://example.com/uploads/a.png" {
		t.Errorf("trailing slash not handled: %q", got)
	}
}
