package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned when a file fails the image allow-list.
var ErrUnsupportedType = errors.New("only images are allowed")

// URLPrefix is the path under which stored files are served back.
const URLPrefix = "/uploads"

var allowedExt = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// LocalStore writes uploaded files to a directory on disk and hands back the
// relative path they will be served from. Paths are stored relative so the
// service stays portable across hostnames; URL rewriting happens at read time.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir}, nil
}

// Save validates the upload against the image allow-list and writes it under
// a collision-proof name. Both the file extension and the declared
// Content-Type must match; either failing rejects the upload.
func (s *LocalStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := allowedExt[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	declared := fh.Header.Get("Content-Type")
	if !contentTypeAllowed(declared, want) {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	return URLPrefix + "/" + name, nil
}

func contentTypeAllowed(declared, want string) bool {
	// jpg/jpeg share a MIME type; webp and png are exact.
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == want {
		return true
	}
	// Some clients send image/jpg for jpeg files.
	return want == "image/jpeg" && declared == "image/jpg"
}

// AbsoluteURL rewrites a stored relative path against the serving origin.
// An empty path stays empty: a post without an attachment has no URL.
func AbsoluteURL(relPath, origin string) string {
	if relPath == "" {
		return ""
	}
	return strings.TrimSuffix(origin, "/") + relPath
}
