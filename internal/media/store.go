package media

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

var ErrNotImage = errors.New("unsupported image format")

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes uploaded post images under the media root. Files are
// content-addressed, so re-uploading the same image reuses the same path.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// SavePost validates that the upload is a raster image and stores it,
// returning the path relative to the media root.
func (s *Store) SavePost(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	ext, ok := imageExts[http.DetectContentType(data)]
	if !ok {
		return "", ErrNotImage
	}

	sum := sha256.Sum256(data)
	rel := filepath.Join("posts", hex.EncodeToString(sum[:8])+ext)

	dst := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}
