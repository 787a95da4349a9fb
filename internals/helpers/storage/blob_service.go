package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"strings"
)

// Object describes a stored file.
type Object struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

/*
BlobService is the uniform upload/delete facade used by controllers.

  - Upload stores the file as-is under dir.
  - UploadImage re-encodes jpg/png/webp to WebP before storing.
  - DeleteByPublicURL accepts the URL previously returned by an upload.
*/
type BlobService interface {
	Upload(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error)
	UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

// NewBlobServiceFromEnv picks the backend from STORAGE_DRIVER (oss|b2|local).
// Defaults to local so development needs no cloud credentials.
func NewBlobServiceFromEnv(ctx context.Context) (BlobService, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	prefix := strings.TrimSpace(os.Getenv("STORAGE_PREFIX"))
	if prefix == "" {
		prefix = "hrportal"
	}

	switch driver {
	case "oss":
		return NewOSSBlobServiceFromEnv(prefix)
	case "b2":
		return NewB2BlobServiceFromEnv(ctx, prefix)
	case "", "local":
		path := strings.TrimSpace(os.Getenv("LOCAL_BLOB_PATH"))
		if path == "" {
			path = "uploads.db"
		}
		base := strings.TrimSpace(os.Getenv("LOCAL_BLOB_PUBLIC_BASE"))
		if base == "" {
			base = "/media"
		}
		log.Printf("[STORAGE] using local bbolt store at %s", path)
		return OpenLocalBlobService(path, base, prefix)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

// Close releases backend resources when the backend holds any.
func Close(s BlobService) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// DeleteAll removes previously uploaded files, logging failures. Used to undo
// uploads after a failed write and to drop replaced files.
func DeleteAll(s BlobService, urls []string) {
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		if err := s.DeleteByPublicURL(context.Background(), u); err != nil {
			log.Printf("[WARN] delete stored file %s: %v\n", u, err)
		}
	}
}
