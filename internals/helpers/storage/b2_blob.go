package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurin/blazer/b2"
)

/* =======================================================================
   Backblaze B2 backend
======================================================================= */

type B2BlobService struct {
	Client *b2.Client
	Bucket *b2.Bucket
	Prefix string
}

func NewB2BlobServiceFromEnv(ctx context.Context, prefix string) (*B2BlobService, error) {
	accountID := strings.TrimSpace(os.Getenv("B2_ACCOUNT_ID"))
	appKey := strings.TrimSpace(os.Getenv("B2_APP_KEY"))
	bucketName := strings.TrimSpace(os.Getenv("B2_BUCKET"))
	if accountID == "" || appKey == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: B2_ACCOUNT_ID/B2_APP_KEY/B2_BUCKET")
	}

	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return &B2BlobService{Client: client, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

func (s *B2BlobService) Upload(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
	if fh == nil {
		return Object{}, fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	data, ct, err := readAllWithType(src, fh.Filename)
	if err != nil {
		return Object{}, err
	}
	key := buildObjectKey(s.Prefix, dir, fh.Filename)
	url, err := s.write(ctx, key, newReader(data))
	if err != nil {
		return Object{}, err
	}
	return Object{URL: url, Key: key, ContentType: ct, Size: int64(len(data))}, nil
}

func (s *B2BlobService) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
	if fh == nil {
		return Object{}, fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	raw, _, err := readAllWithType(src, fh.Filename)
	if err != nil {
		return Object{}, err
	}
	webpData, err := ConvertToWebP(raw, defaultWebPOptionsFromEnv())
	if err != nil {
		return Object{}, err
	}
	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	key := buildObjectKey(s.Prefix, dir, base+".webp")
	url, err := s.write(ctx, key, newReader(webpData))
	if err != nil {
		return Object{}, err
	}
	return Object{URL: url, Key: key, ContentType: "image/webp", Size: int64(len(webpData))}, nil
}

func (s *B2BlobService) write(ctx context.Context, key string, r io.Reader) (string, error) {
	obj := s.Bucket.Object(key)
	w := obj.NewWriter(ctx)

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return obj.URL(), nil
}

func (s *B2BlobService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	marker := "/file/" + s.Bucket.Name() + "/"
	i := strings.Index(publicURL, marker)
	if i < 0 {
		return fmt.Errorf("url %q is not in bucket %s", publicURL, s.Bucket.Name())
	}
	key := publicURL[i+len(marker):]
	if err := s.Bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
