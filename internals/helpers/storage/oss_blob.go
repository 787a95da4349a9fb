package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

/* =======================================================================
   Aliyun OSS backend
======================================================================= */

type OSSBlobService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string
}

func NewOSSBlobServiceFromEnv(prefix string) (*OSSBlobService, error) {
	endpoint := strings.TrimSpace(os.Getenv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(os.Getenv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(os.Getenv("ALI_OSS_SECRET_KEY"))
	sts := strings.TrimSpace(os.Getenv("ALI_OSS_SECURITY_TOKEN"))
	bucketName := strings.TrimSpace(os.Getenv("ALI_OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	log.Printf("[OSS] bucket %s ready", bucketName)

	return &OSSBlobService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (s *OSSBlobService) Upload(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
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
	if err := s.put(ctx, key, data, ct); err != nil {
		return Object{}, err
	}
	return Object{URL: s.PublicURL(key), Key: key, ContentType: ct, Size: int64(len(data))}, nil
}

func (s *OSSBlobService) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
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
	if err := s.put(ctx, key, webpData, "image/webp"); err != nil {
		return Object{}, err
	}
	return Object{URL: s.PublicURL(key), Key: key, ContentType: "image/webp", Size: int64(len(webpData))}, nil
}

func (s *OSSBlobService) put(ctx context.Context, key string, data []byte, ct string) error {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(ct),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	return s.Bucket.PutObject(key, newReader(data), opts...)
}

func (s *OSSBlobService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	key, err := s.extractKey(publicURL)
	if err != nil {
		return err
	}
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSBlobService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if base := strings.TrimSpace(os.Getenv("ALI_OSS_PUBLIC_BASE")); base != "" {
		return strings.TrimRight(base, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSBlobService) extractKey(publicURL string) (string, error) {
	if publicURL == "" {
		return "", fmt.Errorf("empty url")
	}
	if base := strings.TrimSpace(os.Getenv("ALI_OSS_PUBLIC_BASE")); base != "" {
		base = strings.TrimRight(base, "/") + "/"
		if strings.HasPrefix(publicURL, base) {
			return strings.TrimPrefix(publicURL, base), nil
		}
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}
