package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.etcd.io/bbolt"
)

var (
	blobBucket = []byte("blobs")
	metaBucket = []byte("blob_content_types")

	ErrBlobNotFound = errors.New("blob not found")
)

/* =======================================================================
   Local backend: files kept inside a single bbolt database and served
   back through MediaHandler.
======================================================================= */

type LocalBlobService struct {
	db         *bbolt.DB
	publicBase string
	prefix     string
}

func OpenLocalBlobService(path, publicBase, prefix string) (*LocalBlobService, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{blobBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init blob buckets: %w", err)
	}
	return &LocalBlobService{
		db:         db,
		publicBase: strings.TrimRight(publicBase, "/"),
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (s *LocalBlobService) Close() error { return s.db.Close() }

func (s *LocalBlobService) Upload(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
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
	key := buildObjectKey(s.prefix, dir, fh.Filename)
	if err := s.Put(key, data, ct); err != nil {
		return Object{}, err
	}
	return Object{URL: s.PublicURL(key), Key: key, ContentType: ct, Size: int64(len(data))}, nil
}

func (s *LocalBlobService) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
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
	key := buildObjectKey(s.prefix, dir, base+".webp")
	if err := s.Put(key, webpData, "image/webp"); err != nil {
		return Object{}, err
	}
	return Object{URL: s.PublicURL(key), Key: key, ContentType: "image/webp", Size: int64(len(webpData))}, nil
}

func (s *LocalBlobService) Put(key string, data []byte, contentType string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(blobBucket).Put([]byte(key), data); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(contentType))
	})
}

// Get returns a copy of the stored bytes; bbolt values are only valid inside
// the transaction.
func (s *LocalBlobService) Get(key string) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blobBucket).Get([]byte(key))
		if v == nil {
			return ErrBlobNotFound
		}
		data = append([]byte(nil), v...)
		ct = string(tx.Bucket(metaBucket).Get([]byte(key)))
		return nil
	})
	return data, ct, err
}

func (s *LocalBlobService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	key := strings.TrimPrefix(publicURL, s.publicBase+"/")
	if key == publicURL {
		return fmt.Errorf("url %q is not served by the local store", publicURL)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(blobBucket).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Delete([]byte(key))
	})
}

func (s *LocalBlobService) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// MediaHandler serves GET <publicBase>/* from the store.
func (s *LocalBlobService) MediaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimPrefix(c.Params("*"), "/")
		if key == "" {
			return fiber.NewError(fiber.StatusNotFound, "File not found")
		}
		data, ct, err := s.Get(key)
		if errors.Is(err, ErrBlobNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "File not found")
		}
		if err != nil {
			return err
		}
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
		return c.Send(data)
	}
}

func (s *LocalBlobService) PublicBase() string { return s.publicBase }
