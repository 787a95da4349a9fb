package storage

import (
	"context"
	"mime/multipart"
	"sync"
)

// MockBlobService keeps uploads in memory. Handy for handler tests.
type MockBlobService struct {
	mu      sync.Mutex
	Objects map[string]Object
	Deleted []string

	// optional overrides
	UploadFn func(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error)
}

func NewMockBlobService() *MockBlobService {
	return &MockBlobService{Objects: map[string]Object{}}
}

func (m *MockBlobService) Upload(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, dir, fh)
	}
	key := buildObjectKey("mock", dir, fh.Filename)
	obj := Object{URL: "mock://" + key, Key: key, ContentType: fh.Header.Get("Content-Type"), Size: fh.Size}
	m.mu.Lock()
	m.Objects[obj.URL] = obj
	m.mu.Unlock()
	return obj, nil
}

func (m *MockBlobService) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (Object, error) {
	return m.Upload(ctx, dir, fh)
}

func (m *MockBlobService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, publicURL)
	m.Deleted = append(m.Deleted, publicURL)
	return nil
}

func (m *MockBlobService) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
