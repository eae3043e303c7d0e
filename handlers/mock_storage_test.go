package handlers

import (
	"context"
	"io"
	"sync"
)

type mockStorage struct {
	mu                   sync.Mutex
	UploadProductImageFn func(ctx context.Context, filename, contentType string) ([]string, error)
	DeleteFileFn         func(objectPath string) error
	DeleteFileCalls      []string
	UploadCallCount      int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) ([]string, error) {
	m.mu.Lock()
	m.UploadCallCount++
	m.mu.Unlock()

	if m.UploadProductImageFn != nil {
		return m.UploadProductImageFn(ctx, filename, contentType)
	}
	return []string{"https://storage.googleapis.com/test-bucket/products/" + filename}, nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	m.mu.Unlock()

	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}

func (m *mockStorage) uploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.UploadCallCount
}

func (m *mockStorage) deletedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.DeleteFileCalls...)
}
