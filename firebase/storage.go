package firebase

import (
	"context"
	"io"
)

// StorageClient abstracts Firebase Storage operations for dependency injection and testing.
type StorageClient interface {
	UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) ([]string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

// FirebaseStorageClient is the real implementation that delegates to package-level functions.
type FirebaseStorageClient struct{}

func NewStorageClient() StorageClient {
	return &FirebaseStorageClient{}
}

func (f *FirebaseStorageClient) UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) ([]string, error) {
	return UploadProductImage(ctx, file, filename, contentType)
}

func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	return DeleteFile(ctx, objectPath)
}
