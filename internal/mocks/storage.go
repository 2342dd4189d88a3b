package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/autoassist/internal/storage"
)

var _ storage.FileStorage = (*FileStorage)(nil)

type FileStorage struct {
	mock.Mock
}

func (m *FileStorage) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *FileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectKey)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}
