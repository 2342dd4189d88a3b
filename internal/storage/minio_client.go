// Package storage оборачивает S3-совместимое хранилище объектов для
// таблиц импорта и отчетов об импорте.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/maynagashev/autoassist/internal/config"
)

// ErrObjectNotFound возвращается, если ключа нет в бакете.
var ErrObjectNotFound = errors.New("object not found")

// FileStorage определяет методы чтения и записи объектов по ключу.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioClient реализует FileStorage поверх MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
	log        *slog.Logger
}

var _ FileStorage = (*MinioClient)(nil)

// NewMinioClient подключается к MinIO и создает бакет, если его нет.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig, log *slog.Logger) (*MinioClient, error) {
	log.Info("Инициализация клиента MinIO", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		log.Info("Бакет создан", "bucket", cfg.Bucket)
	}

	return &MinioClient{client: client, bucketName: cfg.Bucket, log: log}, nil
}

func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	info, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		c.log.Error("Ошибка загрузки файла", "key", objectKey, "error", err)
		return fmt.Errorf("upload %q: %w", objectKey, err)
	}

	c.log.Info("Файл загружен", "key", objectKey, "size", info.Size, "etag", info.ETag)
	return nil
}

// DownloadFile открывает объект на чтение. Закрывает reader вызывающий код.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.downloadErr(objectKey, err)
	}

	// GetObject ленивый, Stat выявляет отсутствующий ключ до чтения.
	if _, err = object.Stat(); err != nil {
		_ = object.Close()
		return nil, c.downloadErr(objectKey, err)
	}
	return object, nil
}

func (c *MinioClient) downloadErr(objectKey string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey)
	}
	c.log.Error("Ошибка скачивания файла", "key", objectKey, "error", err)
	return fmt.Errorf("download %q: %w", objectKey, err)
}
