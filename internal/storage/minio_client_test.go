package storage_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/storage"
)

// Запускается на реальном MinIO, если задан MINIO_ENDPOINT, например из docker compose.
func TestMinioClient_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}

	cfg := config.MinioConfig{
		Endpoint: endpoint,
		User:     os.Getenv("MINIO_USER"),
		Password: os.Getenv("MINIO_PASSWORD"),
		Bucket:   "autoassist-test",
	}
	client, err := storage.NewMinioClient(t.Context(), cfg, logging.Discard())
	require.NoError(t, err)

	key := "reports/test-" + uuid.NewString() + ".json"
	payload := []byte(`{"inserted":3}`)
	require.NoError(t, client.UploadFile(t.Context(), key, bytes.NewReader(payload), int64(len(payload)), "application/json"))

	rc, err := client.DownloadFile(t.Context(), key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = client.DownloadFile(t.Context(), "reports/missing-"+uuid.NewString())
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestNewMinioClient_BadEndpoint(t *testing.T) {
	_, err := storage.NewMinioClient(t.Context(), config.MinioConfig{Endpoint: "http://not valid", Bucket: "b"}, logging.Discard())
	require.Error(t, err)
}
