package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/streamtube/backend/internal/config"
)

func newUnreachableStorage(t *testing.T) *S3Storage {
	t.Helper()

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	store, err := NewS3Storage(context.Background(), config.ObjectStoreConfig{
		Bucket:   "test-bucket",
		Region:   "us-east-1",
		Endpoint: "http://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("configure storage: %v", err)
	}
	return store
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	if _, err := NewS3Storage(context.Background(), config.ObjectStoreConfig{}); err == nil {
		t.Fatal("expected error when bucket is missing")
	}
}

func TestUploadRemovesLocalFileOnFailure(t *testing.T) {
	store := newUnreachableStorage(t)

	localPath := filepath.Join(t.TempDir(), "upload-test.png")
	if err := os.WriteFile(localPath, []byte("fake-image-bytes"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if _, err := store.Upload(context.Background(), localPath); err == nil {
		t.Fatal("expected upload against unreachable endpoint to fail")
	}

	if _, err := os.Stat(localPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected local file to be removed after failed upload, stat returned %v", err)
	}
}

func TestUploadRejectsEmptyPath(t *testing.T) {
	store := newUnreachableStorage(t)

	if _, err := store.Upload(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
