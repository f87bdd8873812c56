package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeStorage struct {
	objects     map[string]int64
	deleteCalls int
	presignErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]int64)}
}

func (f *fakeStorage) EnsureBucket(_ context.Context) error { return nil }

func (f *fakeStorage) PutObject(_ context.Context, key string, _ io.Reader, size int64, _ string) error {
	f.objects[key] = size
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.local/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleteCalls++
	delete(f.objects, key)
	return nil
}

type fakeRate struct {
	count int64
}

func (f *fakeRate) IncrementWindow(_ context.Context, _ string, _ time.Duration) (int64, time.Duration, error) {
	f.count++
	return f.count, time.Minute, nil
}

func TestUploadStoresObject(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)

	upload, err := svc.Upload(context.Background(), 7, "My Video.MP4", "video/mp4", strings.NewReader("abc"), 3)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.HasPrefix(upload.ObjectKey, "content/7/") {
		t.Fatalf("unexpected object key: %s", upload.ObjectKey)
	}
	if !strings.HasSuffix(upload.ObjectKey, ".mp4") {
		t.Fatalf("extension not preserved: %s", upload.ObjectKey)
	}
	if !strings.Contains(upload.URL, upload.ObjectKey) {
		t.Fatalf("signed url does not reference the key: %s", upload.URL)
	}
	if _, ok := storage.objects[upload.ObjectKey]; !ok {
		t.Fatal("object not stored")
	}
}

func TestUploadValidation(t *testing.T) {
	svc := NewService(newFakeStorage())

	if _, err := svc.Upload(context.Background(), 0, "f.jpg", "image/jpeg", strings.NewReader("x"), 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for owner, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), 1, "f.jpg", "image/jpeg", nil, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for body, got %v", err)
	}
}

func TestUploadRateLimited(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)
	rate := &fakeRate{count: uploadsPerWindow}
	svc.AttachRateLimit(rate)

	_, err := svc.Upload(context.Background(), 1, "f.jpg", "image/jpeg", strings.NewReader("x"), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(storage.objects) != 0 {
		t.Fatal("object stored despite rate limit")
	}
}

func TestUploadCleansUpOnPresignFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.presignErr = errors.New("sign failed")
	svc := NewService(storage)

	if _, err := svc.Upload(context.Background(), 1, "f.jpg", "image/jpeg", strings.NewReader("x"), 1); err == nil {
		t.Fatal("expected error from presign failure")
	}
	if storage.deleteCalls != 1 {
		t.Fatalf("expected stored object cleanup, delete calls %d", storage.deleteCalls)
	}
}

func TestBuildObjectKeySanitizes(t *testing.T) {
	key, err := buildObjectKey(3, "Weird Name!!.JPeG")
	if err != nil {
		t.Fatalf("build object key: %v", err)
	}
	if strings.ContainsAny(key, " !") {
		t.Fatalf("key not sanitized: %s", key)
	}
	if !strings.HasSuffix(key, ".jpeg") {
		t.Fatalf("extension not lowercased: %s", key)
	}
}
