package handlers

import (
	"context"
	"io"
	"sync"
)

type mockBlobStore struct {
	mu          sync.Mutex
	UploadFn    func(filename string, data []byte) (string, error)
	DeleteFn    func(url string) error
	Uploaded    map[string][]byte
	DeleteCalls []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{Uploaded: map[string][]byte{}}
}

func (m *mockBlobStore) Upload(_ context.Context, r io.Reader, _ int64, filename, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.UploadFn != nil {
		return m.UploadFn(filename, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploaded[filename] = data
	return "/uploads/banners/" + filename, nil
}

func (m *mockBlobStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, url)
	if m.DeleteFn != nil {
		return m.DeleteFn(url)
	}
	return nil
}
