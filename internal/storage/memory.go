package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemStore is an in-memory Store implementation, best suited for tests.
type MemStore struct {
	mu    sync.Mutex
	blobs map[string]memBlob
}

type memBlob struct {
	data        []byte
	contentType string
}

// NewMemStore returns a ready-to-use empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string]memBlob)}
}

func (m *MemStore) EnsureContainer(context.Context) error { return nil }

func (m *MemStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = memBlob{data: data, contentType: contentType}
	return name, nil
}

func (m *MemStore) Get(_ context.Context, token string) (string, io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[token]
	if !ok {
		return "", nil, ErrNotFound
	}
	if len(b.contentType) < 6 || b.contentType[:6] != "image/" {
		return "", nil, ErrNotAnImage
	}
	return b.contentType, io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *MemStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, token)
	return nil
}

// Has reports whether a blob with the given token is currently stored.
func (m *MemStore) Has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[token]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
