package storage

import (
	"context"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory is an in-memory BlobStorage used by tests and the "memory" factory
// type. FailStore/FailDelete inject failures for error-path tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memoryObject

	FailStore  error
	FailDelete error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (m *Memory) Store(ctx context.Context, data []byte, originalName, contentType string) (*StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailStore != nil {
		return nil, m.FailStore
	}

	key := buildKey("", originalName)
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = memoryObject{
		data:        stored,
		contentType: normalizeContentType(contentType),
	}

	return &StoredObject{
		Key:            key,
		ContentType:    normalizeContentType(contentType),
		Size:           int64(len(data)),
		ChecksumSHA256: checksum(data),
	}, nil
}

func (m *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}

	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Len reports how many blobs are currently stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ BlobStorage = (*Memory)(nil)
