package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

type object struct {
	contentType string
	body        []byte
}

// MemoryStore keeps objects in process memory. It backs development setups
// without S3 and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]object
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]object),
	}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, body []byte) error {
	data := make([]byte, len(body))
	copy(data, body)

	s.mu.Lock()
	s.objects[key] = object{contentType: contentType, body: data}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}

	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s/%s?expires=%d", s.bucket, url.PathEscape(key), expires), nil
}

// Has reports whether key is stored.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}
