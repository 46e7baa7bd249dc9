// Package store provides session-keyed persistence for pattern and
// preference snapshots behind an explicit key-value capability.
package store

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
)

// KV is the storage capability. Implementations may be absent-by-design: the
// no-op implementation yields empty reads and discards writes, which callers
// treat as an expected condition rather than an error.
type KV interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key.
	Delete(ctx context.Context, key string) error
}

// NoopKV satisfies KV for environments without a storage capability.
type NoopKV struct{}

func (NoopKV) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }
func (NoopKV) Put(ctx context.Context, key string, value []byte) error   { return nil }
func (NoopKV) Delete(ctx context.Context, key string) error              { return nil }

// MemoryKV is an in-memory KV used in tests and single-process deployments.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// JetStreamKV adapts a JetStream KeyValue bucket to the KV capability.
type JetStreamKV struct {
	bucket jetstream.KeyValue
}

// NewJetStreamKV wraps a JetStream bucket.
func NewJetStreamKV(bucket jetstream.KeyValue) *JetStreamKV {
	return &JetStreamKV{bucket: bucket}
}

func (j *JetStreamKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := j.bucket.Get(ctx, key)
	if err != nil {
		if err == jetstream.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

func (j *JetStreamKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := j.bucket.Put(ctx, key, value)
	return err
}

func (j *JetStreamKV) Delete(ctx context.Context, key string) error {
	return j.bucket.Delete(ctx, key)
}
