package stagecache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is what the store remembers about a task's last successful run.
type Record struct {
	Task        string
	Signature   string
	InputHashes map[string]string
	OutputHash  string
	RunID       string
	CompletedAt time.Time
}

// Store persists task records between runs.
type Store interface {
	// Lookup returns the record for task, or nil when none exists.
	Lookup(ctx context.Context, task string) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Forget(ctx context.Context, task string) error
	ForgetAll(ctx context.Context) error
	// List returns every record ordered by task name.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Lookup(_ context.Context, task string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[task]
	if !ok {
		return nil, nil
	}
	rec = cloneRecord(rec)
	return &rec, nil
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Task] = cloneRecord(rec)
	return nil
}

func (m *MemoryStore) Forget(_ context.Context, task string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, task)
	return nil
}

func (m *MemoryStore) ForgetAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]Record)
	return nil
}

func (m *MemoryStore) List(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func cloneRecord(rec Record) Record {
	if rec.InputHashes != nil {
		hashes := make(map[string]string, len(rec.InputHashes))
		for k, v := range rec.InputHashes {
			hashes[k] = v
		}
		rec.InputHashes = hashes
	}
	return rec
}
