package thought

import (
	"context"
	"sort"
	"sync"
)

// Store is the persistence accessor for thoughts. Every method maps to a
// single round trip against the backing database.
type Store interface {
	// List returns at most limit thoughts, newest createdAt first.
	List(ctx context.Context, limit int) ([]Thought, error)
	// Insert persists a new thought. ErrDuplicateMessage on a non-unique message.
	Insert(ctx context.Context, t Thought) error
	// IncrementHearts atomically adds one heart and returns the updated thought.
	IncrementHearts(ctx context.Context, id ID) (Thought, error)
	// Delete removes a thought and returns what was removed.
	Delete(ctx context.Context, id ID) (Thought, error)
	// UpdateMessage replaces the message and returns the updated thought.
	UpdateMessage(ctx context.Context, id ID, message string) (Thought, error)
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

type memoryRecord struct {
	Thought
	seq uint64
}

// MemoryStore implements Store in process memory, suitable for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[ID]*memoryRecord
	byText  map[string]ID
	nextSeq uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[ID]*memoryRecord),
		byText: make(map[string]ID),
	}
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Thought, error) {
	// copy under the lock; likes and edits mutate records in place
	s.mu.RLock()
	records := make([]memoryRecord, 0, len(s.items))
	for _, rec := range s.items {
		records = append(records, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return records[i].seq > records[j].seq
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]Thought, len(records))
	for i, rec := range records {
		out[i] = rec.Thought
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, t Thought) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byText[t.Message]; taken {
		return ErrDuplicateMessage
	}
	s.nextSeq++
	s.items[t.ID] = &memoryRecord{Thought: t, seq: s.nextSeq}
	s.byText[t.Message] = t.ID
	return nil
}

func (s *MemoryStore) IncrementHearts(_ context.Context, id ID) (Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		return Thought{}, ErrNotFound
	}
	rec.Hearts++
	return rec.Thought, nil
}

func (s *MemoryStore) Delete(_ context.Context, id ID) (Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		return Thought{}, ErrNotFound
	}
	delete(s.items, id)
	delete(s.byText, rec.Message)
	return rec.Thought, nil
}

func (s *MemoryStore) UpdateMessage(_ context.Context, id ID, message string) (Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		return Thought{}, ErrNotFound
	}
	if owner, taken := s.byText[message]; taken && owner != id {
		return Thought{}, ErrDuplicateMessage
	}
	delete(s.byText, rec.Message)
	rec.Message = message
	s.byText[message] = id
	return rec.Thought, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
