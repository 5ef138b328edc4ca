package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/aletheialabs/aletheia/types"
)

// Errors
var (
	ErrClaimNotFound = errors.New("claim not found")
	ErrStoreClosed   = errors.New("store is closed")
)

// Store is the persisted claim table plus the monotonic next-id counter
type Store interface {
	// NextID assigns and returns the next claim id. Ids start at 1 and
	// are never reused.
	NextID() (uint64, error)

	// Put inserts or replaces a claim record
	Put(c *types.Claim) error

	// Get returns the claim with the given id, or ErrClaimNotFound
	Get(id uint64) (*types.Claim, error)

	// List returns all claims ordered by id
	List() ([]*types.Claim, error)

	// Close releases any underlying resources
	Close() error
}

// MemStore is an in-memory store
type MemStore struct {
	mu     sync.Mutex
	claims map[uint64]*types.Claim
	nextID uint64
	closed bool
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		claims: make(map[uint64]*types.Claim),
		nextID: 1,
	}
}

// NextID implements Store
func (s *MemStore) NextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	id := s.nextID
	s.nextID++
	return id, nil
}

// Put implements Store
func (s *MemStore) Put(c *types.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.claims[c.ID] = c.Clone()
	// Keep the counter ahead of replayed records
	if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	return nil
}

// Get implements Store
func (s *MemStore) Get(id uint64) (*types.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	c, ok := s.claims[id]
	if !ok {
		return nil, ErrClaimNotFound
	}
	return c.Clone(), nil
}

// List implements Store
func (s *MemStore) List() ([]*types.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]*types.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements Store
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemStore)(nil)
