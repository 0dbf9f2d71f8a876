// Package store holds the authoritative in-memory map of documents.
// All mutation paths (event application, review actions, field patches) go
// through this type so per-document updates are serialized and UpdatedAt is
// refreshed uniformly.
package store

import (
	"errors"
	"sync"
	"time"

	"invproc/internal/model"
)

// ErrNotFound is returned when a document id has no entry.
var ErrNotFound = errors.New("document not found")

// DocumentStore owns the document map. Safe for concurrent use; a single
// mutex serializes all mutations, and documents are copied in and out so
// callers never hold a reference into the map.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
	now  func() time.Time
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*model.Document),
		now:  time.Now,
	}
}

// Upsert fully replaces the stored document, refreshing UpdatedAt.
func (s *DocumentStore) Upsert(doc model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.UpdatedAt = s.now()
	s.docs[doc.ID] = cloneDoc(&doc)
}

// Get returns a copy of the document, or ErrNotFound.
func (s *DocumentStore) Get(id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(d), nil
}

// ListByOwner returns copies of all documents owned by ownerID, unordered.
func (s *DocumentStore) ListByOwner(ownerID string) []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Document, 0)
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			out = append(out, *cloneDoc(d))
		}
	}
	return out
}

// All returns copies of every document, unordered.
func (s *DocumentStore) All() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, *cloneDoc(d))
	}
	return out
}

// EnsureOrCreate returns the document with the given id, creating a Pending
// document owned by ownerID if none exists. Idempotent: repeated calls with
// no intervening mutation return identical snapshots.
func (s *DocumentStore) EnsureOrCreate(ownerID, id string) *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDoc(s.ensureLocked(ownerID, id))
}

// Update applies fn to the document under the store lock, refreshing
// UpdatedAt, and returns the mutated copy. Returns ErrNotFound when the id
// is unknown.
func (s *DocumentStore) Update(id string, fn func(*model.Document)) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(d)
	d.UpdatedAt = s.now()
	return cloneDoc(d), nil
}

// Mutate ensures the document exists (creating it for ownerID if needed) and
// applies fn to it, all under one lock acquisition. Used by the event gateway
// so ensure-or-create plus the kind-specific mutation cannot interleave with
// a concurrent event for the same document.
func (s *DocumentStore) Mutate(ownerID, id string, fn func(*model.Document)) *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.ensureLocked(ownerID, id)
	fn(d)
	d.UpdatedAt = s.now()
	return cloneDoc(d)
}

func (s *DocumentStore) ensureLocked(ownerID, id string) *model.Document {
	if d, ok := s.docs[id]; ok {
		return d
	}
	now := s.now()
	d := &model.Document{
		ID:        id,
		OwnerID:   ownerID,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.docs[id] = d
	return d
}

func cloneDoc(d *model.Document) *model.Document {
	cp := *d
	if d.Total != nil {
		t := *d.Total
		cp.Total = &t
	}
	if d.LineItems != nil {
		cp.LineItems = append([]model.LineItem(nil), d.LineItems...)
	}
	return &cp
}
