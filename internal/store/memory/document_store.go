// Package memory provides an in-memory document store used by unit tests and
// local development. It mirrors the query semantics of the Postgres
// implementation, including equality and array-containment predicates.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/google/uuid"
)

type record struct {
	seq  int
	data map[string]interface{}
}

// DocumentStore implements store.DocumentStore with plain maps.
type DocumentStore struct {
	mu          sync.RWMutex
	seq         int
	collections map[string]map[string]*record
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]map[string]*record)}
}

// Query returns documents matching all predicates, in insertion order.
func (s *DocumentStore) Query(ctx context.Context, collection string, preds ...store.Predicate) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []struct {
		seq int
		doc store.Document
	}
	for id, rec := range s.collections[collection] {
		if matchesAll(rec.data, preds) {
			matched = append(matched, struct {
				seq int
				doc store.Document
			}{rec.seq, store.Document{ID: id, Data: clone(rec.data)}})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	docs := make([]store.Document, 0, len(matched))
	for _, m := range matched {
		docs = append(docs, m.doc)
	}
	return docs, nil
}

// Get returns a document by ID, or store.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return store.Document{ID: id, Data: clone(rec.data)}, nil
}

// Set creates or replaces a document.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*record)
	}
	s.seq++
	s.collections[collection][id] = &record{seq: s.seq, data: clone(data)}
	return nil
}

// Update merges partial data into an existing document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range clone(partial) {
		rec.data[k] = v
	}
	return nil
}

// Delete removes a document if present.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

// Add creates a document under a generated UUID.
func (s *DocumentStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func matchesAll(data map[string]interface{}, preds []store.Predicate) bool {
	for _, p := range preds {
		switch p.Op {
		case store.OpEqual:
			if !jsonEqual(data[p.Field], p.Value) {
				return false
			}
		case store.OpArrayContains:
			arr, ok := data[p.Field].([]interface{})
			if !ok {
				if strs, okStr := data[p.Field].([]string); okStr {
					arr = make([]interface{}, len(strs))
					for i, s := range strs {
						arr[i] = s
					}
				} else {
					return false
				}
			}
			found := false
			for _, e := range arr {
				if jsonEqual(e, p.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// jsonEqual compares two values through their JSON encoding, so fixture
// values (int, float64) compare equal to decoded ones (json.Number).
func jsonEqual(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

// clone deep-copies a document through its JSON encoding. Numbers are kept
// as json.Number so precision matches what the Postgres store returns.
func clone(data map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]interface{}{}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	out := make(map[string]interface{})
	if err := dec.Decode(&out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
