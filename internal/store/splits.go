package store

import (
	"context"
	"time"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// SplitStore reads and writes Splits/{id} documents. Reads return raw
// documents; decoding into the canonical record shape, with malformed-record
// accounting, is the ledger normalizer's job.
type SplitStore struct {
	ds DocumentStore
}

// NewSplitStore creates a SplitStore over the given document store.
func NewSplitStore(ds DocumentStore) *SplitStore {
	return &SplitStore{ds: ds}
}

// QueryAuthorShared returns splits authored by author and shared with
// participant. An empty tripCode matches all trips.
func (s *SplitStore) QueryAuthorShared(ctx context.Context, author, participant, tripCode string) ([]Document, error) {
	preds := []Predicate{
		Eq("authoredBy", author),
		ArrayContains("sharedWith", participant),
	}
	if tripCode != "" {
		preds = append(preds, Eq("tripCode", tripCode))
	}
	return s.ds.Query(ctx, CollectionSplits, preds...)
}

// Create stores a split document and returns its generated ID.
func (s *SplitStore) Create(ctx context.Context, split types.Split) (string, error) {
	return s.ds.Add(ctx, CollectionSplits, encodeSplit(split))
}

func encodeSplit(split types.Split) map[string]interface{} {
	shared := split.SharedWith
	if shared == nil {
		shared = []string{}
	}
	data := map[string]interface{}{
		"authoredBy": split.AuthoredBy,
		"category":   split.Category,
		"name":       split.Name,
		"price":      NumberValue(split.Amount),
		"sharedWith": shared,
		"timestamp":  split.Timestamp.UTC().Format(time.RFC3339),
		"tripCode":   split.TripCode,
	}
	if split.TripName != "" {
		data["tripName"] = split.TripName
	}
	return data
}
