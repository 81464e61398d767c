package store

import (
	"context"
	"time"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// TripStore reads and writes trips/{tripCode} documents.
type TripStore struct {
	ds DocumentStore
}

// NewTripStore creates a TripStore over the given document store.
func NewTripStore(ds DocumentStore) *TripStore {
	return &TripStore{ds: ds}
}

// GetTrip returns the trip document for the given code, or ErrNotFound.
func (s *TripStore) GetTrip(ctx context.Context, code string) (*types.Trip, error) {
	doc, err := s.ds.Get(ctx, CollectionTrips, code)
	if err != nil {
		return nil, err
	}

	trip := &types.Trip{Code: code}
	trip.Destination, _ = StringField(doc.Data, "destination")
	trip.Description, _ = StringField(doc.Data, "description")
	trip.ImageName, _ = StringField(doc.Data, "imageName")
	trip.Users, _ = StringSliceField(doc.Data, "users")
	trip.Timestamp, _ = TimeField(doc.Data, "timestamp")
	return trip, nil
}

// SetTrip creates or replaces a trip document.
func (s *TripStore) SetTrip(ctx context.Context, trip *types.Trip) error {
	users := trip.Users
	if users == nil {
		users = []string{}
	}
	return s.ds.Set(ctx, CollectionTrips, trip.Code, map[string]interface{}{
		"destination": trip.Destination,
		"description": trip.Description,
		"imageName":   trip.ImageName,
		"users":       users,
		"timestamp":   trip.Timestamp.UTC().Format(time.RFC3339),
	})
}

// UpdateUsers replaces the participant list of an existing trip.
func (s *TripStore) UpdateUsers(ctx context.Context, code string, users []string) error {
	if users == nil {
		users = []string{}
	}
	return s.ds.Update(ctx, CollectionTrips, code, map[string]interface{}{
		"users": users,
	})
}

// DeleteTrip removes the trip document.
func (s *TripStore) DeleteTrip(ctx context.Context, code string) error {
	return s.ds.Delete(ctx, CollectionTrips, code)
}
