package store

import (
	"context"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// UserStore reads and writes users/{uid} documents.
type UserStore struct {
	ds DocumentStore
}

// NewUserStore creates a UserStore over the given document store.
func NewUserStore(ds DocumentStore) *UserStore {
	return &UserStore{ds: ds}
}

// GetUser returns the user document by ID, or ErrNotFound.
func (s *UserStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	doc, err := s.ds.Get(ctx, CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	return decodeUser(doc), nil
}

// FindUserByEmail looks a user up by email, or returns ErrNotFound.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*types.User, error) {
	docs, err := s.ds.Query(ctx, CollectionUsers, Eq("email", email))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeUser(docs[0]), nil
}

// UpdateTrips replaces the user's trip code list.
func (s *UserStore) UpdateTrips(ctx context.Context, id string, trips []string) error {
	if trips == nil {
		trips = []string{}
	}
	return s.ds.Update(ctx, CollectionUsers, id, map[string]interface{}{
		"trips": trips,
	})
}

func decodeUser(doc Document) *types.User {
	user := &types.User{ID: doc.ID}
	user.Email, _ = StringField(doc.Data, "email")
	user.Name, _ = StringField(doc.Data, "Name")
	user.Surname, _ = StringField(doc.Data, "Surname")
	user.PhoneNumber, _ = StringField(doc.Data, "phoneNumber")
	user.IBAN, _ = StringField(doc.Data, "IBAN")
	user.Trips, _ = StringSliceField(doc.Data, "trips")
	return user
}
