// Package store defines the document-store contract the reconciliation engine
// reads and writes through, plus typed adapters for the externally visible
// collections. The collection names and document shapes are external schema
// and must stay compatible with the mobile clients.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Collection names fixed by the external schema.
const (
	CollectionUsers          = "users"
	CollectionTrips          = "trips"
	CollectionFriendRequests = "friendRequests"
	CollectionSplits         = "Splits"
)

// UserTripsCollection returns the per-user trip budget subcollection.
func UserTripsCollection(userID string) string {
	return CollectionUsers + "/" + userID + "/trips"
}

// UserPurchasesCollection returns the per-user, per-trip purchase subcollection.
func UserPurchasesCollection(userID, tripCode string) string {
	return UserTripsCollection(userID) + "/" + tripCode + "/purchases"
}

// Document is one stored record: an ID plus its decoded JSON fields.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Op is a predicate operator. Only equality and array membership are
// supported; these are the two filter forms the clients use.
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Predicate is one query filter on a document field.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Eq builds an equality predicate.
func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEqual, Value: value}
}

// ArrayContains builds an array membership predicate.
func ArrayContains(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpArrayContains, Value: value}
}

// DocumentStore is the generic query/read/write interface over the backing
// document database. Implementations must treat each call as an independent
// single-document mutation; no cross-document transactions are required.
type DocumentStore interface {
	// Query returns all documents in the collection matching every predicate.
	Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error)
	// Get returns one document by ID, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Update merges partial data into an existing document, or ErrNotFound.
	Update(ctx context.Context, collection, id string, partial map[string]interface{}) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Add creates a document with a generated ID and returns it.
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
}
