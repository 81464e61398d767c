package store

import (
	"context"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// FriendRequestStore reads and writes friendRequests/{id} documents.
type FriendRequestStore struct {
	ds DocumentStore
}

// NewFriendRequestStore creates a FriendRequestStore over the given document store.
func NewFriendRequestStore(ds DocumentStore) *FriendRequestStore {
	return &FriendRequestStore{ds: ds}
}

// ListBetween returns every request document between the two users, both
// directions, regardless of status. Duplicates are returned as stored; the
// resolver folds over all of them.
func (s *FriendRequestStore) ListBetween(ctx context.Context, a, b string) ([]types.FriendRequest, error) {
	forward, err := s.list(ctx, Eq("from", a), Eq("to", b))
	if err != nil {
		return nil, err
	}
	reverse, err := s.list(ctx, Eq("from", b), Eq("to", a))
	if err != nil {
		return nil, err
	}
	return append(forward, reverse...), nil
}

// ListDirected returns every request document for one direction, regardless
// of status.
func (s *FriendRequestStore) ListDirected(ctx context.Context, from, to string) ([]types.FriendRequest, error) {
	return s.list(ctx, Eq("from", from), Eq("to", to))
}

// ListPendingFrom returns pending requests the user has sent.
func (s *FriendRequestStore) ListPendingFrom(ctx context.Context, email string) ([]types.FriendRequest, error) {
	return s.list(ctx, Eq("from", email), Eq("status", string(types.RequestStatusPending)))
}

// ListPendingTo returns pending requests the user has received.
func (s *FriendRequestStore) ListPendingTo(ctx context.Context, email string) ([]types.FriendRequest, error) {
	return s.list(ctx, Eq("to", email), Eq("status", string(types.RequestStatusPending)))
}

// ListAcceptedWith returns accepted requests involving the user, in either
// direction.
func (s *FriendRequestStore) ListAcceptedWith(ctx context.Context, email string) ([]types.FriendRequest, error) {
	sent, err := s.list(ctx, Eq("from", email), Eq("status", string(types.RequestStatusAccepted)))
	if err != nil {
		return nil, err
	}
	received, err := s.list(ctx, Eq("to", email), Eq("status", string(types.RequestStatusAccepted)))
	if err != nil {
		return nil, err
	}
	return append(sent, received...), nil
}

// Create stores a new request document and returns its generated ID.
func (s *FriendRequestStore) Create(ctx context.Context, req types.FriendRequest) (string, error) {
	return s.ds.Add(ctx, CollectionFriendRequests, map[string]interface{}{
		"from":   req.From,
		"to":     req.To,
		"status": string(req.Status),
	})
}

// UpdateStatus mutates the status of an existing request document.
func (s *FriendRequestStore) UpdateStatus(ctx context.Context, id string, status types.RequestStatus) error {
	return s.ds.Update(ctx, CollectionFriendRequests, id, map[string]interface{}{
		"status": string(status),
	})
}

func (s *FriendRequestStore) list(ctx context.Context, preds ...Predicate) ([]types.FriendRequest, error) {
	docs, err := s.ds.Query(ctx, CollectionFriendRequests, preds...)
	if err != nil {
		return nil, err
	}

	reqs := make([]types.FriendRequest, 0, len(docs))
	for _, doc := range docs {
		req, ok := decodeFriendRequest(doc)
		if !ok {
			// Tolerate malformed documents the same way the clients do.
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func decodeFriendRequest(doc Document) (types.FriendRequest, bool) {
	from, okFrom := StringField(doc.Data, "from")
	to, okTo := StringField(doc.Data, "to")
	status, okStatus := StringField(doc.Data, "status")
	if !okFrom || !okTo || !okStatus {
		return types.FriendRequest{}, false
	}
	return types.FriendRequest{
		ID:     doc.ID,
		From:   from,
		To:     to,
		Status: types.RequestStatus(status),
	}, true
}
