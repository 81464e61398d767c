package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FriendshipService defines the friendship resolution and request business logic.
type FriendshipService interface {
	// ResolveFriendship derives the relationship state between self and
	// counterpart. Returns nil with no error when no relationship exists.
	ResolveFriendship(ctx context.Context, self, counterpart string) (*types.FriendshipView, error)
	ListFriends(ctx context.Context, self string) (*types.FriendList, error)
	SendFriendRequest(ctx context.Context, from, to string) (*types.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, from, to string) error
}

// FriendshipServiceImpl implements FriendshipService over the friendRequests
// collection.
type FriendshipServiceImpl struct {
	requests     *store.FriendRequestStore
	users        *store.UserStore
	eventService types.EventPublisher
	log          *zap.SugaredLogger
}

// NewFriendshipService creates a new FriendshipService instance.
func NewFriendshipService(requests *store.FriendRequestStore, users *store.UserStore, eventService types.EventPublisher) *FriendshipServiceImpl {
	return &FriendshipServiceImpl{
		requests:     requests,
		users:        users,
		eventService: eventService,
		log:          logger.GetLogger().Named("FriendshipService"),
	}
}

// ResolveFriendship folds over every request document between the two users,
// in both directions. Accepted wins over pending regardless of how many
// duplicate documents exist in either direction.
func (s *FriendshipServiceImpl) ResolveFriendship(ctx context.Context, self, counterpart string) (*types.FriendshipView, error) {
	self = normalizeEmail(self)
	counterpart = normalizeEmail(counterpart)

	reqs, err := s.requests.ListBetween(ctx, self, counterpart)
	if err != nil {
		return nil, apperrors.FetchFailed("friendship "+logger.MaskEmail(counterpart), err)
	}

	state, ok := foldRelationship(reqs, self, counterpart)
	if !ok {
		return nil, nil
	}
	return &types.FriendshipView{Counterpart: counterpart, State: state}, nil
}

// ListFriends returns the user's counterparts partitioned by relationship
// state. A counterpart with both an accepted and a stale pending document
// appears once, as established.
func (s *FriendshipServiceImpl) ListFriends(ctx context.Context, self string) (*types.FriendList, error) {
	self = normalizeEmail(self)

	accepted, err := s.requests.ListAcceptedWith(ctx, self)
	if err != nil {
		return nil, apperrors.FetchFailed("friend list", err)
	}
	sent, err := s.requests.ListPendingFrom(ctx, self)
	if err != nil {
		return nil, apperrors.FetchFailed("friend list", err)
	}
	received, err := s.requests.ListPendingTo(ctx, self)
	if err != nil {
		return nil, apperrors.FetchFailed("friend list", err)
	}

	states := make(map[string]types.FriendshipState)
	for _, req := range accepted {
		states[otherParty(req, self)] = types.FriendshipEstablished
	}
	for _, req := range sent {
		counterpart := normalizeEmail(req.To)
		if _, exists := states[counterpart]; !exists {
			states[counterpart] = types.FriendshipRequestSent
		}
	}
	for _, req := range received {
		counterpart := normalizeEmail(req.From)
		if _, exists := states[counterpart]; !exists {
			states[counterpart] = types.FriendshipRequestReceived
		}
	}
	delete(states, self)

	list := &types.FriendList{
		Established: []types.FriendshipView{},
		Sent:        []types.FriendshipView{},
		Received:    []types.FriendshipView{},
	}
	for counterpart, state := range states {
		view := types.FriendshipView{Counterpart: counterpart, State: state}
		switch state {
		case types.FriendshipEstablished:
			list.Established = append(list.Established, view)
		case types.FriendshipRequestSent:
			list.Sent = append(list.Sent, view)
		case types.FriendshipRequestReceived:
			list.Received = append(list.Received, view)
		}
	}
	sortViews(list.Established)
	sortViews(list.Sent)
	sortViews(list.Received)
	return list, nil
}

// SendFriendRequest creates a pending request from one user to another. It
// fails when the target is the sender, is not a registered user, or when an
// active pending or accepted document already exists in either direction.
func (s *FriendshipServiceImpl) SendFriendRequest(ctx context.Context, from, to string) (*types.FriendRequest, error) {
	from = normalizeEmail(from)
	to = normalizeEmail(to)

	if from == "" || to == "" {
		return nil, apperrors.ValidationFailed("invalid friend request", "from and to are required")
	}
	if from == to {
		return nil, apperrors.InvalidTarget("Cannot send a friend request to yourself", logger.MaskEmail(from))
	}

	if _, err := s.users.FindUserByEmail(ctx, to); err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("User", logger.MaskEmail(to))
		}
		return nil, apperrors.FetchFailed("user lookup", err)
	}

	existing, err := s.requests.ListBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.FetchFailed("friend request check", err)
	}
	for _, req := range existing {
		if req.Status == types.RequestStatusPending || req.Status == types.RequestStatusAccepted {
			return nil, apperrors.DuplicateRequest(from, to)
		}
	}

	req := types.FriendRequest{From: from, To: to, Status: types.RequestStatusPending}
	id, err := s.requests.Create(ctx, req)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	req.ID = id

	s.publishFriendEvent(ctx, types.EventTypeFriendRequestSent, req)
	s.log.Infow("Friend request sent",
		"from", logger.MaskEmail(from),
		"to", logger.MaskEmail(to),
	)
	return &req, nil
}

// AcceptFriendRequest transitions a pending request to accepted. Only the
// recipient performs this; it is the single transition into an established
// friendship. Duplicate pending documents for the direction are all accepted
// so the fold stays deterministic afterwards.
func (s *FriendshipServiceImpl) AcceptFriendRequest(ctx context.Context, from, to string) error {
	from = normalizeEmail(from)
	to = normalizeEmail(to)

	reqs, err := s.requests.ListDirected(ctx, from, to)
	if err != nil {
		return apperrors.FetchFailed("friend request lookup", err)
	}

	var pending []types.FriendRequest
	for _, req := range reqs {
		if req.Status == types.RequestStatusPending {
			pending = append(pending, req)
		}
	}
	if len(pending) == 0 {
		return apperrors.NotFound("Pending friend request", from+" -> "+to)
	}

	for _, req := range pending {
		if err := s.requests.UpdateStatus(ctx, req.ID, types.RequestStatusAccepted); err != nil {
			return apperrors.NewDatabaseError(err)
		}
	}

	accepted := pending[0]
	accepted.Status = types.RequestStatusAccepted
	s.publishFriendEvent(ctx, types.EventTypeFriendRequestAccepted, accepted)
	s.log.Infow("Friend request accepted",
		"from", logger.MaskEmail(from),
		"to", logger.MaskEmail(to),
	)
	return nil
}

func (s *FriendshipServiceImpl) publishFriendEvent(ctx context.Context, eventType types.EventType, req types.FriendRequest) {
	if s.eventService == nil {
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		s.log.Warnw("Failed to marshal friend event payload", "error", err)
		return
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			UserID:    req.From,
			Timestamp: time.Now(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "friendship_service"},
		Payload:  payload,
	}

	// The recipient's channel gets the event; delivery is advisory and must
	// not fail the operation.
	channel := "user:" + req.To
	if eventType == types.EventTypeFriendRequestAccepted {
		channel = "user:" + req.From
	}
	if err := s.eventService.Publish(ctx, channel, event); err != nil {
		s.log.Warnw("Failed to publish friend event", "type", eventType, "error", err)
	}
}

// foldRelationship applies the precedence accepted > pending > absent across
// every document in both directions.
func foldRelationship(reqs []types.FriendRequest, self, counterpart string) (types.FriendshipState, bool) {
	var pendingSent, pendingReceived bool
	for _, req := range reqs {
		from := normalizeEmail(req.From)
		to := normalizeEmail(req.To)

		if req.Status == types.RequestStatusAccepted {
			if (from == self && to == counterpart) || (from == counterpart && to == self) {
				return types.FriendshipEstablished, true
			}
		}
		if req.Status == types.RequestStatusPending {
			if from == self && to == counterpart {
				pendingSent = true
			}
			if from == counterpart && to == self {
				pendingReceived = true
			}
		}
	}

	if pendingSent {
		return types.FriendshipRequestSent, true
	}
	if pendingReceived {
		return types.FriendshipRequestReceived, true
	}
	return "", false
}

func otherParty(req types.FriendRequest, self string) string {
	if normalizeEmail(req.From) == self {
		return normalizeEmail(req.To)
	}
	return normalizeEmail(req.From)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortViews(views []types.FriendshipView) {
	sort.Slice(views, func(i, j int) bool { return views[i].Counterpart < views[j].Counterpart })
}
