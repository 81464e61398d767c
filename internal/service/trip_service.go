package service

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tripCodeLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tripCodeLength   = 5
	tripCodeAttempts = 5

	defaultTripImage = "defaultImage"
)

// CreateTripInput is the caller-supplied part of a new trip. The total budget
// and categories seed the creator's budget document.
type CreateTripInput struct {
	Destination string                 `json:"destination" binding:"required"`
	Description string                 `json:"description"`
	ImageName   string                 `json:"imageName"`
	TotalBudget decimal.Decimal        `json:"totalBudget"`
	Categories  []types.BudgetCategory `json:"categories"`
}

// TripService manages trip lifecycle and membership. Trip deletion is not
// scattered across call sites: the one authority for the cascade is
// LeaveTrip, which deletes the trip when the last participant leaves.
type TripService interface {
	GetTrip(ctx context.Context, code string) (*types.Trip, error)
	CreateTrip(ctx context.Context, user types.UserIdentity, input CreateTripInput) (*types.Trip, error)
	JoinTrip(ctx context.Context, user types.UserIdentity, code string) (*types.Trip, error)
	LeaveTrip(ctx context.Context, user types.UserIdentity, code string) error
}

// TripServiceImpl implements TripService.
type TripServiceImpl struct {
	trips        *store.TripStore
	users        *store.UserStore
	budgets      *store.BudgetStore
	eventService types.EventPublisher
	log          *zap.SugaredLogger
}

// NewTripService creates a new TripService instance.
func NewTripService(trips *store.TripStore, users *store.UserStore, budgets *store.BudgetStore, eventService types.EventPublisher) *TripServiceImpl {
	return &TripServiceImpl{
		trips:        trips,
		users:        users,
		budgets:      budgets,
		eventService: eventService,
		log:          logger.GetLogger().Named("TripService"),
	}
}

// GetTrip returns one trip by code.
func (s *TripServiceImpl) GetTrip(ctx context.Context, code string) (*types.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, code)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("Trip", code)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return trip, nil
}

// CreateTrip creates the shared trip document under a freshly generated code
// and seeds the creator's budget document. Unallocated budget becomes an
// explicit residual category so the stored allocation sums to the total.
func (s *TripServiceImpl) CreateTrip(ctx context.Context, user types.UserIdentity, input CreateTripInput) (*types.Trip, error) {
	email := normalizeEmail(user.Email)

	if input.Destination == "" {
		return nil, apperrors.ValidationFailed("invalid trip", "destination is required")
	}
	if !input.TotalBudget.IsPositive() {
		return nil, apperrors.ValidationFailed("invalid trip", "total budget must be positive")
	}

	named := make(map[string]struct{}, len(input.Categories))
	namedSum := decimal.Zero
	for _, cat := range input.Categories {
		if cat.Name == "" {
			return nil, apperrors.ValidationFailed("invalid trip", "category name is required")
		}
		if _, dup := named[cat.Name]; dup {
			return nil, apperrors.ValidationFailed("invalid trip", "duplicate category name: "+cat.Name)
		}
		if cat.Budget.IsNegative() {
			return nil, apperrors.ValidationFailed("invalid trip", "category budget must not be negative: "+cat.Name)
		}
		named[cat.Name] = struct{}{}
		namedSum = namedSum.Add(cat.Budget)
	}
	if namedSum.GreaterThan(input.TotalBudget) {
		return nil, apperrors.ValidationFailed("invalid trip", "category budgets exceed the total budget")
	}

	code, err := s.freeTripCode(ctx)
	if err != nil {
		return nil, err
	}

	imageName := input.ImageName
	if imageName == "" {
		imageName = defaultTripImage
	}
	trip := &types.Trip{
		Code:        code,
		Destination: input.Destination,
		Description: input.Description,
		ImageName:   imageName,
		Users:       []string{email},
		Timestamp:   time.Now().UTC(),
	}
	if err := s.trips.SetTrip(ctx, trip); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	categories := append([]types.BudgetCategory(nil), input.Categories...)
	if _, hasOther := named[types.OtherCategoryName]; !hasOther {
		if residual := input.TotalBudget.Sub(namedSum); residual.IsPositive() {
			categories = append(categories, types.BudgetCategory{
				Name:   types.OtherCategoryName,
				Budget: residual,
			})
		}
	}
	budget := &types.TripBudget{
		TripCode:    code,
		TotalBudget: input.TotalBudget,
		Categories:  categories,
	}
	if err := s.budgets.SetTripBudget(ctx, user.ID, budget); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := s.addTripToUser(ctx, user.ID, code); err != nil {
		s.log.Errorw("Failed to record trip on user document", "userID", user.ID, "tripCode", code, "error", err)
	}

	s.publishTripEvent(ctx, types.EventTypeTripCreated, code, email)
	s.log.Infow("Trip created", "tripCode", code, "destination", input.Destination, "creator", logger.MaskEmail(email))
	return trip, nil
}

// freeTripCode generates a code not yet taken by an existing trip.
func (s *TripServiceImpl) freeTripCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < tripCodeAttempts; attempt++ {
		code := randomTripCode()
		_, err := s.trips.GetTrip(ctx, code)
		if err == store.ErrNotFound {
			return code, nil
		}
		if err != nil {
			return "", apperrors.NewDatabaseError(err)
		}
	}
	return "", apperrors.InternalServerError("Could not allocate a trip code")
}

func randomTripCode() string {
	code := make([]byte, tripCodeLength)
	for i := range code {
		code[i] = tripCodeLetters[rand.IntN(len(tripCodeLetters))]
	}
	return string(code)
}

// JoinTrip adds the user to the trip's participant list and the trip code to
// the user's trip list. Joining a trip the user already belongs to is a no-op.
func (s *TripServiceImpl) JoinTrip(ctx context.Context, user types.UserIdentity, code string) (*types.Trip, error) {
	email := normalizeEmail(user.Email)

	trip, err := s.GetTrip(ctx, code)
	if err != nil {
		return nil, err
	}
	if trip.HasParticipant(email) {
		return trip, nil
	}

	trip.Users = append(trip.Users, email)
	if err := s.trips.UpdateUsers(ctx, code, trip.Users); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := s.addTripToUser(ctx, user.ID, code); err != nil {
		s.log.Errorw("Failed to record trip on user document", "userID", user.ID, "tripCode", code, "error", err)
	}

	s.publishTripEvent(ctx, types.EventTypeTripJoined, code, email)
	s.log.Infow("User joined trip", "tripCode", code, "user", logger.MaskEmail(email))
	return trip, nil
}

// LeaveTrip removes the user from the trip. When the participant list
// empties, the trip transitions to deleted.
func (s *TripServiceImpl) LeaveTrip(ctx context.Context, user types.UserIdentity, code string) error {
	email := normalizeEmail(user.Email)

	trip, err := s.GetTrip(ctx, code)
	if err != nil {
		return err
	}
	if !trip.HasParticipant(email) {
		return apperrors.NotFound("Trip membership", code)
	}

	remaining := make([]string, 0, len(trip.Users))
	for _, u := range trip.Users {
		if u != email {
			remaining = append(remaining, u)
		}
	}

	if len(remaining) == 0 {
		if err := s.trips.DeleteTrip(ctx, code); err != nil {
			return apperrors.NewDatabaseError(err)
		}
		s.publishTripEvent(ctx, types.EventTypeTripDeleted, code, email)
		s.log.Infow("Trip deleted after last participant left", "tripCode", code)
	} else {
		if err := s.trips.UpdateUsers(ctx, code, remaining); err != nil {
			return apperrors.NewDatabaseError(err)
		}
		s.publishTripEvent(ctx, types.EventTypeTripLeft, code, email)
	}

	if err := s.removeTripFromUser(ctx, user.ID, code); err != nil {
		s.log.Errorw("Failed to remove trip from user document", "userID", user.ID, "tripCode", code, "error", err)
	}
	return nil
}

func (s *TripServiceImpl) addTripToUser(ctx context.Context, userID, code string) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range u.Trips {
		if t == code {
			return nil
		}
	}
	return s.users.UpdateTrips(ctx, userID, append(u.Trips, code))
}

func (s *TripServiceImpl) removeTripFromUser(ctx context.Context, userID, code string) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	trips := make([]string, 0, len(u.Trips))
	for _, t := range u.Trips {
		if t != code {
			trips = append(trips, t)
		}
	}
	return s.users.UpdateTrips(ctx, userID, trips)
}

func (s *TripServiceImpl) publishTripEvent(ctx context.Context, eventType types.EventType, code, email string) {
	if s.eventService == nil {
		return
	}

	payload, err := json.Marshal(map[string]string{"tripCode": code, "user": email})
	if err != nil {
		return
	}
	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			UserID:    email,
			Timestamp: time.Now(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "trip_service"},
		Payload:  payload,
	}
	if err := s.eventService.Publish(ctx, "trip:"+code, event); err != nil {
		s.log.Warnw("Failed to publish trip event", "type", eventType, "error", err)
	}
}
