package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// splitScale is the number of decimal places kept when dividing a total
// amount into per-person shares. Division rounds half away from zero.
const splitScale = 2

var (
	malformedCounter     prometheus.Counter
	malformedCounterOnce sync.Once
)

func malformedRecordsCounter() prometheus.Counter {
	malformedCounterOnce.Do(func() {
		malformedCounter = promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_malformed_records_total",
			Help: "Stored ledger documents dropped during normalization",
		})
	})
	return malformedCounter
}

// CreateSplitInput is the caller-supplied part of a shared expense. Amount is
// the total paid; the stored record carries the per-person share.
type CreateSplitInput struct {
	Name       string          `json:"name" binding:"required"`
	Category   string          `json:"category" binding:"required"`
	TripCode   string          `json:"tripCode" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	SharedWith []string        `json:"sharedWith" binding:"required"`
}

// CreatePurchaseInput is a personal, non-split expense.
type CreatePurchaseInput struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required"`
	TripCode string          `json:"tripCode" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// LedgerService normalizes stored expense documents into the canonical record
// shape and creates new split and personal purchase records.
type LedgerService interface {
	NormalizeRecord(doc store.Document) (*types.Split, error)
	NormalizeBatch(docs []store.Document) []types.Split
	MalformedCount() int64
	CreateSplit(ctx context.Context, payer types.UserIdentity, input CreateSplitInput) (*types.Split, error)
	CreatePurchase(ctx context.Context, payer types.UserIdentity, input CreatePurchaseInput) (*types.Split, error)
}

// LedgerServiceImpl implements LedgerService.
type LedgerServiceImpl struct {
	splits       *store.SplitStore
	budgets      *store.BudgetStore
	trips        *store.TripStore
	eventService types.EventPublisher
	log          *zap.SugaredLogger
	malformed    atomic.Int64
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(
	splits *store.SplitStore,
	budgets *store.BudgetStore,
	trips *store.TripStore,
	eventService types.EventPublisher,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		splits:       splits,
		budgets:      budgets,
		trips:        trips,
		eventService: eventService,
		log:          logger.GetLogger().Named("LedgerService"),
	}
}

// NormalizeRecord decodes a stored document into the canonical record shape.
// Any missing or mistyped required field yields a MalformedRecord error.
func (s *LedgerServiceImpl) NormalizeRecord(doc store.Document) (*types.Split, error) {
	authoredBy, ok := store.StringField(doc.Data, "authoredBy")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing authoredBy")
	}
	category, ok := store.StringField(doc.Data, "category")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing category")
	}
	name, ok := store.StringField(doc.Data, "name")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing name")
	}
	amount, ok := store.DecimalField(doc.Data, "price")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing or non-numeric price")
	}
	sharedWith, ok := store.StringSliceField(doc.Data, "sharedWith")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing sharedWith")
	}
	timestamp, ok := store.TimeField(doc.Data, "timestamp")
	if !ok {
		return nil, apperrors.MalformedRecord(doc.ID, "missing or invalid timestamp")
	}

	split := &types.Split{
		ID:         doc.ID,
		AuthoredBy: normalizeEmail(authoredBy),
		Category:   category,
		Name:       name,
		Amount:     amount,
		SharedWith: normalizeEmails(sharedWith),
		Timestamp:  timestamp,
	}
	split.TripCode, _ = store.StringField(doc.Data, "tripCode")
	split.TripName, _ = store.StringField(doc.Data, "tripName")

	if split.SharesWith(split.AuthoredBy) {
		// Undefined by the data contract; kept as stored rather than
		// rewritten, since the self-share cancels out of every balance.
		s.log.Warnw("Record lists its author among sharedWith", "recordID", doc.ID)
	}
	return split, nil
}

// NormalizeBatch decodes a batch of documents, dropping malformed ones with a
// counted warning. The batch never aborts on a bad record.
func (s *LedgerServiceImpl) NormalizeBatch(docs []store.Document) []types.Split {
	splits := make([]types.Split, 0, len(docs))
	for _, doc := range docs {
		split, err := s.NormalizeRecord(doc)
		if err != nil {
			s.malformed.Add(1)
			malformedRecordsCounter().Inc()
			s.log.Warnw("Dropping malformed ledger record", "recordID", doc.ID, "error", err)
			continue
		}
		splits = append(splits, *split)
	}
	return splits
}

// MalformedCount returns the number of records dropped by this instance.
func (s *LedgerServiceImpl) MalformedCount() int64 {
	return s.malformed.Load()
}

// CreateSplit records a shared expense. The stored amount is the per-person
// share: total divided evenly across the payer plus the other participants,
// rounded half up to two decimal places.
func (s *LedgerServiceImpl) CreateSplit(ctx context.Context, payer types.UserIdentity, input CreateSplitInput) (*types.Split, error) {
	payerEmail := normalizeEmail(payer.Email)

	if input.Amount.IsNegative() {
		return nil, apperrors.InvalidRecord("amount must not be negative")
	}
	participants := dedupeEmails(normalizeEmails(input.SharedWith))
	if len(participants) == 0 {
		return nil, apperrors.ValidationFailed("invalid split", "at least one participant is required")
	}
	for _, p := range participants {
		if p == payerEmail {
			return nil, apperrors.InvalidRecord("payer cannot appear in sharedWith")
		}
	}

	trip, err := s.trips.GetTrip(ctx, input.TripCode)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("Trip", input.TripCode)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if !trip.HasParticipant(payerEmail) {
		return nil, apperrors.ValidationFailed("invalid split", "payer is not a participant of the trip")
	}
	for _, p := range participants {
		if !trip.HasParticipant(p) {
			return nil, apperrors.ValidationFailed("invalid split", "sharedWith contains a non-participant: "+logger.MaskEmail(p))
		}
	}

	share := input.Amount.DivRound(decimal.NewFromInt(int64(len(participants)+1)), splitScale)

	split := types.Split{
		AuthoredBy: payerEmail,
		Category:   input.Category,
		Name:       input.Name,
		Amount:     share,
		SharedWith: participants,
		Timestamp:  time.Now().UTC(),
		TripCode:   input.TripCode,
		TripName:   trip.Destination,
	}

	id, err := s.splits.Create(ctx, split)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	split.ID = id

	// The payer's own purchase copy only drives their trip budget view; the
	// split document above is the authority for balances. If this write fails
	// after the split was stored, balances stay correct but the payer's budget
	// usage undercounts this expense until the copy is repaired. Surface the
	// partial write instead of failing the whole split.
	if _, err := s.budgets.AddPurchase(ctx, payer.ID, input.TripCode, split); err != nil {
		s.log.Errorw("Split stored without payer purchase copy, budget view undercounts until repaired",
			"splitID", id,
			"tripCode", input.TripCode,
			"payerID", payer.ID,
			"error", err,
		)
	}

	s.publishSplitEvent(ctx, split)
	s.log.Infow("Split created",
		"splitID", id,
		"tripCode", input.TripCode,
		"participants", len(participants)+1,
		"share", share.String(),
	)
	return &split, nil
}

// CreatePurchase records a personal expense. Personal records carry an empty
// sharedWith and never enter balance aggregation.
func (s *LedgerServiceImpl) CreatePurchase(ctx context.Context, payer types.UserIdentity, input CreatePurchaseInput) (*types.Split, error) {
	if input.Amount.IsNegative() {
		return nil, apperrors.InvalidRecord("amount must not be negative")
	}

	purchase := types.Split{
		AuthoredBy: normalizeEmail(payer.Email),
		Category:   input.Category,
		Name:       input.Name,
		Amount:     input.Amount,
		SharedWith: []string{},
		Timestamp:  time.Now().UTC(),
		TripCode:   input.TripCode,
	}

	id, err := s.budgets.AddPurchase(ctx, payer.ID, input.TripCode, purchase)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	purchase.ID = id
	return &purchase, nil
}

func (s *LedgerServiceImpl) publishSplitEvent(ctx context.Context, split types.Split) {
	if s.eventService == nil {
		return
	}

	payload, err := json.Marshal(split)
	if err != nil {
		s.log.Warnw("Failed to marshal split event payload", "error", err)
		return
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      types.EventTypeSplitCreated,
			UserID:    split.AuthoredBy,
			Timestamp: time.Now(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "ledger_service"},
		Payload:  payload,
	}

	if err := s.eventService.Publish(ctx, "trip:"+split.TripCode, event); err != nil {
		s.log.Warnw("Failed to publish split event", "error", err)
	}
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, normalizeEmail(e))
	}
	return out
}

func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
