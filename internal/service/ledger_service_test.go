package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/events"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerService(ds store.DocumentStore) (*LedgerServiceImpl, *events.MockPublisher) {
	pub := events.NewMockPublisher()
	svc := NewLedgerService(store.NewSplitStore(ds), store.NewBudgetStore(ds), store.NewTripStore(ds), pub)
	return svc, pub
}

func validSplitDoc() store.Document {
	return store.Document{
		ID: "rec-1",
		Data: map[string]interface{}{
			"authoredBy": "Alice@Example.com",
			"category":   "Food",
			"name":       "dinner",
			"price":      json.Number("12.50"),
			"sharedWith": []interface{}{"bob@example.com"},
			"timestamp":  "2026-05-01T12:00:00Z",
			"tripCode":   "PAR24",
		},
	}
}

func TestNormalizeRecord_Valid(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())

	split, err := svc.NormalizeRecord(validSplitDoc())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", split.ID)
	assert.Equal(t, "alice@example.com", split.AuthoredBy)
	assert.Equal(t, "12.5", split.Amount.String())
	assert.Equal(t, []string{"bob@example.com"}, split.SharedWith)
	assert.Equal(t, "PAR24", split.TripCode)
}

func TestNormalizeRecord_EpochTimestamp(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())

	doc := validSplitDoc()
	doc.Data["timestamp"] = json.Number("1746100800")
	split, err := svc.NormalizeRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, 2025, split.Timestamp.Year())
}

func TestNormalizeRecord_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"missing authoredBy", "authoredBy"},
		{"missing category", "category"},
		{"missing name", "name"},
		{"missing price", "price"},
		{"missing sharedWith", "sharedWith"},
		{"missing timestamp", "timestamp"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newLedgerService(newMemoryStore())
			doc := validSplitDoc()
			delete(doc.Data, tc.field)

			_, err := svc.NormalizeRecord(doc)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.MalformedRecordError, appErr.Type)
		})
	}
}

func TestNormalizeRecord_NonNumericPrice(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())
	doc := validSplitDoc()
	doc.Data["price"] = "not a number"

	_, err := svc.NormalizeRecord(doc)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.MalformedRecordError, appErr.Type)
}

func TestNormalizeRecord_OptionalTripFields(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())
	doc := validSplitDoc()
	delete(doc.Data, "tripCode")

	split, err := svc.NormalizeRecord(doc)
	require.NoError(t, err)
	assert.Empty(t, split.TripCode)
}

func TestNormalizeBatch_DropsAndCounts(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())

	bad := validSplitDoc()
	bad.ID = "rec-2"
	delete(bad.Data, "price")

	splits := svc.NormalizeBatch([]store.Document{validSplitDoc(), bad})
	require.Len(t, splits, 1)
	assert.Equal(t, "rec-1", splits[0].ID)
	assert.Equal(t, int64(1), svc.MalformedCount())
}

func TestCreateSplit_DividesAcrossPayerAndParticipants(t *testing.T) {
	ds := newMemoryStore()
	svc, pub := newLedgerService(ds)
	seedTrip(t, ds, "PAR24", "Paris", []string{"alice@example.com", "bob@example.com", "carol@example.com"})

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	split, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(30),
		SharedWith: []string{"bob@example.com", "carol@example.com"},
	})
	require.NoError(t, err)

	// 30 across payer plus two participants is 10 each.
	assert.Equal(t, "10", split.Amount.String())
	assert.Equal(t, "alice@example.com", split.AuthoredBy)
	assert.Equal(t, "Paris", split.TripName)
	assert.NotEmpty(t, split.ID)

	stored, err := store.NewSplitStore(ds).QueryAuthorShared(context.Background(), "alice@example.com", "bob@example.com", "PAR24")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// The payer's own purchase copy lands in their budget subcollection.
	purchases, err := store.NewBudgetStore(ds).ListPurchases(context.Background(), "uid-alice", "PAR24")
	require.NoError(t, err)
	require.Len(t, purchases, 1)

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, types.EventTypeSplitCreated, published[0].Event.Type)
	assert.Equal(t, "trip:PAR24", published[0].Channel)
}

func TestCreateSplit_RoundsShareToCents(t *testing.T) {
	ds := newMemoryStore()
	svc, _ := newLedgerService(ds)
	seedTrip(t, ds, "PAR24", "Paris", []string{"alice@example.com", "bob@example.com", "carol@example.com"})

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	split, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "taxi",
		Category:   "Transport",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(10),
		SharedWith: []string{"bob@example.com", "carol@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.33", split.Amount.String())
}

func TestCreateSplit_PayerInSharedWith(t *testing.T) {
	ds := newMemoryStore()
	svc, _ := newLedgerService(ds)
	seedTrip(t, ds, "PAR24", "Paris", []string{"alice@example.com", "bob@example.com"})

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	_, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(30),
		SharedWith: []string{"alice@example.com", "bob@example.com"},
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.InvalidRecordError, appErr.Type)
}

func TestCreateSplit_NegativeAmount(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	_, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(-1),
		SharedWith: []string{"bob@example.com"},
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.InvalidRecordError, appErr.Type)
}

func TestCreateSplit_TripNotFound(t *testing.T) {
	svc, _ := newLedgerService(newMemoryStore())

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	_, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "NOPE",
		Amount:     decimal.NewFromInt(30),
		SharedWith: []string{"bob@example.com"},
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
}

func TestCreateSplit_NonParticipant(t *testing.T) {
	ds := newMemoryStore()
	svc, _ := newLedgerService(ds)
	seedTrip(t, ds, "PAR24", "Paris", []string{"alice@example.com", "bob@example.com"})

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	_, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(30),
		SharedWith: []string{"mallory@example.com"},
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ValidationError, appErr.Type)
}

func TestCreateSplit_SurvivesBudgetCopyFailure(t *testing.T) {
	inner := newMemoryStore()
	ds := &failingStore{
		DocumentStore:   inner,
		failCollections: map[string]error{store.UserPurchasesCollection("uid-alice", "PAR24"): errors.New("write refused")},
	}
	svc, pub := newLedgerService(ds)
	seedTrip(t, ds, "PAR24", "Paris", []string{"alice@example.com", "bob@example.com"})

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	split, err := svc.CreateSplit(context.Background(), payer, CreateSplitInput{
		Name:       "dinner",
		Category:   "Food",
		TripCode:   "PAR24",
		Amount:     decimal.NewFromInt(30),
		SharedWith: []string{"bob@example.com"},
	})
	require.NoError(t, err, "losing the budget copy must not fail the split")
	assert.NotEmpty(t, split.ID)

	// The split document stays authoritative for balances.
	stored, err := store.NewSplitStore(inner).QueryAuthorShared(context.Background(), "alice@example.com", "bob@example.com", "PAR24")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// Only the payer's budget view is missing the purchase copy.
	purchases, err := store.NewBudgetStore(inner).ListPurchases(context.Background(), "uid-alice", "PAR24")
	require.NoError(t, err)
	assert.Empty(t, purchases)

	require.Len(t, pub.Events(), 1)
}

func TestCreatePurchase_PersonalRecord(t *testing.T) {
	ds := newMemoryStore()
	svc, _ := newLedgerService(ds)

	payer := types.UserIdentity{ID: "uid-alice", Email: "alice@example.com"}
	purchase, err := svc.CreatePurchase(context.Background(), payer, CreatePurchaseInput{
		Name:     "museum ticket",
		Category: "Activities",
		TripCode: "PAR24",
		Amount:   decimal.RequireFromString("17.50"),
	})
	require.NoError(t, err)
	assert.True(t, purchase.IsPersonal())
	assert.Equal(t, "17.5", purchase.Amount.String())

	docs, err := store.NewBudgetStore(ds).ListPurchases(context.Background(), "uid-alice", "PAR24")
	require.NoError(t, err)
	require.Len(t, docs, 1)
}
