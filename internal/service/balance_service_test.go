package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBalanceService(ds store.DocumentStore) *BalanceServiceImpl {
	splits := store.NewSplitStore(ds)
	ledger := NewLedgerService(splits, store.NewBudgetStore(ds), store.NewTripStore(ds), nil)
	friends := NewFriendshipService(store.NewFriendRequestStore(ds), store.NewUserStore(ds), nil)
	return NewBalanceService(splits, ledger, friends)
}

func TestComputeBalance_CreditAndDebit(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "PAR24")
	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com", "carol@example.com"}, "PAR24")
	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "ROM25")
	seedSplit(t, ds, "bob@example.com", 10, []string{"alice@example.com"}, "PAR24")

	entry, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "30", entry.CreditTotal.String())
	assert.Equal(t, "10", entry.DebitTotal.String())
	assert.Equal(t, "20", entry.Net().String())
}

func TestComputeBalance_TripScope(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "PAR24")
	seedSplit(t, ds, "alice@example.com", 25, []string{"bob@example.com"}, "ROM25")

	entry, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "PAR24")
	require.NoError(t, err)
	assert.Equal(t, "10", entry.CreditTotal.String())
	assert.Equal(t, "PAR24", entry.TripCode)
}

func TestComputeBalance_ExcludesPersonalRecords(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "PAR24")
	seedSplit(t, ds, "alice@example.com", 99, []string{}, "PAR24")

	entry, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "10", entry.CreditTotal.String())
	assert.True(t, entry.DebitTotal.IsZero())
}

func TestComputeBalance_DropsMalformedRecords(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "PAR24")
	// Missing price; dropped during normalization, not fatal.
	_, err := ds.Add(context.Background(), store.CollectionSplits, map[string]interface{}{
		"authoredBy": "alice@example.com",
		"category":   "Food",
		"name":       "lunch",
		"sharedWith": []string{"bob@example.com"},
		"timestamp":  "2026-05-01T12:00:00Z",
	})
	require.NoError(t, err)

	entry, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "10", entry.CreditTotal.String())
	assert.Equal(t, int64(1), svc.normalizer.MalformedCount())
}

func TestComputeBalance_NegativeAmountRejected(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", -5, []string{"bob@example.com"}, "PAR24")

	_, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.InvalidRecordError, appErr.Type)
}

func TestComputeBalance_Idempotent(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedSplit(t, ds, "alice@example.com", json.Number("12.50"), []string{"bob@example.com"}, "PAR24")

	first, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)
	second, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)

	assert.True(t, first.CreditTotal.Equal(second.CreditTotal))
	assert.True(t, first.Net().Equal(second.Net()))
}

func TestComputeBalance_PreservesDecimalPrecision(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	// 0.1 + 0.2 must come out as exactly 0.3.
	seedSplit(t, ds, "alice@example.com", json.Number("0.1"), []string{"bob@example.com"}, "PAR24")
	seedSplit(t, ds, "alice@example.com", json.Number("0.2"), []string{"bob@example.com"}, "PAR24")

	entry, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "0.3", entry.CreditTotal.String())
}

func TestComputeBalance_FetchFailure(t *testing.T) {
	ds := &failingStore{
		DocumentStore:   newMemoryStore(),
		failCollections: map[string]error{store.CollectionSplits: errors.New("backend unavailable")},
	}
	svc := newBalanceService(ds)

	_, err := svc.ComputeBalance(context.Background(), "alice@example.com", "bob@example.com", "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.FetchFailedError, appErr.Type)
}

func TestComputeAllBalances_OneEntryPerEstablishedFriend(t *testing.T) {
	ds := newMemoryStore()
	svc := newBalanceService(ds)

	seedFriendRequest(t, ds, "alice@example.com", "bob@example.com", "accepted")
	seedFriendRequest(t, ds, "carol@example.com", "alice@example.com", "accepted")
	// Pending friends carry no balance scope.
	seedFriendRequest(t, ds, "alice@example.com", "dave@example.com", "pending")

	seedSplit(t, ds, "alice@example.com", 10, []string{"bob@example.com"}, "PAR24")
	seedSplit(t, ds, "carol@example.com", 5, []string{"alice@example.com"}, "PAR24")

	report, err := svc.ComputeAllBalances(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	assert.Empty(t, report.Failed)

	byCounterparty := make(map[string]string)
	for _, e := range report.Entries {
		byCounterparty[e.Counterparty] = e.Net().String()
	}
	assert.Equal(t, "10", byCounterparty["bob@example.com"])
	assert.Equal(t, "-5", byCounterparty["carol@example.com"])
}

func TestComputeAllBalances_IsolatesScopeFailures(t *testing.T) {
	ds := newMemoryStore()
	seedFriendRequest(t, ds, "alice@example.com", "bob@example.com", "accepted")
	seedFriendRequest(t, ds, "alice@example.com", "carol@example.com", "accepted")
	seedSplit(t, ds, "bob@example.com", 10, []string{"alice@example.com"}, "PAR24")
	// A negative record poisons only carol's scope.
	seedSplit(t, ds, "carol@example.com", -1, []string{"alice@example.com"}, "PAR24")

	svc := newBalanceService(ds)
	report, err := svc.ComputeAllBalances(context.Background(), "alice@example.com")
	require.NoError(t, err)

	require.Len(t, report.Entries, 1)
	assert.Equal(t, "bob@example.com", report.Entries[0].Counterparty)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "carol@example.com", report.Failed[0].Counterparty)
}
