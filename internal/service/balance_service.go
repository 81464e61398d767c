package service

import (
	"context"
	"sync"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FailedScope reports one aggregation scope that could not be computed.
// Failures are isolated per counterparty; other scopes stay valid.
type FailedScope struct {
	Counterparty string `json:"counterparty"`
	Reason       string `json:"reason"`
}

// BalanceReport is the outcome of aggregating every friend scope.
type BalanceReport struct {
	Entries []types.BalanceEntry `json:"entries"`
	Failed  []FailedScope        `json:"failed,omitempty"`
}

// BalanceService computes net credit/debit positions between users from the
// shared split records.
type BalanceService interface {
	// ComputeBalance aggregates the scope (self, counterpart), optionally
	// narrowed to one trip. The computation is a pure fold over a complete
	// snapshot; if any constituent fetch fails the whole scope fails.
	ComputeBalance(ctx context.Context, self, counterpart, tripCode string) (*types.BalanceEntry, error)
	// ComputeAllBalances aggregates one scope per established friend.
	ComputeAllBalances(ctx context.Context, self string) (*BalanceReport, error)
}

// BalanceServiceImpl implements BalanceService.
type BalanceServiceImpl struct {
	splits     *store.SplitStore
	normalizer LedgerService
	friends    FriendshipService
	log        *zap.SugaredLogger
}

// NewBalanceService creates a new BalanceService instance.
func NewBalanceService(splits *store.SplitStore, normalizer LedgerService, friends FriendshipService) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		splits:     splits,
		normalizer: normalizer,
		friends:    friends,
		log:        logger.GetLogger().Named("BalanceService"),
	}
}

// ComputeBalance fetches both record directions concurrently, waits for both
// to complete, then folds the combined snapshot. Partial results are never
// used: either fetch failing marks the scope indeterminate.
func (s *BalanceServiceImpl) ComputeBalance(ctx context.Context, self, counterpart, tripCode string) (*types.BalanceEntry, error) {
	self = normalizeEmail(self)
	counterpart = normalizeEmail(counterpart)

	var (
		wg       sync.WaitGroup
		credits  []store.Document
		debits   []store.Document
		errFetch [2]error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		credits, errFetch[0] = s.splits.QueryAuthorShared(ctx, self, counterpart, tripCode)
	}()
	go func() {
		defer wg.Done()
		debits, errFetch[1] = s.splits.QueryAuthorShared(ctx, counterpart, self, tripCode)
	}()
	wg.Wait()

	for _, err := range errFetch {
		if err != nil {
			return nil, apperrors.FetchFailed("balance "+logger.MaskEmail(counterpart), err)
		}
	}

	records := s.normalizer.NormalizeBatch(append(credits, debits...))

	entry := &types.BalanceEntry{
		Self:         self,
		Counterparty: counterpart,
		TripCode:     tripCode,
		CreditTotal:  decimal.Zero,
		DebitTotal:   decimal.Zero,
	}
	for i := range records {
		rec := &records[i]
		if rec.Amount.IsNegative() {
			return nil, apperrors.InvalidRecord("record " + rec.ID + " has a negative amount")
		}
		if rec.IsPersonal() {
			continue
		}
		if rec.AuthoredBy == self && rec.SharesWith(counterpart) {
			entry.CreditTotal = entry.CreditTotal.Add(rec.Amount)
		}
		if rec.AuthoredBy == counterpart && rec.SharesWith(self) {
			entry.DebitTotal = entry.DebitTotal.Add(rec.Amount)
		}
	}
	return entry, nil
}

// ComputeAllBalances computes one balance entry per established friend.
// A failure in one friend's scope is reported alongside the successful
// entries instead of failing the whole report.
func (s *BalanceServiceImpl) ComputeAllBalances(ctx context.Context, self string) (*BalanceReport, error) {
	self = normalizeEmail(self)

	list, err := s.friends.ListFriends(ctx, self)
	if err != nil {
		return nil, err
	}

	report := &BalanceReport{Entries: []types.BalanceEntry{}}
	for _, friend := range list.Established {
		entry, err := s.ComputeBalance(ctx, self, friend.Counterpart, "")
		if err != nil {
			s.log.Warnw("Balance scope failed",
				"counterparty", logger.MaskEmail(friend.Counterpart),
				"error", err,
			)
			report.Failed = append(report.Failed, FailedScope{
				Counterparty: friend.Counterpart,
				Reason:       err.Error(),
			})
			continue
		}
		report.Entries = append(report.Entries, *entry)
	}
	return report, nil
}
