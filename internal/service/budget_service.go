package service

import (
	"context"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ratioScale is the precision of reported progress ratios.
const ratioScale = 4

// BudgetService derives per-category budget consumption for a trip from its
// category allocations and purchase history.
type BudgetService interface {
	ComputeBudgetUsage(ctx context.Context, userID, tripCode string) (*types.BudgetUsage, error)
}

// BudgetServiceImpl implements BudgetService.
type BudgetServiceImpl struct {
	budgets    *store.BudgetStore
	normalizer LedgerService
	log        *zap.SugaredLogger
}

// NewBudgetService creates a new BudgetService instance.
func NewBudgetService(budgets *store.BudgetStore, normalizer LedgerService) *BudgetServiceImpl {
	return &BudgetServiceImpl{
		budgets:    budgets,
		normalizer: normalizer,
		log:        logger.GetLogger().Named("BudgetService"),
	}
}

// ComputeBudgetUsage folds the trip's purchases into per-category spent and
// remaining amounts. Remaining is not clamped and may go negative. The
// synthetic residual bucket absorbs the unallocated share of the total budget
// and the spend of purchases matching no named category.
func (s *BudgetServiceImpl) ComputeBudgetUsage(ctx context.Context, userID, tripCode string) (*types.BudgetUsage, error) {
	budget, err := s.budgets.GetTripBudget(ctx, userID, tripCode)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("Trip budget", tripCode)
		}
		return nil, apperrors.FetchFailed("budget "+tripCode, err)
	}

	docs, err := s.budgets.ListPurchases(ctx, userID, tripCode)
	if err != nil {
		return nil, apperrors.FetchFailed("purchases "+tripCode, err)
	}
	purchases := s.normalizer.NormalizeBatch(docs)

	// Category identity is the case-sensitive name; duplicates would make the
	// spent attribution ambiguous, so they are rejected up front.
	named := make(map[string]int, len(budget.Categories))
	namedSum := decimal.Zero
	hasExplicitOther := false
	for i, cat := range budget.Categories {
		if _, dup := named[cat.Name]; dup {
			return nil, apperrors.ValidationFailed("invalid trip budget", "duplicate category name: "+cat.Name)
		}
		named[cat.Name] = i
		namedSum = namedSum.Add(cat.Budget)
		if cat.Name == types.OtherCategoryName {
			hasExplicitOther = true
		}
	}

	usage := &types.BudgetUsage{TripCode: tripCode}
	spentByCategory := make(map[string]decimal.Decimal, len(budget.Categories))
	otherSpent := decimal.Zero
	totalSpent := decimal.Zero

	for i := range purchases {
		p := &purchases[i]
		if p.Amount.IsNegative() {
			return nil, apperrors.InvalidRecord("purchase " + p.ID + " has a negative amount")
		}
		totalSpent = totalSpent.Add(p.Amount)
		if _, ok := named[p.Category]; ok {
			spentByCategory[p.Category] = spentByCategory[p.Category].Add(p.Amount)
		} else {
			// Includes purchases explicitly tagged with the residual bucket
			// name when no such named category exists.
			otherSpent = otherSpent.Add(p.Amount)
		}
	}

	for _, cat := range budget.Categories {
		spent := spentByCategory[cat.Name]
		if cat.Name == types.OtherCategoryName {
			spent = spent.Add(otherSpent)
			otherSpent = decimal.Zero
		}
		usage.Categories = append(usage.Categories, categoryUsage(cat.Name, cat.Color, cat.Budget, spent))
	}

	// Residual bucket: whatever the named categories leave unallocated.
	if !hasExplicitOther {
		residual := budget.TotalBudget.Sub(namedSum)
		if residual.IsPositive() || otherSpent.IsPositive() {
			if residual.IsNegative() {
				s.log.Warnw("Named category budgets exceed the total budget",
					"tripCode", tripCode,
					"totalBudget", budget.TotalBudget.String(),
					"namedSum", namedSum.String(),
				)
				residual = decimal.Zero
			}
			usage.Categories = append(usage.Categories,
				categoryUsage(types.OtherCategoryName, "", residual, otherSpent))
		}
	}

	usage.Total = categoryUsage("Total", "", budget.TotalBudget, totalSpent)
	return usage, nil
}

func categoryUsage(name, color string, budget, spent decimal.Decimal) types.CategoryUsage {
	u := types.CategoryUsage{
		Name:      name,
		Color:     color,
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Sub(spent),
	}
	if budget.IsZero() {
		// remaining / budget is undefined; report zero and flag it.
		u.ProgressRatio = decimal.Zero
		u.ProgressUndefined = true
		return u
	}
	u.ProgressRatio = u.Remaining.DivRound(budget, ratioScale)
	return u
}
