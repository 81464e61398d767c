package store

import (
	"context"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// BudgetStore reads the per-user trip budget documents and the purchase
// subcollection beneath them.
type BudgetStore struct {
	ds DocumentStore
}

// NewBudgetStore creates a BudgetStore over the given document store.
func NewBudgetStore(ds DocumentStore) *BudgetStore {
	return &BudgetStore{ds: ds}
}

// GetTripBudget returns the budget document at users/{uid}/trips/{tripCode},
// or ErrNotFound. Category entries missing a name or budget are skipped.
func (s *BudgetStore) GetTripBudget(ctx context.Context, userID, tripCode string) (*types.TripBudget, error) {
	doc, err := s.ds.Get(ctx, UserTripsCollection(userID), tripCode)
	if err != nil {
		return nil, err
	}

	budget := &types.TripBudget{TripCode: tripCode}
	budget.TotalBudget, _ = DecimalField(doc.Data, "totalBudget")

	raw, ok := doc.Data["categories"].([]interface{})
	if !ok {
		return budget, nil
	}
	for _, entry := range raw {
		data, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name, okName := StringField(data, "name")
		amount, okBudget := DecimalField(data, "budget")
		if !okName || !okBudget {
			continue
		}
		color, _ := StringField(data, "color")
		budget.Categories = append(budget.Categories, types.BudgetCategory{
			Name:   name,
			Color:  color,
			Budget: amount,
		})
	}
	return budget, nil
}

// SetTripBudget creates or replaces the budget document at
// users/{uid}/trips/{tripCode}.
func (s *BudgetStore) SetTripBudget(ctx context.Context, userID string, budget *types.TripBudget) error {
	categories := make([]interface{}, 0, len(budget.Categories))
	for _, cat := range budget.Categories {
		categories = append(categories, map[string]interface{}{
			"name":   cat.Name,
			"color":  cat.Color,
			"budget": NumberValue(cat.Budget),
		})
	}
	return s.ds.Set(ctx, UserTripsCollection(userID), budget.TripCode, map[string]interface{}{
		"totalBudget": NumberValue(budget.TotalBudget),
		"categories":  categories,
	})
}

// ListPurchases returns the raw purchase documents under
// users/{uid}/trips/{tripCode}/purchases.
func (s *BudgetStore) ListPurchases(ctx context.Context, userID, tripCode string) ([]Document, error) {
	return s.ds.Query(ctx, UserPurchasesCollection(userID, tripCode))
}

// AddPurchase stores the payer's own copy of a purchase and returns its ID.
func (s *BudgetStore) AddPurchase(ctx context.Context, userID, tripCode string, split types.Split) (string, error) {
	return s.ds.Add(ctx, UserPurchasesCollection(userID, tripCode), encodeSplit(split))
}
