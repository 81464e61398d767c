package types

import "github.com/shopspring/decimal"

// OtherCategoryName is the synthetic residual budget bucket. It absorbs the
// part of the total budget not assigned to a named category, and the spend of
// purchases whose category matches no named category.
const OtherCategoryName = "Others"

// BudgetCategory is one named budget bucket within a trip. Identity is the
// case-sensitive name, unique within the trip.
type BudgetCategory struct {
	Name   string          `json:"name"`
	Color  string          `json:"color"`
	Budget decimal.Decimal `json:"budget"`
}

// TripBudget mirrors a users/{uid}/trips/{tripCode} document.
type TripBudget struct {
	TripCode    string           `json:"tripCode"`
	TotalBudget decimal.Decimal  `json:"totalBudget"`
	Categories  []BudgetCategory `json:"categories"`
}

// CategoryUsage is the derived consumption of one budget bucket. Remaining may
// go negative; there is no clamping. ProgressUndefined marks buckets with a
// zero budget, whose progress ratio cannot be computed and is reported as zero.
type CategoryUsage struct {
	Name              string          `json:"name"`
	Color             string          `json:"color,omitempty"`
	Budget            decimal.Decimal `json:"budget"`
	Spent             decimal.Decimal `json:"spent"`
	Remaining         decimal.Decimal `json:"remaining"`
	ProgressRatio     decimal.Decimal `json:"progressRatio"`
	ProgressUndefined bool            `json:"progressUndefined,omitempty"`
}

// BudgetUsage is the full budget consumption view for one trip: the total
// budget row plus one row per category, including the synthetic residual
// bucket when it has a positive budget.
type BudgetUsage struct {
	TripCode   string          `json:"tripCode"`
	Total      CategoryUsage   `json:"total"`
	Categories []CategoryUsage `json:"categories"`
}
