package domain

import "github.com/google/uuid"

// CalculateProgress returns the planning completeness score: 20 points per
// non-empty category (places, activities, accommodations, transports,
// expenses), so the result is always one of 0, 20, 40, 60, 80, 100.
// Entry count beyond the first and per-entry status are irrelevant.
func (t *Trip) CalculateProgress() int {
	progress := 0
	if len(t.Places) > 0 {
		progress += 20
	}
	if len(t.Activities) > 0 {
		progress += 20
	}
	if len(t.Accommodations) > 0 {
		progress += 20
	}
	if len(t.Transports) > 0 {
		progress += 20
	}
	if len(t.Expenses) > 0 {
		progress += 20
	}
	return progress
}

// RefreshProgress recomputes and caches the progress score. Call after every
// mutation to any of the five category lists.
func (t *Trip) RefreshProgress() {
	t.Progress = t.CalculateProgress()
}

// TotalExpenses sums all expense amounts. Amounts in different currencies are
// summed nominally without conversion.
func (t *Trip) TotalExpenses() float64 {
	var sum float64
	for _, e := range t.Expenses {
		sum += e.Amount
	}
	return sum
}

// ShareOf returns the given user's share of the trip's costs: for every
// expense shared by the user, amount divided by the number of sharers.
func (t *Trip) ShareOf(userID uuid.UUID) float64 {
	var share float64
	for _, e := range t.Expenses {
		if len(e.SharedBy) == 0 {
			continue
		}
		for _, u := range e.SharedBy {
			if u == userID {
				share += e.Amount / float64(len(e.SharedBy))
				break
			}
		}
	}
	return share
}

// DebtOf returns the user's net balance against the group pool: share of
// costs minus amounts fronted. Positive means the user owes the group,
// negative means the group owes the user. Summed over all members the result
// is zero (within floating-point tolerance).
func (t *Trip) DebtOf(userID uuid.UUID) float64 {
	var paid float64
	for _, e := range t.Expenses {
		if e.PaidBy == userID {
			paid += e.Amount
		}
	}
	return t.ShareOf(userID) - paid
}
