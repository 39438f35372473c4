package rate

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Resolve picks the single applicable rate from an employee's rate rows at
// a point in time. The tie-break order is fixed:
//
//  1. only rates with effective_date <= at are candidates
//  2. rates scoped to the given location beat company-wide rates
//  3. later effective_date beats earlier
//  4. later created_at beats earlier
//
// The second return value is false when no rate predates at. That is a
// normal outcome ("cannot pay yet"), not an error — callers must never
// substitute a zero rate.
func Resolve(rates []Rate, at time.Time, locationID *uuid.UUID) (Rate, bool) {
	candidates := make([]Rate, 0, len(rates))
	for _, r := range rates {
		if !r.EffectiveDate.After(at) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Rate{}, false
	}

	// Sort a copy so repeated calls over the same slice stay deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].EffectiveDate.Equal(candidates[j].EffectiveDate) {
			return candidates[i].EffectiveDate.After(candidates[j].EffectiveDate)
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if locationID != nil {
		for _, r := range candidates {
			if r.LocationID != nil && *r.LocationID == *locationID {
				return r, true
			}
		}
	}

	// Fall back to the most recent company-wide rate.
	for _, r := range candidates {
		if r.LocationID == nil {
			return r, true
		}
	}

	return Rate{}, false
}
