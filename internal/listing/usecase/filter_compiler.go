package usecase

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// FilterCompiler turns a FilterSet into a store predicate. It never fails.
type FilterCompiler struct {
	now func() time.Time
}

// NewFilterCompiler returns a compiler reading the current time from now.
// A nil now uses time.Now.
func NewFilterCompiler(now func() time.Time) *FilterCompiler {
	if now == nil {
		now = time.Now
	}
	return &FilterCompiler{now: now}
}

// Compile builds the predicate for f. Category and author scope are added by the caller.
func (c *FilterCompiler) Compile(f domain.FilterSet) domain.Predicate {
	var p domain.Predicate
	if f.LocationID != nil {
		id := *f.LocationID
		p.LocationID = &id
	}
	p.CreatedFrom = DateLowerBound(f.Date, c.now())
	if f.MinPrice != nil {
		v := *f.MinPrice
		p.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		p.MaxPrice = &v
	}
	return p
}

// DateLowerBound returns the earliest creation time admitted by d, or nil for
// no bound. today is local midnight in now's location, week is a rolling
// seven days and month is one calendar month back.
func DateLowerBound(d domain.DateFilter, now time.Time) *time.Time {
	var bound time.Time
	switch d {
	case domain.DateToday:
		y, m, day := now.Date()
		bound = time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	case domain.DateWeek:
		bound = now.Add(-7 * 24 * time.Hour)
	case domain.DateMonth:
		bound = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &bound
}
