package domain

import (
	"math"
	"strings"
	"time"
)

type DateFilter string

const (
	DateAny   DateFilter = ""
	DateToday DateFilter = "today"
	DateWeek  DateFilter = "week"
	DateMonth DateFilter = "month"
)

// ParseDateFilter maps a query value to a DateFilter. Unknown values, "any"
// and "none" all mean no date constraint.
func ParseDateFilter(s string) DateFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return DateToday
	case "week":
		return DateWeek
	case "month":
		return DateMonth
	default:
		return DateAny
	}
}

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
)

// ParseSortKey resolves a sort value. price_asc and price_desc are accepted
// as aliases; anything unrecognised sorts newest first.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest":
		return SortOldest
	case "price_low", "price_asc":
		return SortPriceLow
	case "price_high", "price_desc":
		return SortPriceHigh
	default:
		return SortNewest
	}
}

// IsPriceSort reports whether the key orders by price.
func (k SortKey) IsPriceSort() bool {
	return k == SortPriceLow || k == SortPriceHigh
}

// FilterSet is the user-supplied filter. Nil fields mean no constraint.
type FilterSet struct {
	LocationID *int64     `json:"location_id,omitempty"`
	Date       DateFilter `json:"date,omitempty"`
	MinPrice   *float64   `json:"min_price,omitempty"`
	MaxPrice   *float64   `json:"max_price,omitempty"`
	Sort       SortKey    `json:"sort,omitempty"`
}

type PageRequest struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// Offset returns the zero-based row offset of the page. Offsets too large
// for an int saturate at math.MaxInt, which lies past the end of any set.
func (p PageRequest) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// PricePresence restricts a query to priced or unpriced listings.
type PricePresence int

const (
	PriceAny PricePresence = iota
	PricePresent
	PriceAbsent
)

// Predicate is a conjunction of listing constraints. Zero values mean no constraint.
type Predicate struct {
	CategoryIDs []int64
	LocationID  *int64
	UserID      *int64
	CreatedFrom *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	Price       PricePresence
}

// HasPriceBound reports whether a min or max price is set. A bounded
// predicate never matches a listing without a price.
func (p Predicate) HasPriceBound() bool {
	return p.MinPrice != nil || p.MaxPrice != nil
}

// WithPrice returns a copy of p restricted to the given price presence.
func (p Predicate) WithPrice(presence PricePresence) Predicate {
	p.Price = presence
	return p
}

type OrderField string

const (
	OrderCreatedAt OrderField = "created_at"
	OrderPrice     OrderField = "price"
	OrderID        OrderField = "id"
)

type OrderBy struct {
	Field OrderField
	Desc  bool
}

// ListingQuery is what a store adapter executes: filter, order, window.
// Limit 0 means no limit.
type ListingQuery struct {
	Where  Predicate
	Order  []OrderBy
	Offset int
	Limit  int
}
