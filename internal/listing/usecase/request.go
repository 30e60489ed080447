package usecase

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// Scope says which listings a search runs over.
type Scope string

const (
	ScopeSitewide Scope = "sitewide"
	ScopeCategory Scope = "category"
	ScopeAuthor   Scope = "author"
)

// SearchRequest is a parsed, normalized search.
type SearchRequest struct {
	Scope      Scope              `json:"scope"`
	CategoryID int64              `json:"category_id,omitempty"`
	UserID     int64              `json:"user_id,omitempty"`
	Page       domain.PageRequest `json:"page"`
	Filters    domain.FilterSet   `json:"filters"`
}

// RawQuery holds the untrusted string form of the search parameters.
type RawQuery struct {
	Page     string
	PageSize string
	Location string
	Date     string
	MinPrice string
	MaxPrice string
	Sort     string
}

// PageDefaults controls page size normalization.
type PageDefaults struct {
	Size    int
	MaxSize int
}

var (
	errNotPositive = errors.New("must be a positive integer")
	errBadPrice    = errors.New("must be a non-negative number")
)

// ParseQuery parses raw leniently. A value that cannot be parsed is treated
// as absent and reported in the returned warnings, each wrapping
// domain.ErrInvalidFilter. Page numbers fall back to 1 and page sizes to the
// default. Page sizes above the maximum are clamped.
func ParseQuery(raw RawQuery, defaults PageDefaults) (domain.PageRequest, domain.FilterSet, []error) {
	var warnings []error
	warn := func(field, value string, err error) {
		warnings = append(warnings, &domain.FilterError{Field: field, Value: value, Err: err})
	}

	page := domain.PageRequest{Number: 1, Size: defaults.Size}
	if s := strings.TrimSpace(raw.Page); s != "" {
		if n, err := strconv.Atoi(s); err != nil || n < 1 {
			warn("page", raw.Page, errNotPositive)
		} else {
			page.Number = n
		}
	}
	if s := strings.TrimSpace(raw.PageSize); s != "" {
		if n, err := strconv.Atoi(s); err != nil || n < 1 {
			warn("pageSize", raw.PageSize, errNotPositive)
		} else {
			page.Size = n
		}
	}
	if defaults.MaxSize > 0 && page.Size > defaults.MaxSize {
		page.Size = defaults.MaxSize
	}

	filters := domain.FilterSet{
		Date: domain.ParseDateFilter(raw.Date),
		Sort: domain.ParseSortKey(raw.Sort),
	}
	if s := strings.TrimSpace(raw.Location); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err != nil {
			warn("location", raw.Location, err)
		} else {
			filters.LocationID = &id
		}
	}
	filters.MinPrice = parsePrice("minPrice", raw.MinPrice, warn)
	filters.MaxPrice = parsePrice("maxPrice", raw.MaxPrice, warn)

	return page, filters, warnings
}

func parsePrice(field, raw string, warn func(field, value string, err error)) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		warn(field, raw, err)
		return nil
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		warn(field, raw, errBadPrice)
		return nil
	}
	return &v
}

// ParseID parses a positive integer identifier from a path segment.
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, &domain.FilterError{Field: field, Value: raw, Err: errNotPositive}
	}
	return id, nil
}
