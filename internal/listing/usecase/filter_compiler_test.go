package usecase

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateLowerBound(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2024, 3, 31, 15, 4, 5, 0, loc)

	today := DateLowerBound(domain.DateToday, now)
	require.NotNil(t, today)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, loc), *today)

	week := DateLowerBound(domain.DateWeek, now)
	require.NotNil(t, week)
	assert.Equal(t, now.Add(-7*24*time.Hour), *week)

	month := DateLowerBound(domain.DateMonth, now)
	require.NotNil(t, month)
	assert.Equal(t, now.AddDate(0, -1, 0), *month)

	assert.Nil(t, DateLowerBound(domain.DateAny, now))
	assert.Nil(t, DateLowerBound(domain.ParseDateFilter("none"), now))
}

func TestCompile_WeekBoundary(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	where := NewFilterCompiler(func() time.Time { return now }).Compile(domain.FilterSet{Date: domain.DateWeek})

	inside := listing(1, nil, now.Add(-7*24*time.Hour+time.Second), 1)
	outside := listing(2, nil, now.Add(-8*24*time.Hour), 1)

	assert.True(t, matches(where, inside))
	assert.False(t, matches(where, outside))
}

func TestCompile_AllConstraints(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	where := NewFilterCompiler(func() time.Time { return now }).Compile(domain.FilterSet{
		LocationID: id64(7),
		Date:       domain.DateMonth,
		MinPrice:   price(5),
		MaxPrice:   price(100),
		Sort:       domain.SortPriceHigh,
	})

	require.NotNil(t, where.LocationID)
	assert.Equal(t, int64(7), *where.LocationID)
	require.NotNil(t, where.CreatedFrom)
	assert.Equal(t, time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC), *where.CreatedFrom)
	assert.Equal(t, 5.0, *where.MinPrice)
	assert.Equal(t, 100.0, *where.MaxPrice)
	assert.True(t, where.HasPriceBound())
	assert.Empty(t, where.CategoryIDs)
	assert.Equal(t, domain.PriceAny, where.Price)
}

func TestCompile_EmptyFilterHasNoConstraints(t *testing.T) {
	where := NewFilterCompiler(nil).Compile(domain.FilterSet{})
	assert.Equal(t, domain.Predicate{}, where)
}
