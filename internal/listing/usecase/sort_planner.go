package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"golang.org/x/sync/errgroup"
)

// Strategy names the shape of an ExecutionPlan.
type Strategy string

const (
	// StrategySimple is one count and one ordered fetch.
	StrategySimple Strategy = "simple"
	// StrategyPrice fetches priced listings first and fills the page with
	// unpriced ones, so that no listing without a price precedes a priced one
	// in either direction.
	StrategyPrice Strategy = "price"
)

// ExecutionPlan describes how one page of a search is fetched.
type ExecutionPlan struct {
	Strategy Strategy
	Where    domain.Predicate
	// Order is used by the simple strategy and for the priced phase of the price strategy.
	Order []domain.OrderBy
	// UnpricedOrder orders the second phase of the price strategy.
	UnpricedOrder []domain.OrderBy
	Offset        int
	Limit         int
}

var (
	orderNewest = []domain.OrderBy{
		{Field: domain.OrderCreatedAt, Desc: true},
		{Field: domain.OrderID, Desc: true},
	}
	orderOldest = []domain.OrderBy{
		{Field: domain.OrderCreatedAt},
		{Field: domain.OrderID},
	}
)

// Plan chooses the execution strategy for sort over where and page.
func Plan(sort domain.SortKey, where domain.Predicate, page domain.PageRequest) *ExecutionPlan {
	plan := &ExecutionPlan{
		Strategy: StrategySimple,
		Where:    where,
		Offset:   page.Offset(),
		Limit:    page.Size,
	}

	switch sort {
	case domain.SortOldest:
		plan.Order = orderOldest
	case domain.SortPriceLow, domain.SortPriceHigh:
		desc := sort == domain.SortPriceHigh
		plan.Strategy = StrategyPrice
		plan.Order = []domain.OrderBy{
			{Field: domain.OrderPrice, Desc: desc},
			{Field: domain.OrderCreatedAt, Desc: true},
			{Field: domain.OrderID, Desc: true},
		}
		plan.UnpricedOrder = orderNewest
	default:
		plan.Order = orderNewest
	}
	return plan
}

// SortPlanner executes plans against a listing repository.
type SortPlanner struct {
	listings domain.ListingRepository
}

func NewSortPlanner(listings domain.ListingRepository) *SortPlanner {
	return &SortPlanner{listings: listings}
}

// Execute runs plan and returns the page rows and the total size of the
// filtered set.
func (p *SortPlanner) Execute(ctx context.Context, plan *ExecutionPlan) ([]*domain.ListingRecord, int64, error) {
	if plan.Strategy == StrategyPrice {
		return p.executePrice(ctx, plan)
	}
	return p.executeSimple(ctx, plan)
}

func (p *SortPlanner) executeSimple(ctx context.Context, plan *ExecutionPlan) ([]*domain.ListingRecord, int64, error) {
	total, err := p.listings.Count(ctx, plan.Where)
	if err != nil {
		return nil, 0, domain.StoreError("count listings", err)
	}
	if int64(plan.Offset) >= total || plan.Limit <= 0 {
		return nil, total, nil
	}

	rows, err := p.listings.Find(ctx, domain.ListingQuery{
		Where:  plan.Where,
		Order:  plan.Order,
		Offset: plan.Offset,
		Limit:  plan.Limit,
	})
	if err != nil {
		return nil, 0, domain.StoreError("find listings", err)
	}
	return rows, total, nil
}

func (p *SortPlanner) executePrice(ctx context.Context, plan *ExecutionPlan) ([]*domain.ListingRecord, int64, error) {
	priced := plan.Where.WithPrice(domain.PricePresent)
	unpriced := plan.Where.WithPrice(domain.PriceAbsent)

	var pricedTotal, unpricedTotal int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := p.listings.Count(gctx, priced)
		if err != nil {
			return domain.StoreError("count priced listings", err)
		}
		pricedTotal = n
		return nil
	})
	// A price bound excludes every unpriced listing.
	if !plan.Where.HasPriceBound() {
		g.Go(func() error {
			n, err := p.listings.Count(gctx, unpriced)
			if err != nil {
				return domain.StoreError("count unpriced listings", err)
			}
			unpricedTotal = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := pricedTotal + unpricedTotal
	if plan.Limit <= 0 {
		return nil, total, nil
	}

	rows := make([]*domain.ListingRecord, 0, plan.Limit)
	if int64(plan.Offset) < pricedTotal {
		found, err := p.listings.Find(ctx, domain.ListingQuery{
			Where:  priced,
			Order:  plan.Order,
			Offset: plan.Offset,
			Limit:  plan.Limit,
		})
		if err != nil {
			return nil, 0, domain.StoreError("find priced listings", err)
		}
		rows = append(rows, found...)
	}

	if len(rows) < plan.Limit && unpricedTotal > 0 {
		secondaryOffset := int64(plan.Offset) - pricedTotal
		if secondaryOffset < 0 {
			secondaryOffset = 0
		}
		if secondaryOffset < unpricedTotal {
			found, err := p.listings.Find(ctx, domain.ListingQuery{
				Where:  unpriced,
				Order:  plan.UnpricedOrder,
				Offset: int(secondaryOffset),
				Limit:  plan.Limit - len(rows),
			})
			if err != nil {
				return nil, 0, domain.StoreError("find unpriced listings", err)
			}
			rows = append(rows, found...)
		}
	}
	return rows, total, nil
}
