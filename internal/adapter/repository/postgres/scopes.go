package postgres

import (
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// wherePredicate applies p as a conjunction of WHERE conditions.
func wherePredicate(p domain.Predicate) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch len(p.CategoryIDs) {
		case 0:
		case 1:
			tx = tx.Where("category_id = ?", p.CategoryIDs[0])
		default:
			tx = tx.Where("category_id IN ?", p.CategoryIDs)
		}
		if p.LocationID != nil {
			tx = tx.Where("location_id = ?", *p.LocationID)
		}
		if p.UserID != nil {
			tx = tx.Where("user_id = ?", *p.UserID)
		}
		if p.CreatedFrom != nil {
			tx = tx.Where("created_at >= ?", *p.CreatedFrom)
		}
		// NULL fails both comparisons, so a bound excludes unpriced rows by itself.
		if p.MinPrice != nil {
			tx = tx.Where("price >= ?", *p.MinPrice)
		}
		if p.MaxPrice != nil {
			tx = tx.Where("price <= ?", *p.MaxPrice)
		}
		switch p.Price {
		case domain.PricePresent:
			tx = tx.Where("price IS NOT NULL")
		case domain.PriceAbsent:
			tx = tx.Where("price IS NULL")
		}
		return tx
	}
}

func orderBy(order []domain.OrderBy) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if len(order) == 0 {
			return tx
		}
		columns := make([]clause.OrderByColumn, 0, len(order))
		for _, o := range order {
			columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: string(o.Field)}, Desc: o.Desc})
		}
		return tx.Order(clause.OrderBy{Columns: columns})
	}
}

func window(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if offset > 0 {
			tx = tx.Offset(offset)
		}
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		return tx
	}
}

// withRelations preloads everything a ListingRecord carries.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Category").
		Preload("Location").
		Preload("Author").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("ordinal") })
}
