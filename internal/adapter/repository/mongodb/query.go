package mongodb

import (
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// buildFilter translates a predicate into a listings collection filter.
func buildFilter(p domain.Predicate) bson.M {
	filter := bson.M{}

	switch len(p.CategoryIDs) {
	case 0:
	case 1:
		filter["category_id"] = p.CategoryIDs[0]
	default:
		filter["category_id"] = bson.M{"$in": p.CategoryIDs}
	}
	if p.LocationID != nil {
		filter["location_id"] = *p.LocationID
	}
	if p.UserID != nil {
		filter["user_id"] = *p.UserID
	}
	if p.CreatedFrom != nil {
		filter["created_at"] = bson.M{"$gte": *p.CreatedFrom}
	}

	// Range operators never match null or missing fields, so a bound alone
	// keeps unpriced listings out.
	price := bson.M{}
	if p.MinPrice != nil {
		price["$gte"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		price["$lte"] = *p.MaxPrice
	}
	switch p.Price {
	case domain.PricePresent:
		price["$ne"] = nil
	case domain.PriceAbsent:
		if len(price) == 0 {
			filter["price"] = nil
		} else {
			// Bounded and unpriced cannot both hold.
			price["$type"] = "null"
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func buildSort(order []domain.OrderBy) bson.D {
	sort := make(bson.D, 0, len(order))
	for _, o := range order {
		field := string(o.Field)
		if o.Field == domain.OrderID {
			field = "_id"
		}
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	return sort
}
