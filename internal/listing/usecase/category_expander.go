package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// CategoryExpander resolves a category to the set of category ids a search
// under it covers: the category itself and its direct children. Grandchildren
// are not included.
type CategoryExpander struct {
	categories domain.CategoryRepository
}

func NewCategoryExpander(categories domain.CategoryRepository) *CategoryExpander {
	return &CategoryExpander{categories: categories}
}

// Expand returns id followed by the ids of its direct children. An unknown id
// expands to itself.
func (e *CategoryExpander) Expand(ctx context.Context, id int64) ([]int64, error) {
	children, err := e.categories.FindChildren(ctx, id)
	if err != nil {
		return nil, domain.StoreError("expand category", err)
	}

	ids := make([]int64, 0, len(children)+1)
	ids = append(ids, id)
	for _, c := range children {
		if c == nil || c.ID == id {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}
