package handler

import (
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Items      []domain.ListingView `json:"items"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

func newSearchResponse(result *domain.QueryResult, page domain.PageRequest) searchResponse {
	items := result.Items
	if items == nil {
		items = []domain.ListingView{}
	}
	return searchResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: result.TotalPages(page.Size),
	}
}

// degradedResponse is returned when the store fails so list views can still render.
type degradedResponse struct {
	Items      []domain.ListingView `json:"items"`
	TotalCount int64                `json:"total_count"`
	Error      string               `json:"error"`
}

type featuredResponse struct {
	Categories []domain.FeaturedCategory `json:"categories"`
	Error      string                    `json:"error,omitempty"`
}

type subcategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryResponse struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	ParentID      *int64                `json:"parent_id"`
	ParentName    string                `json:"parent_name,omitempty"`
	Subcategories []subcategoryResponse `json:"subcategories"`
}

func newCategoryResponse(d *domain.CategoryDetail) categoryResponse {
	subs := make([]subcategoryResponse, 0, len(d.Subcategories))
	for _, c := range d.Subcategories {
		subs = append(subs, subcategoryResponse{ID: c.ID, Name: c.Name})
	}
	return categoryResponse{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		ParentID:      d.ParentID,
		ParentName:    d.ParentName,
		Subcategories: subs,
	}
}

type locationResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

type locationsResponse struct {
	Items []locationResponse `json:"items"`
	Error string             `json:"error,omitempty"`
}

func newLocationsResponse(locations []*domain.Location) locationsResponse {
	items := make([]locationResponse, 0, len(locations))
	for _, l := range locations {
		items = append(items, locationResponse{ID: l.ID, Name: l.Name, ParentID: l.ParentID})
	}
	return locationsResponse{Items: items}
}
