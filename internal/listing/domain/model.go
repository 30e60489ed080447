package domain

import "time"

type ListingStatus string

const (
	StatusPending ListingStatus = "pending"
	StatusActive  ListingStatus = "active"
	StatusExpired ListingStatus = "expired"
	StatusDeleted ListingStatus = "deleted"
)

// Listing is a single classified ad. A nil Price means "contact for price",
// which is not the same as a price of zero.
type Listing struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	LocationID  int64
	Title       string
	Description string
	Price       *float64
	Currency    string
	Status      ListingStatus
	CreatedAt   time.Time
}

// Category is a hierarchical label. ParentID is nil for top-level categories.
type Category struct {
	ID          int64
	Name        string
	Description string
	ParentID    *int64
}

// CategoryDetail is a category together with the data a category page header needs.
type CategoryDetail struct {
	Category
	ParentName    string
	Subcategories []*Category
}

type Location struct {
	ID       int64
	Name     string
	ParentID *int64
}

type Image struct {
	ListingID int64
	URL       string
	Ordinal   int
}

// Author is the denormalized user summary joined onto a listing row.
// Empty strings mean the store had no value.
type Author struct {
	ID             int64
	Name           string
	Role           string
	ProfilePicture string
}

type CategoryRef struct {
	ID   int64
	Name string
}

type LocationRef struct {
	Name string
}

// ListingRecord is a listing row with its joined relations normalized by the
// store adapter. Missing relations are nil, never empty placeholder structs.
type ListingRecord struct {
	Listing
	Category *CategoryRef
	Location *LocationRef
	Images   []Image
	Author   *Author
}

// ListingView is the display model returned to callers. Every field is populated.
type ListingView struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         *float64     `json:"price"`
	Currency      string       `json:"currency"`
	CreatedAt     time.Time    `json:"created_at"`
	Category      CategoryView `json:"category"`
	Location      LocationView `json:"location"`
	CoverImageURL string       `json:"cover_image_url"`
	Author        AuthorView   `json:"author"`
}

// ListingDetail is the single-listing page: the card view plus every
// resolvable image in display order.
type ListingDetail struct {
	ListingView
	Status    ListingStatus `json:"status"`
	ImageURLs []string      `json:"image_urls"`
}

type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LocationView struct {
	Name string `json:"name"`
}

type AuthorView struct {
	Name              string `json:"name"`
	Role              string `json:"role"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// QueryResult is one page of a search. TotalCount is the size of the filtered,
// unpaginated set.
type QueryResult struct {
	Items      []ListingView `json:"items"`
	TotalCount int64         `json:"total_count"`
}

// TotalPages returns ceil(TotalCount / pageSize).
func (r *QueryResult) TotalPages(pageSize int) int {
	if pageSize <= 0 || r.TotalCount <= 0 {
		return 0
	}
	return int((r.TotalCount + int64(pageSize) - 1) / int64(pageSize))
}

// FeaturedCategory is a homepage row: a top-level category with its newest listings.
type FeaturedCategory struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Listings    []ListingView `json:"listings"`
}
