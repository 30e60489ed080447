package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

const (
	listingsCollection   = "listings"
	categoriesCollection = "categories"
	locationsCollection  = "locations"
	imagesCollection     = "listing_images"
	usersCollection      = "users"
)

// listingDocument mirrors the listings table. A null or missing price means
// the listing has no price.
type listingDocument struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Price       *float64  `bson:"price"`
	Currency    string    `bson:"currency"`
	CategoryID  int64     `bson:"category_id"`
	LocationID  int64     `bson:"location_id"`
	UserID      int64     `bson:"user_id"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
}

type categoryDocument struct {
	ID          int64  `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	ParentID    *int64 `bson:"parent_id"`
}

type locationDocument struct {
	ID       int64  `bson:"_id"`
	Name     string `bson:"name"`
	ParentID *int64 `bson:"parent_id"`
}

type imageDocument struct {
	ListingID int64  `bson:"listing_id"`
	ImageURL  string `bson:"image_url"`
	Ordinal   int    `bson:"ordinal"`
}

type userDocument struct {
	ID             int64  `bson:"_id"`
	Name           string `bson:"name"`
	Role           string `bson:"role"`
	ProfilePicture string `bson:"profile_picture"`
}

func (d *listingDocument) toDomain() domain.Listing {
	return domain.Listing{
		ID:          d.ID,
		UserID:      d.UserID,
		CategoryID:  d.CategoryID,
		LocationID:  d.LocationID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Currency:    d.Currency,
		Status:      domain.ListingStatus(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

func (d *categoryDocument) toDomain() *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ParentID:    d.ParentID,
	}
}

func (d *locationDocument) toDomain() *domain.Location {
	return &domain.Location{ID: d.ID, Name: d.Name, ParentID: d.ParentID}
}

func toDomainCategories(docs []*categoryDocument) []*domain.Category {
	out := make([]*domain.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}
