package postgres

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// Models map the marketplace tables read-only. Field names follow gorm's
// snake_case naming so no column tags are needed beyond relations.

type listingModel struct {
	ID          int64
	Title       string
	Description string
	Price       *float64
	Currency    string
	CategoryID  int64
	LocationID  int64
	UserID      int64
	Status      string
	CreatedAt   time.Time

	Category *categoryModel `gorm:"foreignKey:CategoryID"`
	Location *locationModel `gorm:"foreignKey:LocationID"`
	Author   *userModel     `gorm:"foreignKey:UserID"`
	Images   []imageModel   `gorm:"foreignKey:ListingID"`
}

func (listingModel) TableName() string { return "listings" }

type categoryModel struct {
	ID          int64
	Name        string
	Description *string
	ParentID    *int64
}

func (categoryModel) TableName() string { return "categories" }

type locationModel struct {
	ID       int64
	Name     string
	ParentID *int64
}

func (locationModel) TableName() string { return "locations" }

type imageModel struct {
	ListingID int64
	ImageURL  string
	Ordinal   int
}

func (imageModel) TableName() string { return "listing_images" }

type userModel struct {
	ID             int64
	Name           *string
	Role           *string
	ProfilePicture *string
}

func (userModel) TableName() string { return "users" }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (m *listingModel) toRecord() *domain.ListingRecord {
	rec := &domain.ListingRecord{Listing: domain.Listing{
		ID:          m.ID,
		UserID:      m.UserID,
		CategoryID:  m.CategoryID,
		LocationID:  m.LocationID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Currency:    m.Currency,
		Status:      domain.ListingStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}}
	if m.Category != nil {
		rec.Category = &domain.CategoryRef{ID: m.Category.ID, Name: m.Category.Name}
	}
	if m.Location != nil {
		rec.Location = &domain.LocationRef{Name: m.Location.Name}
	}
	if m.Author != nil {
		rec.Author = &domain.Author{
			ID:             m.Author.ID,
			Name:           deref(m.Author.Name),
			Role:           deref(m.Author.Role),
			ProfilePicture: deref(m.Author.ProfilePicture),
		}
	}
	for _, img := range m.Images {
		rec.Images = append(rec.Images, domain.Image{ListingID: img.ListingID, URL: img.ImageURL, Ordinal: img.Ordinal})
	}
	return rec
}

func (m *categoryModel) toDomain() *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name, Description: deref(m.Description), ParentID: m.ParentID}
}
