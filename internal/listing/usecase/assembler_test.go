package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefixResolver struct{ prefix string }

func (r prefixResolver) Resolve(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return r.prefix + ref
}

func TestAssemble_FallbacksForMissingRelations(t *testing.T) {
	row := &domain.ListingRecord{Listing: domain.Listing{
		ID:         10,
		Title:      "Bike",
		CategoryID: 4,
		CreatedAt:  time.Now(),
	}}

	views := NewAssembler(nil).Assemble([]*domain.ListingRecord{row})
	require.Len(t, views, 1)
	v := views[0]

	assert.Equal(t, int64(4), v.Category.ID)
	assert.Equal(t, FallbackCategoryName, v.Category.Name)
	assert.Equal(t, FallbackLocationName, v.Location.Name)
	assert.Equal(t, PlaceholderImageURL, v.CoverImageURL)
	assert.Equal(t, FallbackAuthorName, v.Author.Name)
	assert.Equal(t, FallbackAuthorRole, v.Author.Role)
	assert.Equal(t, DefaultAvatarURL, v.Author.ProfilePictureURL)
	assert.Nil(t, v.Price)
}

func TestAssemble_IncompleteAuthorFilledFieldByField(t *testing.T) {
	row := &domain.ListingRecord{
		Listing:  domain.Listing{ID: 1, Title: "Lamp", Price: price(0)},
		Author:   &domain.Author{Name: "Dana", Role: " "},
		Category: &domain.CategoryRef{ID: 3, Name: ""},
		Location: &domain.LocationRef{Name: "Almaty"},
	}

	v := NewAssembler(nil).Assemble([]*domain.ListingRecord{row})[0]

	assert.Equal(t, "Dana", v.Author.Name)
	assert.Equal(t, FallbackAuthorRole, v.Author.Role)
	assert.Equal(t, DefaultAvatarURL, v.Author.ProfilePictureURL)
	assert.Equal(t, int64(3), v.Category.ID)
	assert.Equal(t, FallbackCategoryName, v.Category.Name)
	assert.Equal(t, "Almaty", v.Location.Name)
	require.NotNil(t, v.Price)
	assert.Equal(t, 0.0, *v.Price, "a zero price is not the same as no price")
}

func TestAssemble_CoverIsLowestOrdinalResolved(t *testing.T) {
	row := &domain.ListingRecord{
		Listing: domain.Listing{ID: 1, Title: "Sofa"},
		Images: []domain.Image{
			{URL: "listings/1/b.jpg", Ordinal: 2},
			{URL: "", Ordinal: 0},
			{URL: "listings/1/a.jpg", Ordinal: 1},
		},
		Author: &domain.Author{ProfilePicture: "avatars/9.png"},
	}

	v := NewAssembler(prefixResolver{prefix: "http://minio:9000/images/"}).Assemble([]*domain.ListingRecord{row})[0]

	assert.Equal(t, "http://minio:9000/images/listings/1/a.jpg", v.CoverImageURL)
	assert.Equal(t, "http://minio:9000/images/avatars/9.png", v.Author.ProfilePictureURL)
}

func TestAssemble_SkipsNilRowsAndReturnsEmptySlice(t *testing.T) {
	views := NewAssembler(nil).Assemble([]*domain.ListingRecord{nil})
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestAssembleDetail_AllImagesInOrdinalOrder(t *testing.T) {
	row := &domain.ListingRecord{
		Listing: domain.Listing{ID: 2, Title: "Desk", Status: domain.StatusActive},
		Images: []domain.Image{
			{URL: "https://cdn.example/c.jpg", Ordinal: 3},
			{URL: "https://cdn.example/a.jpg", Ordinal: 1},
			{URL: "", Ordinal: 2},
			{URL: "https://cdn.example/b.jpg", Ordinal: 2},
		},
	}

	d := NewAssembler(nil).AssembleDetail(row)

	assert.Equal(t, []string{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg", "https://cdn.example/c.jpg"}, d.ImageURLs)
	assert.Equal(t, "https://cdn.example/a.jpg", d.CoverImageURL)
	assert.Equal(t, domain.StatusActive, d.Status)
	assert.Equal(t, FallbackAuthorName, d.Author.Name)
}
