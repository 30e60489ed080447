package usecase

import (
	"sort"
	"strings"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// Display fallbacks for missing relations.
const (
	FallbackCategoryName = "Uncategorized"
	FallbackLocationName = "Location not specified"
	FallbackAuthorName   = "Anonymous"
	FallbackAuthorRole   = "Member"
	PlaceholderImageURL  = "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?auto=format&fit=crop&w=800&q=80"
	DefaultAvatarURL     = "https://www.gravatar.com/avatar/00000000000000000000000000000000?d=mp&f=y"
)

// Assembler builds ListingViews from store records, substituting fallbacks
// for anything missing. It never fails.
type Assembler struct {
	images domain.ImageURLResolver
}

// NewAssembler returns an assembler that passes image references through
// resolver. A nil resolver leaves references unchanged.
func NewAssembler(resolver domain.ImageURLResolver) *Assembler {
	return &Assembler{images: resolver}
}

func (a *Assembler) Assemble(rows []*domain.ListingRecord) []domain.ListingView {
	views := make([]domain.ListingView, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		views = append(views, a.assembleOne(row))
	}
	return views
}

// AssembleDetail builds the single-listing view. ImageURLs is never nil.
func (a *Assembler) AssembleDetail(row *domain.ListingRecord) domain.ListingDetail {
	return domain.ListingDetail{
		ListingView: a.assembleOne(row),
		Status:      row.Status,
		ImageURLs:   a.imageURLs(row.Images),
	}
}

func (a *Assembler) assembleOne(row *domain.ListingRecord) domain.ListingView {
	v := domain.ListingView{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Currency:    row.Currency,
		CreatedAt:   row.CreatedAt,
		Category: domain.CategoryView{
			ID:   row.CategoryID,
			Name: FallbackCategoryName,
		},
		Location:      domain.LocationView{Name: FallbackLocationName},
		CoverImageURL: PlaceholderImageURL,
		Author: domain.AuthorView{
			Name:              FallbackAuthorName,
			Role:              FallbackAuthorRole,
			ProfilePictureURL: DefaultAvatarURL,
		},
	}
	if row.Price != nil {
		price := *row.Price
		v.Price = &price
	}

	if c := row.Category; c != nil {
		if c.ID != 0 {
			v.Category.ID = c.ID
		}
		if name := strings.TrimSpace(c.Name); name != "" {
			v.Category.Name = name
		}
	}
	if l := row.Location; l != nil {
		if name := strings.TrimSpace(l.Name); name != "" {
			v.Location.Name = name
		}
	}
	if cover := a.coverImage(row.Images); cover != "" {
		v.CoverImageURL = cover
	}
	if au := row.Author; au != nil {
		if name := strings.TrimSpace(au.Name); name != "" {
			v.Author.Name = name
		}
		if role := strings.TrimSpace(au.Role); role != "" {
			v.Author.Role = role
		}
		if pic := a.resolve(au.ProfilePicture); pic != "" {
			v.Author.ProfilePictureURL = pic
		}
	}
	return v
}

// coverImage returns the resolved URL of the lowest-ordinal image with a usable reference.
func (a *Assembler) coverImage(images []domain.Image) string {
	urls := a.imageURLs(images)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// imageURLs resolves images in ordinal order, dropping unusable references.
func (a *Assembler) imageURLs(images []domain.Image) []string {
	urls := make([]string, 0, len(images))
	if len(images) == 0 {
		return urls
	}
	ordered := make([]domain.Image, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	for _, img := range ordered {
		if url := a.resolve(img.URL); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func (a *Assembler) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if a.images == nil {
		return ref
	}
	return a.images.Resolve(ref)
}
