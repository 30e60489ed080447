package s3

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

var _ domain.ImageURLResolver = (*ImageResolver)(nil)

func TestImageResolver_Resolve(t *testing.T) {
	r := NewStaticResolver("http://minio:9000/", "listing-images", logger.NewNop())

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "   ", ""},
		{"bare key", "photos/abc.jpg", "http://minio:9000/listing-images/photos/abc.jpg"},
		{"leading slash", "/photos/abc.jpg", "http://minio:9000/listing-images/photos/abc.jpg"},
		{"key already in bucket", "listing-images/photos/abc.jpg", "http://minio:9000/listing-images/photos/abc.jpg"},
		{"absolute url", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"scheme relative", "//cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"unsupported scheme", "ftp://files.example.com/a.png", ""},
		{
			"unsplash photo page",
			"https://unsplash.com/photos/red-sports-car-on-road-1494976388531",
			"https://images.unsplash.com/photo-1494976388531?auto=format&fit=crop&w=800&q=80",
		},
		{
			"unsplash bare id",
			"https://www.unsplash.com/photos/1494976388531/",
			"https://images.unsplash.com/photo-1494976388531?auto=format&fit=crop&w=800&q=80",
		},
		{"unsplash non photo page", "https://unsplash.com/@someone", "https://unsplash.com/@someone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.ref))
		})
	}
}

func TestImageResolver_NoEndpointDropsBareKeys(t *testing.T) {
	r := NewStaticResolver("", "", logger.NewNop())
	assert.Empty(t, r.Resolve("photos/abc.jpg"))
	assert.Equal(t, "http://x.test/a.jpg", r.Resolve("http://x.test/a.jpg"))
}
