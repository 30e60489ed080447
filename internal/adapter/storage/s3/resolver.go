package s3

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// unsplashPhotoID captures the trailing id of an Unsplash photo page path,
// e.g. /photos/red-car-on-road-AbC123xyz.
var unsplashPhotoID = regexp.MustCompile(`^/photos/(?:.*-)?([A-Za-z0-9_]+)/?$`)

const unsplashCDN = "https://images.unsplash.com/photo-%s?auto=format&fit=crop&w=800&q=80"

// ImageResolver turns stored image references into browser URLs. Bare object
// keys resolve against the MinIO bucket; absolute URLs pass through, with
// Unsplash photo pages rewritten to their CDN form.
type ImageResolver struct {
	baseURL string
	bucket  string
	logger  *logger.Logger
}

// MinioConfig describes the object store holding listing images.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewImageResolver builds a resolver against the MinIO endpoint in cfg. The
// bucket's existence is checked, and a missing bucket is only logged: this
// service never writes to it.
func NewImageResolver(ctx context.Context, cfg MinioConfig, log *logger.Logger) (*ImageResolver, error) {
	log.Info("Initializing MinIO image resolver",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Error("ImageResolver: failed to create MinIO client", zap.String("endpoint", cfg.Endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	switch {
	case err != nil:
		log.Warn("ImageResolver: could not verify bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
	case !exists:
		log.Warn("ImageResolver: bucket does not exist, object URLs will not load", zap.String("bucket", cfg.Bucket))
	}

	return NewStaticResolver(client.EndpointURL().String(), cfg.Bucket, log), nil
}

// NewStaticResolver builds a resolver for objects served from baseURL/bucket.
func NewStaticResolver(baseURL, bucket string, log *logger.Logger) *ImageResolver {
	return &ImageResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  strings.Trim(bucket, "/"),
		logger:  log.Named("ImageResolver"),
	}
}

// Resolve returns the URL for ref, or "" when ref cannot be turned into one.
func (r *ImageResolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "//") {
		ref = "https:" + ref
	}
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			r.logger.Debug("Dropping unusable image reference", zap.String("ref", ref))
			return ""
		}
		if cdn, ok := unsplashCDNURL(u); ok {
			return cdn
		}
		return ref
	}

	if r.baseURL == "" {
		return ""
	}
	key := strings.TrimLeft(ref, "/")
	if r.bucket != "" && !strings.HasPrefix(key, r.bucket+"/") {
		key = r.bucket + "/" + key
	}
	return r.baseURL + "/" + key
}

func unsplashCDNURL(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "unsplash.com" {
		return "", false
	}
	m := unsplashPhotoID.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf(unsplashCDN, m[1]), true
}
