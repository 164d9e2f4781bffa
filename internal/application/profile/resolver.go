// Package profile turns stored user image references into URLs clients can load.
package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/pkg/sl"
)

type presigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Resolver maps user_image values to loadable URLs. Absolute URLs and
// site-relative paths pass through; anything else is an S3 object key.
type Resolver struct {
	store presigner
	ttl   time.Duration
}

func NewResolver(store presigner, ttl time.Duration) *Resolver {
	return &Resolver{store: store, ttl: ttl}
}

// URL returns nil when there is no image or it cannot be presigned.
func (r *Resolver) URL(ctx context.Context, image *string) *string {
	if image == nil || *image == "" {
		return nil
	}
	v := *image
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "/") {
		return &v
	}
	if r == nil || r.store == nil {
		return nil
	}
	u, err := r.store.PresignedURL(ctx, v, r.ttl)
	if err != nil {
		slog.WarnContext(ctx, "failed to presign user image", slog.String("key", v), sl.Err(err))
		return nil
	}
	return &u
}
