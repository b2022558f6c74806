package objstore

import (
	"context"

	"github.com/0xknxwledge/lvrctl/internal/config"
)

// New selects the S3 backend when an S3 bucket is configured, falling back
// to the local-filesystem backend rooted at DataDir otherwise.
func New(ctx context.Context, cfg config.ObjectStoreConfig) (Store, error) {
	if cfg.S3Bucket != "" {
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
	}
	return NewLocalStore(cfg.DataDir)
}
