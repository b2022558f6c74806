// Package objstore abstracts the content-addressed destination for columnar
// artifacts behind a small interface, with a local-filesystem backend for
// development and an S3 backend for production.
package objstore

import "context"

// Store is the minimal object-store surface the columnar writer needs: put
// whole-object bytes at a path, and read them back.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
