package validator

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// Callback builds a processor.ValidationFunc-shaped function (an untyped
// match to avoid a dependency on the processor package) that validates
// every artifact written so far. Discrepancies are logged, not surfaced as
// an error — only an artifact read/list failure aborts the run.
func Callback(log *zap.SugaredLogger) func(ctx context.Context, store objstore.Store) error {
	return func(ctx context.Context, store objstore.Store) error {
		_, err := New(store, log).ValidateAll(ctx)
		return err
	}
}
