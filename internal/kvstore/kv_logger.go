package kvstore

import (
	"context"
	"log/slog"
)

// SafeDelete deletes keys and logs instead of returning a failure
func SafeDelete(ctx context.Context, helper *Helper, logger *slog.Logger, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		logger.ErrorContext(ctx, "Failed to delete keys",
			"error", err,
			"keys", keys)
	}
}
