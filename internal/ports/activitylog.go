package ports

import (
	"context"

	"github.com/hangawi/coordination-core/internal/models"
)

// ActivityLogAppender is the append-only log port C8/C9 write to for
// every user-visible outcome, including rejections (spec.md §7).
type ActivityLogAppender interface {
	Append(ctx context.Context, entry models.ActivityLogEntry) error
}
