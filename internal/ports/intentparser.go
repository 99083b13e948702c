package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/models"
)

// IntentParser is the external NL-parser collaborator spec.md §1 places
// out of scope ("the core consumes a parsed intent struct, not raw
// prose"). The core only ever calls through this seam.
type IntentParser interface {
	Parse(ctx context.Context, text string, requesterID uuid.UUID) (models.ParsedIntent, error)
}
