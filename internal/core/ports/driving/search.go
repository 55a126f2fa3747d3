package driving

import (
	"context"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// RecipeSearch exposes one-shot paginated search to non-conversational
// actors such as the `gourmet search` command.
type RecipeSearch interface {
	// Search collects up to pageSize matches starting at cursor and
	// returns the page together with the cursor to continue from.
	Search(ctx context.Context, query domain.Query, cursor domain.Cursor, pageSize int) (domain.Page, error)
}
