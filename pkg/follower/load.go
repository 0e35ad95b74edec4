package follower

import (
	"context"
	"fmt"

	"github.com/0xmhha/likestats/pkg/logger"
)

// Lister fetches one page of a user's followers.
type Lister interface {
	FetchFollowersPage(ctx context.Context, userID string, offset, limit int) ([]Member, error)
}

// Config controls follower pagination.
type Config struct {
	// PageSize is the number of followers requested per page.
	PageSize int

	// MaxPages bounds the number of pages fetched. Zero means no limit.
	MaxPages int
}

// Load pages through a user's followers until a short page or MaxPages.
//
// Parameters:
//   - ctx: Cancels the remaining requests
//   - lister: Follower source
//   - userID: Account whose followers are listed
//   - cfg: Pagination settings
//   - log: Logger instance
//
// Returns:
//   - The follower set
//   - Error from the lister, wrapped with the failing offset
func Load(ctx context.Context, lister Lister, userID string, cfg Config, log logger.Logger) (*Set, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}
	if log == nil {
		log = logger.Noop()
	}

	set := NewSet()
	pages := 0

	for offset := 0; ; offset += cfg.PageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		members, err := lister.FetchFollowersPage(ctx, userID, offset, cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load followers at offset %d: %w", offset, err)
		}
		pages++

		added := 0
		for _, m := range members {
			if set.add(m) {
				added++
			}
		}

		log.Debug("follower page loaded",
			"offset", offset,
			"received", len(members),
			"added", added)

		if len(members) < cfg.PageSize {
			break
		}
		if cfg.MaxPages > 0 && pages >= cfg.MaxPages {
			log.Warn("follower list truncated",
				"max_pages", cfg.MaxPages,
				"followers", set.Len())
			break
		}
	}

	log.Info("followers loaded", "followers", set.Len(), "pages", pages)
	return set, nil
}
