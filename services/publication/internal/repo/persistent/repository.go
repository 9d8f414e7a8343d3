package persistent

import (
	"context"
	"math"

	"socialnet/services/publication/internal/entity"
)

// PageOptions selects one window of a listing; Page is 1-based.
type PageOptions struct {
	Page  int
	Limit int
}

// Offset saturates at math.MaxInt, so a huge page lands past the end of any
// listing instead of wrapping around to a negative skip.
func (o PageOptions) Offset() int {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

type PublicationRepository interface {
	Create(ctx context.Context, publication *entity.Publication) error
	// GetByID returns the publication with its owner projected to the public view.
	GetByID(ctx context.Context, id string) (*entity.Publication, error)
	// DeleteByOwner removes the publication only when ownerID matches. A missing
	// publication and a foreign one both yield entity.ErrNotFound.
	DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Publication, error)
	UpdateFile(ctx context.Context, id, file string) (*entity.Publication, error)
	// Paginate lists publications owned by any of ownerIDs, newest first, and
	// returns the total number of matches regardless of the window.
	Paginate(ctx context.Context, ownerIDs []string, opts PageOptions) ([]*entity.Publication, int64, error)
}

type FollowRepository interface {
	// FollowingIDs returns the ids of the users userID follows.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}
