// internal/domain/location/source.go

package location

import (
	"context"
)

// Source provides read access to the upstream location directory. The engine
// only ever reads from the directory; writing records is somebody else's job.
type Source interface {
	// FetchLocationCount returns the number of records inside the viewport,
	// or the size of the whole directory when vp is nil.
	FetchLocationCount(ctx context.Context, vp *Viewport) (int, error)

	// FetchLocations returns one page of records inside the viewport. A nil
	// viewport means no spatial filter. Pages may come back short.
	FetchLocations(ctx context.Context, vp *Viewport, limit, offset int) ([]Record, error)

	// FetchCategories returns the directory's canonical category list.
	FetchCategories(ctx context.Context) ([]Category, error)
}
