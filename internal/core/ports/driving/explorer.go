package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// ExplorerService walks, searches and uploads to document libraries.
type ExplorerService interface {
	// BuildTree lists every file beneath a folder.
	BuildTree(ctx context.Context, folder domain.Folder) (*domain.Table, error)

	// Explore resolves a library folder and optionally fetches a matching file.
	Explore(ctx context.Context, req domain.ExploreRequest) (domain.ExploreResult, error)

	// Upload writes one payload into a library folder.
	Upload(ctx context.Context, req domain.UploadRequest) domain.UploadResult
}
