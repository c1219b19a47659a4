package usecase

import (
	"context"

	"github.com/totegamma/knights/internal/domain"
)

// KnightRepository defines storage operations for the roster.
// Lookups return domain.ErrNotFound when nothing matches and writes return
// domain.ErrDuplicate when the nickname unique constraint rejects them.
type KnightRepository interface {
	FindByNickname(ctx context.Context, nickname string) (domain.Knight, error)
	FindByID(ctx context.Context, id string) (domain.Knight, error)
	Insert(ctx context.Context, knight domain.Knight) (domain.Knight, error)
	Save(ctx context.Context, knight domain.Knight) (domain.Knight, error)
	Delete(ctx context.Context, id string) (int64, error)
	Paginate(ctx context.Context, query domain.PageQuery) (domain.Page[domain.Knight], error)
}

// SnapshotCache is a plain key/value store. Get returns domain.ErrNotFound
// for a missing key.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
