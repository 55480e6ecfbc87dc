package repositories

import (
	"context"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

// UserRepository is read-only: the user directory lives in Casdoor and this
// service only resolves identities and roles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
}
