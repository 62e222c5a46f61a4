// Package users stores registered accounts. Two implementations are
// provided: PostgresRepository for production and MemoryRepository for
// DSN-less runs and tests.
package users

import (
	"context"

	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// Repository is the user store. Lookups return common.ErrNotFound when no
// row matches; Create returns common.ErrAlreadyExists when the username or
// email is taken, leaving the store unchanged.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	FindByRole(ctx context.Context, role string) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}
