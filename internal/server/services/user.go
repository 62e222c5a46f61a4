// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, user lookup and the
// issuing and refreshing of session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/dbx"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
)

// PasswordHasher hashes and verifies passwords. *password.Verifier satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// UserService provides authentication-related operations:
//   - Register: create users with the default role
//   - Login: verify credentials
//   - IssueToken / RefreshToken: mint session tokens
//   - lookups and admin operations over the user store
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	hasher      PasswordHasher
	admins      map[string]struct{}
}

// Option configures a UserService.
type Option func(*UserService)

// WithAdminUsers grants common.AdminRole, in addition to the default role,
// to the listed usernames when they register.
func WithAdminUsers(userNames ...string) Option {
	return func(s *UserService) {
		for _, n := range userNames {
			s.admins[n] = struct{}{}
		}
	}
}

// NewUserService constructs a UserService. db may be nil when the manager is
// not database-backed.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec, hasher PasswordHasher, opts ...Option) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		admins:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with roles [common.DefaultRole], plus
// common.AdminRole for configured admin usernames. Both username and email
// must be unused; otherwise common.ErrAlreadyExists is returned and
// nothing is written.
func (s *UserService) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	if strings.TrimSpace(userName) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	repo := s.users()
	taken, err := repo.ExistsByUserName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if !taken {
		taken, err = repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
	}
	if taken {
		return nil, common.ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Roles:        s.rolesFor(userName),
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Users(tx).Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Login returns the stored user when password verifies against its hash.
// common.ErrNotFound means no such user, common.ErrBadCredentials a wrong
// password.
func (s *UserService) Login(ctx context.Context, userName, password string) (*models.User, error) {
	user, err := s.users().GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrBadCredentials
	}
	return user, nil
}

// FindByUserName looks a user up by username. Absence is (nil, false, nil).
func (s *UserService) FindByUserName(ctx context.Context, userName string) (*models.User, bool, error) {
	return found(s.users().GetUserByLogin(ctx, userName))
}

// FindByEmail looks a user up by email. Absence is (nil, false, nil).
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return found(s.users().GetUserByEmail(ctx, email))
}

// ListUsers returns all users ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := s.users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}

// FindByRole returns the users granted role, ordered by id.
func (s *UserService) FindByRole(ctx context.Context, role string) ([]*models.User, error) {
	list, err := s.users().FindByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}
	return list, nil
}

// DeleteUser removes the user with the given id. Tokens already issued to
// that user stop authenticating because their subject no longer resolves.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users().Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// IssueToken mints a session token whose subject is the user's username.
func (s *UserService) IssueToken(user *models.User, now time.Time) (string, error) {
	return s.codec.Issue(user.UserName, now)
}

// RefreshToken exchanges a still-valid token for a new one with the same
// subject and a fresh expiry.
func (s *UserService) RefreshToken(oldToken string, now time.Time) (string, error) {
	subject, err := s.codec.ParseSubject(oldToken)
	if err != nil {
		return "", err
	}
	if err := s.codec.Validate(oldToken, subject, now); err != nil {
		return "", err
	}
	return s.codec.Issue(subject, now)
}

// --- helpers below ---

func (s *UserService) users() users.Repository {
	if s.db == nil {
		return s.repomanager.Users(nil)
	}
	return s.repomanager.Users(s.db)
}

func (s *UserService) rolesFor(userName string) []string {
	roles := []string{common.DefaultRole}
	if _, ok := s.admins[userName]; ok {
		roles = append(roles, common.AdminRole)
	}
	return roles
}

func found(u *models.User, err error) (*models.User, bool, error) {
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error searching user: %w", err)
	}
	return u, true, nil
}
