package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/models"
)

const (
	qInsertUser = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s+DO\s+NOTHING\s*RETURNING\s+id,\s*created_at\s*$`
	qInsertRole = `(?s)^INSERT\s+INTO\s+user_roles\s*\(user_id,\s*role,\s*position\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)$`
	qByLogin    = `(?s)^SELECT\s+u\.id,.*FROM\s+users\s+u\s+LEFT\s+JOIN\s+user_roles\s+r.*WHERE\s+u\.username\s*=\s*\$1\s+ORDER\s+BY\s+u\.id,\s*r\.position$`
	qByEmail    = `(?s)^SELECT\s+u\.id,.*WHERE\s+u\.email\s*=\s*\$1\s+ORDER\s+BY`
	qList       = `(?s)^SELECT\s+u\.id,.*LEFT\s+JOIN\s+user_roles\s+r\s+ON\s+r\.user_id\s*=\s*u\.id\s+ORDER\s+BY\s+u\.id,\s*r\.position$`
	qByRole     = `(?s)^SELECT\s+u\.id,.*WHERE\s+u\.id\s+IN\s+\(SELECT\s+user_id\s+FROM\s+user_roles\s+WHERE\s+role\s*=\s*\$1\)`
	qExistsName = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\)$`
	qExistsMail = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\)$`
	qDelete     = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "role"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(qInsertUser).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))
	mock.ExpectExec(qInsertRole).
		WithArgs(int64(42), "USER", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertRole).
		WithArgs(int64(42), "ADMIN", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "hash", Roles: []string{"USER", "ADMIN"}}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ConflictIsAlreadyExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "hash", Roles: []string{"USER"}})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationIsAlreadyExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.io", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).
		WithArgs("alice", "a@x.io", "h").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.io", PasswordHash: "h"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_RoleInsertError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectExec(qInsertRole).
		WillReturnError(errors.New("role fail"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "a", Email: "a@x.io", PasswordHash: "h", Roles: []string{"USER"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role fail")
}

func TestGetUserByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), "alice", "alice@example.com", "hash", created, "USER").
		AddRow(int64(1), "alice", "alice@example.com", "hash", created, "ADMIN")
	mock.ExpectQuery(qByLogin).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID: 1, UserName: "alice", Email: "alice@example.com", PasswordHash: "hash",
		Roles: []string{"USER", "ADMIN"}, CreatedAt: created,
	}, got)
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByLogin).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetUserByLogin_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByLogin).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByLogin(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow(int64(3), "carol", "carol@example.com", "hash", time.Now(), "USER")
	mock.ExpectQuery(qByEmail).WithArgs("carol@example.com").WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.UserName)
}

func TestList_FoldsRoles(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), "alice", "a@x.io", "h1", now, "USER").
		AddRow(int64(1), "alice", "a@x.io", "h1", now, "ADMIN").
		AddRow(int64(2), "bob", "b@x.io", "h2", now, "USER").
		AddRow(int64(3), "nobody", "n@x.io", "h3", now, nil)
	mock.ExpectQuery(qList).WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"USER", "ADMIN"}, list[0].Roles)
	assert.Equal(t, []string{"USER"}, list[1].Roles)
	assert.Empty(t, list[2].Roles)
}

func TestFindByRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), "alice", "a@x.io", "h1", time.Now(), "ADMIN")
	mock.ExpectQuery(qByRole).WithArgs("ADMIN").WillReturnRows(rows)

	list, err := repo.FindByRole(context.Background(), "ADMIN")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].UserName)
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("not-a-number", "alice", "a@x.io", "h", time.Now(), "USER")
	mock.ExpectQuery(qList).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qExistsName).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(qExistsMail).WithArgs("nobody@x.io").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(qExistsName).WithArgs("boom").
		WillReturnError(errors.New("db err"))

	ok, err := repo.ExistsByUserName(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(context.Background(), "nobody@x.io")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ExistsByUserName(context.Background(), "boom")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDelete).WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qDelete).WithArgs(int64(9)).WillReturnError(errors.New("db err"))

	require.NoError(t, repo.Delete(context.Background(), 7))
	require.ErrorIs(t, repo.Delete(context.Background(), 8), common.ErrNotFound)
	require.Error(t, repo.Delete(context.Background(), 9))
	require.NoError(t, mock.ExpectationsWereMet())
}
