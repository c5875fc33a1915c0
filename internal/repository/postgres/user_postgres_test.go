package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"signdesk/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "email", "name", "password_hash", "created_at"}

func userRow(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	u := &model.User{
		ID:           "user-uuid",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt).
		WillReturnRows(userRow(u))

	result, err := repo.Create(ctx, u)

	assert.NoError(t, err)
	assert.Equal(t, u.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		u := &model.User{ID: "user-uuid", Email: "alice@example.com", Name: "Alice", PasswordHash: "h", CreatedAt: time.Now().UTC()}
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("alice@example.com").
			WillReturnRows(userRow(u))

		result, err := repo.FindByEmail(ctx, "alice@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "user-uuid", result.ID)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	u := &model.User{ID: "user-uuid", Email: "alice@example.com", Name: "Alice", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("user-uuid").
		WillReturnRows(userRow(u))

	result, err := repo.FindByID(ctx, "user-uuid")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", result.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
