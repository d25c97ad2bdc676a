package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"get-a-pet/internal/domain/pets"
	"get-a-pet/internal/domain/users"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var petCols = []string{
	"id", "name", "age", "weight", "color", "images", "available",
	"owner_id", "owner_name", "owner_phone", "owner_image",
	"adopter_id", "adopter_name", "adopter_image",
	"created_at", "updated_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestMigrate_RunsEveryStatement(t *testing.T) {
	db, mock := newMock(t)

	stmts := statements(schemaSQL)
	require.NotEmpty(t, stmts)
	for range stmts {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_GetByID_MapsAdopterAndImages(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .* FROM pets WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(
			"p1", "Rex", 3, 12.5, "caramelo", []byte(`["a.png","b.png"]`), true,
			"u1", "Ana", "119", "",
			"u2", "Bruno", "b.png",
			now, now,
		))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, p.Images)
	assert.Equal(t, "Ana", p.Owner.Name)
	require.NotNil(t, p.Adopter)
	assert.Equal(t, "u2", p.Adopter.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)

	mock.ExpectQuery(`(?s)SELECT .* FROM pets WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func TestPetsRepo_List_FilterAndOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT .* FROM pets WHERE owner_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(
			"p1", "Rex", 3, 12.5, "caramelo", []byte(`[]`), true,
			"u1", "Ana", "119", "",
			nil, nil, nil,
			now, now,
		))

	out, err := repo.List(context.Background(), pets.Filter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Adopter)
	assert.NotNil(t, out[0].Images)

	mock.ExpectQuery(`(?s)SELECT .* FROM pets ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(petCols))

	out, err = repo.List(context.Background(), pets.Filter{})
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_SetAdopter_NoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	at := time.Now()

	mock.ExpectExec(`UPDATE pets\s+SET adopter_id = \$2`).
		WithArgs("p1", "u2", "Bruno", "", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAdopter(context.Background(), "p1", pets.AdopterSnapshot{ID: "u2", Name: "Bruno"}, at)
	assert.ErrorIs(t, err, pets.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_Update_WritesImagesAsJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	at := time.Now()

	mock.ExpectExec(`UPDATE pets`).
		WithArgs("p1", "Rex", 4, 13.0, "marrom", `[]`, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), pets.Pet{
		ID: "p1", Name: "Rex", Age: 4, Weight: 13, Color: "marrom", UpdatedAt: at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_Create_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), users.User{ID: "u1", Email: "ana@example.com"})
	assert.ErrorIs(t, err, users.ErrEmailTaken)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("conn reset"))

	err = repo.Create(context.Background(), users.User{ID: "u2", Email: "b@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, users.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "password_hash", "image", "created_at", "updated_at",
		}).AddRow("u1", "Ana", "ana@example.com", "119", "hash", "", now, now))

	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, users.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
