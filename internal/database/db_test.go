package database

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*JokeRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewJokeRepository(&DB{Pool: mock}), mock
}

func TestConnectionError(t *testing.T) {
	baseErr := errors.New("connection refused")
	err := &ConnectionError{
		Host: "postgres.example.com",
		Port: 5432,
		Err:  baseErr,
	}

	assert.Equal(t, "failed to connect to database at postgres.example.com:5432: connection refused", err.Error())
	assert.ErrorIs(t, err, baseErr)
}

func TestStorageError(t *testing.T) {
	baseErr := errors.New("relation \"jokes\" does not exist")
	err := &StorageError{Op: "list_recent", Err: baseErr}

	assert.Contains(t, err.Error(), "list_recent")
	assert.Contains(t, err.Error(), "does not exist")
	assert.ErrorIs(t, err, baseErr)
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO jokes").
		WithArgs("Why did the golfer bring two pairs of pants? In case he got a hole in one.").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Insert(context.Background(), "Why did the golfer bring two pairs of pants? In case he got a hole in one.")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("INSERT INTO jokes").
		WithArgs("joke").
		WillReturnError(dbErr)

	id, err := repo.Insert(context.Background(), "joke")
	require.Error(t, err)
	assert.Zero(t, id)

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
	assert.ErrorIs(t, err, dbErr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "joke_text", "created_at"}).
		AddRow(int64(3), "newest", now).
		AddRow(int64(2), "middle", now.Add(-time.Minute)).
		AddRow(int64(1), "oldest", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, joke_text, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	jokes, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jokes, 3)

	assert.Equal(t, int64(3), jokes[0].ID)
	assert.Equal(t, "newest", jokes[0].Text)
	assert.Equal(t, now, jokes[0].CreatedAt)
	assert.Equal(t, "oldest", jokes[2].Text)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero", 0, MaxRecent},
		{"negative", -5, MaxRecent},
		{"too large", 500, MaxRecent},
		{"within bounds", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery("SELECT id, joke_text, created_at").
				WithArgs(tt.want).
				WillReturnRows(pgxmock.NewRows([]string{"id", "joke_text", "created_at"}))

			jokes, err := repo.ListRecent(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Empty(t, jokes)
			assert.NotNil(t, jokes, "empty result should encode as [] not null")

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListRecentQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, joke_text, created_at").
		WithArgs(MaxRecent).
		WillReturnError(errors.New("permission denied"))

	_, err := repo.ListRecent(context.Background(), MaxRecent)

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "list_recent", storageErr.Op)
	assert.Contains(t, err.Error(), "permission denied")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentRowError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"id", "joke_text", "created_at"}).
		AddRow(int64(2), "ok", time.Now()).
		AddRow(int64(1), "broken", time.Now()).
		RowError(1, errors.New("row decode failed"))

	mock.ExpectQuery("SELECT id, joke_text, created_at").
		WithArgs(MaxRecent).
		WillReturnRows(rows)

	_, err := repo.ListRecent(context.Background(), MaxRecent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row decode failed")
}

func TestNilPool(t *testing.T) {
	repo := NewJokeRepository(&DB{})

	_, err := repo.Insert(context.Background(), "joke")
	assert.ErrorIs(t, err, ErrNilPool)

	_, err = repo.ListRecent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNilPool)

	assert.ErrorIs(t, (&DB{}).Ping(context.Background()), ErrNilPool)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entries[0].Name())
	require.NoError(t, err)

	sql := string(data)
	assert.True(t, strings.Contains(sql, "-- +goose Up"))
	assert.True(t, strings.Contains(sql, "-- +goose Down"))
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS jokes")
	assert.Contains(t, sql, "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()")
}
