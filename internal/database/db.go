package database

import (
	"context"
	"errors"
	"fmt"

	"dadjoke/internal/config"
	"dadjoke/internal/metrics"
	"dadjoke/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxRecent caps how many rows ListRecent returns.
const MaxRecent = 10

var ErrNilPool = errors.New("database pool is nil")

type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to database at %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StorageError reports a failed statement against the jokes table.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Pool is the subset of *pgxpool.Pool used by the repositories.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

type DB struct {
	Pool Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)

	host, port := poolConfig.ConnConfig.Host, int(poolConfig.ConnConfig.Port)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, &ConnectionError{Host: host, Port: port, Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Host: host, Port: port, Err: err}
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return ErrNilPool
	}
	return db.Pool.Ping(ctx)
}

type JokeRepository struct {
	db *DB
}

func NewJokeRepository(db *DB) *JokeRepository {
	return &JokeRepository{db: db}
}

// Insert stores a generated joke and returns its id.
func (r *JokeRepository) Insert(ctx context.Context, text string) (int64, error) {
	if r.db == nil || r.db.Pool == nil {
		return 0, &StorageError{Op: "insert", Err: ErrNilPool}
	}

	query := `
		INSERT INTO jokes (joke_text)
		VALUES ($1)
		RETURNING id
	`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, query, text).Scan(&id); err != nil {
		metrics.RecordStorageError("insert")
		return 0, &StorageError{Op: "insert", Err: err}
	}
	return id, nil
}

// ListRecent returns the newest jokes first. Limits outside (0, MaxRecent]
// are clamped to MaxRecent.
func (r *JokeRepository) ListRecent(ctx context.Context, limit int) ([]models.Joke, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, &StorageError{Op: "list_recent", Err: ErrNilPool}
	}

	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	query := `
		SELECT id, joke_text, created_at
		FROM jokes
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		metrics.RecordStorageError("list_recent")
		return nil, &StorageError{Op: "list_recent", Err: err}
	}
	defer rows.Close()

	jokes := make([]models.Joke, 0, limit)
	for rows.Next() {
		var joke models.Joke
		if err := rows.Scan(&joke.ID, &joke.Text, &joke.CreatedAt); err != nil {
			metrics.RecordStorageError("list_recent")
			return nil, &StorageError{Op: "list_recent", Err: err}
		}
		jokes = append(jokes, joke)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStorageError("list_recent")
		return nil, &StorageError{Op: "list_recent", Err: err}
	}

	return jokes, nil
}
