package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/dmitrijs2005/bookshelf/internal/client/migrations"
	"github.com/dmitrijs2005/bookshelf/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bookshelf/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and migrates it. A single
// connection is kept so concurrent writers never hit SQLITE_BUSY.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}

// SQLiteBackend stores values in the metadata table.
type SQLiteBackend struct {
	db   *sql.DB
	repo metadata.Repository
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db, repo: metadata.NewSQLiteRepository(db)}
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return b.repo.Get(ctx, key)
}

func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.repo.Set(ctx, key, value)
}

func (b *SQLiteBackend) SetMany(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) Delete(ctx context.Context, keys ...string) error {
	return b.repo.Delete(ctx, keys...)
}
