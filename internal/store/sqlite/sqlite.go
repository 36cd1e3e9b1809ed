package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/mbergo/guardrails/internal/store"
	"github.com/mbergo/guardrails/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// Create a repository instance that uses the transaction
	txRepo := &SqliteRepository{
		db:       r.db, // Keep the original DB handle
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Reference() store.ReferenceRepository {
	return &referenceRepo{db: r.executor}
}

type referenceRepo struct {
	db DB
}

func (r *referenceRepo) Users(ctx context.Context) ([]model.ReferenceUser, error) {
	var users []model.ReferenceUser
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM reference_users ORDER BY id`)
	return users, err
}

func (r *referenceRepo) UpsertUser(ctx context.Context, u *model.ReferenceUser) error {
	query := `
	INSERT INTO reference_users (id, name, age, email, registered_at)
	VALUES (:id, :name, :age, :email, :registered_at)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		age = excluded.age,
		email = excluded.email,
		registered_at = excluded.registered_at`
	_, err := r.db.NamedExecContext(ctx, query, u)
	return err
}

func (r *referenceRepo) KnownNames(ctx context.Context) ([]string, error) {
	var names []string
	query := `
	SELECT name FROM known_names
	UNION
	SELECT name FROM reference_users
	ORDER BY name`
	err := r.db.SelectContext(ctx, &names, query)
	return names, err
}

func (r *referenceRepo) AddKnownName(ctx context.Context, name string) error {
	query := `INSERT INTO known_names (name) VALUES (?) ON CONFLICT(name) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, name)
	return err
}

func (r *referenceRepo) Schema(ctx context.Context) ([]model.SchemaField, error) {
	var fields []model.SchemaField
	err := r.db.SelectContext(ctx, &fields, `SELECT field, kind, position FROM reference_schema ORDER BY position`)
	return fields, err
}

func (r *referenceRepo) SetSchemaField(ctx context.Context, f *model.SchemaField) error {
	query := `
	INSERT INTO reference_schema (field, kind, position)
	VALUES (:field, :kind, :position)
	ON CONFLICT(field) DO UPDATE SET
		kind = excluded.kind,
		position = excluded.position`
	_, err := r.db.NamedExecContext(ctx, query, f)
	return err
}
