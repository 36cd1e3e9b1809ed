package store

import (
	"context"

	"github.com/mbergo/guardrails/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Reference() ReferenceRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// ReferenceRepository serves the demo reference dataset that grounds the
// data-shape guardrail checks: the users table, the set of names the system
// recognizes, and the expected JSON schema for user payloads.
type ReferenceRepository interface {
	// Users returns the reference users ordered by id.
	Users(ctx context.Context) ([]model.ReferenceUser, error)
	// UpsertUser inserts or replaces one reference user.
	UpsertUser(ctx context.Context, u *model.ReferenceUser) error

	// KnownNames returns every name the system recognizes: the curated
	// acceptable names plus every reference user's name, deduplicated.
	KnownNames(ctx context.Context) ([]string, error)
	// AddKnownName adds a curated acceptable name.
	AddKnownName(ctx context.Context, name string) error

	// Schema returns the expected user payload fields in declared order.
	Schema(ctx context.Context) ([]model.SchemaField, error)
	// SetSchemaField inserts or replaces one schema field.
	SetSchemaField(ctx context.Context, f *model.SchemaField) error
}
