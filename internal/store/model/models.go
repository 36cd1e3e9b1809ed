package model

import (
	"time"
)

// ReferenceUser is one row of the demo users table that data-shape guardrail
// checks compare model output against.
type ReferenceUser struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Age          int       `db:"age" json:"age"`
	Email        string    `db:"email" json:"email"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// SchemaField is one field of the expected user payload schema. Kind uses
// JSON type names ("number", "string", "boolean", "object"); Position fixes
// the declared field order.
type SchemaField struct {
	Field    string `db:"field" json:"field"`
	Kind     string `db:"kind" json:"kind"`
	Position int    `db:"position" json:"-"`
}
