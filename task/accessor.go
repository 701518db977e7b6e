package task

import "database/sql"

// Accessor is the DB layer entrypoint for a mentee's tasks and uploads.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
