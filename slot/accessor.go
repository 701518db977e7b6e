package slot

import "database/sql"

// Accessor is the DB layer entrypoint for mentor availability slots.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
