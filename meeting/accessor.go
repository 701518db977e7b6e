package meeting

import "database/sql"

// Accessor is the DB layer entrypoint for bookings and confirmed meetings.
type Accessor struct {
	db *sql.DB
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}
