package mentor

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
)

// Accessor is the DB layer entrypoint for mentor accounts and their navigators.
type Accessor struct {
	db   *sql.DB
	cost int
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, mostly useful to keep tests fast.
func (a *Accessor) WithHashCost(cost int) *Accessor {
	a.cost = cost
	return a
}
