package mentee

import "database/sql"

// Accessor is the DB layer entrypoint for mentee records and the token directory.
type Accessor struct {
	db       *sql.DB
	newToken TokenSource
}

func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{
		db:       db,
		newToken: RandomToken,
	}
}

// WithTokenSource replaces the random token generator.
func (a *Accessor) WithTokenSource(src TokenSource) *Accessor {
	a.newToken = src
	return a
}
