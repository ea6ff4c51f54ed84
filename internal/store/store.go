// internal/store/store.go
// Package store implements the PostgreSQL persistence layer for surveys,
// responses, summaries and users.
package store

import (
	"database/sql"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store provides access to all survey-platform relations.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}
