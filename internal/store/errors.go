// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides persistence for articles and authors on top of
// sqlx. Queries are written with "?" placeholders and rebound to the
// connection's dialect, so the same store serves PostgreSQL and SQLite.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by mutations when the target row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateSlug is returned when an article's slug is already taken.
	ErrDuplicateSlug = errors.New("an article with this identifier already exists")

	// ErrAuthorNotFound is returned when an article references a missing author.
	ErrAuthorNotFound = errors.New("author does not exist")
)

// PostgreSQL SQLSTATE codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// StoreError wraps a failed operation with the entity it touched.
type StoreError struct {
	Op     string // operation that failed, e.g. "create"
	Entity string // "article" or "author"
	ID     string // entity identifier if known
	Err    error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrap annotates err with the operation context and maps constraint
// violations onto the package's sentinel errors.
func wrap(op, entity, id string, err error) error {
	switch {
	case isUniqueViolation(err):
		err = ErrDuplicateSlug
	case isForeignKeyViolation(err):
		err = ErrAuthorNotFound
	}
	return &StoreError{Op: op, Entity: entity, ID: id, Err: err}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
