// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"folio/internal/models"
)

const authorColumns = `id, first_name, last_name, avatar_url, twitter_username, created_at`

// AuthorStore handles all author-related database operations.
type AuthorStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewAuthorStore creates a new AuthorStore with the given database connection.
func NewAuthorStore(db *sqlx.DB) *AuthorStore {
	return &AuthorStore{db: db, now: now}
}

// List returns all authors with their article counts, oldest first.
func (s *AuthorStore) List(ctx context.Context) ([]models.AuthorSummary, error) {
	items := []models.AuthorSummary{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT au.id, au.first_name, au.last_name, au.avatar_url,
		       au.twitter_username, au.created_at,
		       COUNT(a.id) AS articles_count
		FROM authors au
		LEFT JOIN articles a ON a.author_id = au.id
		GROUP BY au.id, au.first_name, au.last_name, au.avatar_url,
		         au.twitter_username, au.created_at
		ORDER BY au.id
	`)
	if err != nil {
		return nil, wrap("list", "authors", "", err)
	}
	return items, nil
}

// FindByID retrieves an author by ID. Returns nil if not found.
func (s *AuthorStore) FindByID(ctx context.Context, id int64) (*models.Author, error) {
	a := &models.Author{}
	err := s.db.GetContext(ctx, a, s.db.Rebind(`
		SELECT `+authorColumns+` FROM authors WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find", "author", strconv.FormatInt(id, 10), err)
	}
	return a, nil
}

// FindDetails retrieves an author with the slugs of their articles, newest
// first. Returns nil if not found.
func (s *AuthorStore) FindDetails(ctx context.Context, id int64) (*models.AuthorDetails, error) {
	a, err := s.FindByID(ctx, id)
	if err != nil || a == nil {
		return nil, err
	}

	slugs := []string{}
	err = s.db.SelectContext(ctx, &slugs, s.db.Rebind(`
		SELECT slug FROM articles
		WHERE author_id = ?
		ORDER BY created_at DESC, id DESC
	`), id)
	if err != nil {
		return nil, wrap("find", "author articles", strconv.FormatInt(id, 10), err)
	}

	return &models.AuthorDetails{
		AuthorSummary: models.AuthorSummary{Author: *a, ArticlesCount: len(slugs)},
		Articles:      slugs,
	}, nil
}

// Create inserts a new author and returns it with the generated ID.
func (s *AuthorStore) Create(ctx context.Context, a *models.Author) (*models.Author, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`
		INSERT INTO authors (first_name, last_name, avatar_url, twitter_username, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), a.FirstName, a.LastName, a.AvatarURL, a.TwitterUsername, s.now())
	if err != nil {
		return nil, wrap("create", "author", "", err)
	}
	return s.reload(ctx, "create", id)
}

// Update modifies the names, avatar URL, and Twitter handle of the author
// identified by a.ID.
func (s *AuthorStore) Update(ctx context.Context, a *models.Author) (*models.Author, error) {
	return s.exec(ctx, "update", a.ID, `
		UPDATE authors
		SET first_name = ?, last_name = ?, avatar_url = ?, twitter_username = ?
		WHERE id = ?
	`, a.FirstName, a.LastName, a.AvatarURL, a.TwitterUsername, a.ID)
}

// SetAvatar replaces only the avatar URL of an author.
func (s *AuthorStore) SetAvatar(ctx context.Context, id int64, url string) (*models.Author, error) {
	return s.exec(ctx, "set avatar", id, `UPDATE authors SET avatar_url = ? WHERE id = ?`, url, id)
}

// exec runs a single-row update against author id and returns the row as
// stored afterwards.
func (s *AuthorStore) exec(ctx context.Context, op string, id int64, query string, args ...any) (*models.Author, error) {
	key := strconv.FormatInt(id, 10)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, wrap(op, "author", key, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, wrap(op, "author", key, err)
	} else if n == 0 {
		return nil, wrap(op, "author", key, ErrNotFound)
	}
	return s.reload(ctx, op, id)
}

// reload reads back a row just written.
func (s *AuthorStore) reload(ctx context.Context, op string, id int64) (*models.Author, error) {
	a, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, wrap(op, "author", strconv.FormatInt(id, 10), ErrNotFound)
	}
	return a, nil
}

// Delete removes an author. Their articles go with them via ON DELETE CASCADE.
func (s *AuthorStore) Delete(ctx context.Context, id int64) error {
	key := strconv.FormatInt(id, 10)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM authors WHERE id = ?`), id)
	if err != nil {
		return wrap("delete", "author", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete", "author", key, err)
	}
	if n == 0 {
		return wrap("delete", "author", key, ErrNotFound)
	}
	return nil
}
