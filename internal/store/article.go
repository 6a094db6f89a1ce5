// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"folio/internal/models"
)

const articleColumns = `id, slug, title, subtitle, content, author_id, created_at, updated_at`

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db, now: now}
}

// now returns the current UTC time at the precision both backends store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// List returns previews of all articles, newest first.
func (s *ArticleStore) List(ctx context.Context) ([]models.ArticlePreview, error) {
	items := []models.ArticlePreview{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT slug, title, subtitle, author_id, created_at
		FROM articles
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, wrap("list", "articles", "", err)
	}
	return items, nil
}

// FindBySlug retrieves an article by its slug. Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a := &models.Article{}
	err := s.db.GetContext(ctx, a, s.db.Rebind(`
		SELECT `+articleColumns+`
		FROM articles WHERE slug = ?
	`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find", "article", slug, err)
	}
	return a, nil
}

// articleDetailsRow is the flat shape of an article joined with its author.
type articleDetailsRow struct {
	models.Article
	AuthorFirstName       string    `db:"author_first_name"`
	AuthorLastName        string    `db:"author_last_name"`
	AuthorAvatarURL       string    `db:"author_avatar_url"`
	AuthorTwitterUsername string    `db:"author_twitter_username"`
	AuthorCreatedAt       time.Time `db:"author_created_at"`
}

// FindDetails retrieves an article together with its author. Returns nil if
// not found. ContentHTML is left empty for the caller to render.
func (s *ArticleStore) FindDetails(ctx context.Context, slug string) (*models.ArticleDetails, error) {
	var row articleDetailsRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT a.id, a.slug, a.title, a.subtitle, a.content, a.author_id,
		       a.created_at, a.updated_at,
		       au.first_name       AS author_first_name,
		       au.last_name        AS author_last_name,
		       au.avatar_url       AS author_avatar_url,
		       au.twitter_username AS author_twitter_username,
		       au.created_at       AS author_created_at
		FROM articles a
		JOIN authors au ON au.id = a.author_id
		WHERE a.slug = ?
	`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find", "article", slug, err)
	}

	return &models.ArticleDetails{
		Article: row.Article,
		Author: models.Author{
			ID:              row.AuthorID,
			FirstName:       row.AuthorFirstName,
			LastName:        row.AuthorLastName,
			AvatarURL:       row.AuthorAvatarURL,
			TwitterUsername: row.AuthorTwitterUsername,
			CreatedAt:       row.AuthorCreatedAt,
		},
	}, nil
}

// Create inserts a new article and returns it with the generated ID and
// timestamps. The slug must already be assigned. A taken slug yields
// ErrDuplicateSlug and an unknown author ErrAuthorNotFound.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	ts := s.now()
	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`
		INSERT INTO articles (slug, title, subtitle, content, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), a.Slug, a.Title, a.Subtitle, a.Content, a.AuthorID, ts, ts)
	if err != nil {
		return nil, wrap("create", "article", a.Slug, err)
	}
	return s.reload(ctx, "create", a.Slug)
}

// Update modifies the title, subtitle, content, and author of the article
// identified by a.Slug. The slug itself is never changed.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE articles
		SET title = ?, subtitle = ?, content = ?, author_id = ?, updated_at = ?
		WHERE slug = ?
	`), a.Title, a.Subtitle, a.Content, a.AuthorID, s.now(), a.Slug)
	if err != nil {
		return nil, wrap("update", "article", a.Slug, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, wrap("update", "article", a.Slug, err)
	} else if n == 0 {
		return nil, wrap("update", "article", a.Slug, ErrNotFound)
	}
	return s.reload(ctx, "update", a.Slug)
}

// reload reads back a row just written so timestamps come out of a plain
// column select on every driver.
func (s *ArticleStore) reload(ctx context.Context, op, slug string) (*models.Article, error) {
	a, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, wrap(op, "article", slug, ErrNotFound)
	}
	return a, nil
}

// Delete removes the article with the given slug.
func (s *ArticleStore) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM articles WHERE slug = ?`), slug)
	if err != nil {
		return wrap("delete", "article", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete", "article", slug, err)
	}
	if n == 0 {
		return wrap("delete", "article", slug, ErrNotFound)
	}
	return nil
}
