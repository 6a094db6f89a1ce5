package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"folio/internal/slug"
)

const welcomeContent = `Folio is up and running.

## Next steps

- Create an author with ` + "`POST /author`" + `
- Publish an article with ` + "`POST /article`" + `
- Browse the API at [/openapi](/openapi)
`

// Seed populates an empty database with development data: one sample author
// and a welcome article whose slug comes from gen. It does nothing when any
// author exists.
func Seed(ctx context.Context, db *sqlx.DB, gen *slug.Generator) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM authors"); err != nil {
		return fmt.Errorf("seed check authors: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var authorID int64
	err = tx.GetContext(ctx, &authorID, tx.Rebind(`
		INSERT INTO authors (first_name, last_name, twitter_username, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), "Sample", "Author", "folio", now)
	if err != nil {
		return fmt.Errorf("seed insert author: %w", err)
	}

	title := "Welcome to Folio"
	articleSlug := gen.Generate(title, "")
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO articles (slug, title, subtitle, content, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), articleSlug, title, "Your first article", welcomeContent, authorID, now, now)
	if err != nil {
		return fmt.Errorf("seed insert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample data",
		"author_id", authorID,
		"article", articleSlug,
	)

	return nil
}
