// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Article is a blog post. Its Slug is the public identifier used in URLs
// and API payloads (serialised as "id"); the integer ID is an internal
// surrogate key. The slug is assigned on creation and never changes.
type Article struct {
	ID        int64     `json:"-" db:"id"`
	Slug      string    `json:"id" db:"slug"`
	Title     string    `json:"title" db:"title"`
	Subtitle  string    `json:"subtitle" db:"subtitle"`
	Content   string    `json:"content" db:"content"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ArticlePreview is the list representation of an article, without content.
type ArticlePreview struct {
	Slug      string    `json:"id" db:"slug"`
	Title     string    `json:"title" db:"title"`
	Subtitle  string    `json:"subtitle" db:"subtitle"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArticleDetails is a single article with its author embedded and the
// content rendered to HTML.
type ArticleDetails struct {
	Article
	Author      Author `json:"author"`
	ContentHTML string `json:"content_html"`
}
