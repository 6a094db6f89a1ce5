// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// Author writes articles. Deleting an author deletes their articles.
type Author struct {
	ID              int64     `json:"id" db:"id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	AvatarURL       string    `json:"avatar_url" db:"avatar_url"`
	TwitterUsername string    `json:"twitter_username" db:"twitter_username"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// FullName joins the first and last name, skipping empty parts.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AuthorSummary is the list representation of an author.
type AuthorSummary struct {
	Author
	ArticlesCount int `json:"articles_count" db:"articles_count"`
}

// AuthorDetails is a single author with the slugs of their articles,
// newest first.
type AuthorDetails struct {
	AuthorSummary
	Articles []string `json:"articles"`
}
