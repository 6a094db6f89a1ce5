// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/slug"
)

// ArticleStore is the persistence the article handlers need.
type ArticleStore interface {
	List(ctx context.Context) ([]models.ArticlePreview, error)
	FindDetails(ctx context.Context, slug string) (*models.ArticleDetails, error)
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) (*models.Article, error)
	Delete(ctx context.Context, slug string) error
}

// ArticleInput is the body of POST /article. ID optionally fixes the
// article identifier instead of deriving it from the title.
type ArticleInput struct {
	ID       string `json:"id,omitempty" doc:"Explicit identifier; generated from the title and date when omitted"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	AuthorID int64  `json:"author_id"`
	Content  string `json:"content" doc:"Markdown"`
}

func (in *ArticleInput) bindForm(v url.Values) error {
	in.ID = v.Get("id")
	in.Title = v.Get("title")
	in.Subtitle = v.Get("subtitle")
	in.Content = v.Get("content")
	if raw := strings.TrimSpace(v.Get("author_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("author_id: %w", err)
		}
		in.AuthorID = id
	}
	return nil
}

// article builds the model from the trimmed input.
func (in *ArticleInput) article(id string) *models.Article {
	return &models.Article{
		Slug:     id,
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Content:  in.Content,
		AuthorID: in.AuthorID,
	}
}

// ArticleUpdateInput is the body of PUT /article. ID selects the article;
// it is never changed.
type ArticleUpdateInput struct {
	ArticleInput
	ID string `json:"id" doc:"Identifier of the article to update"`
}

func (in *ArticleUpdateInput) bindForm(v url.Values) error {
	in.ID = v.Get("id")
	return in.ArticleInput.bindForm(v)
}

// ArticleList is the body of GET /articles.
type ArticleList struct {
	Articles []models.ArticlePreview `json:"articles"`
}

// ArticleDeleted confirms DELETE /article/{slug}.
type ArticleDeleted struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Articles groups the article HTTP handlers.
type Articles struct {
	store ArticleStore
	slugs *slug.Generator
}

// NewArticles creates the article handlers. Slugs for new articles come
// from gen.
func NewArticles(store ArticleStore, gen *slug.Generator) *Articles {
	return &Articles{store: store, slugs: gen}
}

// List answers GET /articles with every article's preview, newest first.
func (a *Articles) List(w http.ResponseWriter, r *http.Request) {
	articles, err := a.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ArticleList{Articles: articles})
}

// Get answers GET /article/{slug} with the article, its author, and the
// rendered content.
func (a *Articles) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "slug")

	details, err := a.store.FindDetails(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if details == nil {
		writeError(w, r, http.StatusNotFound, "Article not found", nil)
		return
	}

	details.ContentHTML, err = markdown.ToHTML(details.Content)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Create answers POST /article. The identifier is the explicit id when
// given, otherwise the slug generated from the title. A taken identifier is
// a conflict; the generator is not asked for another.
func (a *Articles) Create(w http.ResponseWriter, r *http.Request) {
	var in ArticleInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in.ID = strings.TrimSpace(in.ID)
	if msg := validateArticle(&in, in.ID); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	id := a.slugs.Generate(in.Title, in.ID)
	created, err := a.store.Create(r.Context(), in.article(id))
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}

	slog.Info("article created", "id", created.Slug, "author_id", created.AuthorID)
	writeJSON(w, http.StatusCreated, created)
}

// Update answers PUT /article, replacing the title, subtitle, author, and
// content of the article named by the body's id.
func (a *Articles) Update(w http.ResponseWriter, r *http.Request) {
	var in ArticleUpdateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		writeError(w, r, http.StatusBadRequest, "Id is required.", nil)
		return
	}
	if msg := validateArticle(&in.ArticleInput, ""); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	updated, err := a.store.Update(r.Context(), in.article(in.ID))
	if err != nil {
		writeStoreError(w, r, err, "Article not found")
		return
	}

	slog.Info("article updated", "id", updated.Slug)
	writeJSON(w, http.StatusOK, updated)
}

// Delete answers DELETE /article/{slug}.
func (a *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "slug")

	if err := a.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "Article not found")
		return
	}

	slog.Info("article deleted", "id", id)
	writeJSON(w, http.StatusOK, ArticleDeleted{Message: "Article removed", ID: id})
}
