// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"folio/internal/models"
	"folio/internal/storage"
)

// AuthorStore is the persistence the author handlers need.
type AuthorStore interface {
	List(ctx context.Context) ([]models.AuthorSummary, error)
	FindByID(ctx context.Context, id int64) (*models.Author, error)
	FindDetails(ctx context.Context, id int64) (*models.AuthorDetails, error)
	Create(ctx context.Context, a *models.Author) (*models.Author, error)
	Update(ctx context.Context, a *models.Author) (*models.Author, error)
	SetAvatar(ctx context.Context, id int64, url string) (*models.Author, error)
	Delete(ctx context.Context, id int64) error
}

// AvatarStorage uploads and removes avatar images. *storage.Client
// satisfies it.
type AvatarStorage interface {
	PutAvatar(ctx context.Context, authorID int64, data []byte) (string, error)
	RemoveByURL(ctx context.Context, rawURL string) error
}

// AuthorInput is the body of POST /author.
type AuthorInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	TwitterUsername string `json:"twitter_username,omitempty"`
}

func (in *AuthorInput) bindForm(v url.Values) error {
	in.FirstName = v.Get("first_name")
	in.LastName = v.Get("last_name")
	in.AvatarURL = v.Get("avatar_url")
	in.TwitterUsername = v.Get("twitter_username")
	return nil
}

func (in *AuthorInput) author(id int64) *models.Author {
	return &models.Author{
		ID:              id,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		AvatarURL:       strings.TrimSpace(in.AvatarURL),
		TwitterUsername: strings.TrimSpace(in.TwitterUsername),
	}
}

// AuthorUpdateInput is the body of PUT /author. All fields are replaced.
type AuthorUpdateInput struct {
	AuthorInput
	ID int64 `json:"id" doc:"Identifier of the author to update"`
}

func (in *AuthorUpdateInput) bindForm(v url.Values) error {
	if raw := strings.TrimSpace(v.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		in.ID = id
	}
	return in.AuthorInput.bindForm(v)
}

// AuthorList is the body of GET /authors.
type AuthorList struct {
	Authors []models.AuthorSummary `json:"authors"`
}

// AuthorDeleted confirms DELETE /author/{id}.
type AuthorDeleted struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Authors groups the author HTTP handlers.
type Authors struct {
	store   AuthorStore
	avatars AvatarStorage
}

// NewAuthors creates the author handlers. avatars may be nil when object
// storage is not configured; avatar uploads then answer 503.
func NewAuthors(store AuthorStore, avatars AvatarStorage) *Authors {
	return &Authors{store: store, avatars: avatars}
}

// authorID parses the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func authorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "Author id must be a positive integer.", err)
		return 0, false
	}
	return id, true
}

// List answers GET /authors with every author and their article count.
func (a *Authors) List(w http.ResponseWriter, r *http.Request) {
	authors, err := a.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, AuthorList{Authors: authors})
}

// Get answers GET /author/{id} with the author and their article ids.
func (a *Authors) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := authorID(w, r)
	if !ok {
		return
	}

	details, err := a.store.FindDetails(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if details == nil {
		writeError(w, r, http.StatusNotFound, "Author not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Create answers POST /author.
func (a *Authors) Create(w http.ResponseWriter, r *http.Request) {
	var in AuthorInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateAuthor(&in); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	created, err := a.store.Create(r.Context(), in.author(0))
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}

	slog.Info("author created", "id", created.ID, "name", created.FullName())
	writeJSON(w, http.StatusCreated, created)
}

// Update answers PUT /author, replacing every field of the author named by
// the body's id.
func (a *Authors) Update(w http.ResponseWriter, r *http.Request) {
	var in AuthorUpdateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if in.ID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Author id must be a positive integer.", nil)
		return
	}
	if msg := validateAuthor(&in.AuthorInput); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	current, err := a.store.FindByID(r.Context(), in.ID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if current == nil {
		writeError(w, r, http.StatusNotFound, "Author not found", nil)
		return
	}

	updated, err := a.store.Update(r.Context(), in.author(in.ID))
	if err != nil {
		writeStoreError(w, r, err, "Author not found")
		return
	}

	// A replaced or cleared avatar leaves its object behind otherwise.
	if a.avatars != nil && current.AvatarURL != "" && current.AvatarURL != updated.AvatarURL {
		if err := a.avatars.RemoveByURL(r.Context(), current.AvatarURL); err != nil {
			slog.Warn("remove previous avatar", "url", current.AvatarURL, "error", err)
		}
	}

	slog.Info("author updated", "id", updated.ID, "name", updated.FullName())
	writeJSON(w, http.StatusOK, updated)
}

// Delete answers DELETE /author/{id}. The author's articles are removed
// with them.
func (a *Authors) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := authorID(w, r)
	if !ok {
		return
	}

	if err := a.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "Author not found")
		return
	}

	slog.Info("author deleted", "id", id)
	writeJSON(w, http.StatusOK, AuthorDeleted{Message: "Author and their articles removed", ID: id})
}

// UploadAvatar answers PUT /author/{id}/avatar. The multipart "avatar"
// file is sniffed, stored, and its public URL saved on the author. A
// previous avatar stored in the same bucket is deleted afterwards.
func (a *Authors) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if a.avatars == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Object storage is not configured.", nil)
		return
	}
	id, ok := authorID(w, r)
	if !ok {
		return
	}

	// Room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+64<<10)
	if err := r.ParseMultipartForm(storage.MaxAvatarSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "Avatar is too large (max 2 MB).", err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "Invalid multipart body", err)
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No avatar file provided.", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxAvatarSize+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Failed to read avatar file.", err)
		return
	}

	current, err := a.store.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if current == nil {
		writeError(w, r, http.StatusNotFound, "Author not found", nil)
		return
	}

	avatarURL, err := a.avatars.PutAvatar(r.Context(), id, data)
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "Avatar is too large (max 2 MB).", err)
		return
	case errors.Is(err, storage.ErrUnsupportedImage):
		writeError(w, r, http.StatusBadRequest, "Avatar must be a JPEG, PNG, WebP, or GIF image.", err)
		return
	case err != nil:
		writeError(w, r, http.StatusBadGateway, "Failed to store avatar.", err)
		return
	}

	updated, err := a.store.SetAvatar(r.Context(), id, avatarURL)
	if err != nil {
		if rmErr := a.avatars.RemoveByURL(r.Context(), avatarURL); rmErr != nil {
			slog.Warn("remove orphaned avatar", "url", avatarURL, "error", rmErr)
		}
		writeStoreError(w, r, err, "Author not found")
		return
	}

	if current.AvatarURL != "" && current.AvatarURL != avatarURL {
		if err := a.avatars.RemoveByURL(r.Context(), current.AvatarURL); err != nil {
			slog.Warn("remove previous avatar", "url", current.AvatarURL, "error", err)
		}
	}

	slog.Info("author avatar updated", "id", id, "url", avatarURL)
	writeJSON(w, http.StatusOK, updated)
}
