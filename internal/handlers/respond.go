// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Folio JSON API.
// Handlers are grouped by resource (articles, authors, docs) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"folio/internal/middleware"
	"folio/internal/store"
)

// maxBodySize caps JSON and form request bodies.
const maxBodySize = 1 << 20

// Message is the body of every error response and of delete confirmations.
type Message struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"message": msg}. Client errors are logged at warn
// level, server errors at error level.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	attrs := []any{
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromCtx(r.Context()),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	if status >= http.StatusInternalServerError {
		slog.Error(msg, attrs...)
	} else {
		slog.Warn(msg, attrs...)
	}
	writeJSON(w, status, Message{Message: msg})
}

// writeStoreError maps a store error onto its HTTP status. notFound is the
// message used for store.ErrNotFound.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, notFound, err)
	case errors.Is(err, store.ErrDuplicateSlug):
		writeError(w, r, http.StatusConflict, "An article with this identifier already exists", err)
	case errors.Is(err, store.ErrAuthorNotFound):
		writeError(w, r, http.StatusConflict, "Author does not exist", err)
	default:
		writeError(w, r, http.StatusInternalServerError, "Internal server error", err)
	}
}

// formBinder is implemented by request types that can also be filled from
// form-encoded bodies.
type formBinder interface {
	bindForm(url.Values) error
}

// decodeBody fills dst from a JSON body, or from a form body when the
// request is form encoded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		return dst.bindForm(r.PostForm)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return dst.bindForm(r.PostForm)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
