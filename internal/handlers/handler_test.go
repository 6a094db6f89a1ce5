// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Every test gets a fresh in-memory SQLite database behind the real stores.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/slug"
	"folio/internal/storage"
	"folio/internal/store"
)

// testDate is the generator's clock in handler tests.
var testDate = time.Date(2026, 2, 25, 10, 30, 0, 0, time.UTC)

// fakeAvatars records uploads and deletions in memory.
type fakeAvatars struct {
	mu      sync.Mutex
	puts    int
	removed []string
	putErr  error
}

func (f *fakeAvatars) PutAvatar(_ context.Context, authorID int64, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if _, _, err := storage.SniffImage(data); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	return "https://cdn.example.com/" + storage.AvatarKey(authorID, ".png"), nil
}

func (f *fakeAvatars) RemoveByURL(_ context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, rawURL)
	return nil
}

var errStorageDown = errors.New("storage down")

// testEnv holds the handler dependencies for one test.
type testEnv struct {
	Articles *store.ArticleStore
	Authors  *store.AuthorStore
	Avatars  *fakeAvatars
	Router   chi.Router
}

// newTestEnv creates stores on a fresh database and mounts the handlers on
// the same paths the application uses.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, database.DriverSQLite, database.SQLiteDSN(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite))

	env := &testEnv{
		Articles: store.NewArticleStore(db),
		Authors:  store.NewAuthorStore(db),
		Avatars:  &fakeAvatars{},
	}
	env.Router = mount(
		NewArticles(env.Articles, slug.New(slug.FixedClock(testDate))),
		NewAuthors(env.Authors, env.Avatars),
	)
	return env
}

func mount(articles *Articles, authors *Authors) chi.Router {
	r := chi.NewRouter()
	r.Get("/articles", articles.List)
	r.Get("/article/{slug}", articles.Get)
	r.Post("/article", articles.Create)
	r.Put("/article", articles.Update)
	r.Delete("/article/{slug}", articles.Delete)
	r.Get("/authors", authors.List)
	r.Get("/author/{id}", authors.Get)
	r.Post("/author", authors.Create)
	r.Put("/author", authors.Update)
	r.Delete("/author/{id}", authors.Delete)
	r.Put("/author/{id}/avatar", authors.UploadAvatar)
	return r
}

// do sends a request with an optional JSON body and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// doForm sends a form-encoded body.
func (e *testEnv) doForm(t *testing.T, method, path, form string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doRaw(t, method, path, "application/x-www-form-urlencoded", strings.NewReader(form))
}

// doRaw sends body as-is with the given content type.
func (e *testEnv) doRaw(t *testing.T, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the recorder's body into a value of type T.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

// seedAuthor inserts an author directly through the store.
func (e *testEnv) seedAuthor(t *testing.T, first, last string) *models.Author {
	t.Helper()
	a, err := e.Authors.Create(context.Background(), &models.Author{FirstName: first, LastName: last})
	require.NoError(t, err)
	return a
}

// seedArticle inserts an article with an explicit slug directly through the store.
func (e *testEnv) seedArticle(t *testing.T, id string, authorID int64) *models.Article {
	t.Helper()
	a, err := e.Articles.Create(context.Background(), &models.Article{
		Slug:     id,
		Title:    "Title of " + id,
		Subtitle: "Subtitle",
		Content:  "# Heading\n\nBody",
		AuthorID: authorID,
	})
	require.NoError(t, err)
	return a
}
