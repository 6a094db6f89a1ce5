package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
	"folio/internal/slug"
)

func validArticle(authorID int64) map[string]any {
	return map[string]any{
		"title":     "Olá, Mundo!",
		"subtitle":  "A first post",
		"author_id": authorID,
		"content":   "Hello **world**",
	}
}

func TestArticleListEmpty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/articles", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"articles":[]}`, rr.Body.String())
}

func TestArticleCreateGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")

	rr := env.do(t, http.MethodPost, "/article", validArticle(author.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	got := decode[map[string]any](t, rr)
	assert.Equal(t, "2026-02-25-ola-mundo", got["id"])
	assert.Equal(t, "Olá, Mundo!", got["title"])
	assert.Equal(t, float64(author.ID), got["author_id"])
	assert.NotEmpty(t, got["created_at"])

	stored, err := env.Articles.FindBySlug(context.Background(), "2026-02-25-ola-mundo")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestArticleCreateExplicitID(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")

	body := validArticle(author.ID)
	body["id"] = "my-custom-id"
	rr := env.do(t, http.MethodPost, "/article", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "my-custom-id", decode[map[string]any](t, rr)["id"])
}

func TestArticleCreateForm(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")

	form := "title=Notes+on+Engines&subtitle=Analytical&content=Body&author_id=" +
		strconv.FormatInt(author.ID, 10)
	rr := env.doForm(t, http.MethodPost, "/article", form)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "2026-02-25-notes-on-engines", decode[map[string]any](t, rr)["id"])
}

func TestArticleCreateDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")

	first := env.do(t, http.MethodPost, "/article", validArticle(author.ID))
	require.Equal(t, http.StatusCreated, first.Code)

	// Same title, same day: the generator yields the same slug and the
	// second insert is rejected rather than renamed.
	second := env.do(t, http.MethodPost, "/article", validArticle(author.ID))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "An article with this identifier already exists", decode[Message](t, second).Message)

	list, err := env.Articles.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestArticleCreateUnknownAuthor(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/article", validArticle(999))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Author does not exist", decode[Message](t, rr).Message)
}

func TestArticleCreateInvalid(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing title", func(b map[string]any) { delete(b, "title") }, "Title is required."},
		{"blank subtitle", func(b map[string]any) { b["subtitle"] = "  " }, "Subtitle is required."},
		{"long title", func(b map[string]any) { b["title"] = strings.Repeat("a", 91) }, "Title is too long (max 90 characters)."},
		{"missing content", func(b map[string]any) { b["content"] = "" }, "Content is required."},
		{"no author", func(b map[string]any) { delete(b, "author_id") }, "Author id must be a positive integer."},
		{"bad id", func(b map[string]any) { b["id"] = "has spaces" }, ""},
		{"long id", func(b map[string]any) { b["id"] = strings.Repeat("a", slug.MaxLength+1) }, "Id is too long (max 50 characters)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validArticle(author.ID)
			tt.mutate(body)
			rr := env.do(t, http.MethodPost, "/article", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			if tt.want != "" {
				assert.Equal(t, tt.want, decode[Message](t, rr).Message)
			}
		})
	}
}

func TestArticleCreateMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doRaw(t, http.MethodPost, "/article", "application/json", strings.NewReader(`{"title":`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decode[Message](t, rr).Message)

	rr = env.doForm(t, http.MethodPost, "/article", "title=x&author_id=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestArticleGetDetails(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")
	env.seedArticle(t, "2026-02-25-engines", author.ID)

	rr := env.do(t, http.MethodGet, "/article/2026-02-25-engines", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	got := decode[map[string]any](t, rr)
	assert.Equal(t, "2026-02-25-engines", got["id"])
	assert.Contains(t, got["content_html"], `<h1 id="heading">Heading</h1>`)
	authorJSON, ok := got["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", authorJSON["first_name"])
}

func TestArticleGetMissing(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/article/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Article not found", decode[Message](t, rr).Message)
}

func TestArticleListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")
	env.seedArticle(t, "first", author.ID)
	env.seedArticle(t, "second", author.ID)

	rr := env.do(t, http.MethodGet, "/articles", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[ArticleList](t, rr)
	require.Len(t, list.Articles, 2)
	assert.Equal(t, "second", list.Articles[0].Slug)
	assert.NotContains(t, rr.Body.String(), `"content"`, "previews omit the body")
}

func TestArticleUpdateKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")
	other := env.seedAuthor(t, "Charles", "Babbage")
	env.seedArticle(t, "2026-02-25-engines", author.ID)

	rr := env.do(t, http.MethodPut, "/article", map[string]any{
		"id":        "2026-02-25-engines",
		"title":     "A completely different title",
		"subtitle":  "New subtitle",
		"author_id": other.ID,
		"content":   "New body",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := decode[map[string]any](t, rr)
	assert.Equal(t, "2026-02-25-engines", got["id"])
	assert.Equal(t, "A completely different title", got["title"])
	assert.Equal(t, float64(other.ID), got["author_id"])
}

func TestArticleUpdateErrors(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")
	env.seedArticle(t, "existing", author.ID)

	body := func(id string, authorID int64) map[string]any {
		b := validArticle(authorID)
		b["id"] = id
		return b
	}

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing id", validArticle(author.ID), http.StatusBadRequest},
		{"unknown article", body("missing", author.ID), http.StatusNotFound},
		{"unknown author", body("existing", 999), http.StatusConflict},
		{"invalid fields", map[string]any{"id": "existing"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPut, "/article", tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestArticleDelete(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedAuthor(t, "Ada", "Lovelace")
	env.seedArticle(t, "doomed", author.ID)

	rr := env.do(t, http.MethodDelete, "/article/doomed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Article removed","id":"doomed"}`, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/article/doomed", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// failingArticles fails every call with an unexpected error.
type failingArticles struct{}

var errDatabaseDown = errors.New("database is down")

func (failingArticles) List(context.Context) ([]models.ArticlePreview, error) {
	return nil, errDatabaseDown
}
func (failingArticles) FindDetails(context.Context, string) (*models.ArticleDetails, error) {
	return nil, errDatabaseDown
}
func (failingArticles) Create(context.Context, *models.Article) (*models.Article, error) {
	return nil, errDatabaseDown
}
func (failingArticles) Update(context.Context, *models.Article) (*models.Article, error) {
	return nil, errDatabaseDown
}
func (failingArticles) Delete(context.Context, string) error { return errDatabaseDown }

func TestArticleUnexpectedErrorsAre500(t *testing.T) {
	h := NewArticles(failingArticles{}, slug.New(nil))
	env := &testEnv{Router: mount(h, NewAuthors(nil, nil))}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/articles"},
		{http.MethodGet, "/article/x"},
		{http.MethodDelete, "/article/x"},
	} {
		rr := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Internal server error", decode[Message](t, rr).Message)
	}

	rr := env.do(t, http.MethodPost, "/article", validArticle(1))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
