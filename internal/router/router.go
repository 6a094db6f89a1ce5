// Package router sets up all HTTP routes and middleware chains for the
// Folio API. Every API route is registered together with its OpenAPI
// operation, so the published document always matches the router.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/openapi"
	"folio/web"
)

// Pinger reports whether a dependency (the database) is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the router wires together.
type Deps struct {
	Articles *handlers.Articles
	Authors  *handlers.Authors
	Docs     *handlers.Docs
	Docgen   *openapi.Generator

	// Limiter throttles write routes per client IP. Nil disables limiting.
	Limiter middleware.Limiter

	// Origins are the allowed CORS origins; "*" allows all.
	Origins []string

	// DB is pinged by /health. Nil means always healthy.
	DB Pinger
}

// routes registers chi handlers and their OpenAPI operations in one step.
type routes struct {
	r   chi.Router
	gen *openapi.Generator
}

func (rt routes) handle(op openapi.Operation, h http.HandlerFunc) {
	rt.r.Method(op.Method, op.Path, h)
	rt.gen.Register(op)
}

// New creates the configured chi router with all middleware and routes.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(d.Origins))

	r.Get("/health", healthHandler(d.DB))

	// Documentation.
	docs := routes{r: r, gen: d.Docgen}
	docs.handle(openapi.Operation{
		Method: http.MethodGet, Path: "/", Tag: openapi.TagDocumentation, ID: "home",
		Summary:     "Redirect to the documentation chooser",
		Description: "Redirects to /openapi, where Swagger UI, Redoc, or RapiDoc can be chosen.",
		Status:      http.StatusFound,
	}, d.Docs.Home)
	r.Get("/openapi", d.Docs.Index)
	for _, name := range web.DocPages {
		r.Get("/openapi/"+name, d.Docs.Viewer(name))
	}
	r.Get("/openapi/openapi.json", d.Docgen.JSONHandler())
	r.Get("/openapi/openapi.yaml", d.Docgen.YAMLHandler())

	// Reads are unthrottled.
	read := routes{r: r, gen: d.Docgen}

	// Writes pass the rate limiter.
	write := routes{r: r, gen: d.Docgen}
	if d.Limiter != nil {
		write.r = r.With(middleware.RateLimit(d.Limiter))
	}

	slugParam := []openapi.Param{{Name: "slug", Description: "Article identifier"}}
	idParam := []openapi.Param{{Name: "id", Description: "Author identifier", Integer: true}}

	// Articles.
	read.handle(openapi.Operation{
		Method: http.MethodGet, Path: "/articles", Tag: openapi.TagArticle, ID: "listArticles",
		Summary:  "List all articles",
		Response: handlers.ArticleList{},
	}, d.Articles.List)
	read.handle(openapi.Operation{
		Method: http.MethodGet, Path: "/article/{slug}", Tag: openapi.TagArticle, ID: "getArticle",
		Summary:     "Get an article",
		Description: "Returns the article with its author and the content rendered as HTML.",
		Params:      slugParam,
		Response:    models.ArticleDetails{},
		Errors:      []int{http.StatusNotFound},
	}, d.Articles.Get)
	write.handle(openapi.Operation{
		Method: http.MethodPost, Path: "/article", Tag: openapi.TagArticle, ID: "createArticle",
		Summary:     "Create an article",
		Description: "The identifier is derived from the title and the current date unless an explicit id is given. A taken identifier is a conflict.",
		Request:     handlers.ArticleInput{},
		Status:      http.StatusCreated,
		Response:    models.Article{},
		Errors:      []int{http.StatusBadRequest, http.StatusConflict, http.StatusTooManyRequests},
	}, d.Articles.Create)
	write.handle(openapi.Operation{
		Method: http.MethodPut, Path: "/article", Tag: openapi.TagArticle, ID: "updateArticle",
		Summary:     "Edit an article",
		Description: "Replaces the title, subtitle, author, and content. The identifier never changes.",
		Request:     handlers.ArticleUpdateInput{},
		Response:    models.Article{},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusTooManyRequests},
	}, d.Articles.Update)
	write.handle(openapi.Operation{
		Method: http.MethodDelete, Path: "/article/{slug}", Tag: openapi.TagArticle, ID: "deleteArticle",
		Summary:  "Remove an article",
		Params:   slugParam,
		Response: handlers.ArticleDeleted{},
		Errors:   []int{http.StatusNotFound, http.StatusTooManyRequests},
	}, d.Articles.Delete)

	// Authors.
	read.handle(openapi.Operation{
		Method: http.MethodGet, Path: "/authors", Tag: openapi.TagAuthor, ID: "listAuthors",
		Summary:  "List all authors with their article counts",
		Response: handlers.AuthorList{},
	}, d.Authors.List)
	read.handle(openapi.Operation{
		Method: http.MethodGet, Path: "/author/{id}", Tag: openapi.TagAuthor, ID: "getAuthor",
		Summary:  "Get an author with the ids of their articles",
		Params:   idParam,
		Response: models.AuthorDetails{},
		Errors:   []int{http.StatusBadRequest, http.StatusNotFound},
	}, d.Authors.Get)
	write.handle(openapi.Operation{
		Method: http.MethodPost, Path: "/author", Tag: openapi.TagAuthor, ID: "createAuthor",
		Summary:  "Create an author",
		Request:  handlers.AuthorInput{},
		Status:   http.StatusCreated,
		Response: models.Author{},
		Errors:   []int{http.StatusBadRequest, http.StatusTooManyRequests},
	}, d.Authors.Create)
	write.handle(openapi.Operation{
		Method: http.MethodPut, Path: "/author", Tag: openapi.TagAuthor, ID: "updateAuthor",
		Summary:  "Edit an author",
		Request:  handlers.AuthorUpdateInput{},
		Response: models.Author{},
		Errors:   []int{http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests},
	}, d.Authors.Update)
	write.handle(openapi.Operation{
		Method: http.MethodDelete, Path: "/author/{id}", Tag: openapi.TagAuthor, ID: "deleteAuthor",
		Summary:  "Remove an author and all their articles",
		Params:   idParam,
		Response: handlers.AuthorDeleted{},
		Errors:   []int{http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests},
	}, d.Authors.Delete)
	write.handle(openapi.Operation{
		Method: http.MethodPut, Path: "/author/{id}/avatar", Tag: openapi.TagAuthor, ID: "uploadAuthorAvatar",
		Summary:     "Upload an author avatar",
		Description: "Accepts a JPEG, PNG, WebP, or GIF image of at most 2 MB in the multipart field \"avatar\".",
		Params:      idParam,
		Upload:      "avatar",
		Response:    models.Author{},
		Errors: []int{
			http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge,
			http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable,
		},
	}, d.Authors.UploadAvatar)

	return r
}

// healthHandler answers {"status":"ok"}, or 503 when the database does not
// answer a ping within two seconds.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
