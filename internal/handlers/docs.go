package handlers

import (
	"net/http"

	"folio/web"
)

// Docs serves the API documentation pages.
type Docs struct{}

// NewDocs creates the documentation handlers.
func NewDocs() *Docs {
	return &Docs{}
}

// Home answers GET / by redirecting to the documentation chooser.
func (d *Docs) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/openapi", http.StatusFound)
}

// Index answers GET /openapi with the chooser page.
func (d *Docs) Index(w http.ResponseWriter, r *http.Request) {
	d.page(w, r, "index")
}

// Viewer returns a handler serving one documentation viewer page.
func (d *Docs) Viewer(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.page(w, r, name)
	}
}

func (d *Docs) page(w http.ResponseWriter, r *http.Request, name string) {
	html, err := web.DocPage(name)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "Documentation page not found", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
