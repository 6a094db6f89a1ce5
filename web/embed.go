// Package web embeds the API documentation pages. The chooser page links
// the three viewers; each viewer loads its script from a public CDN and
// reads the document from /openapi/openapi.json.
package web

import (
	"embed"
	"io/fs"
)

//go:embed docs/*.html
var docsFS embed.FS

// DocPages lists the viewer pages by route name.
var DocPages = []string{"swagger", "redoc", "rapidoc"}

// DocPage returns the HTML of the named documentation page. "index" is the
// chooser.
func DocPage(name string) ([]byte, error) {
	return fs.ReadFile(docsFS, "docs/"+name+".html")
}
