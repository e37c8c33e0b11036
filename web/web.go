// Package web holds the embedded page templates and static assets of the
// dashboard UI.
package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"embed"

	"github.com/samber/lo"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer executes the embedded page templates. Every page is parsed
// together with the base layout at startup so template errors surface on
// boot instead of on first render.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".html")

		page, err := template.ParseFS(templateFS, "templates/base.html", "templates/pages/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}

		pages[name] = page
	}

	return &Renderer{pages: pages}, nil
}

// PageData is the payload every page template receives. Data carries the
// page-specific part.
type PageData struct {
	Title     string
	Username  string
	CSRFField template.HTML
	CSRFToken string
	Error     string
	Message   string
	Data      any
}

func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	return nil
}

// Static serves the embedded assets mounted under /static/.
func Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(lo.Must(fs.Sub(staticFS, "static")))))
}
