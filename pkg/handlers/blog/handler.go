package blog

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/getmilo/milo/pkg/handlers/respond"
	blogsvc "github.com/getmilo/milo/pkg/services/blog"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	indexTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/index.html"))
	postTemplate  = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/post.html"))
)

type Library interface {
	All() []blogsvc.Post
	BySlug(slug string) (blogsvc.Post, error)
	Sitemap(baseURL string, now time.Time) ([]byte, error)
}

type Handler struct {
	library Library
	baseURL string
	now     func() time.Time
}

func NewHandler(library Library, baseURL string) *Handler {
	return &Handler{
		library: library,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

type page struct {
	Title       string
	Description string
	Canonical   string
}

type indexPage struct {
	page
	Posts []blogsvc.Post
}

type postPage struct {
	page
	Post blogsvc.Post
	Body template.HTML
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, indexTemplate, indexPage{
		page: page{
			Title:       "OpenClaw Security Blog | Milo",
			Description: "Guides for installing, hardening and running OpenClaw safely.",
			Canonical:   h.baseURL + "/blog",
		},
		Posts: h.library.All(),
	})
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.library.BySlug(slug)
	if errors.Is(err, blogsvc.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("slug", slug).Msg("failed to load post")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, postTemplate, postPage{
		page: page{
			Title:       post.Title + " | Milo",
			Description: post.Description,
			Canonical:   h.baseURL + "/blog/" + post.Slug,
		},
		Post: post,
		Body: blogsvc.Render(post.Content),
	})
}

func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	out, err := h.library.Sitemap(h.baseURL, h.now())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to build sitemap")
		respond.Error(w, r, http.StatusInternalServerError, "Something went wrong. Try again.")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write(out); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write sitemap")
	}
}

// render executes into a buffer first so a template error still yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write page")
	}
}
