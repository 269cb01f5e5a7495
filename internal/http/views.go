package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

// Page templates. Each is parsed together with the layout and the shared
// form partials.
const (
	pageBudget       = "budget.html"
	pageEntries      = "entries.html"
	pageEntryNew     = "entry_new.html"
	pageEntryEdit    = "entry_edit.html"
	pageCategories   = "categories.html"
	pageCategoryNew  = "category_new.html"
	pageCategoryEdit = "category_edit.html"
	pageNotFound     = "not_found.html"
	pageError        = "error.html"
)

var pages = []string{
	pageBudget, pageEntries, pageEntryNew, pageEntryEdit,
	pageCategories, pageCategoryNew, pageCategoryEdit,
	pageNotFound, pageError,
}

var sharedTemplates = []string{"layout.html", "forms.html"}

// view is the data every page receives.
type view struct {
	Title string
	Flash string
	Error string
	Data  any
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
	"months": func() []time.Month {
		out := make([]time.Month, 0, 12)
		for m := time.January; m <= time.December; m++ {
			out = append(out, m)
		}
		return out
	},
	"monthNum": func(m time.Month) int { return int(m) },
}

func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	shared := make([]string, len(sharedTemplates))
	for i, name := range sharedTemplates {
		shared[i] = path.Join("templates", name)
	}
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.Must(base.Clone()).ParseFS(fsys, path.Join("templates", page))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// render executes page into a buffer first so a template failure never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := s.templates[page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Template not loaded",
			log.FieldComponent, log.ComponentTemplate, "template", page)
		http.Error(w, "template not loaded", http.StatusInternalServerError)
		return
	}
	if v.Flash == "" && s.flash != nil {
		v.Flash = s.flash.Pop(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		log.LogError(r.Context(), s.logger, "Template execution failed", err,
			log.OpRender, log.ErrorTypeInternal, log.NewFields().WithComponent(log.ComponentTemplate))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, pageNotFound, view{Title: "Not Found"})
}

// serverError logs err and answers with the generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg, operation string, err error) {
	log.LogError(r.Context(), s.logger, msg, err, operation, log.ErrorTypeDatabase,
		log.NewFields().WithComponent(log.ComponentHTTP).WithRequestID(requestID(r)))
	s.render(w, r, http.StatusInternalServerError, pageError, view{Title: "Error"})
}

// redirectWithFlash stores message and sends a 302 to target.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, message string) {
	if err := s.flash.Set(w, message); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to set flash message",
			log.FieldComponent, log.ComponentFlash, log.FieldError, err)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// pageTitle trims long names for the <title>.
func pageTitle(prefix, name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > 40 {
		name = string(r[:40]) + "…"
	}
	return prefix + name
}
