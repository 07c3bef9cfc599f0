package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rparrett/synthlang-web/internal/handlers"
	"github.com/rparrett/synthlang-web/internal/nav"
	"github.com/rparrett/synthlang-web/internal/requestctx"
	"github.com/rparrett/synthlang-web/internal/session"
)

// views holds one template set per page. Each set is the shared layouts and
// partials plus that page's file, so every page can define "content".
type views struct {
	dir string
	dev bool

	mu    sync.RWMutex
	pages map[string]*template.Template
	frags *template.Template
}

func newViews(dir string, dev bool) (*views, error) {
	v := &views{dir: dir, dev: dev}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

var funcMap = template.FuncMap{
	"now": time.Now,
	"year": func() int {
		return time.Now().Year()
	},
}

func (v *views) load() error {
	shared, err := collectTemplates(filepath.Join(v.dir, "layouts"), filepath.Join(v.dir, "partials"))
	if err != nil {
		return err
	}
	if len(shared) == 0 {
		return fmt.Errorf("no templates found under %s", v.dir)
	}
	root, err := template.New("_root").Funcs(funcMap).ParseFiles(shared...)
	if err != nil {
		return err
	}

	pageFiles, err := collectTemplates(filepath.Join(v.dir, "pages"))
	if err != nil {
		return err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(filepath.Base(file), ".tmpl")
		t, err := template.Must(root.Clone()).ParseFiles(file)
		if err != nil {
			return fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	v.mu.Lock()
	v.pages = pages
	v.frags = root
	v.mu.Unlock()
	return nil
}

// collectTemplates walks dirs for .tmpl files. ParseGlob doesn't support **.
func collectTemplates(dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	return files, nil
}

func (v *views) lookup(page string) (*template.Template, *template.Template, error) {
	if v.dev {
		if err := v.load(); err != nil {
			return nil, nil, err
		}
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pages[page], v.frags, nil
}

// renderPage executes the base layout with page's content.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	a.renderPageStatus(w, r, http.StatusOK, page, data)
}

func (a *app) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, _, err := a.views.lookup(page)
	if err == nil && t == nil {
		err = fmt.Errorf("page %q not found", page)
	}
	if err != nil {
		a.templateError(w, r, err)
		return
	}
	a.execute(w, r, status, t, "base", data)
}

// renderTemplate executes a named partial, typically an htmx fragment.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	_, t, err := a.views.lookup("")
	if err != nil {
		a.templateError(w, r, err)
		return
	}
	a.execute(w, r, http.StatusOK, t, name, data)
}

func (a *app) execute(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	// buffer so a failed execution never leaves a half-written page
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		a.templateError(w, r, fmt.Errorf("exec %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) templateError(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("template error", zap.Error(err))
	http.Error(w, "template error", http.StatusInternalServerError)
}

// renderError renders the error page, falling back to plain text.
func (a *app) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := handlers.ErrorData{
		Layout: handlers.Layout{
			Title:   http.StatusText(status),
			Path:    r.URL.Path,
			Nav:     nav.Build(r.URL.Path),
			Version: a.cfg.App.Version,
			TabID:   session.NewTabID(),
		},
		Status:  status,
		Message: msg,
	}
	a.renderPageStatus(w, r, status, "error", data)
}
