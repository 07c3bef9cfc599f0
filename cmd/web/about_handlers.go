package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rparrett/synthlang-web/internal/content"
	"github.com/rparrett/synthlang-web/internal/handlers"
	mw "github.com/rparrett/synthlang-web/internal/middleware"
	"github.com/rparrett/synthlang-web/internal/requestctx"
	"github.com/rparrett/synthlang-web/internal/session"
)

const aboutSlug = "about"

// aboutHandler renders the markdown about page.
func (a *app) aboutHandler(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.Page(aboutSlug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			a.renderError(w, r, http.StatusNotFound, "page not found")
			return
		}
		requestctx.Logger(r.Context()).Error("load content", zap.String("slug", aboutSlug), zap.Error(err))
		a.renderError(w, r, http.StatusInternalServerError, "could not load page")
		return
	}

	data := handlers.BuildPageData(page, r.URL.Path, a.cfg.App.Version, mw.GetSession(r).CSRFToken)
	data.TabID = session.NewTabID()
	a.renderPage(w, r, "about", data)
}
