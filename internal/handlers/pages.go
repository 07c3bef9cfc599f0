package handlers

import (
	"github.com/rparrett/synthlang-web/internal/content"
	"github.com/rparrett/synthlang-web/internal/nav"
)

// PageData is the view model for a markdown page.
type PageData struct {
	Layout
	Page content.Page
}

// BuildPageData wraps a content page for rendering.
func BuildPageData(page content.Page, path, version, csrf string) PageData {
	return PageData{
		Layout: Layout{
			Title:     page.Title,
			Path:      path,
			Nav:       nav.Build(path),
			CSRFToken: csrf,
			Version:   version,
		},
		Page: page,
	}
}

// ErrorData is the view model for error pages.
type ErrorData struct {
	Layout
	Status  int
	Message string
}
