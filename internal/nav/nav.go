// Package nav builds the site navigation view model.
package nav

import (
	"strings"

	"github.com/rparrett/synthlang-web/internal/seed"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string
	Label string
	// InApp items are followed by htmx and go through the navigation machine.
	InApp bool
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	InApp  bool
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", Label: "New language", InApp: true},
	{Path: "/about", Label: "About"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			InApp:  it.InApp,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		// every language page, random or permalinked, lives under the root item
		return currentPath == "/" || currentPath == "/"+seed.PathPrefix ||
			strings.HasPrefix(currentPath, "/"+seed.PathPrefix+"/")
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}
