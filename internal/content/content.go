// Package content loads markdown pages with YAML front matter from disk.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no page exists for a slug.
var ErrNotFound = errors.New("content: not found")

const (
	defaultCacheTTL = 5 * time.Minute
	summaryLimit    = 200
)

// Page is a rendered markdown page.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// Store reads pages from a directory and caches rendered results.
type Store struct {
	dir    string
	ttl    time.Duration
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewStore builds a Store over dir. A non-positive ttl disables caching.
func NewStore(dir string, ttl time.Duration) *Store {
	return &Store{
		dir:    dir,
		ttl:    ttl,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer)),
		policy: newPagePolicy(),
		cache:  map[string]cacheEntry{},
	}
}

// NewCachedStore builds a Store with the default cache lifetime.
func NewCachedStore(dir string) *Store { return NewStore(dir, defaultCacheTTL) }

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "code")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Page returns the page for slug.
func (s *Store) Page(slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	if page, ok := s.cached(slug); ok {
		return page, nil
	}
	page, err := s.read(slug)
	if err != nil {
		return Page{}, err
	}
	s.store(slug, page)
	return page, nil
}

func (s *Store) read(slug string) (Page, error) {
	file := filepath.Join(s.dir, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("content: read %s: %w", file, err)
	}

	fmRaw, body := splitFrontMatter(string(data))
	var fm frontMatter
	if strings.TrimSpace(fmRaw) != "" {
		if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", file, err)
	}
	safe := s.policy.SanitizeBytes(buf.Bytes())

	page := Page{
		Slug:      slug,
		Title:     strings.TrimSpace(fm.Title),
		Summary:   strings.TrimSpace(fm.Summary),
		Body:      template.HTML(safe), //nolint:gosec // sanitised above
		UpdatedAt: parseDate(fm.UpdatedAt),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.Summary == "" {
		page.Summary = firstParagraph(safe)
	}
	return page, nil
}

func (s *Store) cached(slug string) (Page, bool) {
	if s.ttl <= 0 {
		return Page{}, false
	}
	s.mu.RLock()
	entry, ok := s.cache[slug]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (s *Store) store(slug string, page Page) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[slug] = cacheEntry{page: page, expires: time.Now().Add(s.ttl)}
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

// firstParagraph returns the text of the first <p> in doc, truncated.
func firstParagraph(doc []byte) string {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return ""
	}
	var p *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if p != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			p = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(root)
	if p == nil {
		return ""
	}

	var b strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c)
		}
	}
	text(p)

	out := strings.Join(strings.Fields(b.String()), " ")
	if r := []rune(out); len(r) > summaryLimit {
		out = strings.TrimSpace(string(r[:summaryLimit])) + "…"
	}
	return out
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
