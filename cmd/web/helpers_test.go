package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rparrett/synthlang-web/internal/config"
	"github.com/rparrett/synthlang-web/internal/seed"
)

const testVersion = "0.3.0"

// sequentialSeeds hands out 100, 200, 300, ... as fresh seeds.
func sequentialSeeds() seed.RandomSource {
	n := uint64(0)
	return seed.RandomSourceFunc(func() uint64 {
		n += 100
		return n
	})
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.Load(context.Background(),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
		config.WithEnvMap(map[string]string{
			"SYNTHLANG_WEB_TEMPLATES_DIR":       "../../templates",
			"SYNTHLANG_WEB_PUBLIC_DIR":          "../../public",
			"SYNTHLANG_WEB_CONTENT_DIR":         "../../content",
			"SYNTHLANG_WEB_SESSION_SIGNING_KEY": "test-signing-key",
			"SYNTHLANG_WEB_VERSION":             testVersion,
		}),
	)
	require.NoError(t, err)
	a, err := newApp(cfg, zaptest.NewLogger(t), withRandomSource(sequentialSeeds()))
	require.NoError(t, err)
	return a
}

// browser keeps cookies and the per-page headers htmx would send.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
	current string
	headers map[string]string
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// load is an address bar navigation or reload.
func (b *browser) load(path string) (*httptest.ResponseRecorder, *goquery.Document) {
	b.t.Helper()
	rec := b.do(httptest.NewRequest(http.MethodGet, path, nil))
	doc := parseHTML(b.t, rec.Body.String())
	b.current = path
	if raw, ok := doc.Find("#app").Attr("hx-headers"); ok {
		b.headers = map[string]string{}
		require.NoError(b.t, json.Unmarshal([]byte(raw), &b.headers))
	}
	return rec, doc
}

func (b *browser) htmxRequest(method, path string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://example.com"+b.current)
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	return req
}

// click follows an in-app htmx link and applies HX-Replace-Url.
func (b *browser) click(path string) (*httptest.ResponseRecorder, *goquery.Document) {
	b.t.Helper()
	rec := b.do(b.htmxRequest(http.MethodGet, path, nil))
	if u := rec.Header().Get("HX-Replace-Url"); u != "" {
		b.current = u
	}
	return rec, parseHTML(b.t, rec.Body.String())
}

func (b *browser) post(path string, form url.Values) (*httptest.ResponseRecorder, *goquery.Document) {
	b.t.Helper()
	rec := b.do(b.htmxRequest(http.MethodPost, path, form))
	if u := rec.Header().Get("HX-Replace-Url"); u != "" {
		b.current = u
	}
	return rec, parseHTML(b.t, rec.Body.String())
}

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
