package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rparrett/synthlang-web/internal/lang"
	mw "github.com/rparrett/synthlang-web/internal/middleware"
)

func TestHealthzOK(t *testing.T) {
	h := newTestApp(t).router()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestRandomLoadRendersProfile(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	rec, doc := b.load("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotNil(t, b.cookies[mw.SessionCookieName])
	assert.NotNil(t, b.cookies[mw.CSRFCookieName])
	assert.NotEmpty(t, b.headers["X-Tab-ID"])
	assert.Equal(t, b.cookies[mw.CSRFCookieName].Value, b.headers["X-CSRF-Token"])

	m := doc.Find("#main")
	assert.Equal(t, "64", m.AttrOr("data-seed", ""))
	assert.NotEmpty(t, strings.TrimSpace(m.Find(".lang-name").Text()))
	assert.Equal(t, lang.SampleGlosses[:], texts(m.Find("tr.sample .gloss")))
	assert.Equal(t, 2, m.Find("#samples .column").Length())
	places := m.Find("tr.place").Length()
	assert.Greater(t, places, 0)
	assert.LessOrEqual(t, places, lang.PlaceDraws)
	assert.Equal(t, 3, m.Find("tr.weight").Length())
	assert.Equal(t, "/seed/0.3.0/64", m.Find("#permalink").AttrOr("href", ""))
	assert.Equal(t, "/", doc.Find("#nav a.active").AttrOr("href", ""))
}

func TestPermalinkLoadIsReproducible(t *testing.T) {
	h := newTestApp(t).router()
	_, first := newBrowser(t, h).load("/seed/0.3.0/2a")
	_, second := newBrowser(t, h).load("/seed/0.3.0/2a")

	assert.Equal(t, "2a", first.Find("#main").AttrOr("data-seed", ""))
	assert.Equal(t, first.Find(".lang-name").Text(), second.Find(".lang-name").Text())
	assert.Equal(t, texts(first.Find(".word")), texts(second.Find(".word")))
	assert.Equal(t, texts(first.Find(".place-name")), texts(second.Find(".place-name")))
}

func TestMalformedSeedFallsBackToRandom(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	for _, p := range []string{"/seed/0.3.0/zz", "/seed", "/seed/0.3.0"} {
		_, doc := b.load(p)
		assert.NotEmpty(t, doc.Find("#main").AttrOr("data-seed", ""), "path %s", p)
	}
	_, doc := b.load("/seed/0.3.0/zz")
	assert.Equal(t, "190", doc.Find("#main").AttrOr("data-seed", ""))
}

func TestRandomToPermalinkReplacesURLWithoutRegenerating(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	_, page := b.load("/")
	permalink := page.Find("#permalink").AttrOr("href", "")

	rec, frag := b.click(permalink)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, permalink, rec.Header().Get("HX-Replace-Url"))
	assert.Empty(t, rec.Header().Get("HX-Redirect"))
	assert.Equal(t, "64", frag.Find("#main").AttrOr("data-seed", ""))
	assert.Equal(t, texts(page.Find(".word")), texts(frag.Find(".word")))
	assert.Equal(t, "true", frag.Find("#nav").AttrOr("hx-swap-oob", ""))
	assert.Zero(t, frag.Find("#app").Length())
}

func TestRandomToRandomRegeneratesInPlace(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")

	rec, frag := b.click("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Replace-Url"))
	assert.Equal(t, "c8", frag.Find("#main").AttrOr("data-seed", ""))
}

func TestPermalinkToPermalinkKeepsContent(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	_, page := b.load("/seed/0.3.0/2a")

	rec, frag := b.click("/seed/0.3.0/2a")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/seed/0.3.0/2a", rec.Header().Get("HX-Replace-Url"))
	assert.Equal(t, "2a", frag.Find("#main").AttrOr("data-seed", ""))
	assert.Equal(t, texts(page.Find(".word")), texts(frag.Find(".word")))
}

func TestPermalinkToRandomFallsThroughToBrowser(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/seed/0.3.0/2a")

	rec, _ := b.click("/")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	assert.Empty(t, rec.Header().Get("HX-Replace-Url"))

	// the browser then loads "/" normally
	_, doc := b.load("/")
	assert.Equal(t, "64", doc.Find("#main").AttrOr("data-seed", ""))
}

func TestRandomToPermalinkThenBackToRandom(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	_, page := b.load("/")
	b.click(page.Find("#permalink").AttrOr("href", ""))

	rec, _ := b.click("/")

	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
}

func TestHistoryRestoreIsExternalChange(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")

	req := b.htmxRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-History-Restore-Request", "true")
	rec := b.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	assert.Equal(t, 1, doc.Find("#app").Length())
	assert.Equal(t, "c8", doc.Find("#main").AttrOr("data-seed", ""))
	assert.Empty(t, rec.Header().Get("HX-Replace-Url"))
}

func TestUnknownTabIsRecreatedFromCurrentURL(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/seed/0.3.0/2a")
	b.headers["X-Tab-ID"] = "evicted"

	rec, frag := b.click("/seed/0.3.0/2a")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/seed/0.3.0/2a", rec.Header().Get("HX-Replace-Url"))
	assert.Equal(t, "2a", frag.Find("#main").AttrOr("data-seed", ""))
}

func TestMoreWords(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/seed/0.3.0/2a")

	rec, doc := b.post("/more-words", url.Values{"permalink": {"/seed/0.3.0/2a"}})
	require.Equal(t, http.StatusOK, rec.Code)
	first := texts(doc.Find(".word-list li"))
	assert.Len(t, first, lang.MoreWordsBatch)
	assert.Empty(t, rec.Header().Get("HX-Replace-Url"))

	_, doc = b.post("/more-words", nil)
	second := texts(doc.Find(".word-list li"))
	assert.Len(t, second, lang.MoreWordsBatch)
	assert.NotEqual(t, first, second)

	rec, _ = b.post("/more-words/close", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, strings.TrimSpace(rec.Body.String()))

	// the language itself is untouched
	_, frag := b.click("/seed/0.3.0/2a")
	assert.Equal(t, "2a", frag.Find("#main").AttrOr("data-seed", ""))
}

func TestMoreWordsRecreatesTabFromPostedPermalink(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")
	b.headers["X-Tab-ID"] = "evicted"

	rec, doc := b.post("/more-words", url.Values{"permalink": {"/seed/0.3.0/64"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/seed/0.3.0/64", rec.Header().Get("HX-Replace-Url"))
	assert.Len(t, doc.Find(".word-list li").Nodes, lang.MoreWordsBatch)
}

func TestMoreWordsAgainKeepsShownLanguageAfterEviction(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	_, page := b.load("/")
	shown := strings.TrimSpace(page.Find(".lang-name").First().Text())
	permalink := page.Find("#permalink").AttrOr("href", "")

	_, modal := b.post("/more-words", url.Values{"permalink": {permalink}})
	var vals map[string]string
	require.NoError(t, json.Unmarshal([]byte(modal.Find("#more-words-again").AttrOr("hx-vals", "")), &vals))
	assert.Equal(t, permalink, vals["permalink"])

	b.headers["X-Tab-ID"] = "evicted"
	rec, modal := b.post("/more-words", url.Values{"permalink": {vals["permalink"]}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, permalink, rec.Header().Get("HX-Replace-Url"))
	assert.Equal(t, "More words in "+shown, strings.TrimSpace(modal.Find(".modal-title").Text()))
	assert.Len(t, modal.Find(".word-list li").Nodes, lang.MoreWordsBatch)
}

func TestMoreWordsOnUnknownRandomTabRefreshes(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")
	b.headers["X-Tab-ID"] = "evicted"

	rec, _ := b.post("/more-words", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	assert.Empty(t, rec.Header().Get("HX-Replace-Url"))
	assert.Empty(t, strings.TrimSpace(rec.Body.String()))
}

func TestMoreWordsRequiresCSRF(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")
	delete(b.headers, "X-CSRF-Token")

	rec, _ := b.post("/more-words", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMoreWordsRequiresHTMX(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/")

	req := httptest.NewRequest(http.MethodPost, "/more-words", nil)
	req.Header.Set(mw.CSRFHeaderName, b.headers["X-CSRF-Token"])
	rec := b.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAboutPage(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	rec, doc := b.load("/about")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "About synthlang", strings.TrimSpace(doc.Find("article h1").Text()))
	assert.Greater(t, doc.Find(".page-body li").Length(), 0)
	assert.Equal(t, "/about", doc.Find("#nav a.active").AttrOr("href", ""))
	assert.NotEmpty(t, doc.Find(`meta[name="description"]`).AttrOr("content", ""))
}

func TestGenerateFromAboutPageSwapsInLanguage(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	b.load("/about")

	rec, frag := b.click("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Replace-Url"))
	assert.NotEmpty(t, frag.Find("#main").AttrOr("data-seed", ""))
	assert.Equal(t, "/", frag.Find("#nav a.active").AttrOr("href", ""))
}

func TestNotFound(t *testing.T) {
	b := newBrowser(t, newTestApp(t).router())
	rec, doc := b.load("/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404", strings.TrimSpace(doc.Find(".error h1").Text()))
}

func TestAssetsServed(t *testing.T) {
	h := newTestApp(t).router()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestMetricsExposeNavigation(t *testing.T) {
	a := newTestApp(t)
	h := a.router()
	b := newBrowser(t, h)
	b.load("/")
	b.click("/")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `synthlang_profiles_generated_total{cause="url_changed"} 1`)
	assert.Contains(t, out, `synthlang_profiles_generated_total{cause="link_requested"} 1`)
	assert.Contains(t, out, `synthlang_navigation_transitions_total{action="replace",from="random",kind="link_requested",to="random"} 1`)
	assert.Contains(t, out, "synthlang_tabs_live 1")
	assert.Contains(t, out, "synthlang_http_requests_total")
}
