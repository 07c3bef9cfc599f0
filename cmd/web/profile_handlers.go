package main

import (
	"context"
	"net/http"
	"net/url"
	"path"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rparrett/synthlang-web/internal/handlers"
	mw "github.com/rparrett/synthlang-web/internal/middleware"
	"github.com/rparrett/synthlang-web/internal/navigation"
	"github.com/rparrett/synthlang-web/internal/observability"
	"github.com/rparrett/synthlang-web/internal/seed"
	"github.com/rparrett/synthlang-web/internal/session"
)

// tabHeader carries the tab id minted on each full page load.
const tabHeader = "X-Tab-ID"

// profileHandler serves every language URL. In-app htmx links run through the
// navigation machine of the requesting tab; anything else is an external URL
// change and loads a fresh tab.
func (a *app) profileHandler(w http.ResponseWriter, r *http.Request) {
	target := cleanPath(r.URL.Path)
	info := mw.HTMXInfoFromContext(r.Context())
	if !info.InAppNavigation() {
		a.loadPage(w, r, target)
		return
	}

	sess := mw.GetSession(r)
	tabID := r.Header.Get(tabHeader)
	tab, _ := a.tabs.GetOrCreate(session.Key(sess.ID, tabID), currentPath(info))

	var (
		out  navigation.Outcome
		data handlers.ProfileData
	)
	tab.Do(func(m *navigation.Machine) {
		out = a.dispatch(r.Context(), m, navigation.Intent{Kind: navigation.LinkRequested, Target: target})
		if out.Handled {
			data = handlers.BuildProfileData(m.Profile(), target, a.cfg.App.Version, sess.CSRFToken)
		}
	})

	if !out.Handled {
		// the browser performs the navigation; it arrives back here as a full load
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	data.TabID = tabID
	if out.History == navigation.HistoryReplace {
		w.Header().Set("HX-Replace-Url", target)
	}
	a.renderTemplate(w, r, "frag_profile", data)
}

// loadPage handles an external URL change with a brand new tab. A new
// machine starts by dispatching the URL change, which always regenerates.
func (a *app) loadPage(w http.ResponseWriter, r *http.Request, target string) {
	sess := mw.GetSession(r)
	tabID := session.NewTabID()

	_, span := observability.Tracer().Start(r.Context(), "navigation.url_changed")
	tab := a.tabs.Create(session.Key(sess.ID, tabID), target)
	var data handlers.ProfileData
	tab.Do(func(m *navigation.Machine) {
		p := m.Profile()
		span.SetAttributes(
			attribute.String("navigation.state", m.State().String()),
			attribute.String("language.seed", p.Seed.String()),
		)
		data = handlers.BuildProfileData(p, target, a.cfg.App.Version, sess.CSRFToken)
	})
	span.End()

	data.TabID = tabID
	a.renderPage(w, r, "profile", data)
}

func (a *app) dispatch(ctx context.Context, m *navigation.Machine, in navigation.Intent) navigation.Outcome {
	_, span := observability.Tracer().Start(ctx, "navigation."+in.Kind.String(),
		trace.WithAttributes(attribute.String("navigation.target", in.Target)))
	defer span.End()

	out := m.Dispatch(in)
	span.SetAttributes(
		attribute.String("navigation.from", out.From.String()),
		attribute.String("navigation.to", out.To.String()),
		attribute.Bool("navigation.handled", out.Handled),
		attribute.Bool("navigation.regenerated", out.Regenerated),
		attribute.String("language.seed", m.Profile().Seed.String()),
	)
	return out
}

// moreWordsHandler draws a batch of extra words for the tab's language.
func (a *app) moreWordsHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	key := session.Key(sess.ID, r.Header.Get(tabHeader))
	current := currentPath(mw.HTMXInfoFromContext(r.Context()))

	tab, ok := a.tabs.Get(key)
	if !ok {
		// the language on screen is only known to the page itself
		initial := current
		if !seed.IsPermalink(initial) {
			initial = cleanPath(r.PostFormValue("permalink"))
		}
		if !seed.IsPermalink(initial) {
			// nothing identifies the shown language; reload rather than
			// list words from another one
			w.Header().Set("HX-Refresh", "true")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		tab = a.tabs.Create(key, initial)
		if initial != current {
			// the rebuilt tab holds a permalink state; keep the URL in step
			w.Header().Set("HX-Replace-Url", initial)
		}
	}

	var data handlers.MoreWordsData
	tab.Do(func(m *navigation.Machine) {
		m.RequestMoreWords()
		data = handlers.BuildMoreWordsData(m.Profile(), a.cfg.App.Version, sess.CSRFToken)
	})
	a.metrics.ObserveMoreWords()
	a.renderTemplate(w, r, "frag_more_words", data)
}

// closeMoreWordsHandler hides the extra words and empties the modal.
func (a *app) closeMoreWordsHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	if tab, ok := a.tabs.Get(session.Key(sess.ID, r.Header.Get(tabHeader))); ok {
		tab.Do(func(m *navigation.Machine) { m.CloseMoreWords() })
	}
	w.WriteHeader(http.StatusOK)
}

// currentPath is the path the browser shows, from HX-Current-URL.
func currentPath(info mw.HTMXInfo) string {
	u, err := url.Parse(info.CurrentURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return cleanPath(u.Path)
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}
