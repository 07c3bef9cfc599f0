package main

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rparrett/synthlang-web/internal/config"
	"github.com/rparrett/synthlang-web/internal/content"
	"github.com/rparrett/synthlang-web/internal/lang"
	mw "github.com/rparrett/synthlang-web/internal/middleware"
	"github.com/rparrett/synthlang-web/internal/navigation"
	"github.com/rparrett/synthlang-web/internal/observability"
	"github.com/rparrett/synthlang-web/internal/seed"
	"github.com/rparrett/synthlang-web/internal/session"
)

const metricsNamespace = "synthlang"

// app wires configuration to the request handlers.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	views   *views
	content *content.Store
	tabs    *session.Store
	metrics *observability.Collector

	resolver   *seed.Resolver
	generator  *lang.Generator
	sessionKey []byte
}

type appOption func(*appDeps)

type appDeps struct {
	random seed.RandomSource
}

// withRandomSource replaces crypto randomness for fresh seeds.
func withRandomSource(src seed.RandomSource) appOption {
	return func(d *appDeps) { d.random = src }
}

func newApp(cfg config.Config, logger *zap.Logger, opts ...appOption) (*app, error) {
	var deps appDeps
	for _, opt := range opts {
		opt(&deps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v, err := newViews(cfg.Paths.Templates, cfg.App.Dev)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	key := []byte(cfg.Session.SigningKey)
	if len(key) == 0 {
		logger.Warn("using ephemeral session signing key; set SYNTHLANG_WEB_SESSION_SIGNING_KEY to keep sessions across restarts")
		key = mw.NewSigningKey()
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		views:      v,
		content:    content.NewCachedStore(cfg.Paths.Content),
		metrics:    observability.NewCollector(metricsNamespace),
		resolver:   seed.NewResolver(deps.random),
		generator:  lang.NewGenerator(nil),
		sessionKey: key,
	}
	if cfg.App.Dev {
		a.content = content.NewStore(cfg.Paths.Content, 0)
	}

	outcomeLogger := logger.Named("navigation")
	a.tabs = session.NewStore(session.Config{
		MaxTabs: cfg.Session.MaxTabs,
		TTL:     cfg.Session.TTL,
		OnEvict: a.metrics.ObserveEviction,
	}, func(initialPath string) *navigation.Machine {
		return navigation.NewMachine(a.resolver, a.generator, initialPath,
			navigation.WithObserver(a.metrics),
			navigation.WithObserver(outcomeLog(outcomeLogger)),
		)
	})
	a.metrics.TrackTabs(a.tabs.Len)
	return a, nil
}

func outcomeLog(logger *zap.Logger) navigation.Observer {
	return navigation.ObserverFunc(func(o navigation.Outcome) {
		logger.Debug("navigation outcome",
			zap.Stringer("intent", o.Intent.Kind),
			zap.String("target", o.Intent.Target),
			zap.Stringer("from", o.From),
			zap.Stringer("to", o.To),
			zap.Bool("handled", o.Handled),
			zap.Stringer("history", o.History),
			zap.Bool("regenerated", o.Regenerated),
		)
	})
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.Trace)
	r.Use(observability.InjectLogger(a.logger))
	r.Use(mw.HTMX)
	r.Use(observability.RequestLogger(a.metrics))
	r.Use(observability.Recovery(a.logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(a.cfg.Paths.Public, "assets")))

	r.Group(func(r chi.Router) {
		r.Use(mw.Session(mw.SessionConfig{
			SigningKey: a.sessionKey,
			Secure:     a.cfg.App.Production(),
		}))
		r.Use(mw.CSRF)

		r.Get("/", a.profileHandler)
		r.Get("/"+seed.PathPrefix, a.profileHandler)
		r.Get("/"+seed.PathPrefix+"/*", a.profileHandler)
		r.Get("/about", a.aboutHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireHTMX)
			r.Post("/more-words", a.moreWordsHandler)
			r.Post("/more-words/close", a.closeMoreWordsHandler)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.renderError(w, r, http.StatusNotFound, "page not found")
	})
	return r
}
