// Package navigation reconciles the displayed language with the browser URL.
//
// A Machine is either showing a random language (no seed in the visible URL)
// or a permalink (seed in the visible URL). In-app link intents are resolved
// through a four-case transition table; external URL changes always regenerate.
package navigation

import (
	"github.com/rparrett/synthlang-web/internal/lang"
	"github.com/rparrett/synthlang-web/internal/seed"
)

// State says whether the visible URL carries a seed.
type State int

const (
	Random State = iota
	Permalink
)

func (s State) String() string {
	if s == Permalink {
		return "permalink"
	}
	return "random"
}

// StateOf classifies a URL path.
func StateOf(path string) State {
	if seed.IsPermalink(path) {
		return Permalink
	}
	return Random
}

// IntentKind separates navigation that already happened from navigation the
// app is being asked to perform.
type IntentKind int

const (
	// URLChanged is an external change: address bar edit, reload, back/forward.
	URLChanged IntentKind = iota
	// LinkRequested is an in-app link click or generate request.
	LinkRequested
)

func (k IntentKind) String() string {
	if k == LinkRequested {
		return "link_requested"
	}
	return "url_changed"
}

// Intent is a transient navigation event carrying its target path.
type Intent struct {
	Kind   IntentKind
	Target string
}

// HistoryAction is what the browser history should do.
type HistoryAction int

const (
	HistoryNone HistoryAction = iota
	HistoryReplace
)

func (a HistoryAction) String() string {
	if a == HistoryReplace {
		return "replace"
	}
	return "none"
}

// Outcome describes how an intent was handled. From and To are the states of
// the visible URL before the intent and of the intent's target.
type Outcome struct {
	Intent Intent
	From   State
	To     State
	// Handled is false only when the browser should perform its default
	// navigation to Intent.Target.
	Handled        bool
	SuppressReload bool
	History        HistoryAction
	Regenerated    bool
}

// Observer is notified after every dispatched intent.
type Observer interface {
	ObserveOutcome(Outcome)
}

// ObserverFunc adapts ordinary functions to Observer.
type ObserverFunc func(Outcome)

// ObserveOutcome calls f.
func (f ObserverFunc) ObserveOutcome(o Outcome) { f(o) }

// Option customises a Machine.
type Option func(*Machine)

// WithObserver registers an observer for outcomes.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// Machine is the navigation state machine for one browser tab. It is not safe
// for concurrent use; callers serialise events.
type Machine struct {
	resolver  *seed.Resolver
	generator *lang.Generator
	observers []Observer

	state   State
	profile *lang.Profile
}

// NewMachine builds a Machine and loads the language for initialPath as an
// external URL change.
func NewMachine(resolver *seed.Resolver, generator *lang.Generator, initialPath string, opts ...Option) *Machine {
	m := &Machine{resolver: resolver, generator: generator}
	for _, opt := range opts {
		opt(m)
	}
	m.Dispatch(Intent{Kind: URLChanged, Target: initialPath})
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Profile returns the profile currently shown.
func (m *Machine) Profile() *lang.Profile { return m.profile }

// Dispatch processes one intent to completion.
func (m *Machine) Dispatch(in Intent) Outcome {
	var out Outcome
	if in.Kind == URLChanged {
		out = m.urlChanged(in)
	} else {
		out = m.linkRequested(in)
	}
	for _, o := range m.observers {
		o.ObserveOutcome(out)
	}
	return out
}

func (m *Machine) urlChanged(in Intent) Outcome {
	from := m.state
	m.state = StateOf(in.Target)
	m.regenerate(in.Target)
	return Outcome{
		Intent:      in,
		From:        from,
		To:          m.state,
		Handled:     true,
		History:     HistoryNone,
		Regenerated: true,
	}
}

func (m *Machine) linkRequested(in Intent) Outcome {
	from := m.state
	to := StateOf(in.Target)
	out := Outcome{Intent: in, From: from, To: to}

	switch {
	case from == Random && to == Permalink:
		out.Handled = true
		out.History = HistoryReplace
		out.Regenerated = m.syncPermalink(in.Target)
	case from == Random && to == Random:
		out.Handled = true
		out.SuppressReload = true
		out.History = HistoryReplace
		m.regenerate(in.Target)
		out.Regenerated = true
	case from == Permalink && to == Permalink:
		out.Handled = true
		out.SuppressReload = true
		out.History = HistoryReplace
		out.Regenerated = m.syncPermalink(in.Target)
	default:
		// Permalink to Random falls through to default browser navigation; the
		// resulting load arrives later as a URLChanged intent.
		return out
	}
	m.state = to
	return out
}

// syncPermalink regenerates only when the permalink names a seed other than
// the one on screen. In-app links always point at the current seed.
func (m *Machine) syncPermalink(path string) bool {
	s, _ := seed.Parse(seed.Segments(path))
	if m.profile != nil && m.profile.Seed == s {
		return false
	}
	m.profile = m.generator.Generate(s)
	return true
}

func (m *Machine) regenerate(path string) {
	m.profile = m.generator.Generate(m.resolver.ResolvePath(path))
}

// RequestMoreWords draws a batch of extra words from the current profile.
func (m *Machine) RequestMoreWords() []string {
	return m.profile.RequestMoreWords()
}

// CloseMoreWords hides the extra words.
func (m *Machine) CloseMoreWords() {
	m.profile.CloseMoreWords()
}
