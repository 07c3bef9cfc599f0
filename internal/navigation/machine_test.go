package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rparrett/synthlang-web/internal/lang"
	"github.com/rparrett/synthlang-web/internal/seed"
)

const version = "0.3.0"

type recorder struct {
	outcomes []Outcome
}

func (r *recorder) ObserveOutcome(o Outcome) { r.outcomes = append(r.outcomes, o) }

func newMachine(t *testing.T, initial string, fresh ...uint64) (*Machine, *recorder) {
	t.Helper()
	if len(fresh) == 0 {
		fresh = []uint64{100, 200, 300, 400}
	}
	i := 0
	src := seed.RandomSourceFunc(func() uint64 {
		v := fresh[i%len(fresh)]
		i++
		return v
	})
	rec := &recorder{}
	m := NewMachine(seed.NewResolver(src), lang.NewGenerator(nil), initial, WithObserver(rec))
	return m, rec
}

func TestInitialLoadRandom(t *testing.T) {
	m, rec := newMachine(t, "/")
	assert.Equal(t, Random, m.State())
	require.NotNil(t, m.Profile())
	assert.Equal(t, seed.Seed(100), m.Profile().Seed)
	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, URLChanged, rec.outcomes[0].Intent.Kind)
	assert.True(t, rec.outcomes[0].Regenerated)
}

func TestInitialLoadPermalink(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	assert.Equal(t, Permalink, m.State())
	assert.Equal(t, seed.Seed(0x2a), m.Profile().Seed)
}

func TestRandomToPermalinkReplacesWithoutRegenerating(t *testing.T) {
	m, _ := newMachine(t, "/")
	before := m.Profile()

	out := m.Dispatch(Intent{Kind: LinkRequested, Target: before.PermalinkPath(version)})

	assert.True(t, out.Handled)
	assert.False(t, out.SuppressReload)
	assert.Equal(t, HistoryReplace, out.History)
	assert.False(t, out.Regenerated)
	assert.Same(t, before, m.Profile())
	assert.Equal(t, Permalink, m.State())
}

func TestRandomToRandomRegenerates(t *testing.T) {
	m, _ := newMachine(t, "/")
	before := m.Profile()

	out := m.Dispatch(Intent{Kind: LinkRequested, Target: "/"})

	assert.True(t, out.Handled)
	assert.True(t, out.SuppressReload)
	assert.Equal(t, HistoryReplace, out.History)
	assert.True(t, out.Regenerated)
	assert.NotSame(t, before, m.Profile())
	assert.Equal(t, seed.Seed(200), m.Profile().Seed)
	assert.Equal(t, Random, m.State())
}

func TestPermalinkToPermalinkReplacesWithoutRegenerating(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	before := m.Profile()

	out := m.Dispatch(Intent{Kind: LinkRequested, Target: before.PermalinkPath(version)})

	assert.True(t, out.Handled)
	assert.True(t, out.SuppressReload)
	assert.Equal(t, HistoryReplace, out.History)
	assert.False(t, out.Regenerated)
	assert.Same(t, before, m.Profile())
	assert.Equal(t, Permalink, m.State())
}

func TestPermalinkToRandomFallsThrough(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	before := m.Profile()

	out := m.Dispatch(Intent{Kind: LinkRequested, Target: "/"})

	assert.False(t, out.Handled)
	assert.False(t, out.SuppressReload)
	assert.Equal(t, HistoryNone, out.History)
	assert.False(t, out.Regenerated)
	assert.Equal(t, Permalink, out.From)
	assert.Equal(t, Random, out.To)
	assert.Same(t, before, m.Profile())
	assert.Equal(t, Permalink, m.State())
}

func TestDefaultNavigationArrivesAsURLChange(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	m.Dispatch(Intent{Kind: LinkRequested, Target: "/"})

	out := m.Dispatch(Intent{Kind: URLChanged, Target: "/"})

	assert.True(t, out.Regenerated)
	assert.Equal(t, HistoryNone, out.History)
	assert.Equal(t, Random, m.State())
	assert.Equal(t, seed.Seed(100), m.Profile().Seed)
}

func TestURLChangeAlwaysRegenerates(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	before := m.Profile()

	out := m.Dispatch(Intent{Kind: URLChanged, Target: "/seed/v1/2a"})

	assert.True(t, out.Regenerated)
	assert.NotSame(t, before, m.Profile())
	assert.Equal(t, before.Samples, m.Profile().Samples)
	assert.Equal(t, before.Name, m.Profile().Name)
}

func TestURLChangeWithMalformedSeedIsRandom(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")

	m.Dispatch(Intent{Kind: URLChanged, Target: "/seed/v1/zz"})

	assert.Equal(t, Random, m.State())
	assert.Equal(t, seed.Seed(100), m.Profile().Seed)
}

func TestForeignPermalinkLinkSyncsContent(t *testing.T) {
	m, _ := newMachine(t, "/")

	out := m.Dispatch(Intent{Kind: LinkRequested, Target: "/seed/v1/ff"})

	assert.True(t, out.Regenerated)
	assert.Equal(t, seed.Seed(0xff), m.Profile().Seed)
	assert.Equal(t, Permalink, m.State())
}

func TestMoreWordsOnCurrentProfile(t *testing.T) {
	m, _ := newMachine(t, "/seed/v1/2a")
	words := m.RequestMoreWords()
	require.Len(t, words, lang.MoreWordsBatch)
	assert.Equal(t, words, m.Profile().MoreWords)

	m.CloseMoreWords()
	assert.Empty(t, m.Profile().MoreWords)

	m.Dispatch(Intent{Kind: URLChanged, Target: "/seed/v1/2a"})
	assert.Empty(t, m.Profile().MoreWords)
}

func TestObserverSeesEveryIntent(t *testing.T) {
	m, rec := newMachine(t, "/")
	m.Dispatch(Intent{Kind: LinkRequested, Target: "/"})
	m.Dispatch(Intent{Kind: LinkRequested, Target: m.Profile().PermalinkPath(version)})
	m.Dispatch(Intent{Kind: LinkRequested, Target: "/"})

	require.Len(t, rec.outcomes, 4)
	assert.Equal(t, []bool{true, true, true, false}, []bool{
		rec.outcomes[0].Handled,
		rec.outcomes[1].Handled,
		rec.outcomes[2].Handled,
		rec.outcomes[3].Handled,
	})
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Random, StateOf("/"))
	assert.Equal(t, Random, StateOf("/seed"))
	assert.Equal(t, Random, StateOf("/seed/v1/zz"))
	assert.Equal(t, Permalink, StateOf("/seed/v1/2a"))
}
