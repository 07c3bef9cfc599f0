// Package lang assembles a display-ready language profile from a seed.
package lang

import (
	"math/rand/v2"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rparrett/synthlang-web/internal/seed"
	"github.com/rparrett/synthlang-web/internal/synth"
)

// Generator builds profiles. It holds no per-profile state and is safe for
// concurrent use as long as its Factory is.
type Generator struct {
	newSynth synth.Factory
}

// NewGenerator returns a Generator backed by factory, or by the default
// synthesizer when factory is nil.
func NewGenerator(factory synth.Factory) *Generator {
	if factory == nil {
		factory = synth.NewSynthesizer
	}
	return &Generator{newSynth: factory}
}

type glossedWord struct {
	gloss string
	word  string
}

// Generate builds the profile for s. Every call constructs a brand new
// synthesizer, so two calls with the same seed agree on every field except
// MoreWords.
func (g *Generator) Generate(s seed.Seed) *Profile {
	sy := g.newSynth(uint64(s))
	pick := rand.New(rand.NewPCG(uint64(s), uint64(s)))

	samples := make([]WordSample, 0, len(SampleGlosses))
	for _, gloss := range SampleGlosses {
		samples = append(samples, WordSample{Word: sy.Word(), Gloss: gloss})
	}

	consonants := sy.Consonants()
	vowels := sy.Vowels()

	adjectives := drawGlossed(sy, AdjectiveGlosses[:])
	nouns := drawGlossed(sy, NounGlosses[:])

	places := make([]Place, 0, PlaceDraws)
	for i := 0; i < PlaceDraws; i++ {
		adj := adjectives[pick.IntN(len(adjectives))]
		noun := nouns[pick.IntN(len(nouns))]
		places = append(places, Place{
			Compound:       sy.Compound(adj.word, noun.word),
			Adjective:      adj.word,
			Noun:           noun.word,
			AdjectiveGloss: adj.gloss,
			NounGloss:      noun.gloss,
		})
	}
	places = uniquePlaces(places)
	pick.Shuffle(len(places), func(i, j int) {
		places[i], places[j] = places[j], places[i]
	})

	return &Profile{
		Name:       titleCase(sy.Word()),
		Samples:    samples,
		Consonants: consonants,
		Vowels:     vowels,
		Places:     places,
		Seed:       s,
		Weights:    sy.Weights(),
		synth:      sy,
	}
}

// A Caser must not be shared between goroutines, so each call builds its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func drawGlossed(sy synth.Synthesizer, glosses []string) []glossedWord {
	out := make([]glossedWord, 0, len(glosses))
	for _, gloss := range glosses {
		out = append(out, glossedWord{gloss: gloss, word: sy.Word()})
	}
	return out
}

// uniquePlaces sorts places by their full tuple and drops any entry whose
// compound was already seen.
func uniquePlaces(places []Place) []Place {
	slices.SortFunc(places, comparePlaces)
	return slices.CompactFunc(places, func(a, b Place) bool {
		return a.Compound == b.Compound
	})
}

func comparePlaces(a, b Place) int {
	for _, pair := range [...][2]string{
		{a.Compound, b.Compound},
		{a.Adjective, b.Adjective},
		{a.Noun, b.Noun},
		{a.AdjectiveGloss, b.AdjectiveGloss},
		{a.NounGloss, b.NounGloss},
	} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}
