package lang

import (
	"github.com/rparrett/synthlang-web/internal/seed"
	"github.com/rparrett/synthlang-web/internal/synth"
)

// WordSample pairs a generated word with its English gloss.
type WordSample struct {
	Word  string
	Gloss string
}

// Place is a toponym compounded from a generated adjective and noun.
type Place struct {
	Compound       string
	Adjective      string
	Noun           string
	AdjectiveGloss string
	NounGloss      string
}

// Profile is everything displayed for one language.
//
// A Profile owns the synthesizer that produced it. RequestMoreWords keeps
// drawing from that instance, which makes MoreWords the one field that is not
// reproducible from Seed.
type Profile struct {
	Name       string
	Samples    []WordSample
	Consonants []string
	Vowels     []string
	Places     []Place
	MoreWords  []string
	Seed       seed.Seed
	Weights    synth.Weights

	synth synth.Synthesizer
}

// RequestMoreWords draws MoreWordsBatch further words from the profile's own
// synthesizer and stores them on the profile. Repeated calls return different
// words.
func (p *Profile) RequestMoreWords() []string {
	words := make([]string, 0, MoreWordsBatch)
	for i := 0; i < MoreWordsBatch; i++ {
		words = append(words, p.synth.Word())
	}
	p.MoreWords = words
	return words
}

// CloseMoreWords returns MoreWords to the not-yet-requested state. The
// synthesizer keeps its position.
func (p *Profile) CloseMoreWords() {
	p.MoreWords = nil
}

// HasMoreWords reports whether a batch is currently shown.
func (p *Profile) HasMoreWords() bool {
	return len(p.MoreWords) > 0
}

// PermalinkPath is the URL path that reproduces this profile.
func (p *Profile) PermalinkPath(version string) string {
	return seed.PermalinkPath(version, p.Seed)
}
