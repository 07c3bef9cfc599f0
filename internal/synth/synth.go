// Package synth defines the word synthesizer capability and ships a default
// seeded implementation.
package synth

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Synthesizer produces words for one language. Word advances internal state;
// every other method is static for the lifetime of the instance.
type Synthesizer interface {
	Word() string
	Compound(a, b string) string
	Consonants() []string
	Vowels() []string
	Weights() Weights
}

// Factory constructs a fresh Synthesizer bound to seed.
type Factory func(seed uint64) Synthesizer

// Weights biases the syllable shapes a language prefers.
type Weights struct {
	VC  int
	CV  int
	CVC int
}

func (w Weights) total() int { return w.VC + w.CV + w.CVC }

// streamSalt keeps the synthesizer stream apart from any other PCG stream
// seeded with the same value.
const streamSalt = 0x73796e74686c616e

// Lang is the default Synthesizer. It is not safe for concurrent use.
type Lang struct {
	rng        *rand.Rand
	consonants []string
	vowels     []string
	weights    Weights
}

// New builds a Lang whose inventory, weights, and word stream are all derived
// from seed.
func New(seed uint64) *Lang {
	rng := rand.New(rand.NewPCG(seed^streamSalt, seed))
	l := &Lang{rng: rng}
	l.consonants = pickOrdered(rng, masterConsonants, minConsonants, maxConsonants)
	l.vowels = pickOrdered(rng, masterVowels, minVowels, maxVowels)
	l.weights = Weights{
		VC:  1 + rng.IntN(maxWeight),
		CV:  1 + rng.IntN(maxWeight),
		CVC: 1 + rng.IntN(maxWeight),
	}
	return l
}

// NewSynthesizer is a Factory over New.
func NewSynthesizer(seed uint64) Synthesizer { return New(seed) }

// Consonants returns a copy of the consonant inventory.
func (l *Lang) Consonants() []string { return append([]string(nil), l.consonants...) }

// Vowels returns a copy of the vowel inventory.
func (l *Lang) Vowels() []string { return append([]string(nil), l.vowels...) }

// Weights returns the syllable shape weights.
func (l *Lang) Weights() Weights { return l.weights }

// Word draws the next word from the stream.
func (l *Lang) Word() string {
	n := 1 + l.rng.IntN(maxSyllables)
	var b strings.Builder
	for i := 0; i < n; i++ {
		l.syllable(&b)
	}
	return b.String()
}

func (l *Lang) syllable(b *strings.Builder) {
	switch l.shape() {
	case shapeVC:
		b.WriteString(l.vowel())
		b.WriteString(l.consonant())
	case shapeCV:
		b.WriteString(l.consonant())
		b.WriteString(l.vowel())
	default:
		b.WriteString(l.consonant())
		b.WriteString(l.vowel())
		b.WriteString(l.consonant())
	}
}

type shape int

const (
	shapeVC shape = iota
	shapeCV
	shapeCVC
)

func (l *Lang) shape() shape {
	roll := l.rng.IntN(l.weights.total())
	if roll < l.weights.VC {
		return shapeVC
	}
	if roll < l.weights.VC+l.weights.CV {
		return shapeCV
	}
	return shapeCVC
}

func (l *Lang) consonant() string { return l.consonants[l.rng.IntN(len(l.consonants))] }

func (l *Lang) vowel() string { return l.vowels[l.rng.IntN(len(l.vowels))] }

// Compound joins a and b into one word. It does not touch the word stream, so
// equal inputs always give the same compound for an instance.
func (l *Lang) Compound(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	last, _ := utf8.DecodeLastRuneInString(a)
	first, size := utf8.DecodeRuneInString(b)
	switch {
	case last == first:
		return a + b[size:]
	case isVowel(last) && isVowel(first):
		return a + l.linker(a, b) + b
	default:
		return a + b
	}
}

func (l *Lang) linker(a, b string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(a))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(b))
	return l.consonants[int(h.Sum32()%uint32(len(l.consonants)))]
}

func isVowel(r rune) bool {
	return strings.ContainsRune(vowelLetters, r)
}

// pickOrdered keeps between lo and hi entries of master, preserving order.
func pickOrdered(rng *rand.Rand, master []string, lo, hi int) []string {
	n := lo + rng.IntN(hi-lo+1)
	keep := rng.Perm(len(master))[:n]
	mask := make([]bool, len(master))
	for _, i := range keep {
		mask[i] = true
	}
	out := make([]string, 0, n)
	for i, s := range master {
		if mask[i] {
			out = append(out, s)
		}
	}
	return out
}
