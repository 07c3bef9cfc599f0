package synth

const (
	minConsonants = 8
	maxConsonants = 14
	minVowels     = 4
	maxVowels     = 7
	maxWeight     = 10
	maxSyllables  = 3
)

const vowelLetters = "aeiouy"

var masterConsonants = []string{
	"p", "t", "k", "b", "d", "g",
	"m", "n", "s", "z", "f", "v",
	"l", "r", "h", "w", "j",
	"sh", "ch", "th", "ng", "kh",
}

var masterVowels = []string{
	"a", "e", "i", "o", "u",
	"ae", "ai", "au", "ei", "oi", "ou",
}
