package lang

// The tables below are ordered configuration. Words are drawn from the
// synthesizer in table order, so reordering any of them changes every word
// generated after the first moved entry.

// SampleGlosses are the English meanings of the sample vocabulary.
var SampleGlosses = [...]string{
	"child",
	"horse",
	"soldier",
	"pig",
	"table",
	"cow",
	"pants",
	"torch",
	"scroll",
	"priest",
	"hat",
	"throne",
	"dream",
	"cheese",
	"sword",
	"son",
	"shopkeeper",
	"tunic",
	"daughter",
	"queen",
}

// AdjectiveGlosses describe the first half of a place name.
var AdjectiveGlosses = [...]string{
	"red",
	"orange",
	"yellow",
	"green",
	"blue",
	"purple",
	"black",
	"white",
	"brown",
	"grey",
	"great",
	"old",
	"serene",
	"frigid",
	"scorching",
}

// NounGlosses describe the second half of a place name.
var NounGlosses = [...]string{
	"river",
	"island",
	"harbor",
	"mountain",
	"plains",
	"hills",
	"woods",
	"cove",
	"swamp",
	"marsh",
	"lake",
}

const (
	// PlaceDraws is how many adjective/noun pairs are drawn before deduplication.
	PlaceDraws = 13
	// MoreWordsBatch is the size of one request-more-words draw.
	MoreWordsBatch = 40
)
