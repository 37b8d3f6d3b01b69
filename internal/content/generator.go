package content

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const stressSymbolSet = "{}()[]<>#$%&*@!?;:"

// GeneratorOptions tune the word generator.
type GeneratorOptions struct {
	CapsPct    float64
	PunctPct   float64
	PunctSet   []rune
	WeakSet    map[rune]struct{}
	WeakFactor float64
}

// Generator is a local content provider that assembles chunks from a word
// list, with optional capitalization, punctuation, and a bias toward the
// user's weak characters. The "stress" source layers dense symbols and
// capitalization on top.
type Generator struct {
	rnd   *rand.Rand
	words []string
	opts  GeneratorOptions
}

// NewGenerator returns a Generator over the given word list, seeded with the
// current time.
func NewGenerator(words []string, opts GeneratorOptions) *Generator {
	return &Generator{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		words: words,
		opts:  opts,
	}
}

// SetWeakSet replaces the weak-character bias between sessions.
func (g *Generator) SetWeakSet(weak map[rune]struct{}) {
	g.opts.WeakSet = weak
}

// Fetch produces one chunk of at least req.MinLength characters.
func (g *Generator) Fetch(_ context.Context, req Request) (string, error) {
	capsPct, punctPct, punctSet := g.tuning(req)
	var parts []string
	length := 0
	for length < req.minLength() {
		word := g.pickWord()
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		parts = append(parts, word)
		length += len(word) + 1
	}
	return strings.Join(parts, " "), nil
}

func (g *Generator) tuning(req Request) (capsPct, punctPct float64, punctSet []rune) {
	capsPct = g.opts.CapsPct
	punctPct = g.opts.PunctPct
	punctSet = g.opts.PunctSet
	switch req.Difficulty {
	case "easy":
		capsPct /= 2
		punctPct /= 2
	case "hard":
		capsPct = boost(capsPct)
		punctPct = boost(punctPct)
	}
	if req.Source == "stress" {
		capsPct = boost(capsPct)
		punctPct = 1
		punctSet = []rune(stressSymbolSet)
	}
	return capsPct, punctPct, punctSet
}

func (g *Generator) pickWord() string {
	weak := g.opts.WeakSet
	if len(weak) == 0 || g.opts.WeakFactor <= 0 {
		return g.words[g.rnd.Intn(len(g.words))]
	}
	// Weighted draw: words containing more weak characters are favored.
	weights := make([]float64, len(g.words))
	total := 0.0
	for i, word := range g.words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weak[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*g.opts.WeakFactor
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return g.words[i]
		}
	}
	return g.words[len(g.words)-1]
}

func boost(pct float64) float64 {
	pct *= 1.5
	if pct > 1 {
		return 1
	}
	return pct
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
