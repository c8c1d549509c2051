package games

import (
	"math/rand"
	"sync"
)

// typingPrompts are the five fixed round texts. A round start picks one
// uniformly at random.
var typingPrompts = []string{
	"The quick brown fox jumps over the lazy dog while the sun sets behind the distant mountains.",
	"Programming is the art of telling another human being what one wants the computer to do.",
	"A journey of a thousand miles begins with a single step, but a typing race begins with a single key.",
	"Rivers know this: there is no hurry, we shall get there some day, one keystroke at a time.",
	"Success is not final and failure is not fatal; it is the courage to continue that counts.",
}

// TypeRacer resolves typing rounds. The score rule is simple: the submitted
// words-per-minute value is always recorded on round end, normal or timeout.
type TypeRacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTypeRacer creates a resolver drawing prompts from rng.
func NewTypeRacer(rng *rand.Rand) *TypeRacer {
	return &TypeRacer{rng: rng}
}

// Prompt returns one of the fixed round texts, chosen uniformly.
func (t *TypeRacer) Prompt() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return typingPrompts[t.rng.Intn(len(typingPrompts))]
}

// Prompts returns the full prompt list.
func (t *TypeRacer) Prompts() []string {
	return typingPrompts
}
