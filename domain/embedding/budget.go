package embedding

import (
	"fmt"
	"unicode/utf8"
)

// Budget caps the number of characters sent to an embedding model.
type Budget struct {
	maxChars int
}

// NewBudget creates a Budget with the given character limit.
// maxChars must be positive.
func NewBudget(maxChars int) (Budget, error) {
	if maxChars <= 0 {
		return Budget{}, fmt.Errorf("NewBudget: maxChars must be positive, got %d", maxChars)
	}
	return Budget{maxChars: maxChars}, nil
}

// DefaultBudget returns a budget of 16 000 characters (~5 300 tokens at
// ~3 chars/token), safe for 8 192-token models like text-embedding-3-small.
func DefaultBudget() Budget {
	b, _ := NewBudget(16000)
	return b
}

// MaxChars returns the character limit.
func (b Budget) MaxChars() int { return b.maxChars }

// Truncate returns text capped to the character (rune) limit, keeping the
// start of the string.
func (b Budget) Truncate(text string) string {
	if b.maxChars <= 0 || utf8.RuneCountInString(text) <= b.maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:b.maxChars])
}
