// Package vocab holds the word-level types shared by every lexiz component.
package vocab

import (
	"fmt"
	"strings"
)

// WordPair is a single vocabulary item as shown to the learner.
// It is direction-agnostic: SourceWord is in the source language and
// TargetWord in the target language regardless of how it is drilled.
type WordPair struct {
	SourceWord string `json:"source_word" validate:"required"`
	TargetWord string `json:"target_word" validate:"required"`

	// Context is an optional illustrative sentence.
	Context string `json:"context,omitempty"`
}

// Key returns the case-insensitive identity of the pair's source word.
// Two pairs with the same Key are duplicates within one session.
func (p WordPair) Key() string {
	return NormalizeWord(p.SourceWord)
}

// NormalizeWord folds a word for case-insensitive comparison.
func NormalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Direction selects which side of a pair the learner is prompted with.
type Direction string

const (
	SourceToTarget Direction = "source_to_target"
	TargetToSource Direction = "target_to_source"
)

// DefaultDirection is used when nothing is configured or persisted.
const DefaultDirection = SourceToTarget

// ParseDirection accepts the canonical names plus a few short aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SourceToTarget), "source-to-target", "s2t", "forward":
		return SourceToTarget, nil
	case string(TargetToSource), "target-to-source", "t2s", "reverse":
		return TargetToSource, nil
	default:
		return "", fmt.Errorf("unknown translation direction %q", s)
	}
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == SourceToTarget || d == TargetToSource
}

// Dedup drops pairs whose source word already appeared earlier in the
// slice or in seen. seen is updated in place when non-nil.
func Dedup(pairs []WordPair, seen map[string]bool) []WordPair {
	if seen == nil {
		seen = make(map[string]bool, len(pairs))
	}
	out := make([]WordPair, 0, len(pairs))
	for _, p := range pairs {
		k := p.Key()
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// SourceWords returns the source words of pairs, in order.
func SourceWords(pairs []WordPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.SourceWord
	}
	return out
}
