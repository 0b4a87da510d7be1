package wordgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/lexiz/internal/vocab"
)

const systemPrompt = `You are a language tutor building vocabulary lists for a learner.

Rules:
- Produce common, useful words and short expressions that fit the topic.
- source_word is in the source language, target_word is its most natural translation in the target language.
- Give each word a short example sentence in the source language as context.
- Never return a word from the "do not use" list, and never return the same source word twice.
- Words should fit alongside the words the learner is already reviewing, without repeating them.
- Return exactly the number of words asked for.`

// buildUserMessage constructs the user message for req.
func buildUserMessage(req Request, ask int, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Source language: %s\n", cfg.SourceLanguage)
	fmt.Fprintf(&b, "Target language: %s\n", cfg.TargetLanguage)
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Drill direction: %s\n", directionLabel(req.Direction, cfg))
	fmt.Fprintf(&b, "Number of words: %d\n", ask)

	b.WriteString("\nAlready reviewing in this session:\n")
	b.WriteString(buildContext(req.ContextWords))

	b.WriteString("\n\nDo not use:\n")
	b.WriteString(buildExcluded(req.Exclude, cfg.MaxExcluded))

	return b.String()
}

func directionLabel(d vocab.Direction, cfg Config) string {
	if d == vocab.TargetToSource {
		return fmt.Sprintf("%s prompt, %s answer", cfg.TargetLanguage, cfg.SourceLanguage)
	}
	return fmt.Sprintf("%s prompt, %s answer", cfg.SourceLanguage, cfg.TargetLanguage)
}

func buildContext(pairs []vocab.WordPair) string {
	if len(pairs) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, p := range pairs {
		fmt.Fprintf(&b, "%d. %s = %s\n", i+1, p.SourceWord, p.TargetWord)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildExcluded formats excluded words, keeping the most recent limit.
// A limit of zero keeps them all.
func buildExcluded(words []string, limit int) string {
	if len(words) == 0 {
		return "None"
	}
	if limit > 0 && len(words) > limit {
		words = words[len(words)-limit:]
	}
	return strings.Join(words, ", ")
}
