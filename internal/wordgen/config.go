package wordgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	SourceLanguage string
	TargetLanguage string

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Slack is how many extra words are requested so that duplicates and
	// excluded words can be dropped without under-delivering.
	Slack int

	// MaxExcluded is the maximum number of excluded words listed in the
	// prompt; the most recent ones are kept.
	MaxExcluded int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		SourceLanguage: "French",
		TargetLanguage: "English",
		MaxTokens:      1024,
		Temperature:    0.8,
		Slack:          3,
		MaxExcluded:    150,
	}
}
