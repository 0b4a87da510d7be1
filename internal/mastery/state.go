package mastery

// MaxLevel is the highest mastery level a word can reach.
const MaxLevel = 5

// MasteryState is a word's position in the mastery lifecycle.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
)

// Transition triggers.
const (
	TriggerFirstReview = "first-review"
	TriggerReachedMax  = "reached-max"
	TriggerLostMastery = "lost-mastery"
)

// StateTransition records a mastery state change for display.
type StateTransition struct {
	RecordID string
	Word     string
	From     MasteryState
	To       MasteryState
	Trigger  string
}

// StateOf derives the lifecycle state from a record's counters.
func StateOf(level, timesReviewed int) MasteryState {
	switch {
	case level >= MaxLevel:
		return StateMastered
	case timesReviewed == 0:
		return StateNew
	default:
		return StateLearning
	}
}

// nextLevel applies one review outcome to level.
func nextLevel(level int, success bool) int {
	if success {
		return min(level+1, MaxLevel)
	}
	return max(level-1, 0)
}

func transitionTrigger(from, to MasteryState) string {
	switch {
	case from == StateNew:
		return TriggerFirstReview
	case to == StateMastered:
		return TriggerReachedMax
	default:
		return TriggerLostMastery
	}
}
