package progress

import (
	"errors"
	"fmt"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

var (
	ErrAttemptCompleted = errors.New("attempt already completed")
	ErrStaleQuestion    = errors.New("question already answered")
	ErrInvalidOption    = errors.New("invalid answer option")
	ErrNoHintsLeft      = errors.New("no hints left")
	ErrHintShown        = errors.New("hint already shown for this question")
	ErrNoSkipsLeft      = errors.New("no skips left")
)

// NoSelection marks a question with no selected option.
const NoSelection = -1

// Outcome describes the effect of one answer, skip or timeout.
type Outcome struct {
	QuestionIndex int
	Selected      int
	Correct       bool
	CorrectAnswer int
	Explanation   string
	Skipped       bool
	TimedOut      bool
	Completed     bool
	Score         int
}

// Attempt is one play-through of a level's five questions. It is either in
// progress at some question index or completed with a final score.
//
// Every transition names the question it applies to. A transition for a
// question that has already been left is rejected with ErrStaleQuestion, so a
// manual submit and a timeout for the same question take effect once.
type Attempt struct {
	level     model.Level
	index     int
	score     int
	hints     int
	skips     int
	selected  int
	hintShown bool
	results   []bool
	done      bool
}

// NewAttempt starts an attempt at the first question of level.
func NewAttempt(level model.Level) *Attempt {
	return &Attempt{level: level, selected: NoSelection}
}

func (a *Attempt) Level() model.Level { return a.level }
func (a *Attempt) Index() int { return a.index }
func (a *Attempt) Score() int { return a.score }
func (a *Attempt) Completed() bool { return a.done }
func (a *Attempt) HintsLeft() int { return model.MaxHints - a.hints }
func (a *Attempt) SkipsLeft() int { return model.MaxSkips - a.skips }
func (a *Attempt) Selected() int { return a.selected }

// Results returns the correctness of each question answered so far.
func (a *Attempt) Results() []bool {
	out := make([]bool, len(a.results))
	copy(out, a.results)
	return out
}

// Question returns the current question. ok is false once completed.
func (a *Attempt) Question() (model.Question, bool) {
	if a.done {
		return model.Question{}, false
	}
	return a.level.Questions[a.index], true
}

// Select records the option currently chosen, used if the question times out.
func (a *Attempt) Select(option int) error {
	if a.done {
		return ErrAttemptCompleted
	}
	if !a.validOption(option) {
		return fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	a.selected = option
	return nil
}

// Answer submits option for the current question.
func (a *Attempt) Answer(option int) (Outcome, error) {
	return a.AnswerAt(a.index, option)
}

// AnswerAt submits option for question index.
func (a *Attempt) AnswerAt(index, option int) (Outcome, error) {
	if err := a.check(index); err != nil {
		return Outcome{}, err
	}
	if !a.validOption(option) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	return a.advance(option, false, false), nil
}

// Hint uses one of the attempt's hints on the current question and returns
// the hint text.
func (a *Attempt) Hint() (string, error) {
	if a.done {
		return "", ErrAttemptCompleted
	}
	if a.hints >= model.MaxHints {
		return "", ErrNoHintsLeft
	}
	if a.hintShown {
		return "", ErrHintShown
	}
	a.hints++
	a.hintShown = true
	return a.level.Questions[a.index].Explanation, nil
}

// Skip counts the current question as incorrect and moves on.
func (a *Attempt) Skip() (Outcome, error) {
	if a.done {
		return Outcome{}, ErrAttemptCompleted
	}
	if a.skips >= model.MaxSkips {
		return Outcome{}, ErrNoSkipsLeft
	}
	a.skips++
	return a.advance(NoSelection, true, false), nil
}

// Timeout submits the current selection, or an incorrect blank answer.
func (a *Attempt) Timeout() (Outcome, error) {
	return a.TimeoutAt(a.index)
}

// TimeoutAt applies a timeout that fired for question index.
func (a *Attempt) TimeoutAt(index int) (Outcome, error) {
	if err := a.check(index); err != nil {
		return Outcome{}, err
	}
	return a.advance(a.selected, false, true), nil
}

func (a *Attempt) check(index int) error {
	if a.done {
		return ErrAttemptCompleted
	}
	if index != a.index {
		return fmt.Errorf("%w: question %d, current %d", ErrStaleQuestion, index, a.index)
	}
	return nil
}

func (a *Attempt) validOption(option int) bool {
	return option >= 0 && option < len(a.level.Questions[a.index].Options)
}

func (a *Attempt) advance(option int, skipped, timedOut bool) Outcome {
	q := a.level.Questions[a.index]
	correct := !skipped && option != NoSelection && q.IsCorrect(option)
	if correct {
		a.score++
	}
	a.results = append(a.results, correct)

	out := Outcome{
		QuestionIndex: a.index,
		Selected:      option,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Skipped:       skipped,
		TimedOut:      timedOut,
	}

	if a.index == len(a.level.Questions)-1 {
		a.done = true
	} else {
		a.index++
		a.selected = NoSelection
		a.hintShown = false
	}
	out.Completed = a.done
	out.Score = a.score
	return out
}
