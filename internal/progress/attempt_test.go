package progress

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

// testLevel builds a level whose correct option is always 0.
func testLevel(id string) model.Level {
	qs := make([]model.Question, model.QuestionsPerLevel)
	for i := range qs {
		qs[i] = model.Question{
			ID:            fmt.Sprintf("%s-%d", id, i+1),
			Text:          fmt.Sprintf("question %d", i+1),
			Options:       []string{"right", "wrong", "also wrong", "nope"},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("explanation %d", i+1),
		}
	}
	return model.Level{ID: id, Title: "Level " + id, Questions: qs}
}

func testLevels(n int) []model.Level {
	levels := make([]model.Level, n)
	for i := range levels {
		levels[i] = testLevel(fmt.Sprintf("L%d", i))
	}
	return levels
}

// playScore answers the attempt so that it finishes with score correct answers.
func playScore(t *testing.T, a *Attempt, score int) Outcome {
	t.Helper()
	var out Outcome
	for i := 0; i < model.QuestionsPerLevel; i++ {
		option := 1
		if i < score {
			option = 0
		}
		var err error
		out, err = a.Answer(option)
		if err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
	}
	return out
}

func TestAttemptAnswers(t *testing.T) {
	for score := 0; score <= model.QuestionsPerLevel; score++ {
		t.Run(fmt.Sprintf("score %d", score), func(t *testing.T) {
			a := NewAttempt(testLevel("a"))
			out := playScore(t, a, score)
			if !out.Completed || !a.Completed() {
				t.Fatal("expected attempt to complete after five answers")
			}
			if out.Score != score || a.Score() != score {
				t.Errorf("score = %d, want %d", a.Score(), score)
			}
			if len(a.Results()) != model.QuestionsPerLevel {
				t.Errorf("results = %v", a.Results())
			}
			if _, ok := a.Question(); ok {
				t.Error("no question after completion")
			}
			if _, err := a.Answer(0); !errors.Is(err, ErrAttemptCompleted) {
				t.Errorf("Answer after completion: %v", err)
			}
		})
	}
}

func TestAttemptAdvancesIndex(t *testing.T) {
	a := NewAttempt(testLevel("a"))
	for i := 0; i < model.QuestionsPerLevel-1; i++ {
		if a.Index() != i {
			t.Fatalf("index = %d, want %d", a.Index(), i)
		}
		out, err := a.Answer(0)
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		if out.Completed {
			t.Fatalf("completed early at %d", i)
		}
		if !out.Correct || out.QuestionIndex != i {
			t.Errorf("unexpected outcome %+v", out)
		}
	}
}

func TestAttemptInvalidOption(t *testing.T) {
	a := NewAttempt(testLevel("a"))
	for _, opt := range []int{-1, 4, 100} {
		if _, err := a.Answer(opt); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Answer(%d) error = %v, want ErrInvalidOption", opt, err)
		}
		if err := a.Select(opt); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Select(%d) error = %v, want ErrInvalidOption", opt, err)
		}
	}
	if a.Index() != 0 {
		t.Error("invalid options must not advance")
	}
}

func TestAttemptHints(t *testing.T) {
	a := NewAttempt(testLevel("a"))

	hint, err := a.Hint()
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if hint != "explanation 1" {
		t.Errorf("hint = %q", hint)
	}
	if _, err := a.Hint(); !errors.Is(err, ErrHintShown) {
		t.Errorf("second hint on same question: %v", err)
	}
	if a.Index() != 0 {
		t.Error("hint must not advance")
	}

	for i := 0; i < 2; i++ {
		if _, err := a.Answer(0); err != nil {
			t.Fatalf("Answer: %v", err)
		}
		if _, err := a.Hint(); err != nil {
			t.Fatalf("Hint %d: %v", i+2, err)
		}
	}
	if a.HintsLeft() != 0 {
		t.Errorf("hints left = %d", a.HintsLeft())
	}
	if _, err := a.Answer(0); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := a.Hint(); !errors.Is(err, ErrNoHintsLeft) {
		t.Errorf("fourth hint: %v", err)
	}
	if a.Score() != 3 {
		t.Errorf("hints should not change score, got %d", a.Score())
	}
}

func TestAttemptSkips(t *testing.T) {
	a := NewAttempt(testLevel("a"))
	for i := 0; i < model.MaxSkips; i++ {
		out, err := a.Skip()
		if err != nil {
			t.Fatalf("Skip %d: %v", i, err)
		}
		if out.Correct || !out.Skipped {
			t.Errorf("skip outcome = %+v", out)
		}
	}
	if a.Index() != 3 {
		t.Errorf("index after skips = %d, want 3", a.Index())
	}
	if _, err := a.Skip(); !errors.Is(err, ErrNoSkipsLeft) {
		t.Errorf("fourth skip: %v", err)
	}
	out := playRemaining(t, a)
	if !out.Completed || out.Score != 2 {
		t.Errorf("final outcome = %+v, want completed with score 2", out)
	}
}

func TestSkipOnLastQuestionCompletes(t *testing.T) {
	a := NewAttempt(testLevel("a"))
	for i := 0; i < model.QuestionsPerLevel-1; i++ {
		if _, err := a.Answer(0); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	out, err := a.Skip()
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if !out.Completed || out.Score != 4 {
		t.Errorf("outcome = %+v", out)
	}
}

func playRemaining(t *testing.T, a *Attempt) Outcome {
	t.Helper()
	var out Outcome
	for !a.Completed() {
		var err error
		out, err = a.Answer(0)
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	return out
}

func TestAttemptTimeout(t *testing.T) {
	a := NewAttempt(testLevel("a"))

	// Nothing selected: incorrect.
	out, err := a.Timeout()
	if err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	if out.Correct || !out.TimedOut || out.Selected != NoSelection {
		t.Errorf("blank timeout outcome = %+v", out)
	}

	// Correct selection is submitted.
	if err := a.Select(0); err != nil {
		t.Fatalf("Select: %v", err)
	}
	out, err = a.Timeout()
	if err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	if !out.Correct {
		t.Errorf("selected answer should count: %+v", out)
	}

	// Selection resets on the next question.
	if a.Selected() != NoSelection {
		t.Errorf("selection carried over: %d", a.Selected())
	}
	if a.Score() != 1 {
		t.Errorf("score = %d, want 1", a.Score())
	}
}

func TestTimeoutRaceAppliesOnce(t *testing.T) {
	a := NewAttempt(testLevel("a"))

	// A manual answer lands first; the timeout for the same question is stale.
	if _, err := a.AnswerAt(0, 0); err != nil {
		t.Fatalf("AnswerAt: %v", err)
	}
	if _, err := a.TimeoutAt(0); !errors.Is(err, ErrStaleQuestion) {
		t.Errorf("stale timeout error = %v", err)
	}
	if a.Index() != 1 || len(a.Results()) != 1 {
		t.Errorf("stale timeout changed state: index %d results %v", a.Index(), a.Results())
	}

	// The timeout lands first; the late manual answer is stale.
	if _, err := a.TimeoutAt(1); err != nil {
		t.Fatalf("TimeoutAt: %v", err)
	}
	if _, err := a.AnswerAt(1, 0); !errors.Is(err, ErrStaleQuestion) {
		t.Errorf("stale answer error = %v", err)
	}
	if a.Score() != 1 {
		t.Errorf("score = %d, want 1", a.Score())
	}

	// Finish; a timeout after completion is rejected.
	for a.Index() < model.QuestionsPerLevel-1 {
		if _, err := a.Answer(0); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	last := a.Index()
	if _, err := a.AnswerAt(last, 0); err != nil {
		t.Fatalf("AnswerAt last: %v", err)
	}
	if _, err := a.TimeoutAt(last); !errors.Is(err, ErrAttemptCompleted) {
		t.Errorf("timeout after completion: %v", err)
	}
}
