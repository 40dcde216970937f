// Package progress applies game events to a learner's GameProgress. Every
// function returns a new value and leaves its input untouched; persisting the
// result is the caller's job.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

var ErrAnswerCount = errors.New("answer count does not match question count")

// Stars converts a level score out of five to a star rating.
func Stars(score int) int {
	switch {
	case score >= 5:
		return 3
	case score == 4:
		return 2
	case score == 3:
		return 1
	default:
		return 0
	}
}

// Passed reports whether a level score is mastery.
func Passed(score int) bool {
	return score >= model.PassingScore
}

// MergeLevel folds a completed attempt's score into the level's history.
func MergeLevel(p model.GameProgress, levelID string, score int, now time.Time) model.GameProgress {
	out := p.Clone()
	old := out.Levels[levelID]
	passed := Passed(score)

	lp := model.LevelProgress{
		Completed:  old.Completed || passed,
		BestScore:  max(old.BestScore, score),
		Trials:     old.Trials + 1,
		Stars:      max(old.Stars, Stars(score)),
		UnlockedAt: old.UnlockedAt,
	}
	if !old.Completed && passed {
		lp.UnlockedAt = now.UTC().Format(time.RFC3339)
	}
	out.Levels[levelID] = lp
	out.TotalStars = TotalStars(out)
	return out
}

// TotalStars sums the stars of every level.
func TotalStars(p model.GameProgress) int {
	total := 0
	for _, lp := range p.Levels {
		total += lp.Stars
	}
	return total
}

// ScoreTest counts answers equal to the question's correct option. Unanswered
// (NoSelection) and out-of-range answers are incorrect.
func ScoreTest(questions []model.Question, answers []int) (int, error) {
	if len(answers) != len(questions) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), len(questions))
	}
	score := 0
	for i, q := range questions {
		if q.IsCorrect(answers[i]) {
			score++
		}
	}
	return score, nil
}

// MergeTest records a finished pre or post test.
func MergeTest(p model.GameProgress, kind model.TestKind, score int) model.GameProgress {
	out := p.Clone()
	switch kind {
	case model.TestPre:
		out.PreTestCompleted = true
		out.PreTestScore = score
		out.PreTestTrials++
	case model.TestPost:
		out.PostTestCompleted = true
		out.PostTestScore = score
		out.PostTestTrials++
	}
	return out
}

// IsUnlocked reports whether the level at index i may be played: the first
// level always, any other once the level before it is completed.
func IsUnlocked(levels []model.Level, p model.GameProgress, i int) bool {
	if i < 0 || i >= len(levels) {
		return false
	}
	if i == 0 {
		return true
	}
	return p.Levels[levels[i-1].ID].Completed
}

// UnlockedLevels returns the ids of every playable level in catalog order.
func UnlockedLevels(levels []model.Level, p model.GameProgress) []string {
	var ids []string
	for i, l := range levels {
		if IsUnlocked(levels, p, i) {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// CompletedCount counts completed levels that exist in the catalog.
func CompletedCount(levels []model.Level, p model.GameProgress) int {
	n := 0
	for _, l := range levels {
		if p.Levels[l.ID].Completed {
			n++
		}
	}
	return n
}

// PercentComplete is the share of catalog levels completed, 0 to 100.
func PercentComplete(levels []model.Level, p model.GameProgress) float64 {
	if len(levels) == 0 {
		return 0
	}
	return float64(CompletedCount(levels, p)) / float64(len(levels)) * 100
}
