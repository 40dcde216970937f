package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fractionmaster/fractionmaster/internal/catalog"
	"github.com/fractionmaster/fractionmaster/internal/countdown"
	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/progress"
	"github.com/fractionmaster/fractionmaster/internal/tutor"
)

func (c *Console) playLevel(ctx context.Context, levelID string) error {
	a, err := c.tutor.StartLevel(levelID)
	switch {
	case errors.Is(err, tutor.ErrLevelLocked):
		c.println(c.tr.T("LevelIsLocked"))
		return nil
	case errors.Is(err, catalog.ErrLevelNotFound):
		c.println(c.tr.T("LevelNotFound"))
		return nil
	case err != nil:
		return err
	}

	level := a.Level()
	c.println("")
	c.println(level.Title + ": " + level.Subtitle)
	c.println(level.Description)
	c.println(c.tr.Td("PlayTimeLimit", map[string]any{"Time": formatClock(c.cfg.LevelSeconds)}))
	c.println(c.tr.T("PlayHelp"))

	// One countdown covers the whole attempt. Once it expires every
	// remaining question times out in turn.
	cd := countdown.Start(ctx, c.cfg.LevelSeconds, c.cfg.Tick)
	defer stopCountdown(cd)

	var result *model.LevelProgress
	for result == nil {
		lp, quit, err := c.askQuestion(ctx, a, cd)
		if err != nil {
			c.tutor.AbandonLevel()
			return err
		}
		if quit {
			c.tutor.AbandonLevel()
			c.println(c.tr.T("LevelAbandoned"))
			return nil
		}
		result = lp
	}

	c.println(c.tr.Td("LevelScore", map[string]any{
		"Score": a.Score(),
		"Total": len(level.Questions),
		"Stars": progress.Stars(a.Score()),
	}))
	if progress.Passed(a.Score()) {
		c.println(c.tr.T("LevelPassed"))
	} else {
		c.println(c.tr.Td("LevelNotPassed", map[string]any{"Passing": model.PassingScore}))
	}
	return nil
}

// askQuestion runs the current question of a against the attempt countdown
// cd. It returns the merged level progress once the attempt is complete.
func (c *Console) askQuestion(ctx context.Context, a *progress.Attempt, cd *countdown.Countdown) (*model.LevelProgress, bool, error) {
	levelID := a.Level().ID
	idx := a.Index()
	q, _ := a.Question()

	c.println("")
	c.println(c.tr.Td("QuestionHeader", map[string]any{
		"Number": idx + 1,
		"Total":  len(a.Level().Questions),
		"Time":   formatClock(cd.Remaining()),
	}))
	c.printQuestion(q, a.Selected())

	for {
		fmt.Fprint(c.out, c.tr.Td("PlayPrompt", map[string]any{
			"Hints": a.HintsLeft(),
			"Skips": a.SkipsLeft(),
		}))
		line, expired, err := c.readTimed(ctx, cd)
		if err != nil {
			return nil, false, err
		}
		if expired {
			c.println("")
			c.println(c.tr.T("TimeUp"))
			lp, out, err := c.tutor.Timeout(levelID, idx)
			if err != nil {
				return nil, false, err
			}
			c.feedback(q, out)
			return lp, false, nil
		}

		switch strings.ToLower(line) {
		case "q":
			return nil, true, nil
		case "h":
			hint, err := c.tutor.UseHint(levelID)
			switch {
			case errors.Is(err, progress.ErrNoHintsLeft):
				c.println(c.tr.T("NoHintsLeft"))
			case errors.Is(err, progress.ErrHintShown):
				c.println(c.tr.T("HintShown"))
			case err != nil:
				return nil, false, err
			default:
				c.println(c.tr.Td("Hint", map[string]any{"Text": hint}))
			}
		case "s":
			lp, out, err := c.tutor.SkipQuestion(levelID)
			if errors.Is(err, progress.ErrNoSkipsLeft) {
				c.println(c.tr.T("NoSkipsLeft"))
				continue
			}
			if err != nil {
				return nil, false, err
			}
			c.println(c.tr.T("Skipped"))
			c.feedback(q, out)
			return lp, false, nil
		case "":
			if a.Selected() == progress.NoSelection {
				c.println(c.tr.T("SelectFirst"))
				continue
			}
			lp, out, err := c.tutor.RecordAnswer(levelID, idx, a.Selected())
			if err != nil {
				return nil, false, err
			}
			c.feedback(q, out)
			return lp, false, nil
		default:
			n, err := strconv.Atoi(line)
			if err != nil || c.tutor.Select(levelID, n-1) != nil {
				c.println(c.tr.Td("ChooseOption", map[string]any{"Count": len(q.Options)}))
				continue
			}
			c.println(c.tr.Td("Selected", map[string]any{"Option": q.Options[n-1]}))
		}
	}
}

func (c *Console) printQuestion(q model.Question, selected int) {
	c.println(q.Text)
	if vf := q.VisualFraction; vf != nil && vf.Denominator > 0 {
		c.println("  " + fractionBar(vf.Numerator, vf.Denominator))
	}
	for i, opt := range q.Options {
		mark := " "
		if i == selected {
			mark = ">"
		}
		fmt.Fprintf(c.out, " %s %d) %s\n", mark, i+1, opt)
	}
}

// fractionBar draws numerator filled cells out of denominator.
func fractionBar(numerator, denominator int) string {
	filled := min(max(numerator, 0), denominator)
	return "[" + strings.Repeat("■", filled) + strings.Repeat("□", denominator-filled) + "]" +
		fmt.Sprintf(" %d/%d", numerator, denominator)
}

func (c *Console) feedback(q model.Question, out progress.Outcome) {
	if out.Correct {
		c.println(c.tr.T("Correct"))
	} else {
		c.println(c.tr.Td("Incorrect", map[string]any{"Answer": q.Options[out.CorrectAnswer]}))
	}
	if out.Explanation != "" {
		c.println(out.Explanation)
	}
}
