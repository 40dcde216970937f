package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fractionmaster/fractionmaster/internal/countdown"
	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/progress"
)

func testTitleID(kind model.TestKind) string {
	if kind == model.TestPost {
		return "PostTestTitle"
	}
	return "PreTestTitle"
}

// takeTest runs an assessment under a single countdown. Answers can be
// revisited until the learner submits or time runs out; unanswered questions
// score as incorrect.
func (c *Console) takeTest(ctx context.Context, kind model.TestKind) error {
	qs, err := c.tutor.TestQuestions(kind)
	if err != nil {
		return err
	}
	answers := make([]int, len(qs))
	for i := range answers {
		answers[i] = progress.NoSelection
	}
	title := c.tr.T(testTitleID(kind))

	c.println("")
	c.println(c.tr.Td("TestIntro", map[string]any{
		"Title":   title,
		"Count":   len(qs),
		"Minutes": c.cfg.TestSeconds / 60,
	}))
	c.println(c.tr.T("TestHelp"))

	cd := countdown.Start(ctx, c.cfg.TestSeconds, c.cfg.Tick)
	defer stopCountdown(cd)

	i := 0
loop:
	for {
		c.println("")
		c.println(c.tr.Td("TestQuestionHeader", map[string]any{
			"Number":   i + 1,
			"Total":    len(qs),
			"Answered": answered(answers),
			"Time":     formatClock(cd.Remaining()),
		}))
		c.printQuestion(qs[i], answers[i])
		fmt.Fprint(c.out, c.tr.T("PromptChoice"))

		line, expired, err := c.readTimed(ctx, cd)
		if err != nil {
			return err
		}
		if expired {
			c.println("")
			c.println(c.tr.T("TestTimeUp"))
			break
		}

		switch strings.ToLower(line) {
		case "s":
			break loop
		case "p":
			i = max(i-1, 0)
		case "n", "":
			i = min(i+1, len(qs)-1)
		default:
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(qs[i].Options) {
				c.println(c.tr.Td("ChooseOption", map[string]any{"Count": len(qs[i].Options)}))
				continue
			}
			answers[i] = n - 1
			if i == len(qs)-1 {
				c.println(c.tr.T("TestLastQuestion"))
			} else {
				i++
			}
		}
	}

	score, err := c.tutor.SubmitTest(kind, answers)
	if err != nil {
		return err
	}
	c.println(c.tr.Td("TestScore", map[string]any{
		"Title": title,
		"Score": score,
		"Total": len(qs),
	}))
	return nil
}

func answered(answers []int) int {
	n := 0
	for _, a := range answers {
		if a != progress.NoSelection {
			n++
		}
	}
	return n
}
