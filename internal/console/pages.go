package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/progress"
)

func (c *Console) dashboard(ctx context.Context) error {
	profile := c.tutor.Profile()
	levels := c.tutor.Catalog().Levels()
	p := c.tutor.Progress()

	c.println("")
	c.println(c.tr.Td("Greeting", map[string]any{"Name": profile.Name}))
	c.println(c.tr.Td("DashboardStats", map[string]any{
		"Completed": progress.CompletedCount(levels, p),
		"Total":     len(levels),
		"Stars":     p.TotalStars,
		"Percent":   fmt.Sprintf("%.0f", progress.PercentComplete(levels, p)),
	}))

	return c.menu(ctx, []menuItem{
		{"1", c.tr.T("MenuPreTest"), func(ctx context.Context) error { return c.takeTest(ctx, model.TestPre) }},
		{"2", c.tr.T("MenuLevels"), c.levels},
		{"3", c.tr.T("MenuPostTest"), func(ctx context.Context) error { return c.takeTest(ctx, model.TestPost) }},
		{"4", c.tr.T("MenuLessons"), c.lessons},
		{"5", c.tr.T("MenuCertificates"), c.certificates},
		{"6", c.tr.T("MenuStats"), c.stats},
		{"7", c.tr.T("MenuLogout"), c.logout},
		{"q", c.tr.T("MenuQuit"), c.quit},
	})
}

func (c *Console) logout(context.Context) error {
	c.tutor.Logout()
	c.println(c.tr.T("LoggedOut"))
	return nil
}

func starString(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", 3-n)
}

func (c *Console) levels(ctx context.Context) error {
	levels := c.tutor.Catalog().Levels()
	p := c.tutor.Progress()
	unlocked := c.tutor.UnlockedLevels()

	c.println(c.tr.T("LevelsHeader"))
	for i, l := range levels {
		status := c.tr.T("LevelLocked")
		if slices.Contains(unlocked, l.ID) {
			lp := p.Levels[l.ID]
			status = starString(lp.Stars) + " " + c.tr.Td("BestScore", map[string]any{
				"Score": lp.BestScore,
				"Total": model.QuestionsPerLevel,
			})
		}
		fmt.Fprintf(c.out, "  %d) %s: %s [%s]\n", i+1, l.Title, l.Subtitle, status)
	}

	i, ok, err := c.pick(ctx, "PromptLevel", len(levels))
	if err != nil || !ok {
		return err
	}
	return c.playLevel(ctx, levels[i].ID)
}

func (c *Console) lessons(ctx context.Context) error {
	lessons := c.tutor.Catalog().Lessons()
	c.println(c.tr.T("LessonsHeader"))
	for i, l := range lessons {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, l.Title)
	}
	i, ok, err := c.pick(ctx, "PromptLesson", len(lessons))
	if err != nil || !ok {
		return err
	}
	lesson, err := c.tutor.Catalog().Lesson(lessons[i].ID)
	if err != nil {
		c.println(c.tr.T("LessonNotFound"))
		return nil
	}

	c.println("")
	c.println(lesson.Title)
	c.println(lesson.Introduction)
	c.println(c.tr.T("LessonSteps"))
	for n, s := range lesson.Steps {
		fmt.Fprintf(c.out, "  %d. %s\n", n+1, s)
	}
	c.println(c.tr.T("LessonExamples"))
	for _, ex := range lesson.Examples {
		fmt.Fprintf(c.out, "  %s = %s\n    %s\n", ex.Problem, ex.Solution, ex.Explanation)
	}
	c.println(c.tr.T("LessonTips"))
	for _, tip := range lesson.Tips {
		fmt.Fprintf(c.out, "  - %s\n", tip)
	}
	_, err = c.prompt(ctx, "PromptContinue")
	return err
}

func (c *Console) certificateTitle(cert model.CertificateDescriptor) string {
	switch cert.Kind {
	case model.CertPreTest:
		return c.tr.T("CertPreTestTitle")
	case model.CertPostTest:
		return c.tr.T("CertPostTestTitle")
	case model.CertCompletion:
		return c.tr.T("CertCompletionTitle")
	case model.CertLevel:
		if l, _, err := c.tutor.Catalog().Level(cert.LevelID); err == nil {
			return c.tr.Td("CertLevelTitle", map[string]any{"Level": l.Title})
		}
	}
	return cert.Title
}

func (c *Console) certificates(ctx context.Context) error {
	certs := c.tutor.Certificates()
	c.println(c.tr.T("CertificatesHeader"))
	if len(certs) == 0 {
		c.println(c.tr.T("NoCertificates"))
	}
	for _, cert := range certs {
		c.println("* " + c.certificateTitle(cert))
		c.println("  " + c.tr.Td("CertAwarded", map[string]any{
			"Name": cert.Recipient,
			"Date": cert.EarnedAt.Local().Format("2006-01-02"),
		}))
		c.println("  " + c.tr.Td("CertScore", map[string]any{
			"Score": cert.Stats.Score,
			"Total": cert.Stats.TotalQuestions,
		}))
		if cert.Stats.Stars != nil {
			c.println("  " + c.tr.Td("CertStars", map[string]any{"Stars": *cert.Stats.Stars}))
		}
		if cert.Stats.Improvement != nil && cert.Kind != model.CertPreTest {
			c.println("  " + c.tr.Td("CertImprovement", map[string]any{"Improvement": fmt.Sprintf("%+d", *cert.Stats.Improvement)}))
		}
	}
	_, err := c.prompt(ctx, "PromptContinue")
	return err
}

func (c *Console) stats(ctx context.Context) error {
	levels := c.tutor.Catalog().Levels()
	p := c.tutor.Progress()

	c.println(c.tr.T("StatsHeader"))
	c.println("  " + c.tr.Td("StatsLevels", map[string]any{
		"Completed": progress.CompletedCount(levels, p),
		"Total":     len(levels),
	}))
	c.println("  " + c.tr.Td("StatsStars", map[string]any{
		"Stars": p.TotalStars,
		"Max":   3 * len(levels),
	}))
	c.println("  " + c.tr.Td("StatsPercent", map[string]any{
		"Percent": fmt.Sprintf("%.0f", progress.PercentComplete(levels, p)),
	}))
	c.printTestStat("StatsPreTest", p.PreTestCompleted, p.PreTestScore, p.PreTestTrials)
	c.printTestStat("StatsPostTest", p.PostTestCompleted, p.PostTestScore, p.PostTestTrials)
	if p.PreTestCompleted && p.PostTestCompleted {
		c.println("  " + c.tr.Td("CertImprovement", map[string]any{
			"Improvement": fmt.Sprintf("%+d", progress.Improvement(p)),
		}))
	}
	_, err := c.prompt(ctx, "PromptContinue")
	return err
}

func (c *Console) printTestStat(msgID string, done bool, score, trials int) {
	if !done {
		c.println("  " + c.tr.Td(msgID+"None", nil))
		return
	}
	c.println("  " + c.tr.Td(msgID, map[string]any{
		"Score":  score,
		"Total":  model.QuestionsPerTest,
		"Trials": trials,
	}))
}
