package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

// Certificates derives the certificates earned so far, newest first.
// Certificates without a stored date are dated now.
func Certificates(profile model.Profile, p model.GameProgress, levels []model.Level, now time.Time) []model.CertificateDescriptor {
	var certs []model.CertificateDescriptor

	if p.PreTestCompleted {
		certs = append(certs, model.CertificateDescriptor{
			ID:          "pre-test",
			Kind:        model.CertPreTest,
			Title:       "Pre-Test Assessment Certificate",
			Description: "Successfully completed the initial assessment",
			EarnedAt:    now,
			Stats: model.CertificateStats{
				Score:          p.PreTestScore,
				TotalQuestions: model.QuestionsPerTest,
				Trials:         intPtr(p.PreTestTrials),
			},
		})
	}

	for _, l := range levels {
		lp, ok := p.Levels[l.ID]
		if !ok || !lp.Completed {
			continue
		}
		earned := now
		if t, err := time.Parse(time.RFC3339, lp.UnlockedAt); err == nil {
			earned = t
		}
		certs = append(certs, model.CertificateDescriptor{
			ID:          "level-" + l.ID,
			Kind:        model.CertLevel,
			LevelID:     l.ID,
			Title:       l.Title + " Mastery Certificate",
			Description: fmt.Sprintf("Mastered %s with %d stars", l.Title, lp.Stars),
			EarnedAt:    earned,
			Stats: model.CertificateStats{
				Score:          lp.BestScore,
				TotalQuestions: model.QuestionsPerLevel,
				Stars:          intPtr(lp.Stars),
			},
		})
	}

	if p.PostTestCompleted {
		certs = append(certs, model.CertificateDescriptor{
			ID:          "post-test",
			Kind:        model.CertPostTest,
			Title:       "Post-Test Achievement Certificate",
			Description: "Demonstrated mastery of fraction operations",
			EarnedAt:    now,
			Stats: model.CertificateStats{
				Score:          p.PostTestScore,
				TotalQuestions: model.QuestionsPerTest,
				Improvement:    intPtr(Improvement(p)),
				Trials:         intPtr(p.PostTestTrials),
			},
		})
	}

	if CourseComplete(levels, p) {
		certs = append(certs, model.CertificateDescriptor{
			ID:          "completion",
			Kind:        model.CertCompletion,
			Title:       "FractionMaster Course Completion Certificate",
			Description: "Successfully completed the entire FractionMaster course",
			EarnedAt:    now,
			Stats: model.CertificateStats{
				Score:          p.PostTestScore,
				TotalQuestions: model.QuestionsPerTest,
				Improvement:    intPtr(Improvement(p)),
				Stars:          intPtr(TotalStars(p)),
				Trials:         intPtr(p.PostTestTrials),
			},
		})
	}

	for i := range certs {
		certs[i].Recipient = profile.Name
	}
	sort.SliceStable(certs, func(i, j int) bool {
		return certs[i].EarnedAt.After(certs[j].EarnedAt)
	})
	return certs
}

// CourseComplete reports whether every catalog level is completed and the
// post test is done.
func CourseComplete(levels []model.Level, p model.GameProgress) bool {
	if len(levels) == 0 || !p.PostTestCompleted {
		return false
	}
	return CompletedCount(levels, p) == len(levels)
}

// Improvement is the post test score minus the pre test score, or 0 without a pre test.
func Improvement(p model.GameProgress) int {
	if !p.PreTestCompleted {
		return 0
	}
	return p.PostTestScore - p.PreTestScore
}

func intPtr(v int) *int { return &v }
