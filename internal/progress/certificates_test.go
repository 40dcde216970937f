package progress

import (
	"testing"
	"time"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

func certIDs(certs []model.CertificateDescriptor) map[string]model.CertificateDescriptor {
	m := make(map[string]model.CertificateDescriptor, len(certs))
	for _, c := range certs {
		m[c.ID] = c
	}
	return m
}

func allLevelsDone(levels []model.Level) model.GameProgress {
	p := model.DefaultProgress()
	for i, l := range levels {
		p = MergeLevel(p, l.ID, 5, t0.Add(time.Duration(i)*time.Minute))
	}
	return p
}

func TestCertificatesNone(t *testing.T) {
	certs := Certificates(model.Profile{Name: "Alice"}, model.DefaultProgress(), testLevels(9), t1)
	if len(certs) != 0 {
		t.Errorf("expected no certificates, got %+v", certs)
	}
}

func TestCertificatesPreAndLevels(t *testing.T) {
	levels := testLevels(9)
	p := MergeTest(model.DefaultProgress(), model.TestPre, 16)
	p = MergeLevel(p, "L0", 5, t0)
	p = MergeLevel(p, "L1", 3, t0)
	p.Levels["unknown"] = model.LevelProgress{Completed: true, BestScore: 5, Stars: 3}

	certs := Certificates(model.Profile{Name: "Alice"}, p, levels, t1)
	byID := certIDs(certs)
	if len(certs) != 2 {
		t.Fatalf("expected 2 certificates, got %d: %+v", len(certs), certs)
	}

	pre, ok := byID["pre-test"]
	if !ok {
		t.Fatal("missing pre-test certificate")
	}
	if pre.Stats.Score != 16 || pre.Stats.TotalQuestions != 20 || *pre.Stats.Trials != 1 {
		t.Errorf("pre-test stats = %+v", pre.Stats)
	}
	if pre.Recipient != "Alice" {
		t.Errorf("recipient = %q", pre.Recipient)
	}

	lvl, ok := byID["level-L0"]
	if !ok {
		t.Fatal("missing level certificate")
	}
	if !lvl.EarnedAt.Equal(t0) {
		t.Errorf("level earned at %v, want %v", lvl.EarnedAt, t0)
	}
	if *lvl.Stats.Stars != 3 || lvl.Stats.Score != 5 {
		t.Errorf("level stats = %+v", lvl.Stats)
	}

	// Newest first: the pre-test is dated now (t1), the level at t0.
	if certs[0].ID != "pre-test" {
		t.Errorf("first certificate = %s, want pre-test", certs[0].ID)
	}
}

func TestCertificatesPostImprovement(t *testing.T) {
	levels := testLevels(9)
	tests := []struct {
		name string
		pre  bool
		want int
	}{
		{"with pre test", true, 7},
		{"without pre test", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.DefaultProgress()
			if tt.pre {
				p = MergeTest(p, model.TestPre, 10)
			}
			p = MergeTest(p, model.TestPost, 17)
			post, ok := certIDs(Certificates(model.Profile{}, p, levels, t1))["post-test"]
			if !ok {
				t.Fatal("missing post-test certificate")
			}
			if *post.Stats.Improvement != tt.want {
				t.Errorf("improvement = %d, want %d", *post.Stats.Improvement, tt.want)
			}
		})
	}
}

func TestCourseCompletionCertificate(t *testing.T) {
	levels := testLevels(9)
	done := MergeTest(allLevelsDone(levels), model.TestPost, 18)

	byID := certIDs(Certificates(model.Profile{}, done, levels, t1))
	c, ok := byID["completion"]
	if !ok {
		t.Fatal("expected completion certificate")
	}
	if *c.Stats.Stars != 27 {
		t.Errorf("completion stars = %d, want 27", *c.Stats.Stars)
	}
	if len(byID) != 11 {
		t.Errorf("expected 11 certificates (9 levels, post, completion), got %d", len(byID))
	}

	// Without the post test.
	noPost := allLevelsDone(levels)
	if _, ok := certIDs(Certificates(model.Profile{}, noPost, levels, t1))["completion"]; ok {
		t.Error("completion requires the post test")
	}

	// With one level missing.
	oneShort := done.Clone()
	oneShort.Levels["L8"] = model.LevelProgress{Completed: false, BestScore: 3, Trials: 1, Stars: 1}
	if _, ok := certIDs(Certificates(model.Profile{}, oneShort, levels, t1))["completion"]; ok {
		t.Error("completion requires every level")
	}
	if CourseComplete(nil, done) {
		t.Error("an empty catalog is never complete")
	}
}
