// Package tutor is the boundary between a front end and the core: it holds
// the explicit session, the in-memory progress and the active level attempt,
// and persists every progress change through the account store.
package tutor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fractionmaster/fractionmaster/internal/account"
	"github.com/fractionmaster/fractionmaster/internal/catalog"
	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/progress"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrLevelLocked = errors.New("level is locked")
	ErrNoAttempt   = errors.New("no attempt in progress for level")
	ErrUnknownTest = errors.New("unknown test")
)

// Tutor is not safe for concurrent use; a front end drives it from one goroutine.
type Tutor struct {
	accounts *account.Store
	catalog  *catalog.Catalog
	config   model.TutorConfig
	now      func() time.Time

	session  model.Session
	profile  *model.Profile
	progress model.GameProgress
	attempt  *progress.Attempt
}

// New creates a Tutor. Call Start before use.
func New(accounts *account.Store, cat *catalog.Catalog, cfg model.TutorConfig) *Tutor {
	return &Tutor{
		accounts: accounts,
		catalog:  cat,
		config:   cfg,
		now:      time.Now,
		progress: model.DefaultProgress(),
	}
}

// Start applies the startup policy. With StartupResume an existing session
// pointer is adopted; otherwise all stored data is purged so the learner
// starts logged out.
func (t *Tutor) Start() {
	if t.config.Startup == model.StartupResume {
		sess, ok := t.accounts.Resume()
		if !ok {
			return
		}
		profile, prog := t.accounts.LoadSession()
		if profile == nil {
			return
		}
		t.session, t.profile, t.progress = sess, profile, prog
		slog.Info("resumed session", "username", sess.Username)
		return
	}
	t.accounts.PurgeAll()
}

// Register creates an account with default progress and logs it in.
func (t *Tutor) Register(username, password string, profile model.Profile) error {
	if profile.CreatedAt == "" {
		profile.CreatedAt = t.now().UTC().Format(time.RFC3339)
	}
	sess, err := t.accounts.Create(username, password, profile, model.DefaultProgress())
	if err != nil {
		return err
	}
	t.begin(sess, profile, model.DefaultProgress())
	return nil
}

// Login authenticates and loads the stored progress.
func (t *Tutor) Login(username, password string) (model.Snapshot, bool) {
	sess, snap, ok := t.accounts.Authenticate(username, password)
	if !ok {
		return model.Snapshot{}, false
	}
	t.begin(sess, snap.Profile, snap.Progress)
	return model.Snapshot{Profile: snap.Profile, Progress: snap.Progress.Clone()}, true
}

// Logout ends the session and resets the in-memory state.
func (t *Tutor) Logout() {
	t.accounts.EndSession()
	t.session = model.Session{}
	t.profile = nil
	t.progress = model.DefaultProgress()
	t.attempt = nil
}

func (t *Tutor) begin(sess model.Session, profile model.Profile, prog model.GameProgress) {
	t.session = sess
	t.profile = &profile
	t.progress = prog
	t.attempt = nil
}

// LoggedIn reports whether a session is active.
func (t *Tutor) LoggedIn() bool {
	return t.session.Valid() && t.profile != nil
}

func (t *Tutor) Session() model.Session       { return t.session }
func (t *Tutor) Catalog() *catalog.Catalog    { return t.catalog }
func (t *Tutor) Config() model.TutorConfig    { return t.config }
func (t *Tutor) Progress() model.GameProgress { return t.progress.Clone() }

// Profile returns the logged-in profile, or nil.
func (t *Tutor) Profile() *model.Profile {
	if t.profile == nil {
		return nil
	}
	p := *t.profile
	return &p
}

// StartLevel begins a new attempt at an unlocked level, replacing any
// unfinished attempt.
func (t *Tutor) StartLevel(levelID string) (*progress.Attempt, error) {
	if !t.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	level, idx, err := t.catalog.Level(levelID)
	if err != nil {
		return nil, err
	}
	if !progress.IsUnlocked(t.catalog.Levels(), t.progress, idx) {
		return nil, fmt.Errorf("%w: %s", ErrLevelLocked, levelID)
	}
	t.attempt = progress.NewAttempt(level)
	return t.attempt, nil
}

// AbandonLevel drops the active attempt without recording it.
func (t *Tutor) AbandonLevel() {
	t.attempt = nil
}

// Select records the option currently chosen for the active question.
func (t *Tutor) Select(levelID string, option int) error {
	a, err := t.active(levelID)
	if err != nil {
		return err
	}
	return a.Select(option)
}

// RecordAnswer submits an answer for questionIndex of the active attempt. When
// the answer completes the attempt, the merged LevelProgress is returned and
// persisted; otherwise the returned progress is nil.
func (t *Tutor) RecordAnswer(levelID string, questionIndex, selected int) (*model.LevelProgress, progress.Outcome, error) {
	a, err := t.active(levelID)
	if err != nil {
		return nil, progress.Outcome{}, err
	}
	out, err := a.AnswerAt(questionIndex, selected)
	if err != nil {
		return nil, out, err
	}
	return t.settle(out), out, nil
}

// UseHint spends a hint on the active question.
func (t *Tutor) UseHint(levelID string) (string, error) {
	a, err := t.active(levelID)
	if err != nil {
		return "", err
	}
	return a.Hint()
}

// SkipQuestion skips the active question.
func (t *Tutor) SkipQuestion(levelID string) (*model.LevelProgress, progress.Outcome, error) {
	a, err := t.active(levelID)
	if err != nil {
		return nil, progress.Outcome{}, err
	}
	out, err := a.Skip()
	if err != nil {
		return nil, out, err
	}
	return t.settle(out), out, nil
}

// Timeout applies a countdown expiry for questionIndex. A timeout for a
// question already answered returns progress.ErrStaleQuestion.
func (t *Tutor) Timeout(levelID string, questionIndex int) (*model.LevelProgress, progress.Outcome, error) {
	a, err := t.active(levelID)
	if err != nil {
		return nil, progress.Outcome{}, err
	}
	out, err := a.TimeoutAt(questionIndex)
	if err != nil {
		return nil, out, err
	}
	return t.settle(out), out, nil
}

func (t *Tutor) active(levelID string) (*progress.Attempt, error) {
	if !t.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if t.attempt == nil || t.attempt.Level().ID != levelID {
		return nil, fmt.Errorf("%w: %s", ErrNoAttempt, levelID)
	}
	return t.attempt, nil
}

func (t *Tutor) settle(out progress.Outcome) *model.LevelProgress {
	if !out.Completed {
		return nil
	}
	levelID := t.attempt.Level().ID
	t.progress = progress.MergeLevel(t.progress, levelID, out.Score, t.now())
	t.attempt = nil
	t.persist()

	lp := t.progress.Levels[levelID]
	slog.Info("level attempt completed",
		"username", t.session.Username,
		"level", levelID,
		"score", out.Score,
		"stars", lp.Stars,
		"completed", lp.Completed,
	)
	return &lp
}

// TestQuestions returns the questions of an assessment.
func (t *Tutor) TestQuestions(kind model.TestKind) ([]model.Question, error) {
	qs := t.catalog.Test(kind)
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTest, kind)
	}
	return qs, nil
}

// SubmitTest scores a full answer vector and records the result. Unanswered
// questions are progress.NoSelection.
func (t *Tutor) SubmitTest(kind model.TestKind, answers []int) (int, error) {
	if !t.LoggedIn() {
		return 0, ErrNotLoggedIn
	}
	qs, err := t.TestQuestions(kind)
	if err != nil {
		return 0, err
	}
	score, err := progress.ScoreTest(qs, answers)
	if err != nil {
		return 0, err
	}
	t.progress = progress.MergeTest(t.progress, kind, score)
	t.persist()
	slog.Info("test submitted", "username", t.session.Username, "kind", kind, "score", score)
	return score, nil
}

// UnlockedLevels returns the ids of the playable levels.
func (t *Tutor) UnlockedLevels() []string {
	return progress.UnlockedLevels(t.catalog.Levels(), t.progress)
}

// Certificates returns the certificates earned by the logged-in learner.
func (t *Tutor) Certificates() []model.CertificateDescriptor {
	if t.profile == nil {
		return nil
	}
	return progress.Certificates(*t.profile, t.progress, t.catalog.Levels(), t.now())
}

func (t *Tutor) persist() {
	if !t.LoggedIn() {
		return
	}
	t.accounts.Update(t.session, *t.profile, t.progress)
}
