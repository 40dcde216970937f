package model

import (
	"maps"
	"time"
)

const (
	// QuestionsPerLevel is the number of questions in one level attempt.
	QuestionsPerLevel = 5
	// PassingScore is the level score needed for mastery.
	PassingScore = 4
	// QuestionsPerTest is the number of questions in a pre or post test.
	QuestionsPerTest = 20
	// MaxHints is the number of hints available per level attempt.
	MaxHints = 3
	// MaxSkips is the number of skips available per level attempt.
	MaxSkips = 3
)

// Profile holds the learner details entered at registration.
type Profile struct {
	Name       string `json:"name"`
	GradeLevel string `json:"gradeLevel"`
	Section    string `json:"section"`
	CreatedAt  string `json:"createdAt"`
}

// LevelProgress is the stored result history for one level.
type LevelProgress struct {
	Completed  bool   `json:"completed"`
	BestScore  int    `json:"bestScore"`
	Trials     int    `json:"trials"`
	Stars      int    `json:"stars"`
	UnlockedAt string `json:"unlockedAt,omitempty"`
}

// GameProgress is the per-account progress aggregate.
type GameProgress struct {
	Levels            map[string]LevelProgress `json:"levels"`
	PreTestCompleted  bool                     `json:"preTestCompleted"`
	PostTestCompleted bool                     `json:"postTestCompleted"`
	PreTestScore      int                      `json:"preTestScore"`
	PostTestScore     int                      `json:"postTestScore"`
	PreTestTrials     int                      `json:"preTestTrials"`
	PostTestTrials    int                      `json:"postTestTrials"`
	TotalStars        int                      `json:"totalStars"`
}

// DefaultProgress returns the all-zero progress of a new account.
func DefaultProgress() GameProgress {
	return GameProgress{Levels: map[string]LevelProgress{}}
}

// Clone returns a deep copy. Levels is never nil in the result.
func (p GameProgress) Clone() GameProgress {
	out := p
	out.Levels = make(map[string]LevelProgress, len(p.Levels))
	maps.Copy(out.Levels, p.Levels)
	return out
}

// UserAccount is one stored credential record.
type UserAccount struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Profile  Profile      `json:"profile"`
	Progress GameProgress `json:"progress"`
}

// Session identifies the logged-in account for the lifetime of a login.
type Session struct {
	ID        string
	Username  string
	StartedAt time.Time
}

// Valid reports whether the session refers to an account.
func (s Session) Valid() bool {
	return s.Username != ""
}

// Snapshot is a copy of an account's profile and progress.
type Snapshot struct {
	Profile  Profile
	Progress GameProgress
}

// TestKind selects the pre or post assessment.
type TestKind string

const (
	TestPre  TestKind = "pre"
	TestPost TestKind = "post"
)

// StartupPolicy controls what happens to a stored session pointer at startup.
type StartupPolicy string

const (
	// StartupPurge deletes all stored data so the app always starts logged out.
	StartupPurge StartupPolicy = "purge"
	// StartupResume adopts an existing session pointer.
	StartupResume StartupPolicy = "resume"
)

// TutorConfig holds runtime parameters set via CLI flags.
type TutorConfig struct {
	Startup      StartupPolicy
	LevelSeconds int // countdown per practice level attempt
	TestSeconds  int // countdown per assessment
	BcryptCost   int
	Lang         string
}
