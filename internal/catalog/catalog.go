// Package catalog holds the static practice levels, assessment questions and
// lessons shipped with the binary.
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	ErrLevelNotFound  = errors.New("level not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// Catalog is the read-only content, indexed by id.
type Catalog struct {
	levels     []model.Level
	levelIndex map[string]int
	tests      map[model.TestKind][]model.Question
	lessons    []model.Lesson
	lessonByID map[string]int
}

type testsFile struct {
	Pre  []model.Question `json:"pre"`
	Post []model.Question `json:"post"`
}

// Load parses and validates the embedded content.
func Load() (*Catalog, error) {
	var levels []model.Level
	if err := readJSON("data/levels.json", &levels); err != nil {
		return nil, err
	}
	var tests testsFile
	if err := readJSON("data/tests.json", &tests); err != nil {
		return nil, err
	}
	var lessons []model.Lesson
	if err := readJSON("data/lessons.json", &lessons); err != nil {
		return nil, err
	}
	return New(levels, map[model.TestKind][]model.Question{
		model.TestPre:  tests.Pre,
		model.TestPost: tests.Post,
	}, lessons)
}

// New builds a catalog from explicit content. Levels keep their order, which
// defines the unlock chain.
func New(levels []model.Level, tests map[model.TestKind][]model.Question, lessons []model.Lesson) (*Catalog, error) {
	c := &Catalog{
		levels:     levels,
		levelIndex: make(map[string]int, len(levels)),
		tests:      tests,
		lessons:    lessons,
		lessonByID: make(map[string]int, len(lessons)),
	}
	for i, l := range levels {
		if _, dup := c.levelIndex[l.ID]; dup {
			return nil, fmt.Errorf("duplicate level id %q", l.ID)
		}
		if len(l.Questions) != model.QuestionsPerLevel {
			return nil, fmt.Errorf("level %s: %d questions, want %d", l.ID, len(l.Questions), model.QuestionsPerLevel)
		}
		if err := checkQuestions(l.Questions); err != nil {
			return nil, fmt.Errorf("level %s: %w", l.ID, err)
		}
		c.levelIndex[l.ID] = i
	}
	for kind, qs := range tests {
		if len(qs) != model.QuestionsPerTest {
			return nil, fmt.Errorf("%s-test: %d questions, want %d", kind, len(qs), model.QuestionsPerTest)
		}
		if err := checkQuestions(qs); err != nil {
			return nil, fmt.Errorf("%s-test: %w", kind, err)
		}
	}
	for i, l := range lessons {
		if _, dup := c.lessonByID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		c.lessonByID[l.ID] = i
	}
	return c, nil
}

// Levels returns the levels in unlock order.
func (c *Catalog) Levels() []model.Level {
	return c.levels
}

// Level returns a level and its position in the unlock chain.
func (c *Catalog) Level(id string) (model.Level, int, error) {
	i, ok := c.levelIndex[id]
	if !ok {
		return model.Level{}, -1, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
	}
	return c.levels[i], i, nil
}

// Test returns the questions of the pre or post assessment.
func (c *Catalog) Test(kind model.TestKind) []model.Question {
	return c.tests[kind]
}

// Lessons returns all lessons.
func (c *Catalog) Lessons() []model.Lesson {
	return c.lessons
}

// Lesson returns a lesson by id.
func (c *Catalog) Lesson(id string) (model.Lesson, error) {
	i, ok := c.lessonByID[id]
	if !ok {
		return model.Lesson{}, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
	}
	return c.lessons[i], nil
}

func checkQuestions(qs []model.Question) error {
	for _, q := range qs {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %s: correct answer %d out of range", q.ID, q.CorrectAnswer)
		}
	}
	return nil
}

func readJSON(name string, v any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
