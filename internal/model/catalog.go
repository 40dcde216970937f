package model

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Operation is the fraction operation a level or lesson practices.
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
)

// VisualFraction is an optional pictured fraction for a question.
type VisualFraction struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Question is a multiple-choice question.
type Question struct {
	ID             string          `json:"id"`
	Text           string          `json:"question"`
	Options        []string        `json:"options"`
	CorrectAnswer  int             `json:"correct_answer"`
	Explanation    string          `json:"explanation"`
	Difficulty     Difficulty      `json:"difficulty"`
	VisualFraction *VisualFraction `json:"visual_fraction,omitempty"`
}

// IsCorrect reports whether selected is the right option.
func (q Question) IsCorrect(selected int) bool {
	return selected == q.CorrectAnswer
}

// Level is one practice game level.
type Level struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	Operation   Operation  `json:"operation"`
	Category    string     `json:"category"`
	Questions   []Question `json:"questions"`
}

// LessonExample is a worked example inside a lesson.
type LessonExample struct {
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	Explanation string `json:"explanation"`
}

// Lesson is a read-only explanation of one sub-skill.
type Lesson struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Operation    Operation       `json:"operation"`
	Introduction string          `json:"introduction"`
	Steps        []string        `json:"steps"`
	Examples     []LessonExample `json:"examples"`
	Tips         []string        `json:"tips"`
}
