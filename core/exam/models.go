package exam

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Kinds
const (
	KindGrammar   = "grammar"
	KindReading   = "reading"
	KindListening = "listening"
)

// Question types
const (
	TypeSingle   = "single"
	TypeMultiple = "multiple"
)

// DefaultQuestionCount is how many questions a test draws when the
// caller does not ask for a specific count.
const DefaultQuestionCount = 30

var (
	AllLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}
	AllKinds  = []string{KindGrammar, KindReading, KindListening}
)

type Question struct {
	ID            string    `json:"id"`
	Level         string    `json:"level"`
	Kind          string    `json:"kind"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer []int     `json:"correct_answer"`
	Type          string    `json:"type"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// Attempt is a student's in-flight or submitted test sitting. The drawn
// question IDs are pinned so a resubmission cannot swap the paper.
type Attempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Level       string    `json:"level"`
	Kind        string    `json:"kind"`
	QuestionIDs []string  `json:"question_ids"`
	Answers     [][]int   `json:"answers"`
	StartedAt   time.Time `json:"started_at"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (a Attempt) Submitted() bool { return !a.SubmittedAt.IsZero() }

type Result struct {
	ID         string    `json:"id"`
	AttemptID  string    `json:"attempt_id"`
	StudentID  string    `json:"student_id"`
	Level      string    `json:"level"`
	Kind       string    `json:"kind"`
	Score      int       `json:"score"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	Grade      string    `json:"grade"`
	CreatedAt  time.Time `json:"created_at"`
}

// StartAttempt contains information needed to draw a new test.
type StartAttempt struct {
	Level string `json:"level" validate:"required,examlevel"`
	Kind  string `json:"kind" validate:"required,examkind"`
	Count int    `json:"count" validate:"omitempty,min=1,max=50"`
}

func (sa *StartAttempt) Validate(validate *validator.Validate) error {
	return validate.Struct(sa)
}

// SubmitAttempt carries a student's answers, indexed like the drawn questions.
type SubmitAttempt struct {
	AttemptID string  `json:"attempt_id" validate:"required"`
	Answers   [][]int `json:"answers" validate:"required"`
}

func (sa *SubmitAttempt) Validate(validate *validator.Validate) error {
	return validate.Struct(sa)
}

// QuestionFilter selects a slice of the question bank.
type QuestionFilter struct {
	Level string `query:"level" validate:"required,examlevel"`
	Kind  string `query:"kind" validate:"required,examkind"`
}

func (qf *QuestionFilter) Validate(validate *validator.Validate) error {
	return validate.Struct(qf)
}

// GenerateQuestions is an admin request to have new bank questions written.
type GenerateQuestions struct {
	Level string `json:"level" validate:"required,examlevel"`
	Kind  string `json:"kind" validate:"required,examkind"`
	Count int    `json:"count" validate:"omitempty,min=1,max=20"`
}

func (gq *GenerateQuestions) Validate(validate *validator.Validate) error {
	return validate.Struct(gq)
}
