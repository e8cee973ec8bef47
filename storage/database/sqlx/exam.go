package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/bukhari/academy/core/exam"
)

type questionRow struct {
	ID            string    `db:"id"`
	Level         string    `db:"level"`
	Kind          string    `db:"kind"`
	Question      string    `db:"question"`
	Options       []byte    `db:"options"`
	CorrectAnswer []byte    `db:"correct_answer"`
	Type          string    `db:"type"`
	Points        int       `db:"points"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r questionRow) toQuestion() (exam.Question, error) {
	q := exam.Question{
		ID:        r.ID,
		Level:     r.Level,
		Kind:      r.Kind,
		Question:  r.Question,
		Type:      r.Type,
		Points:    r.Points,
		CreatedAt: r.CreatedAt,
	}
	if err := json.Unmarshal(r.Options, &q.Options); err != nil {
		return exam.Question{}, err
	}
	if err := json.Unmarshal(r.CorrectAnswer, &q.CorrectAnswer); err != nil {
		return exam.Question{}, err
	}
	return q, nil
}

type attemptRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	Level       string    `db:"level"`
	Kind        string    `db:"kind"`
	QuestionIDs []byte    `db:"question_ids"`
	Answers     []byte    `db:"answers"`
	StartedAt   time.Time `db:"started_at"`
	SubmittedAt null.Time `db:"submitted_at"`
}

func (r attemptRow) toAttempt() (exam.Attempt, error) {
	att := exam.Attempt{
		ID:          r.ID,
		StudentID:   r.StudentID,
		Level:       r.Level,
		Kind:        r.Kind,
		StartedAt:   r.StartedAt,
		SubmittedAt: r.SubmittedAt.Time,
	}
	if err := json.Unmarshal(r.QuestionIDs, &att.QuestionIDs); err != nil {
		return exam.Attempt{}, err
	}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &att.Answers); err != nil {
			return exam.Attempt{}, err
		}
	}
	return att, nil
}

type resultRow struct {
	ID         string    `db:"id"`
	AttemptID  string    `db:"attempt_id"`
	StudentID  string    `db:"student_id"`
	Level      string    `db:"level"`
	Kind       string    `db:"kind"`
	Score      int       `db:"score"`
	Correct    int       `db:"correct"`
	Total      int       `db:"total"`
	Percentage float64   `db:"percentage"`
	Grade      string    `db:"grade"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r resultRow) toResult() exam.Result {
	return exam.Result(r)
}

type examRepository struct {
	db *sqlx.DB
}

func NewExamRepository(db *sqlx.DB) exam.Repository {
	return &examRepository{db: db}
}

var _ exam.Repository = (*examRepository)(nil)

func (repo *examRepository) AddQuestions(ctx context.Context, qs ...exam.Question) ([]exam.Question, error) {
	q := `
	INSERT INTO test_question (id, level, kind, question, options, correct_answer, type, points, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := range qs {
		qs[i].ID = "ai-" + uuid.New().String()
		options, err := json.Marshal(qs[i].Options)
		if err != nil {
			return nil, err
		}
		answer, err := json.Marshal(qs[i].CorrectAnswer)
		if err != nil {
			return nil, err
		}
		if _, err = repo.db.ExecContext(ctx, q,
			qs[i].ID, qs[i].Level, qs[i].Kind, qs[i].Question, options, answer,
			qs[i].Type, qs[i].Points, qs[i].CreatedAt); err != nil {
			return nil, err
		}
	}
	return qs, nil
}

func (repo *examRepository) QueryQuestions(ctx context.Context, level, kind string) ([]exam.Question, error) {
	var rows []questionRow
	q := `SELECT * FROM test_question WHERE level = $1 AND kind = $2`
	if err := repo.db.SelectContext(ctx, &rows, q, level, kind); err != nil {
		return nil, err
	}
	questions := make([]exam.Question, len(rows))
	for i, r := range rows {
		var err error
		if questions[i], err = r.toQuestion(); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (repo *examRepository) CreateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	att.ID = uuid.New().String()
	ids, err := json.Marshal(att.QuestionIDs)
	if err != nil {
		return exam.Attempt{}, err
	}
	q := `
	INSERT INTO test_attempt (id, student_id, level, kind, question_ids, started_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = repo.db.ExecContext(ctx, q, att.ID, att.StudentID, att.Level, att.Kind, ids, att.StartedAt)
	return att, err
}

func (repo *examRepository) GetAttemptByID(ctx context.Context, id string) (exam.Attempt, error) {
	var row attemptRow
	q := `SELECT * FROM test_attempt WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return exam.Attempt{}, trapNoRowsErr(err, exam.ErrAttemptNotFound)
	}
	return row.toAttempt()
}

func (repo *examRepository) UpdateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	answers, err := json.Marshal(att.Answers)
	if err != nil {
		return exam.Attempt{}, err
	}
	q := `UPDATE test_attempt SET answers = $2, submitted_at = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, att.ID, answers, null.TimeFrom(att.SubmittedAt))
	if err != nil {
		return exam.Attempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	return att, nil
}

func (repo *examRepository) CreateResult(ctx context.Context, res exam.Result) (exam.Result, error) {
	res.ID = uuid.New().String()
	q := `
	INSERT INTO test_result (id, attempt_id, student_id, level, kind, score, correct, total, percentage, grade, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		res.ID, res.AttemptID, res.StudentID, res.Level, res.Kind,
		res.Score, res.Correct, res.Total, res.Percentage, res.Grade, res.CreatedAt)
	return res, err
}

func (repo *examRepository) QueryResultsByStudent(ctx context.Context, studentID string) ([]exam.Result, error) {
	q := `SELECT * FROM test_result WHERE student_id = $1 ORDER BY created_at DESC`
	return repo.queryResults(ctx, q, studentID)
}

func (repo *examRepository) QueryAllResults(ctx context.Context) ([]exam.Result, error) {
	q := `SELECT * FROM test_result ORDER BY created_at DESC`
	return repo.queryResults(ctx, q)
}

func (repo *examRepository) queryResults(ctx context.Context, q string, args ...interface{}) ([]exam.Result, error) {
	var rows []resultRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	results := make([]exam.Result, len(rows))
	for i, r := range rows {
		results[i] = r.toResult()
	}
	return results, nil
}
