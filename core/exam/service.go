package exam

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrAttemptNotFound  = errors.New("test attempt not found")
	ErrAttemptSubmitted = errors.New("test attempt already submitted")
	ErrQuestionNotFound = errors.New("test question not found")
)

type (
	Repository interface {
		// AddQuestions persists extra bank questions (eg. AI-generated ones).
		AddQuestions(ctx context.Context, qs ...Question) ([]Question, error)
		QueryQuestions(ctx context.Context, level, kind string) ([]Question, error)

		CreateAttempt(ctx context.Context, att Attempt) (Attempt, error)
		GetAttemptByID(ctx context.Context, id string) (Attempt, error)
		UpdateAttempt(ctx context.Context, att Attempt) (Attempt, error)

		CreateResult(ctx context.Context, res Result) (Result, error)
		QueryResultsByStudent(ctx context.Context, studentID string) ([]Result, error)
		QueryAllResults(ctx context.Context) ([]Result, error)
	}

	// Generator writes new bank-shaped questions for a level and kind.
	Generator interface {
		Generate(ctx context.Context, level, kind string, count int) ([]Question, error)
	}

	Service interface {
		// Start draws a shuffled paper and opens an attempt for the student.
		Start(ctx context.Context, studentID string, sa StartAttempt) (Attempt, []Question, error)
		// Submit grades the attempt's answers and records the result.
		Submit(ctx context.Context, studentID string, sa SubmitAttempt) (Result, error)
		ResultsByStudent(ctx context.Context, studentID string) ([]Result, error)
		AllResults(ctx context.Context) ([]Result, error)
		// Questions lists the built-in and stored bank questions for a
		// level and kind, answer keys included.
		Questions(ctx context.Context, qf QuestionFilter) ([]Question, error)
		// GenerateQuestions has the configured Generator write new questions
		// and adds them to the bank.
		GenerateQuestions(ctx context.Context, gq GenerateQuestions) ([]Question, error)
	}

	service struct {
		repo Repository
		gen  Generator
	}
)

var _ Service = (*service)(nil)

// NewService returns an exam Service. gen may be nil when no question
// generator is configured.
func NewService(repo Repository, gen Generator) Service {
	return &service{
		repo: repo,
		gen:  gen,
	}
}

func (svc *service) Start(ctx context.Context, studentID string, sa StartAttempt) (Attempt, []Question, error) {
	count := sa.Count
	if count <= 0 {
		count = DefaultQuestionCount
	}

	pool := QuestionsFor(sa.Level, sa.Kind, count)
	extra, err := svc.repo.QueryQuestions(ctx, sa.Level, sa.Kind)
	if err != nil {
		return Attempt{}, nil, err
	}
	pool = append(pool, extra...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}
	questions := pool[:count]

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	att, err := svc.repo.CreateAttempt(ctx, Attempt{
		StudentID:   studentID,
		Level:       sa.Level,
		Kind:        sa.Kind,
		QuestionIDs: ids,
		StartedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Attempt{}, nil, err
	}
	return att, questions, nil
}

func (svc *service) Submit(ctx context.Context, studentID string, sa SubmitAttempt) (Result, error) {
	att, err := svc.repo.GetAttemptByID(ctx, sa.AttemptID)
	if err != nil {
		return Result{}, err
	}
	if att.StudentID != studentID {
		return Result{}, ErrAttemptNotFound
	}
	if att.Submitted() {
		return Result{}, ErrAttemptSubmitted
	}

	questions, err := svc.resolveQuestions(ctx, att)
	if err != nil {
		return Result{}, err
	}
	score := CalculateScore(questions, sa.Answers)

	att.Answers = sa.Answers
	att.SubmittedAt = time.Now().UTC()
	if att, err = svc.repo.UpdateAttempt(ctx, att); err != nil {
		return Result{}, err
	}

	return svc.repo.CreateResult(ctx, Result{
		AttemptID:  att.ID,
		StudentID:  att.StudentID,
		Level:      att.Level,
		Kind:       att.Kind,
		Score:      score.Score,
		Correct:    score.Correct,
		Total:      score.Total,
		Percentage: score.Percentage,
		Grade:      score.Grade,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *service) ResultsByStudent(ctx context.Context, studentID string) ([]Result, error) {
	return svc.repo.QueryResultsByStudent(ctx, studentID)
}

func (svc *service) AllResults(ctx context.Context) ([]Result, error) {
	return svc.repo.QueryAllResults(ctx)
}

func (svc *service) Questions(ctx context.Context, qf QuestionFilter) ([]Question, error) {
	var questions []Question
	for _, q := range BankQuestions(qf.Kind) {
		if q.Level == qf.Level {
			questions = append(questions, q)
		}
	}
	extra, err := svc.repo.QueryQuestions(ctx, qf.Level, qf.Kind)
	if err != nil {
		return nil, err
	}
	return append(questions, extra...), nil
}

func (svc *service) GenerateQuestions(ctx context.Context, gq GenerateQuestions) ([]Question, error) {
	if svc.gen == nil {
		return nil, errors.New("no question generator configured")
	}
	count := gq.Count
	if count <= 0 {
		count = 10
	}
	qs, err := svc.gen.Generate(ctx, gq.Level, gq.Kind, count)
	if err != nil {
		return nil, errors.Wrap(err, "generating questions")
	}
	now := time.Now().UTC()
	for i := range qs {
		qs[i].Level = gq.Level
		qs[i].Kind = gq.Kind
		qs[i].CreatedAt = now
	}
	return svc.repo.AddQuestions(ctx, qs...)
}

// resolveQuestions maps the attempt's pinned question IDs back to
// questions, looking at the built-in bank first and the repository for
// the rest.
func (svc *service) resolveQuestions(ctx context.Context, att Attempt) ([]Question, error) {
	byID := make(map[string]Question)
	for _, q := range BankQuestions(att.Kind) {
		byID[q.ID] = q
	}
	extra, err := svc.repo.QueryQuestions(ctx, att.Level, att.Kind)
	if err != nil {
		return nil, err
	}
	for _, q := range extra {
		byID[q.ID] = q
	}

	questions := make([]Question, 0, len(att.QuestionIDs))
	for _, id := range att.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			return nil, ErrQuestionNotFound
		}
		questions = append(questions, q)
	}
	return questions, nil
}
