package blobdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bukhari/academy/core/exam"
	"github.com/bukhari/academy/storage/document"
)

type examRepository struct {
	db *DB
}

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

var _ exam.Repository = (*examRepository)(nil)

func (repo *examRepository) AddQuestions(ctx context.Context, qs ...exam.Question) ([]exam.Question, error) {
	for i := range qs {
		qs[i].ID = "ai-" + uuid.New().String()
	}
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.TestQuestions = append(doc.TestQuestions, qs...)
		return nil
	})
	return qs, err
}

func (repo *examRepository) QueryQuestions(ctx context.Context, level, kind string) ([]exam.Question, error) {
	var qs []exam.Question
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, q := range doc.TestQuestions {
			if q.Level == level && q.Kind == kind {
				qs = append(qs, q)
			}
		}
		return nil
	})
	return qs, err
}

func (repo *examRepository) CreateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	att.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.TestAttempts = append(doc.TestAttempts, att)
		return nil
	})
	return att, err
}

func (repo *examRepository) GetAttemptByID(ctx context.Context, id string) (exam.Attempt, error) {
	var out exam.Attempt
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, att := range doc.TestAttempts {
			if att.ID == id {
				out = att
				return nil
			}
		}
		return exam.ErrAttemptNotFound
	})
	return out, err
}

func (repo *examRepository) UpdateAttempt(ctx context.Context, att exam.Attempt) (exam.Attempt, error) {
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, cur := range doc.TestAttempts {
			if cur.ID == att.ID {
				doc.TestAttempts[i] = att
				return nil
			}
		}
		return exam.ErrAttemptNotFound
	})
	return att, err
}

func (repo *examRepository) CreateResult(ctx context.Context, res exam.Result) (exam.Result, error) {
	res.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.TestResults = append(doc.TestResults, res)
		return nil
	})
	return res, err
}

func (repo *examRepository) QueryResultsByStudent(ctx context.Context, studentID string) ([]exam.Result, error) {
	var results []exam.Result
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, res := range doc.TestResults {
			if res.StudentID == studentID {
				results = append(results, res)
			}
		}
		return nil
	})
	sortResults(results)
	return results, err
}

func (repo *examRepository) QueryAllResults(ctx context.Context) ([]exam.Result, error) {
	var results []exam.Result
	err := repo.db.View(ctx, func(doc *document.Document) error {
		results = append(results, doc.TestResults...)
		return nil
	})
	sortResults(results)
	return results, err
}

func sortResults(results []exam.Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
}
