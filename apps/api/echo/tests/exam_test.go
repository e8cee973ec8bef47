package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/bukhari/academy/apps/api/echo"
	"github.com/bukhari/academy/core/exam"
	"github.com/bukhari/academy/core/user"
)

func TestExamAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	var start StartAttemptResponse

	t.Run("student draws a paper", func(t *testing.T) {
		body := marchallObj(t, exam.StartAttempt{Level: exam.LevelBeginner, Kind: exam.KindGrammar, Count: 5})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/start", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
		assert.NotEmpty(t, start.AttemptID)
		assert.Len(t, start.Questions, 5)

		// the answer key never leaves the server
		assert.NotContains(t, rec.Body.String(), "correct_answer")
	})

	t.Run("teachers cannot sit tests", func(t *testing.T) {
		body := marchallObj(t, exam.StartAttempt{Level: exam.LevelBeginner, Kind: exam.KindGrammar})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/start", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown level is rejected", func(t *testing.T) {
		body := marchallObj(t, exam.StartAttempt{Level: "fluent", Kind: exam.KindGrammar})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/start", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("blank answers score zero", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{
			AttemptID: start.AttemptID,
			Answers:   [][]int{{}, {}, {}, {}, {}},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/submit", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res exam.Result
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 0, res.Score)
		assert.Equal(t, 0, res.Correct)
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, "Qoniqarsiz", res.Grade)
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{AttemptID: start.AttemptID, Answers: [][]int{{0}}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/submit", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown attempt is 404", func(t *testing.T) {
		body := marchallObj(t, exam.SubmitAttempt{AttemptID: "lol", Answers: [][]int{{0}}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/submit", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("student reads own results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/results", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var results []exam.Result
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		assert.Len(t, results, 1)
	})

	t.Run("staff reads everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/results/all", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var results []exam.Result
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		assert.Len(t, results, 1)

		req, rec = newAuthRequest(http.MethodGet, "/v1/tests/results/student/"+student.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("students cannot read everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/results/all", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestExamQuestionsAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	t.Run("staff sees the bank with answer keys", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/questions?level=beginner&kind=grammar", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var questions []exam.Question
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &questions))
		assert.NotEmpty(t, questions)
		for _, q := range questions {
			assert.Equal(t, exam.LevelBeginner, q.Level)
			assert.Equal(t, exam.KindGrammar, q.Kind)
			assert.NotEmpty(t, q.CorrectAnswer)
		}
	})

	t.Run("students cannot see answer keys", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/questions?level=beginner&kind=grammar", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("level and kind are required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tests/questions", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExamGenerateAPI(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)

	t.Run("admin only", func(t *testing.T) {
		body := marchallObj(t, exam.GenerateQuestions{Level: exam.LevelAdvanced, Kind: exam.KindListening, Count: 3})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/questions/generate", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("generated questions join the bank", func(t *testing.T) {
		body := marchallObj(t, exam.GenerateQuestions{Level: exam.LevelAdvanced, Kind: exam.KindListening, Count: 3})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tests/questions/generate", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var questions []exam.Question
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &questions))
		assert.Len(t, questions, 3)
		for _, q := range questions {
			assert.NotEmpty(t, q.ID)
			assert.Equal(t, exam.LevelAdvanced, q.Level)
			assert.Equal(t, exam.KindListening, q.Kind)
		}

		stored, err := examSvc.AllResults(ctxBg())
		assert.NoError(t, err)
		assert.Empty(t, stored) // generation does not fabricate results
	})
}
