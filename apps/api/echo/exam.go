package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/exam"
)

type examApi struct {
	svc      exam.Service
	validate *validator.Validate
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc exam.Service, validate *validator.Validate) {
	api := examApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/tests", jwt)

	ag.POST("/start", api.start, studentMiddleware())
	ag.POST("/submit", api.submit, studentMiddleware())
	ag.GET("/results", api.myResults, studentMiddleware())
	ag.GET("/results/all", api.allResults, staffMiddleware())
	ag.GET("/results/student/:id", api.studentResults, staffMiddleware())
	ag.GET("/questions", api.questions, staffMiddleware())
	ag.POST("/questions/generate", api.generateQuestions, adminMiddleware())
}

// Handlers

func (api *examApi) start(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data exam.StartAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartAttempt")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, questions, err := api.svc.Start(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "starting test attempt")
	}

	// the paper never carries the answer key to the client
	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{
			ID:       q.ID,
			Level:    q.Level,
			Kind:     q.Kind,
			Question: q.Question,
			Options:  q.Options,
			Type:     q.Type,
			Points:   q.Points,
		}
	}
	return ctx.JSON(http.StatusCreated, StartAttemptResponse{
		AttemptID: att.ID,
		StartedAt: att.StartedAt.Unix(),
		Questions: views,
	})
}

func (api *examApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data exam.SubmitAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitAttempt")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		switch errors.Cause(err) {
		case exam.ErrAttemptNotFound:
			return errHttpNotFound
		case exam.ErrAttemptSubmitted:
			return core.NewValidationError(exam.ErrAttemptSubmitted)
		}
		return errors.Wrap(err, "submitting test attempt")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *examApi) myResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return api.respondResults(ctx, claims.Subject)
}

func (api *examApi) studentResults(ctx echo.Context) error {
	return api.respondResults(ctx, ctx.Param("id"))
}

func (api *examApi) respondResults(ctx echo.Context, studentID string) error {
	results, err := api.svc.ResultsByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	if results == nil {
		results = []exam.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *examApi) allResults(ctx echo.Context) error {
	results, err := api.svc.AllResults(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	if results == nil {
		results = []exam.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

// questions lists the bank for a level and kind, answer keys included.
// Staff only for that reason.
func (api *examApi) questions(ctx echo.Context) error {
	var filter exam.QuestionFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QuestionFilter")
	}
	if err := filter.Validate(api.validate); err != nil {
		return err
	}

	questions, err := api.svc.Questions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []exam.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *examApi) generateQuestions(ctx echo.Context) error {
	var data exam.GenerateQuestions
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateQuestions")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	questions, err := api.svc.GenerateQuestions(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating questions")
	}
	return ctx.JSON(http.StatusCreated, questions)
}

type (
	// QuestionView is a bank question as shown to a test taker.
	QuestionView struct {
		ID       string   `json:"id"`
		Level    string   `json:"level"`
		Kind     string   `json:"kind"`
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Type     string   `json:"type"`
		Points   int      `json:"points"`
	}

	StartAttemptResponse struct {
		AttemptID string         `json:"attempt_id"`
		StartedAt int64          `json:"started_at"`
		Questions []QuestionView `json:"questions"`
	}
)
