package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/school"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.Service, validate *validator.Validate) {
	api := schoolApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("", jwt)

	// groups
	ag.POST("/groups", api.createGroup, adminMiddleware())
	ag.GET("/groups", api.queryGroups)
	ag.GET("/groups/mine", api.queryMyGroups, teacherMiddleware())
	ag.GET("/groups/:id", api.retrieveGroup)

	// grades
	ag.POST("/grades", api.addGrade, teacherMiddleware())
	ag.GET("/grades", api.queryMyGrades, teacherMiddleware())
	ag.GET("/grades/student/:id", api.queryStudentGrades, selfOrStaffMiddleware())
	ag.DELETE("/grades/:id", api.deleteGrade, teacherMiddleware())

	// homework
	ag.POST("/homework", api.createHomework, teacherMiddleware())
	ag.GET("/homework/student/:id", api.queryStudentHomework, selfOrStaffMiddleware())
	ag.PUT("/homework/:id/complete", api.completeHomework)

	// attendance
	ag.POST("/attendance", api.markAttendance, teacherMiddleware())
	ag.GET("/attendance", api.queryAttendanceByDate, teacherMiddleware())
	ag.GET("/attendance/student/:id", api.queryStudentAttendance, selfOrStaffMiddleware())

	// payments
	ag.POST("/payments", api.recordPayment, adminMiddleware())
	ag.GET("/payments", api.queryPaymentsByMonth, adminMiddleware())
	ag.GET("/payments/student/:id", api.queryStudentPayments, selfOrStaffMiddleware())
	ag.POST("/payments/reminders", api.sendPaymentReminders, adminMiddleware())

	// news
	ag.POST("/news", api.createNews, staffMiddleware())
	ag.GET("/news", api.queryNews)
	ag.DELETE("/news/:id", api.deleteNews, adminMiddleware())

	// comments
	ag.POST("/comments", api.addComment, teacherMiddleware())
	ag.GET("/comments/suggestions", api.commentSuggestions, teacherMiddleware())
	ag.GET("/comments/student/:id", api.queryStudentComments, selfOrStaffMiddleware())
}

// Handlers

func (api *schoolApi) createGroup(ctx echo.Context) error {
	var data school.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.CreateGroup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *schoolApi) queryGroups(ctx echo.Context) error {
	groups, err := api.svc.QueryAllGroups(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []school.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *schoolApi) queryMyGroups(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	groups, err := api.svc.QueryGroupsByTeacher(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying groups by teacher")
	}
	if groups == nil {
		groups = []school.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *schoolApi) retrieveGroup(ctx echo.Context) error {
	grp, err := api.svc.GetGroupByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrGroupNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding group by ID")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *schoolApi) addGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	data.TeacherID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grd, err := api.svc.AddGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding grade")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *schoolApi) queryMyGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	grades, err := api.svc.QueryGradesByTeacher(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying grades by teacher")
	}
	if grades == nil {
		grades = []school.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *schoolApi) queryStudentGrades(ctx echo.Context) error {
	grades, err := api.svc.QueryGradesByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying grades by student")
	}
	if grades == nil {
		grades = []school.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *schoolApi) deleteGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.DeleteGrade(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		switch errors.Cause(err) {
		case school.ErrGradeNotFound:
			return errHttpNotFound
		case school.ErrForbidden:
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) createHomework(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}
	data.TeacherID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	hw, err := api.svc.CreateHomework(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating homework")
	}
	return ctx.JSON(http.StatusCreated, hw)
}

func (api *schoolApi) queryStudentHomework(ctx echo.Context) error {
	homework, err := api.svc.QueryHomeworkByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying homework by student")
	}
	if homework == nil {
		homework = []school.Homework{}
	}
	return ctx.JSON(http.StatusOK, homework)
}

func (api *schoolApi) completeHomework(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.UpdateHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHomework")
	}

	// a student may only flip their own homework
	studentID := ""
	if claims.IsStudent {
		studentID = claims.Subject
	}
	hw, err := api.svc.SetHomeworkCompleted(ctx.Request().Context(), ctx.Param("id"), data.IsCompleted, studentID)
	if err != nil {
		switch errors.Cause(err) {
		case school.ErrHomeworkNotFound:
			return errHttpNotFound
		case school.ErrForbidden:
			return errHttpForbidden
		}
		return errors.Wrap(err, "completing homework")
	}
	return ctx.JSON(http.StatusOK, hw)
}

func (api *schoolApi) markAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	data.TeacherID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.MarkAttendance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *schoolApi) queryAttendanceByDate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	date := ctx.QueryParam("date")
	if date == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date is required"})
	}

	atts, err := api.svc.QueryAttendanceByDate(ctx.Request().Context(), claims.Subject, date)
	if err != nil {
		return errors.Wrap(err, "querying attendance by date")
	}
	if atts == nil {
		atts = []school.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *schoolApi) queryStudentAttendance(ctx echo.Context) error {
	atts, err := api.svc.QueryAttendanceByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance by student")
	}
	if atts == nil {
		atts = []school.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *schoolApi) recordPayment(ctx echo.Context) error {
	var data school.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.RecordPayment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *schoolApi) queryPaymentsByMonth(ctx echo.Context) error {
	month := ctx.QueryParam("month")
	if month == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "month is required"})
	}

	pmts, err := api.svc.QueryPaymentsByMonth(ctx.Request().Context(), month)
	if err != nil {
		return errors.Wrap(err, "querying payments by month")
	}
	if pmts == nil {
		pmts = []school.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *schoolApi) queryStudentPayments(ctx echo.Context) error {
	pmts, err := api.svc.QueryPaymentsByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying payments by student")
	}
	if pmts == nil {
		pmts = []school.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *schoolApi) sendPaymentReminders(ctx echo.Context) error {
	var data PaymentReminderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentReminderRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sent, err := api.svc.SendPaymentReminders(ctx.Request().Context(), data.Month)
	if err != nil {
		return errors.Wrap(err, "sending payment reminders")
	}
	return ctx.JSON(http.StatusOK, PaymentReminderResponse{Sent: sent})
}

func (api *schoolApi) createNews(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.NewNews
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNews")
	}
	data.AuthorID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.CreateNews(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating news")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *schoolApi) queryNews(ctx echo.Context) error {
	news, err := api.svc.QueryAllNews(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying news")
	}
	if news == nil {
		news = []school.News{}
	}
	return ctx.JSON(http.StatusOK, news)
}

func (api *schoolApi) deleteNews(ctx echo.Context) error {
	if err := api.svc.DeleteNews(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == school.ErrNewsNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting news")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) addComment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data school.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	data.TeacherID = claims.Subject
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cmt, err := api.svc.AddComment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *schoolApi) commentSuggestions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, school.CommentSuggestions)
}

func (api *schoolApi) queryStudentComments(ctx echo.Context) error {
	comments, err := api.svc.QueryCommentsByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying comments by student")
	}
	if comments == nil {
		comments = []school.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

type (
	PaymentReminderRequest struct {
		Month string `json:"month" validate:"required,month"`
	}

	PaymentReminderResponse struct {
		Sent int `json:"sent"`
	}
)

func (pr *PaymentReminderRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}
