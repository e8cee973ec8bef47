package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/bukhari/academy/apps/api/echo"
	"github.com/bukhari/academy/core/school"
	"github.com/bukhari/academy/core/user"
)

func TestGroupAPI(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	var grp school.Group

	t.Run("only admin creates groups", func(t *testing.T) {
		body := marchallObj(t, school.NewGroup{Name: "Beginner A", TeacherID: teacher.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/groups", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grp))
		assert.NotEmpty(t, grp.ID)
	})

	t.Run("everyone lists groups", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var groups []school.Group
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
		assert.Len(t, groups, 1)
	})

	t.Run("teacher lists own groups", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/mine", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var groups []school.Group
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
		if assert.Len(t, groups, 1) {
			assert.Equal(t, grp.ID, groups[0].ID)
		}
	})

	t.Run("unknown group is 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/lol", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGradeAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	other := createUser(t, "Olim", "Toshev", "olim@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	var grd school.Grade

	t.Run("teacher adds a grade", func(t *testing.T) {
		body := marchallObj(t, school.NewGrade{StudentID: student.ID, Value: 85, Bonus: 5})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grd))
		assert.Equal(t, teacher.ID, grd.TeacherID) // stamped from the token
		assert.Equal(t, 90, grd.Total())
	})

	t.Run("out of range grade is rejected", func(t *testing.T) {
		body := marchallObj(t, school.NewGrade{StudentID: student.ID, Value: 101})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student sees own grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades/student/"+student.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var grades []school.Grade
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grades))
		assert.Len(t, grades, 1)
	})

	t.Run("student cannot see another student's grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades/student/"+other.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("only the recording teacher deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/grades/"+grd.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/grades/"+grd.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/grades/"+grd.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHomeworkAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)
	other := createUser(t, "Vali", "Aliyev", "vali@test.test", "s3cretpwd", user.RoleStudent, nil)

	var hw school.Homework

	t.Run("teacher assigns homework", func(t *testing.T) {
		body := marchallObj(t, school.NewHomework{
			StudentID:   student.ID,
			Title:       "Unit 3 exercises",
			Description: "Workbook pages 24-26",
			DueDate:     "2026-09-15",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/homework", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hw))
		assert.False(t, hw.IsCompleted)
	})

	t.Run("bad due date is rejected", func(t *testing.T) {
		body := marchallObj(t, school.NewHomework{StudentID: student.ID, Title: "x", DueDate: "15/09/2026"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/homework", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student completes own homework", func(t *testing.T) {
		body := marchallObj(t, school.UpdateHomework{IsCompleted: true})
		req, rec := newAuthRequest(http.MethodPut, "/v1/homework/"+hw.ID+"/complete", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated school.Homework
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.True(t, updated.IsCompleted)
	})

	t.Run("another student cannot touch it", func(t *testing.T) {
		body := marchallObj(t, school.UpdateHomework{IsCompleted: false})
		req, rec := newAuthRequest(http.MethodPut, "/v1/homework/"+hw.ID+"/complete", getToken(t, other), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher flips it back", func(t *testing.T) {
		body := marchallObj(t, school.UpdateHomework{IsCompleted: false})
		req, rec := newAuthRequest(http.MethodPut, "/v1/homework/"+hw.ID+"/complete", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAttendanceAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	mark := func(status string) *school.Attendance {
		body := marchallObj(t, school.NewAttendance{StudentID: student.ID, Date: "2026-09-01", Status: status})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var att school.Attendance
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
		return &att
	}

	first := mark(school.AttendanceAbsent)
	second := mark(school.AttendancePresent)

	t.Run("same day marks collapse to one record", func(t *testing.T) {
		assert.Equal(t, first.ID, second.ID)

		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?date=2026-09-01", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var atts []school.Attendance
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
		if assert.Len(t, atts, 1) {
			assert.Equal(t, school.AttendancePresent, atts[0].Status)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		body := marchallObj(t, school.NewAttendance{StudentID: student.ID, Date: "2026-09-01", Status: "lol"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("date param is required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student sees own history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/student/"+student.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var atts []school.Attendance
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
		assert.Len(t, atts, 1)
	})
}

func TestPaymentAPI(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	t.Run("partial payment derives status", func(t *testing.T) {
		body := marchallObj(t, school.NewPayment{StudentID: student.ID, Month: "2026-09", Amount: 500000, PaidAmount: 200000})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var pmt school.Payment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmt))
		assert.Equal(t, school.PaymentPartial, pmt.Status)
		assert.Equal(t, 300000, pmt.Remaining())
	})

	t.Run("settling updates the same record", func(t *testing.T) {
		body := marchallObj(t, school.NewPayment{StudentID: student.ID, Month: "2026-09", Amount: 500000, PaidAmount: 500000})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/payments?month=2026-09", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var pmts []school.Payment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pmts))
		if assert.Len(t, pmts, 1) {
			assert.Equal(t, school.PaymentPaid, pmts[0].Status)
		}
	})

	t.Run("bad month is rejected", func(t *testing.T) {
		body := marchallObj(t, school.NewPayment{StudentID: student.ID, Month: "sentabr", Amount: 500000})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("students cannot record payments", func(t *testing.T) {
		body := marchallObj(t, school.NewPayment{StudentID: student.ID, Month: "2026-10", Amount: 500000})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("reminders skip settled students", func(t *testing.T) {
		// the only student fully paid 2026-09; nothing to send
		body := marchallObj(t, PaymentReminderRequest{Month: "2026-09"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments/reminders", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp PaymentReminderResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Sent)

		// but everyone owes for a fresh month
		body = marchallObj(t, PaymentReminderRequest{Month: "2026-10"})
		req, rec = newAuthRequest(http.MethodPost, "/v1/payments/reminders", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Sent)
	})
}

func TestNewsAPI(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	var n school.News

	t.Run("staff publishes news", func(t *testing.T) {
		body := marchallObj(t, school.NewNews{Title: "Yangi o'quv yili", Content: "Darslar 2-sentabrdan boshlanadi."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/news", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
		assert.Equal(t, teacher.ID, n.AuthorID)
	})

	t.Run("students cannot publish", func(t *testing.T) {
		body := marchallObj(t, school.NewNews{Title: "lol", Content: "lol"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/news", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("everyone reads the feed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/news", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var news []school.News
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &news))
		assert.Len(t, news, 1)
	})

	t.Run("admin deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/news/"+n.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/news/"+n.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCommentAPI(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	t.Run("suggestions are served", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, school.CommentSuggestions),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/comments/suggestions", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("teacher comments on a student", func(t *testing.T) {
		body := marchallObj(t, school.NewComment{
			StudentID: student.ID,
			Content:   school.CommentSuggestions[school.CommentPositive][0],
			Type:      school.CommentPositive,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/comments", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		body := marchallObj(t, school.NewComment{StudentID: student.ID, Content: "lol", Type: "angry"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/comments", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student reads own comments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/comments/student/"+student.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var comments []school.Comment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
		if assert.Len(t, comments, 1) {
			assert.Equal(t, teacher.ID, comments[0].TeacherID)
		}
	})
}
