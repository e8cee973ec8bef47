package school

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/user"
)

var (
	// errors
	ErrGroupNotFound    = errors.New("group not found")
	ErrGradeNotFound    = errors.New("grade not found")
	ErrHomeworkNotFound = errors.New("homework not found")
	ErrNewsNotFound     = errors.New("news not found")
	ErrForbidden        = errors.New("operation not allowed")
)

var monthNames = []string{
	"Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun",
	"Iyul", "Avgust", "Sentabr", "Oktabr", "Noyabr", "Dekabr",
}

// MonthName renders a "YYYY-MM" month in Uzbek, e.g. "Sentabr 2026".
func MonthName(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]Group, error)

		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		QueryGradesByStudent(ctx context.Context, studentID string) ([]Grade, error)
		QueryGradesByTeacher(ctx context.Context, teacherID string) ([]Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error

		CreateHomework(ctx context.Context, hw Homework) (Homework, error)
		QueryHomeworkByStudent(ctx context.Context, studentID string) ([]Homework, error)
		GetHomeworkByID(ctx context.Context, id string) (Homework, error)
		UpdateHomework(ctx context.Context, hw Homework) (Homework, error)

		// UpsertAttendance keeps exactly one record per (StudentID, Date).
		UpsertAttendance(ctx context.Context, att Attendance) (Attendance, error)
		QueryAttendanceByDate(ctx context.Context, teacherID, date string) ([]Attendance, error)
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)

		// UpsertPayment keeps exactly one record per (StudentID, Month).
		UpsertPayment(ctx context.Context, pmt Payment) (Payment, error)
		QueryPaymentsByMonth(ctx context.Context, month string) ([]Payment, error)
		QueryPaymentsByStudent(ctx context.Context, studentID string) ([]Payment, error)

		CreateNews(ctx context.Context, n News) (News, error)
		QueryAllNews(ctx context.Context) ([]News, error)
		DeleteNews(ctx context.Context, id string) error

		CreateComment(ctx context.Context, cmt Comment) (Comment, error)
		QueryCommentsByStudent(ctx context.Context, studentID string) ([]Comment, error)
	}

	Service interface {
		CreateGroup(ctx context.Context, ng NewGroup) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]Group, error)

		AddGrade(ctx context.Context, ng NewGrade) (Grade, error)
		QueryGradesByStudent(ctx context.Context, studentID string) ([]Grade, error)
		QueryGradesByTeacher(ctx context.Context, teacherID string) ([]Grade, error)
		// DeleteGrade removes a grade; only the teacher who recorded it may.
		DeleteGrade(ctx context.Context, id, teacherID string) error

		CreateHomework(ctx context.Context, nh NewHomework) (Homework, error)
		QueryHomeworkByStudent(ctx context.Context, studentID string) ([]Homework, error)
		// SetHomeworkCompleted flips the completion flag. A non-empty
		// studentID restricts the operation to that student's own homework.
		SetHomeworkCompleted(ctx context.Context, id string, completed bool, studentID string) (Homework, error)

		MarkAttendance(ctx context.Context, na NewAttendance) (Attendance, error)
		QueryAttendanceByDate(ctx context.Context, teacherID, date string) ([]Attendance, error)
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)

		RecordPayment(ctx context.Context, np NewPayment) (Payment, error)
		QueryPaymentsByMonth(ctx context.Context, month string) ([]Payment, error)
		QueryPaymentsByStudent(ctx context.Context, studentID string) ([]Payment, error)
		// SendPaymentReminders emails every active student whose payment for
		// the month is not fully settled. Returns the number of mails queued.
		SendPaymentReminders(ctx context.Context, month string) (int, error)

		CreateNews(ctx context.Context, nn NewNews) (News, error)
		QueryAllNews(ctx context.Context) ([]News, error)
		DeleteNews(ctx context.Context, id string) error

		AddComment(ctx context.Context, nc NewComment) (Comment, error)
		QueryCommentsByStudent(ctx context.Context, studentID string) ([]Comment, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
	}
}

func (svc *service) CreateGroup(ctx context.Context, ng NewGroup) (Group, error) {
	grp := Group{
		Name:      ng.Name,
		TeacherID: ng.TeacherID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *service) QueryAllGroups(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *service) GetGroupByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *service) QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]Group, error) {
	return svc.repo.QueryGroupsByTeacher(ctx, teacherID)
}

func (svc *service) AddGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	grd := Grade{
		StudentID: ng.StudentID,
		TeacherID: ng.TeacherID,
		Value:     ng.Value,
		Bonus:     ng.Bonus,
		Note:      ng.Note,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateGrade(ctx, grd)
}

func (svc *service) QueryGradesByStudent(ctx context.Context, studentID string) ([]Grade, error) {
	return svc.repo.QueryGradesByStudent(ctx, studentID)
}

func (svc *service) QueryGradesByTeacher(ctx context.Context, teacherID string) ([]Grade, error) {
	return svc.repo.QueryGradesByTeacher(ctx, teacherID)
}

func (svc *service) DeleteGrade(ctx context.Context, id, teacherID string) error {
	grd, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return err
	}
	if grd.TeacherID != teacherID {
		return ErrForbidden
	}
	return svc.repo.DeleteGrade(ctx, id)
}

func (svc *service) CreateHomework(ctx context.Context, nh NewHomework) (Homework, error) {
	now := time.Now().UTC()
	hw := Homework{
		StudentID:   nh.StudentID,
		TeacherID:   nh.TeacherID,
		Title:       nh.Title,
		Description: nh.Description,
		DueDate:     nh.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateHomework(ctx, hw)
}

func (svc *service) QueryHomeworkByStudent(ctx context.Context, studentID string) ([]Homework, error) {
	return svc.repo.QueryHomeworkByStudent(ctx, studentID)
}

func (svc *service) SetHomeworkCompleted(ctx context.Context, id string, completed bool, studentID string) (Homework, error) {
	hw, err := svc.repo.GetHomeworkByID(ctx, id)
	if err != nil {
		return Homework{}, err
	}
	if studentID != "" && hw.StudentID != studentID {
		return Homework{}, ErrForbidden
	}
	hw.IsCompleted = completed
	hw.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateHomework(ctx, hw)
}

func (svc *service) MarkAttendance(ctx context.Context, na NewAttendance) (Attendance, error) {
	att := Attendance{
		StudentID: na.StudentID,
		TeacherID: na.TeacherID,
		Date:      na.Date,
		Status:    na.Status,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.UpsertAttendance(ctx, att)
}

func (svc *service) QueryAttendanceByDate(ctx context.Context, teacherID, date string) ([]Attendance, error) {
	return svc.repo.QueryAttendanceByDate(ctx, teacherID, date)
}

func (svc *service) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	return svc.repo.QueryAttendanceByStudent(ctx, studentID)
}

func (svc *service) RecordPayment(ctx context.Context, np NewPayment) (Payment, error) {
	pmt := Payment{
		StudentID:  np.StudentID,
		Month:      np.Month,
		Amount:     np.Amount,
		PaidAmount: np.PaidAmount,
		Status:     PaymentStatusFor(np.Amount, np.PaidAmount),
		Note:       np.Note,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpsertPayment(ctx, pmt)
}

func (svc *service) QueryPaymentsByMonth(ctx context.Context, month string) ([]Payment, error) {
	return svc.repo.QueryPaymentsByMonth(ctx, month)
}

func (svc *service) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]Payment, error) {
	return svc.repo.QueryPaymentsByStudent(ctx, studentID)
}

func (svc *service) SendPaymentReminders(ctx context.Context, month string) (int, error) {
	payments, err := svc.repo.QueryPaymentsByMonth(ctx, month)
	if err != nil {
		return 0, err
	}
	byStudent := make(map[string]Payment, len(payments))
	for _, p := range payments {
		byStudent[p.StudentID] = p
	}

	students, err := svc.usrSvc.Filter(ctx, user.QueryFilter{Role: user.RoleStudent})
	if err != nil {
		return 0, err
	}

	var msgs []*core.EmailMessage
	for _, std := range students {
		if !std.Active() {
			continue
		}
		pmt, ok := byStudent[std.ID]
		if ok && pmt.Status == PaymentPaid {
			continue
		}
		amount := DefaultPaymentAmount
		paid := 0
		if ok {
			amount = pmt.Amount
			paid = pmt.PaidAmount
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: std.Name(), Address: std.Email}},
			Subject:      fmt.Sprintf("To'lov eslatmasi - %s", MonthName(month)),
			TemplateName: "payment-reminder",
			TemplateData: struct {
				FirstName  string
				Month      string
				Amount     int
				PaidAmount int
				Remaining  int
			}{std.FirstName, MonthName(month), amount, paid, amount - paid},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return len(msgs), nil
}

func (svc *service) CreateNews(ctx context.Context, nn NewNews) (News, error) {
	now := time.Now().UTC()
	n := News{
		Title:     nn.Title,
		Content:   nn.Content,
		AuthorID:  nn.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateNews(ctx, n)
}

func (svc *service) QueryAllNews(ctx context.Context) ([]News, error) {
	return svc.repo.QueryAllNews(ctx)
}

func (svc *service) DeleteNews(ctx context.Context, id string) error {
	return svc.repo.DeleteNews(ctx, id)
}

func (svc *service) AddComment(ctx context.Context, nc NewComment) (Comment, error) {
	cmt := Comment{
		StudentID: nc.StudentID,
		TeacherID: nc.TeacherID,
		Content:   nc.Content,
		Type:      nc.Type,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateComment(ctx, cmt)
}

func (svc *service) QueryCommentsByStudent(ctx context.Context, studentID string) ([]Comment, error) {
	return svc.repo.QueryCommentsByStudent(ctx, studentID)
}
