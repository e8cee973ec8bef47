package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/bukhari/academy/core/school"
)

type groupRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r groupRow) toGroup() school.Group {
	return school.Group(r)
}

type homeworkRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	TeacherID   string    `db:"teacher_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	IsCompleted bool      `db:"is_completed"`
	DueDate     string    `db:"due_date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r homeworkRow) toHomework() school.Homework {
	return school.Homework(r)
}

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	TeacherID string    `db:"teacher_id"`
	Date      string    `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r attendanceRow) toAttendance() school.Attendance {
	return school.Attendance(r)
}

type newsRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r newsRow) toNews() school.News {
	return school.News(r)
}

type commentRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	TeacherID string    `db:"teacher_id"`
	Content   string    `db:"content"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

func (r commentRow) toComment() school.Comment {
	return school.Comment(r)
}

type gradeRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	TeacherID string      `db:"teacher_id"`
	Value     int         `db:"grade_value"`
	Bonus     int         `db:"bonus"`
	Note      null.String `db:"note"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r gradeRow) toGrade() school.Grade {
	return school.Grade{
		ID:        r.ID,
		StudentID: r.StudentID,
		TeacherID: r.TeacherID,
		Value:     r.Value,
		Bonus:     r.Bonus,
		Note:      r.Note.Ptr(),
		CreatedAt: r.CreatedAt,
	}
}

type paymentRow struct {
	ID         string      `db:"id"`
	StudentID  string      `db:"student_id"`
	Month      string      `db:"month"`
	Amount     int         `db:"amount"`
	PaidAmount int         `db:"paid_amount"`
	Status     string      `db:"status"`
	Note       null.String `db:"note"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (r paymentRow) toPayment() school.Payment {
	return school.Payment{
		ID:         r.ID,
		StudentID:  r.StudentID,
		Month:      r.Month,
		Amount:     r.Amount,
		PaidAmount: r.PaidAmount,
		Status:     r.Status,
		Note:       r.Note.Ptr(),
		UpdatedAt:  r.UpdatedAt,
	}
}

type schoolRepository struct {
	db *sqlx.DB
}

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

var _ school.Repository = (*schoolRepository)(nil)

func (repo *schoolRepository) CreateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	grp.ID = uuid.New().String()
	q := `INSERT INTO "group" (id, name, teacher_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := repo.db.ExecContext(ctx, q, grp.ID, grp.Name, grp.TeacherID, grp.CreatedAt)
	return grp, err
}

func (repo *schoolRepository) QueryAllGroups(ctx context.Context) ([]school.Group, error) {
	var rows []groupRow
	q := `SELECT * FROM "group" ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return toGroups(rows), nil
}

func (repo *schoolRepository) GetGroupByID(ctx context.Context, id string) (school.Group, error) {
	var row groupRow
	q := `SELECT * FROM "group" WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return school.Group{}, trapNoRowsErr(err, school.ErrGroupNotFound)
	}
	return row.toGroup(), nil
}

func (repo *schoolRepository) QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]school.Group, error) {
	var rows []groupRow
	q := `SELECT * FROM "group" WHERE teacher_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, err
	}
	return toGroups(rows), nil
}

func toGroups(rows []groupRow) []school.Group {
	groups := make([]school.Group, len(rows))
	for i, r := range rows {
		groups[i] = r.toGroup()
	}
	return groups
}

func (repo *schoolRepository) CreateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	grd.ID = uuid.New().String()
	q := `
	INSERT INTO grade (id, student_id, teacher_id, grade_value, bonus, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		grd.ID, grd.StudentID, grd.TeacherID, grd.Value, grd.Bonus, null.StringFromPtr(grd.Note), grd.CreatedAt)
	return grd, err
}

func (repo *schoolRepository) QueryGradesByStudent(ctx context.Context, studentID string) ([]school.Grade, error) {
	return repo.queryGrades(ctx, "student_id", studentID)
}

func (repo *schoolRepository) QueryGradesByTeacher(ctx context.Context, teacherID string) ([]school.Grade, error) {
	return repo.queryGrades(ctx, "teacher_id", teacherID)
}

func (repo *schoolRepository) queryGrades(ctx context.Context, col, id string) ([]school.Grade, error) {
	var rows []gradeRow
	q := `SELECT * FROM grade WHERE ` + col + ` = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, err
	}
	grades := make([]school.Grade, len(rows))
	for i, r := range rows {
		grades[i] = r.toGrade()
	}
	return grades, nil
}

func (repo *schoolRepository) GetGradeByID(ctx context.Context, id string) (school.Grade, error) {
	var row gradeRow
	q := `SELECT * FROM grade WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return school.Grade{}, trapNoRowsErr(err, school.ErrGradeNotFound)
	}
	return row.toGrade(), nil
}

func (repo *schoolRepository) DeleteGrade(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grade WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrGradeNotFound
	}
	return nil
}

func (repo *schoolRepository) CreateHomework(ctx context.Context, hw school.Homework) (school.Homework, error) {
	hw.ID = uuid.New().String()
	q := `
	INSERT INTO homework (id, student_id, teacher_id, title, description, is_completed, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		hw.ID, hw.StudentID, hw.TeacherID, hw.Title, hw.Description, hw.IsCompleted, hw.DueDate, hw.CreatedAt, hw.UpdatedAt)
	return hw, err
}

func (repo *schoolRepository) QueryHomeworkByStudent(ctx context.Context, studentID string) ([]school.Homework, error) {
	var rows []homeworkRow
	q := `SELECT * FROM homework WHERE student_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, err
	}
	hws := make([]school.Homework, len(rows))
	for i, r := range rows {
		hws[i] = r.toHomework()
	}
	return hws, nil
}

func (repo *schoolRepository) GetHomeworkByID(ctx context.Context, id string) (school.Homework, error) {
	var row homeworkRow
	q := `SELECT * FROM homework WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return school.Homework{}, trapNoRowsErr(err, school.ErrHomeworkNotFound)
	}
	return row.toHomework(), nil
}

func (repo *schoolRepository) UpdateHomework(ctx context.Context, hw school.Homework) (school.Homework, error) {
	q := `UPDATE homework SET is_completed = $2, updated_at = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, hw.ID, hw.IsCompleted, hw.UpdatedAt)
	if err != nil {
		return school.Homework{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Homework{}, school.ErrHomeworkNotFound
	}
	return hw, nil
}

func (repo *schoolRepository) UpsertAttendance(ctx context.Context, att school.Attendance) (school.Attendance, error) {
	att.ID = uuid.New().String()
	q := `
	INSERT INTO attendance (id, student_id, teacher_id, date, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (student_id, date)
	DO UPDATE SET teacher_id = EXCLUDED.teacher_id, status = EXCLUDED.status
	RETURNING id, created_at`
	row := repo.db.QueryRowxContext(ctx, q, att.ID, att.StudentID, att.TeacherID, att.Date, att.Status, att.CreatedAt)
	if err := row.Scan(&att.ID, &att.CreatedAt); err != nil {
		return school.Attendance{}, err
	}
	return att, nil
}

func (repo *schoolRepository) QueryAttendanceByDate(ctx context.Context, teacherID, date string) ([]school.Attendance, error) {
	q := `SELECT * FROM attendance WHERE teacher_id = $1 AND date = $2`
	return repo.queryAttendance(ctx, q, teacherID, date)
}

func (repo *schoolRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]school.Attendance, error) {
	q := `SELECT * FROM attendance WHERE student_id = $1 ORDER BY date DESC`
	return repo.queryAttendance(ctx, q, studentID)
}

func (repo *schoolRepository) queryAttendance(ctx context.Context, q string, args ...interface{}) ([]school.Attendance, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	atts := make([]school.Attendance, len(rows))
	for i, r := range rows {
		atts[i] = r.toAttendance()
	}
	return atts, nil
}

func (repo *schoolRepository) UpsertPayment(ctx context.Context, pmt school.Payment) (school.Payment, error) {
	pmt.ID = uuid.New().String()
	q := `
	INSERT INTO payment (id, student_id, month, amount, paid_amount, status, note, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (student_id, month)
	DO UPDATE SET amount = EXCLUDED.amount, paid_amount = EXCLUDED.paid_amount,
		status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
	RETURNING id`
	row := repo.db.QueryRowxContext(ctx, q,
		pmt.ID, pmt.StudentID, pmt.Month, pmt.Amount, pmt.PaidAmount, pmt.Status, null.StringFromPtr(pmt.Note), pmt.UpdatedAt)
	if err := row.Scan(&pmt.ID); err != nil {
		return school.Payment{}, err
	}
	return pmt, nil
}

func (repo *schoolRepository) QueryPaymentsByMonth(ctx context.Context, month string) ([]school.Payment, error) {
	return repo.queryPayments(ctx, "month", month)
}

func (repo *schoolRepository) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]school.Payment, error) {
	return repo.queryPayments(ctx, "student_id", studentID)
}

func (repo *schoolRepository) queryPayments(ctx context.Context, col, val string) ([]school.Payment, error) {
	var rows []paymentRow
	q := `SELECT * FROM payment WHERE ` + col + ` = $1 ORDER BY month DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, val); err != nil {
		return nil, err
	}
	pmts := make([]school.Payment, len(rows))
	for i, r := range rows {
		pmts[i] = r.toPayment()
	}
	return pmts, nil
}

func (repo *schoolRepository) CreateNews(ctx context.Context, n school.News) (school.News, error) {
	n.ID = uuid.New().String()
	q := `
	INSERT INTO news (id, title, content, author_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, n.ID, n.Title, n.Content, n.AuthorID, n.CreatedAt, n.UpdatedAt)
	return n, err
}

func (repo *schoolRepository) QueryAllNews(ctx context.Context) ([]school.News, error) {
	var rows []newsRow
	q := `SELECT * FROM news ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	news := make([]school.News, len(rows))
	for i, r := range rows {
		news[i] = r.toNews()
	}
	return news, nil
}

func (repo *schoolRepository) DeleteNews(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrNewsNotFound
	}
	return nil
}

func (repo *schoolRepository) CreateComment(ctx context.Context, cmt school.Comment) (school.Comment, error) {
	cmt.ID = uuid.New().String()
	q := `
	INSERT INTO comment (id, student_id, teacher_id, content, type, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, cmt.ID, cmt.StudentID, cmt.TeacherID, cmt.Content, cmt.Type, cmt.CreatedAt)
	return cmt, err
}

func (repo *schoolRepository) QueryCommentsByStudent(ctx context.Context, studentID string) ([]school.Comment, error) {
	var rows []commentRow
	q := `SELECT * FROM comment WHERE student_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, err
	}
	cmts := make([]school.Comment, len(rows))
	for i, r := range rows {
		cmts[i] = r.toComment()
	}
	return cmts, nil
}
