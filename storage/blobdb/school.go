package blobdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bukhari/academy/core/school"
	"github.com/bukhari/academy/storage/document"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

var _ school.Repository = (*schoolRepository)(nil)

func (repo *schoolRepository) CreateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	grp.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.Groups = append(doc.Groups, grp)
		return nil
	})
	return grp, err
}

func (repo *schoolRepository) QueryAllGroups(ctx context.Context) ([]school.Group, error) {
	var groups []school.Group
	err := repo.db.View(ctx, func(doc *document.Document) error {
		groups = append(groups, doc.Groups...)
		return nil
	})
	sortGroups(groups)
	return groups, err
}

func (repo *schoolRepository) GetGroupByID(ctx context.Context, id string) (school.Group, error) {
	var out school.Group
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, grp := range doc.Groups {
			if grp.ID == id {
				out = grp
				return nil
			}
		}
		return school.ErrGroupNotFound
	})
	return out, err
}

func (repo *schoolRepository) QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]school.Group, error) {
	var groups []school.Group
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, grp := range doc.Groups {
			if grp.TeacherID == teacherID {
				groups = append(groups, grp)
			}
		}
		return nil
	})
	sortGroups(groups)
	return groups, err
}

func (repo *schoolRepository) CreateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	grd.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.Grades = append(doc.Grades, grd)
		return nil
	})
	return grd, err
}

func (repo *schoolRepository) QueryGradesByStudent(ctx context.Context, studentID string) ([]school.Grade, error) {
	return repo.queryGrades(ctx, func(g school.Grade) bool { return g.StudentID == studentID })
}

func (repo *schoolRepository) QueryGradesByTeacher(ctx context.Context, teacherID string) ([]school.Grade, error) {
	return repo.queryGrades(ctx, func(g school.Grade) bool { return g.TeacherID == teacherID })
}

func (repo *schoolRepository) queryGrades(ctx context.Context, match func(school.Grade) bool) ([]school.Grade, error) {
	var grades []school.Grade
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, grd := range doc.Grades {
			if match(grd) {
				grades = append(grades, grd)
			}
		}
		return nil
	})
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].CreatedAt.After(grades[j].CreatedAt) })
	return grades, err
}

func (repo *schoolRepository) GetGradeByID(ctx context.Context, id string) (school.Grade, error) {
	var out school.Grade
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, grd := range doc.Grades {
			if grd.ID == id {
				out = grd
				return nil
			}
		}
		return school.ErrGradeNotFound
	})
	return out, err
}

func (repo *schoolRepository) DeleteGrade(ctx context.Context, id string) error {
	return repo.db.Update(ctx, func(doc *document.Document) error {
		for i, grd := range doc.Grades {
			if grd.ID == id {
				doc.Grades = append(doc.Grades[:i], doc.Grades[i+1:]...)
				return nil
			}
		}
		return school.ErrGradeNotFound
	})
}

func (repo *schoolRepository) CreateHomework(ctx context.Context, hw school.Homework) (school.Homework, error) {
	hw.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.Homework = append(doc.Homework, hw)
		return nil
	})
	return hw, err
}

func (repo *schoolRepository) QueryHomeworkByStudent(ctx context.Context, studentID string) ([]school.Homework, error) {
	var hws []school.Homework
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, hw := range doc.Homework {
			if hw.StudentID == studentID {
				hws = append(hws, hw)
			}
		}
		return nil
	})
	sort.SliceStable(hws, func(i, j int) bool { return hws[i].CreatedAt.After(hws[j].CreatedAt) })
	return hws, err
}

func (repo *schoolRepository) GetHomeworkByID(ctx context.Context, id string) (school.Homework, error) {
	var out school.Homework
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, hw := range doc.Homework {
			if hw.ID == id {
				out = hw
				return nil
			}
		}
		return school.ErrHomeworkNotFound
	})
	return out, err
}

func (repo *schoolRepository) UpdateHomework(ctx context.Context, hw school.Homework) (school.Homework, error) {
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, cur := range doc.Homework {
			if cur.ID == hw.ID {
				doc.Homework[i] = hw
				return nil
			}
		}
		return school.ErrHomeworkNotFound
	})
	return hw, err
}

func (repo *schoolRepository) UpsertAttendance(ctx context.Context, att school.Attendance) (school.Attendance, error) {
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, cur := range doc.Attendance {
			if cur.StudentID == att.StudentID && cur.Date == att.Date {
				att.ID = cur.ID
				att.CreatedAt = cur.CreatedAt
				doc.Attendance[i] = att
				return nil
			}
		}
		att.ID = uuid.New().String()
		doc.Attendance = append(doc.Attendance, att)
		return nil
	})
	return att, err
}

func (repo *schoolRepository) QueryAttendanceByDate(ctx context.Context, teacherID, date string) ([]school.Attendance, error) {
	var atts []school.Attendance
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, att := range doc.Attendance {
			if att.TeacherID == teacherID && att.Date == date {
				atts = append(atts, att)
			}
		}
		return nil
	})
	return atts, err
}

func (repo *schoolRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]school.Attendance, error) {
	var atts []school.Attendance
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, att := range doc.Attendance {
			if att.StudentID == studentID {
				atts = append(atts, att)
			}
		}
		return nil
	})
	sort.SliceStable(atts, func(i, j int) bool { return atts[i].Date > atts[j].Date })
	return atts, err
}

func (repo *schoolRepository) UpsertPayment(ctx context.Context, pmt school.Payment) (school.Payment, error) {
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, cur := range doc.Payments {
			if cur.StudentID == pmt.StudentID && cur.Month == pmt.Month {
				pmt.ID = cur.ID
				doc.Payments[i] = pmt
				return nil
			}
		}
		pmt.ID = uuid.New().String()
		doc.Payments = append(doc.Payments, pmt)
		return nil
	})
	return pmt, err
}

func (repo *schoolRepository) QueryPaymentsByMonth(ctx context.Context, month string) ([]school.Payment, error) {
	var pmts []school.Payment
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, pmt := range doc.Payments {
			if pmt.Month == month {
				pmts = append(pmts, pmt)
			}
		}
		return nil
	})
	return pmts, err
}

func (repo *schoolRepository) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]school.Payment, error) {
	var pmts []school.Payment
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, pmt := range doc.Payments {
			if pmt.StudentID == studentID {
				pmts = append(pmts, pmt)
			}
		}
		return nil
	})
	sort.SliceStable(pmts, func(i, j int) bool { return pmts[i].Month > pmts[j].Month })
	return pmts, err
}

func (repo *schoolRepository) CreateNews(ctx context.Context, n school.News) (school.News, error) {
	n.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.News = append(doc.News, n)
		return nil
	})
	return n, err
}

func (repo *schoolRepository) QueryAllNews(ctx context.Context) ([]school.News, error) {
	var news []school.News
	err := repo.db.View(ctx, func(doc *document.Document) error {
		news = append(news, doc.News...)
		return nil
	})
	sort.SliceStable(news, func(i, j int) bool { return news[i].CreatedAt.After(news[j].CreatedAt) })
	return news, err
}

func (repo *schoolRepository) DeleteNews(ctx context.Context, id string) error {
	return repo.db.Update(ctx, func(doc *document.Document) error {
		for i, n := range doc.News {
			if n.ID == id {
				doc.News = append(doc.News[:i], doc.News[i+1:]...)
				return nil
			}
		}
		return school.ErrNewsNotFound
	})
}

func (repo *schoolRepository) CreateComment(ctx context.Context, cmt school.Comment) (school.Comment, error) {
	cmt.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.Comments = append(doc.Comments, cmt)
		return nil
	})
	return cmt, err
}

func (repo *schoolRepository) QueryCommentsByStudent(ctx context.Context, studentID string) ([]school.Comment, error) {
	var cmts []school.Comment
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, cmt := range doc.Comments {
			if cmt.StudentID == studentID {
				cmts = append(cmts, cmt)
			}
		}
		return nil
	})
	sort.SliceStable(cmts, func(i, j int) bool { return cmts[i].CreatedAt.After(cmts[j].CreatedAt) })
	return cmts, err
}

func sortGroups(groups []school.Group) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].CreatedAt.After(groups[j].CreatedAt) })
}
