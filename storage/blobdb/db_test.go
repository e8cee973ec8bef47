package blobdb

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bukhari/academy/core/school"
	"github.com/bukhari/academy/core/user"
	"github.com/bukhari/academy/storage/document"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir, err := ioutil.TempDir("", "blobdb")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := New(Options{
		Path:   filepath.Join(dir, "db.json"),
		TTL:    time.Second,
		Logger: testLogger{},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewWithoutLogger(t *testing.T) {
	dir, err := ioutil.TempDir("", "blobdb")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	// no Logger: the store must fall back to a no-op one
	db, err := New(Options{
		Path: filepath.Join(dir, "db.json"),
		TTL:  time.Second,
	})
	assert.NoError(t, err)
	defer db.Close()

	err = db.Update(context.Background(), func(doc *document.Document) error {
		doc.Groups = append(doc.Groups, school.Group{ID: "g1", Name: "Beginner A", TeacherID: "t1"})
		return nil
	})
	assert.NoError(t, err)
}

func TestNewSeedsDefaultDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc, err := db.Snapshot(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, doc.Version)
	if assert.Len(t, doc.Profiles, 1) {
		admin := doc.Profiles[0]
		assert.Equal(t, document.DefaultAdminID, admin.ID)
		assert.Equal(t, "admin@bukhari.uz", admin.Email)
		assert.Equal(t, user.RoleAdmin, admin.Role)
	}
	assert.Len(t, doc.News, 2)
	assert.Contains(t, doc.Passwords, document.DefaultAdminID)
}

func TestUpdateBumpsVersionAndPersists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.Update(ctx, func(doc *document.Document) error {
		doc.Groups = append(doc.Groups, school.Group{ID: "g1", Name: "Beginner A", TeacherID: "t1"})
		return nil
	})
	assert.NoError(t, err)

	doc, err := db.Snapshot(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, doc.Version)
	assert.Len(t, doc.Groups, 1)

	// a fresh store on the same file sees the write
	db2, err := New(Options{Path: db.path, TTL: time.Second, Logger: testLogger{}})
	assert.NoError(t, err)
	defer db2.Close()

	doc2, err := db2.Snapshot(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, doc2.Version)
	if assert.Len(t, doc2.Groups, 1) {
		assert.Equal(t, "Beginner A", doc2.Groups[0].Name)
	}
}

func TestReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("invalid document rejected", func(t *testing.T) {
		_, err := db.Replace(ctx, &document.Document{})
		assert.Error(t, err)
	})

	t.Run("accepted write gets next version", func(t *testing.T) {
		incoming := document.Default()
		incoming.Version = 42 // client version is ignored
		version, err := db.Replace(ctx, incoming)
		assert.NoError(t, err)
		assert.EqualValues(t, 2, version)
	})

	t.Run("stale write still accepted", func(t *testing.T) {
		incoming := document.Default()
		incoming.Version = 0
		version, err := db.Replace(ctx, incoming)
		assert.NoError(t, err)
		assert.EqualValues(t, 3, version)
	})
}

func TestWatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ch := db.Watch()
	err := db.Update(ctx, func(doc *document.Document) error { return nil })
	assert.NoError(t, err)

	select {
	case version := <-ch:
		assert.EqualValues(t, 2, version)
	case <-time.After(time.Second):
		t.Fatal("no watch notification")
	}

	assert.NoError(t, db.Close())
	_, open := <-ch
	assert.False(t, open)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	usr := user.User{Email: "t@test.test", FirstName: "Aziza", LastName: "Karimova", Role: user.RoleTeacher}
	assert.NoError(t, usr.SetPassword("s3cretpwd"))
	usr, err := repo.CreateUser(ctx, usr)
	assert.NoError(t, err)
	assert.NotEmpty(t, usr.ID)

	t.Run("email uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "t@test.test"))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "t@test.test", usr))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "other@test.test"))
	})

	t.Run("password hash survives serialization", func(t *testing.T) {
		// profile JSON omits the hash; it is rejoined from the passwords map
		db2, err := New(Options{Path: db.path, TTL: time.Second, Logger: testLogger{}})
		assert.NoError(t, err)
		defer db2.Close()

		got, err := NewUserRepository(db2).GetUserByEmail(ctx, "t@test.test")
		assert.NoError(t, err)
		assert.NoError(t, got.CheckPassword("s3cretpwd"))
	})

	t.Run("filter by role", func(t *testing.T) {
		teachers, err := repo.FilterUsers(ctx, user.QueryFilter{Role: user.RoleTeacher})
		assert.NoError(t, err)
		assert.Len(t, teachers, 1)

		students, err := repo.FilterUsers(ctx, user.QueryFilter{Role: user.RoleStudent})
		assert.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("delete removes password", func(t *testing.T) {
		assert.NoError(t, repo.DeleteUsersByID(ctx, usr.ID))
		_, err := repo.GetUserByID(ctx, usr.ID)
		assert.Equal(t, user.ErrNotFound, err)

		doc, err := db.Snapshot(ctx)
		assert.NoError(t, err)
		assert.NotContains(t, doc.Passwords, usr.ID)
	})
}

func TestSchoolRepositoryUpserts(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchoolRepository(db)
	ctx := context.Background()

	t.Run("attendance keyed by student and date", func(t *testing.T) {
		att := school.Attendance{StudentID: "s1", TeacherID: "t1", Date: "2026-09-01", Status: school.AttendanceAbsent, CreatedAt: time.Now()}
		first, err := repo.UpsertAttendance(ctx, att)
		assert.NoError(t, err)

		att.Status = school.AttendancePresent
		second, err := repo.UpsertAttendance(ctx, att)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		atts, err := repo.QueryAttendanceByDate(ctx, "t1", "2026-09-01")
		assert.NoError(t, err)
		if assert.Len(t, atts, 1) {
			assert.Equal(t, school.AttendancePresent, atts[0].Status)
		}
	})

	t.Run("payment keyed by student and month", func(t *testing.T) {
		pmt := school.Payment{StudentID: "s1", Month: "2026-09", Amount: 500000, PaidAmount: 100000, Status: school.PaymentPartial}
		first, err := repo.UpsertPayment(ctx, pmt)
		assert.NoError(t, err)

		pmt.PaidAmount = 500000
		pmt.Status = school.PaymentPaid
		second, err := repo.UpsertPayment(ctx, pmt)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		pmts, err := repo.QueryPaymentsByMonth(ctx, "2026-09")
		assert.NoError(t, err)
		if assert.Len(t, pmts, 1) {
			assert.Equal(t, school.PaymentPaid, pmts[0].Status)
		}
	})
}
