package user_test

import (
	"context"
	"io/ioutil"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/user"
	emailsvc "github.com/bukhari/academy/services/email"
	"github.com/bukhari/academy/storage/blobdb"
)

var conf = &core.Config{
	AppName:                   "bukhari-academy",
	TestMode:                  true,
	SecretKey:                 "poq5-wer6",
	PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	DefaultFromEmail:          mail.Address{Name: "Bukhari Academy", Address: "noreply@bukhari.uz"},
	FrontendBaseURL:           "http://localhost:5173",
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) { log.Println(msg, args) }
func (testLogger) Fatal(msg string, args ...interface{}) { log.Fatalln(msg, args) }

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(testLogger{}, conf)
	user.InitTokenGenerator(conf)
	os.Exit(m.Run())
}

func newTestService(t *testing.T) user.Service {
	t.Helper()
	dir, err := ioutil.TempDir("", "usersvc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := blobdb.New(blobdb.Options{
		Path:   filepath.Join(dir, "db.json"),
		TTL:    time.Second,
		Logger: testLogger{},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return user.NewServiceMock(blobdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf))
}

func TestServiceCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("student gets default password", func(t *testing.T) {
		gid := "g1"
		usr, err := svc.Create(ctx, user.NewUser{
			Email:     "student@test.test",
			FirstName: "Ali",
			LastName:  "Valiyev",
			Role:      user.RoleStudent,
			GroupID:   &gid,
		})
		assert.NoError(t, err)
		assert.NoError(t, usr.CheckPassword(user.DefaultStudentPassword))
		assert.True(t, usr.Active())
	})

	t.Run("explicit password kept", func(t *testing.T) {
		usr, err := svc.Create(ctx, user.NewUser{
			Email:     "teacher@test.test",
			FirstName: "Aziza",
			LastName:  "Karimova",
			Role:      user.RoleTeacher,
			Password:  "s3cretpwd",
		})
		assert.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("s3cretpwd"))
		assert.Error(t, usr.CheckPassword("wrong"))
	})
}

func TestServiceAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Email:     "student@test.test",
		FirstName: "Ali",
		LastName:  "Valiyev",
		Role:      user.RoleStudent,
	})
	assert.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "student@test.test", user.DefaultStudentPassword)
		assert.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.False(t, got.LastLogin.IsZero())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nope@test.test", "whatever")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "student@test.test", "wrong")
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("deactivated account", func(t *testing.T) {
		inactive := false
		_, err := svc.Update(ctx, usr.ID, user.UpdateUser{IsActive: &inactive})
		assert.NoError(t, err)

		_, err = svc.Authenticate(ctx, "student@test.test", user.DefaultStudentPassword)
		assert.Equal(t, user.ErrAccountDeactivated, err)
	})
}

func TestServicePasswordReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.NewUser{
		Email:     "teacher@test.test",
		FirstName: "Aziza",
		LastName:  "Karimova",
		Role:      user.RoleTeacher,
		Password:  "oldpassword",
	})
	assert.NoError(t, err)

	before := len(emailsvc.SentMessages)
	assert.NoError(t, svc.RequestPasswordReset(ctx, "teacher@test.test"))
	assert.Len(t, emailsvc.SentMessages, before+1)

	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	data, ok := msg.TemplateData.(struct {
		FirstName string
		UID       string
		Token     string
	})
	assert.True(t, ok)

	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		Token:           data.Token,
		UID:             data.UID,
		Password:        "newpassword",
		PasswordConfirm: "newpassword",
	})
	assert.NoError(t, err)

	_, err = svc.Authenticate(ctx, "teacher@test.test", "newpassword")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "teacher@test.test", "oldpassword")
	assert.Equal(t, user.ErrInvalidCredentials, err)
}
