package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/bukhari/academy/apps/api/echo"
	"github.com/bukhari/academy/core/user"
)

func TestUserLogin(t *testing.T) {
	app := setup(t)

	createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	deactivated := createUser(t, "Olim", "Toshev", "olim@test.test", "s3cretpwd", user.RoleTeacher, nil)
	inactive := false
	if _, err := usrSvc.Update(ctxBg(), deactivated.ID, user.UpdateUser{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}

	tests := []httpTest{
		{
			name: "ok", body: marchallObj(t, LoginRequest{Email: "aziza@test.test", Password: "s3cretpwd"}),
			wantCode: http.StatusOK,
		},
		{
			name: "unknown email", body: marchallObj(t, LoginRequest{Email: "lol@test.test", Password: "s3cretpwd"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Email: "aziza@test.test", Password: "wrong"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Email: "olim@test.test", Password: "s3cretpwd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.name == "ok" {
				assert.Equal(t, http.StatusOK, rec.Code)
				var resp LoginResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserTokenRefresh(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestUserRegister(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	teacher := createUser(t, "Aziza", "Karimova", "aziza@test.test", "s3cretpwd", user.RoleTeacher, nil)

	body := marchallObj(t, user.NewUser{
		Email:     "student@test.test",
		FirstName: "Ali",
		LastName:  "Valiyev",
		Role:      user.RoleStudent,
	})

	tests := []httpTest{
		{name: "auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin only", body: body, token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "ok", body: body, token: getToken(t, admin), wantCode: http.StatusCreated},
		{name: "duplicate email", body: body, token: getToken(t, admin), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.name == "ok" {
				var usr user.User
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
				assert.Equal(t, "student@test.test", usr.Email)

				// students created without a password get the default one
				created, err := usrSvc.GetByEmail(ctxBg(), "student@test.test")
				assert.NoError(t, err)
				assert.NoError(t, created.CheckPassword(user.DefaultStudentPassword))
			}
		})
	}
}

func TestUserQuery(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)

	t.Run("students cannot list profiles", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin lists all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("filter by role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?role=student", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		if assert.Len(t, users, 1) {
			assert.Equal(t, student.ID, users[0].ID)
		}
	})
}

func TestUserDetail(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)
	student := createUser(t, "Ali", "Valiyev", "ali@test.test", "s3cretpwd", user.RoleStudent, nil)
	other := createUser(t, "Vali", "Aliyev", "vali@test.test", "s3cretpwd", user.RoleStudent, nil)

	t.Run("retrieve self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+student.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("others are hidden from students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, getToken(t, student))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("student updates own name", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{FirstName: "Aliqul"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "Aliqul", usr.FirstName)
	})

	t.Run("student cannot change role", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Role: user.RoleAdmin})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes a profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+other.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, err := usrSvc.GetByID(ctxBg(), other.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestUserRoles(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "Bukhari", "admin@test.test", "s3cretpwd", user.RoleAdmin, nil)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, user.Roles),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
