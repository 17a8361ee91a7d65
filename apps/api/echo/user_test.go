package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	env.createUser(t, "neema", "neema@test.cd")

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"by username", `{"username":"neema","password":"s3cr3tPass"}`, http.StatusOK},
		{"by email", `{"username":"neema@test.cd","password":"s3cr3tPass"}`, http.StatusOK},
		{"wrong password", `{"username":"neema","password":"nope"}`, http.StatusBadRequest},
		{"unknown user", `{"username":"ghost","password":"s3cr3tPass"}`, http.StatusBadRequest},
		{"missing fields", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(tt.body))
			env.app.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_loginDeactivated(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "gone", "gone@test.cd")
	usr.IsActive = false
	deactivated, err := env.usrSvc.Update(usr)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(`{"username":"gone","password":"s3cr3tPass"}`))
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	body := `{
		"name": "Imani M",
		"username": "imani",
		"email": "imani@test.cd",
		"password": "s3cr3tPass",
		"password_confirm": "s3cr3tPass",
		"roles": ["admin", "teacher"]
	}`
	req, rec := newRequest(http.MethodPost, "/v1/users/register", []byte(body))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var usr user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, "imani", usr.Username)
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles, "self-registration never grants elevated roles")

	// duplicate username
	req, rec = newRequest(http.MethodPost, "/v1/users/register", []byte(body))
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@test.cd", user.AllRoles...)
	student := env.createUser(t, "student", "student@test.cd")

	// auth required
	req, rec := newRequest(http.MethodGet, "/v1/users")
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// admin required
	req, rec = newAuthRequest(http.MethodGet, "/v1/users", env.token(t, student))
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/users", env.token(t, admin))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var usrs []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usrs))
	assert.Len(t, usrs, 2)
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "zuri", "zuri@test.cd")

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", env.token(t, usr))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "zuri", got.Username)
}
