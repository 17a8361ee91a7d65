package user_test

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/user"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

func newUserService(t *testing.T) *user.Service {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return user.NewService(inmemdb.NewUserRepository(db))
}

func Test_userService_Create(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.Create(user.NewUser{
		Name:     "Neema",
		Username: "neema",
		Email:    "neema@test.cd",
		Password: "s3cr3tPass",
	})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles, "role defaults to student")
	assert.NoError(t, usr.CheckPassword("s3cr3tPass"))
	assert.Error(t, usr.CheckPassword("wrong"))

	admin, err := svc.Create(user.NewUser{
		Name:     "Root",
		Username: "root",
		Email:    "root@test.cd",
		Password: "s3cr3tPass",
		Roles:    user.AllRoles,
	})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsTeacher())
}

func Test_userService_lookups(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.Create(user.NewUser{
		Name: "Imani", Username: "imani", Email: "imani@test.cd", Password: "s3cr3tPass",
	})
	require.NoError(t, err)

	got, err := svc.GetByID(usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Username, got.Username)

	// username lookups are case-insensitive via cleaning
	got, err = svc.GetByUsername("  IMANI ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = svc.GetByUsernameOrEmail("imani@test.cd")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByUsername("nobody")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func Test_userService_ResetPassword(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.Create(user.NewUser{
		Name: "Juma", Username: "juma", Email: "juma@test.cd", Password: "oldPassword",
	})
	require.NoError(t, err)

	updated, err := svc.ResetPassword("juma", "newPassword1")
	require.NoError(t, err)
	assert.NoError(t, updated.CheckPassword("newPassword1"))
	assert.Error(t, updated.CheckPassword("oldPassword"))

	// by email too
	_, err = svc.ResetPassword("juma@test.cd", "newPassword2")
	require.NoError(t, err)

	_, err = svc.ResetPassword("ghost", "whatever")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	_ = usr
}

func Test_userService_SetLastLogin(t *testing.T) {
	svc := newUserService(t)

	usr, err := svc.Create(user.NewUser{
		Name: "Asha", Username: "asha", Email: "asha@test.cd", Password: "s3cr3tPass",
	})
	require.NoError(t, err)
	require.True(t, usr.LastLogin.IsZero())

	updated, err := svc.SetLastLogin(usr)
	require.NoError(t, err)
	assert.False(t, updated.LastLogin.IsZero())
}

func Test_NewUser_Validate(t *testing.T) {
	svc := newUserService(t)
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	_, err := svc.Create(user.NewUser{
		Name: "Taken", Username: "taken", Email: "taken@test.cd", Password: "s3cr3tPass",
	})
	require.NoError(t, err)

	nu := user.NewUser{
		Name:            " Neema ",
		Username:        " NEEMA ",
		Email:           "NEEMA@test.cd",
		Password:        "s3cr3tPass",
		PasswordConfirm: "s3cr3tPass",
	}
	require.NoError(t, nu.Validate(validate, svc))
	assert.Equal(t, "Neema", nu.Name)
	assert.Equal(t, "neema", nu.Username, "username is cleaned and lowered")
	assert.Equal(t, "neema@test.cd", nu.Email)

	// mismatched confirmation
	bad := user.NewUser{
		Name: "X", Username: "xyz", Email: "x@test.cd",
		Password: "s3cr3tPass", PasswordConfirm: "different",
	}
	assert.Error(t, bad.Validate(validate, svc))

	// taken username
	dup := user.NewUser{
		Name: "Taken Two", Username: "taken", Email: "two@test.cd",
		Password: "s3cr3tPass", PasswordConfirm: "s3cr3tPass",
	}
	err = dup.Validate(validate, svc)
	require.Error(t, err)
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok, "uniqueness violation fails validation: %v", err)
}
