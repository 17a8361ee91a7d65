package main

import (
	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/user"
)

// addUser creates a user, optionally with elevated roles.
func (cli *commandLine) addUser(uname, email, pwd string, isTeacher, isAdmin bool) error {
	nu := user.NewUser{
		Name:     core.CleanString(uname),
		Username: core.CleanString(uname, true /* lower */),
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
	}
	switch {
	case isAdmin:
		nu.Roles = user.AllRoles
	case isTeacher:
		nu.Roles = []string{user.RoleTeacher}
	}
	usr, err := cli.usrSvc.Create(nu)
	if err != nil {
		return err
	}
	logger.Printf("user %q created (id=%d)", usr.Username, usr.ID)
	return nil
}
