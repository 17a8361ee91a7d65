package main

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrSvc.ResetPassword(uname, pwd)
	if err != nil {
		return err
	}
	logger.Printf("password reset for user %q", usr.Username)
	return nil
}
