package main

import (
	"context"
	"fmt"

	"github.com/trezcool/classroom/core/user"
)

// addUser creates a user after running the same checks as the register endpoint.
func (cli *commandLine) addUser(uname, email, role, pwd string) error {
	ctx := context.Background()
	nu := user.NewUser{
		Username:        uname,
		Email:           email,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %q (id %d)\n", usr.Role, usr.Username, usr.ID)
	return nil
}
