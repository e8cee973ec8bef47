package main

import (
	"context"
	"time"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/user"
)

// addAdmin creates an admin profile, or promotes and re-keys an existing one.
func (cli *commandLine) addAdmin(email, first, last, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			FirstName: core.CleanString(first),
			LastName:  core.CleanString(last),
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Role = user.RoleAdmin
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		active := true
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	}
	return err
}
