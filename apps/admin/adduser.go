package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if errors.Cause(err) == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	}

	var create bool
	switch errors.Cause(err) {
	case nil:
	case user.ErrNotFound:
		create = true
		now := time.Now().UTC()
		usr = user.User{CreatedAt: now, UpdatedAt: now}
	default:
		return err
	}

	usr.Name = name
	usr.Username = uname
	usr.Email = email
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	active := true
	usr.IsActive = &active
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if create {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
