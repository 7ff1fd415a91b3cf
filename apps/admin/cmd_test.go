package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
	emailsvc "github.com/gllabs/portal/services/email"
	inmemdb "github.com/gllabs/portal/storage/database/inmem"
	testutil "github.com/gllabs/portal/tests"
)

var (
	usrRepo  user.Repository
	unitRepo unit.Repository
)

func setup(t *testing.T) *commandLine {
	if logger == nil {
		logger = log.New(io.Discard, "ADMIN : ", log.LstdFlags)
	}

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = inmemdb.NewUserRepository(db)
	unitRepo = inmemdb.NewUnitRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	cohortSvc := cohort.NewService(
		inmemdb.NewCohortRepository(db),
		inmemdb.NewUnitRepository(db),
		user.NewService(usrRepo, mailSvc),
		mailSvc,
	)

	// start CLI
	return &commandLine{
		db:        sqlx.NewDb(new(sql.DB), "postgres"),
		usrRepo:   usrRepo,
		unitRepo:  unitRepo,
		cohortSvc: cohortSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "cohort", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Existing", "existing", "existing@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no email", args: []string{"adduser", "-username", "awe"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-name", "Awe", "-username", "awe", "-email", "awe@test.cd"}, extra: extra{pwd: "lol"}},
		{name: "create admin", args: []string{"adduser", "-name", "Boss", "-username", "boss", "-email", "boss@test.cd", "-admin"}, extra: extra{pwd: "lol"}},
		{name: "update existing", args: []string{"adduser", "-name", "Renamed", "-username", "existing", "-email", "existing@test.cd"}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			uname := flagValue(tt.args, "-username")
			usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: uname})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if wantName := flagValue(tt.args, "-name"); usr.Name != wantName {
				t.Errorf("Name = %q, want %q", usr.Name, wantName)
			}
			if hasFlag(tt.args, "-admin") && !usr.IsAdmin() {
				t.Error("expected admin roles")
			}
			if usr.Username == existing.Username && usr.ID != existing.ID {
				t.Error("expected existing user to be updated, not recreated")
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	clearDataFunc = func(ctx context.Context, db *sqlx.DB) error { return nil }

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	ctx := context.Background()

	admin, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@gll.edu"})
	if err != nil {
		t.Fatalf("GetUser(admin) failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Error("expected seeded admin to have admin roles")
	}
	if err := admin.CheckPassword(seedPassword); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	for _, email := range []string{"mei@gll.edu", "sarah@gll.edu", "ana@gll.edu"} {
		tcher, err := usrRepo.GetUser(ctx, user.GetFilter{Email: email})
		if err != nil {
			t.Fatalf("GetUser(%s) failed: %v", email, err)
		}
		if !tcher.IsTeacher() {
			t.Errorf("expected %s to be a teacher", email)
		}
	}

	c, err := cli.cohortSvc.GetBySlug(ctx, "spring-2026-cohort-a")
	if err != nil {
		t.Fatalf("GetBySlug() failed: %v", err)
	}
	if want := 6; len(c.Weeks) != want {
		t.Fatalf("len(Weeks) = %d, want %d", len(c.Weeks), want)
	}
	for _, w := range c.Weeks {
		wantUnlocked := w.WeekNumber <= 1
		if w.Unlocked != wantUnlocked {
			t.Errorf("week %d: Unlocked = %v, want %v", w.WeekNumber, w.Unlocked, wantUnlocked)
		}
	}
	if want := 3; len(c.PartnerSchools) != want {
		t.Errorf("len(PartnerSchools) = %d, want %d", len(c.PartnerSchools), want)
	}

	u, err := unitRepo.GetUnit(ctx, c.UnitID.String)
	if err != nil {
		t.Fatalf("GetUnit() failed: %v", err)
	}
	if u.Name != "Cultural Exchange" {
		t.Errorf("unit Name = %q", u.Name)
	}
	if want := 4; len(u.Weeks) != want {
		t.Errorf("len(unit.Weeks) = %d, want %d", len(u.Weeks), want)
	}
}

func flagValue(args []string, name string) string {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}
