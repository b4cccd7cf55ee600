package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/user"
	"github.com/maktab-io/maktab/storage/database"
	"github.com/maktab-io/maktab/storage/database/dummy"
)

var usrSvc user.Service

func setup(t *testing.T) *commandLine {
	core.InitValidators()
	user.RegisterValidators()

	db, err := dummydb.Open()
	require.NoError(t, err)
	usrSvc = user.NewService(dummydb.NewUserRepository(db))

	return &commandLine{usrSvc: usrSvc}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *database.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_addStaff(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Str0ngPwd!"), nil }

	err := cli.run([]string{"admin", "addstaff", "-name", "Sara Ahmadi", "-username", "sara", "-email", "sara@maktab.io"})
	require.NoError(t, err)

	usr, err := usrSvc.GetByUsername(ctx, "sara")
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsAdmin())
	assert.False(t, usr.RoleStartsWith(user.RoleAdminPrincipal))
	assert.NoError(t, usr.CheckPassword("Str0ngPwd!"))

	// running again with -principal upgrades the same account
	err = cli.run([]string{"admin", "addstaff", "-name", "Sara Ahmadi", "-username", "sara", "-email", "sara@maktab.io", "-principal"})
	require.NoError(t, err)

	usr2, err := usrSvc.GetByUsername(ctx, "sara")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, usr2.ID)
	assert.True(t, usr2.RoleStartsWith(user.RoleAdminPrincipal))

	// missing flags
	assert.Equal(t, errHelp, cli.run([]string{"admin", "addstaff", "-username", "sara"}))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr, err := usrSvc.Create(ctx, user.NewUser{
		Name:            "Omid Karimi",
		Username:        "omid",
		Email:           "omid@maktab.io",
		Password:        "0ldPassword",
		PasswordConfirm: "0ldPassword",
	})
	require.NoError(t, err)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("n3wPassword"), nil }

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"resetpassword", "-username", "nope"}, wantErr: user.ErrNotFound},
		{name: "by username", args: []string{"resetpassword", "-username", "omid"}},
		{name: "by email", args: []string{"resetpassword", "-username", "omid@maktab.io"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			fresh, err := usrSvc.GetByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, fresh.CheckPassword("n3wPassword"))
		})
	}
}
