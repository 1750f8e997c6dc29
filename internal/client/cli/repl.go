package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	role() models.UserType

	Register(ctx context.Context) error
	VerifyOTP(ctx context.Context) error
	SelectRole(ctx context.Context) error
	Login(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	SocialLogin(ctx context.Context, args []string) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error

	Status(ctx context.Context) error
	Submit(ctx context.Context) error
	VerifyCode(ctx context.Context) error
	Pending(ctx context.Context) error
	All(ctx context.Context) error
	Review(ctx context.Context, args []string) error

	Notifications(ctx context.Context) error
	Read(ctx context.Context, args []string) error
}

// access is who may run a command.
type access int

const (
	accessAnyone access = iota
	accessAuthenticated
	accessEmployer
	accessAdmin
)

type command struct {
	access access
	run    func(ctx context.Context, a execIface, args []string) error
}

var commands = map[string]command{
	"register":        {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.Register(ctx) }},
	"verify-otp":      {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.VerifyOTP(ctx) }},
	"select-role":     {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.SelectRole(ctx) }},
	"login":           {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.Login(ctx) }},
	"admin-login":     {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.AdminLogin(ctx) }},
	"social-login":    {accessAnyone, func(ctx context.Context, a execIface, args []string) error { return a.SocialLogin(ctx, args) }},
	"forgot-password": {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.ForgotPassword(ctx) }},
	"reset-password":  {accessAnyone, func(ctx context.Context, a execIface, _ []string) error { return a.ResetPassword(ctx) }},

	"whoami":        {accessAuthenticated, func(ctx context.Context, a execIface, _ []string) error { return a.WhoAmI(ctx) }},
	"logout":        {accessAuthenticated, func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) }},
	"notifications": {accessAuthenticated, func(ctx context.Context, a execIface, _ []string) error { return a.Notifications(ctx) }},
	"read":          {accessAuthenticated, func(ctx context.Context, a execIface, args []string) error { return a.Read(ctx, args) }},

	"status":      {accessEmployer, func(ctx context.Context, a execIface, _ []string) error { return a.Status(ctx) }},
	"submit":      {accessEmployer, func(ctx context.Context, a execIface, _ []string) error { return a.Submit(ctx) }},
	"verify-code": {accessEmployer, func(ctx context.Context, a execIface, _ []string) error { return a.VerifyCode(ctx) }},

	"pending": {accessAdmin, func(ctx context.Context, a execIface, _ []string) error { return a.Pending(ctx) }},
	"all":     {accessAdmin, func(ctx context.Context, a execIface, _ []string) error { return a.All(ctx) }},
	"review":  {accessAdmin, func(ctx context.Context, a execIface, args []string) error { return a.Review(ctx, args) }},
}

func allowed(a execIface, acc access) bool {
	switch acc {
	case accessAnyone:
		return true
	case accessAuthenticated:
		return a.isLoggedIn()
	case accessEmployer:
		return a.isLoggedIn() && a.role() == models.UserTypeEmployer
	case accessAdmin:
		return a.isLoggedIn() && a.role() == models.UserTypeAdmin
	default:
		return false
	}
}

func helpText(a execIface) string {
	if !a.isLoggedIn() {
		return "Available commands: register, verify-otp, select-role, login, admin-login, social-login <token> [email] [role], forgot-password, reset-password, exit"
	}
	common := "whoami, notifications, read <id>|all, logout, exit"
	switch a.role() {
	case models.UserTypeEmployer:
		return "Available commands: status, submit, verify-code, " + common
	case models.UserTypeAdmin:
		return "Available commands: pending, all, review <id> approve|reject, " + common
	default:
		return "Available commands: " + common
	}
}

// runREPL starts a simple read–eval–print loop for the HireNest CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Commands the current role may not use
// print the help text instead, exactly like "help". The loop exits on EOF
// or when the user types "exit" or "quit".
//
// Handler errors are printed and the loop continues; nothing is retried.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hn %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if !allowed(a, cmd.access) {
			printlnFn(helpText(a))
			continue
		}

		if err := cmd.run(ctx, a, args); err != nil {
			printlnFn("Error:", client.Message(err))
		}

		if ctx.Err() != nil {
			return
		}
	}
}
