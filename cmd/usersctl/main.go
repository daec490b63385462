// Command usersctl administers users through the user-admin API.
//
//	usersctl [-url URL] [-token TOKEN] <command> [flags]
//
// Commands: signin, list, create, delete, role, activity, session.
// The token is read from USERS_TOKEN when -token is not given; signin
// prints a token to export.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/client"
	"github.com/99minutos/user-admin/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "usersctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("usersctl", flag.ContinueOnError)
	baseURL := fs.String("url", client.BaseURLFromEnv(), "API base URL")
	token := fs.String("token", os.Getenv("USERS_TOKEN"), "session token")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	verbose := fs.Bool("v", false, "log notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	log := zerolog.Nop()
	if *verbose {
		log = logger.New(logger.Options{Level: "info", Pretty: true, Output: os.Stderr})
	}

	c := client.New(client.Config{
		BaseURL:  *baseURL,
		Token:    *token,
		Timeout:  *timeout,
		Notifier: client.LogNotifier{Log: log},
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "signin":
		return signIn(ctx, c, rest, out)
	case "list":
		return list(ctx, c, out)
	case "create":
		return create(ctx, c, rest, out)
	case "delete":
		return withID(rest, func(id string) error {
			res, err := c.DeleteUser(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(out, res)
		})
	case "role":
		return setRole(ctx, c, rest, out)
	case "activity":
		return withID(rest, func(id string) error {
			events, err := c.UserActivity(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(out, events)
		})
	case "session":
		sess, err := c.RefreshSession(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, sess)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func signIn(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("USERS_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := c.SignInEmail(ctx, *email, *password)
	if !res.OK() {
		return res.Error
	}
	_, err := fmt.Fprintf(out, "export USERS_TOKEN=%s\n", res.Data.Token)
	return err
}

func list(ctx context.Context, c *client.Client, out io.Writer) error {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func create(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var req client.CreateUserRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "initial password")
	fs.StringVar(&req.Role, "role", "USER", "ADMIN, MANAGER or USER")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := c.CreateUser(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(out, created)
}

func setRole(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: role <user-id> <ADMIN|MANAGER|USER>")
	}
	user, err := c.UpdateUserRole(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return printJSON(out, user)
}

func withID(args []string, fn func(id string) error) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("expected exactly one user id")
	}
	return fn(args[0])
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
