// Command notes is a terminal client for the notes API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/jotter/notes/internal/client"
)

func main() {
	var (
		server      string
		sessionPath string
		api         *client.Client
	)

	app := &cli.App{
		Name:  "notes",
		Usage: "Keep short notes on a notes server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "Base URL of the notes API",
				EnvVars:     []string{"NOTES_SERVER"},
				Value:       "http://localhost:5001",
				Destination: &server,
			},
			&cli.StringFlag{
				Name:        "session",
				Usage:       "File holding the current login token",
				EnvVars:     []string{"NOTES_SESSION"},
				Value:       client.DefaultSessionPath(),
				Destination: &sessionPath,
			},
		},
		Before: func(ctx *cli.Context) error {
			session, err := client.LoadSession(sessionPath)
			if err != nil {
				return err
			}
			api = client.New(server, session, client.WithReauthenticate(func() {
				fmt.Fprintln(os.Stderr, "Your session has ended. Run `notes login` to sign in again.")
			}))
			return nil
		},
		Commands: []*cli.Command{
			registerCmd(&api),
			loginCmd(&api),
			logoutCmd(&api),
			listCmd(&api),
			addCmd(&api),
			editCmd(&api),
			rmCmd(&api),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			os.Exit(1)
		}
		log.Error().Err(err).Msg("notes failed")
		os.Exit(1)
	}
}

func emailFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "email",
		Aliases:     []string{"e"},
		Usage:       "Account email",
		Destination: dst,
		Required:    true,
	}
}

// readPassword reads one line from stdin so that it never lands in shell
// history.
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := strings.TrimSpace(sc.Text())
	if password == "" {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}

func registerCmd(api **client.Client) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account (password is read from stdin)",
		Flags: []cli.Flag{emailFlag(&email)},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			user, err := (*api).Register(ctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s. Run `notes login -e %s` to sign in.\n", user.Email, user.Email)
			return nil
		},
	}
}

func loginCmd(api **client.Client) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in (password is read from stdin)",
		Flags: []cli.Flag{emailFlag(&email)},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			user, err := (*api).Login(ctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s.\n", user.Email)
			return nil
		},
	}
}

func logoutCmd(api **client.Client) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored token",
		Action: func(ctx *cli.Context) error {
			return (*api).Logout()
		},
	}
}

func listCmd(api **client.Client) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List your notes, newest first",
		Action: func(ctx *cli.Context) error {
			notes, err := (*api).ListNotes(ctx.Context)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCONTENT")
			for _, n := range notes {
				fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Content)
			}
			return w.Flush()
		},
	}
}

func addCmd(api **client.Client) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a note",
		ArgsUsage: "<content>",
		Action: func(ctx *cli.Context) error {
			content := strings.Join(ctx.Args().Slice(), " ")
			if strings.TrimSpace(content) == "" {
				return errors.New("note content is required")
			}
			note, err := (*api).CreateNote(ctx.Context, content)
			if err != nil {
				return err
			}
			fmt.Println(note.ID)
			return nil
		},
	}
}

func editCmd(api **client.Client) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace the content of a note",
		ArgsUsage: "<id> <content>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() < 2 {
				return errors.New("usage: notes edit <id> <content>")
			}
			id := ctx.Args().First()
			content := strings.Join(ctx.Args().Tail(), " ")
			if _, err := (*api).UpdateNote(ctx.Context, id, content); err != nil {
				return err
			}
			return nil
		},
	}
}

func rmCmd(api **client.Client) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a note",
		ArgsUsage: "<id>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return errors.New("usage: notes rm <id>")
			}
			return (*api).DeleteNote(ctx.Context, ctx.Args().First())
		},
	}
}
