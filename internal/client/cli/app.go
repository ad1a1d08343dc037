package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
)

var errUsage = errors.New("usage")

// TokenStore keeps the login token between invocations.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

type App struct {
	config *config.Config
	api    client.Client
	tokens TokenStore
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		tokens: client.NewTokenFile(c.TokenFile),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

type command struct {
	usage string
	auth  bool
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register": {"register", false, (*App).register},
	"login":    {"login", false, (*App).login},
	"logout":   {"logout", false, (*App).logout},
	"notes":    {"notes", true, (*App).list},
	"show":     {"show <id>", true, (*App).show},
	"create":   {"create [text...]", true, (*App).create},
	"update":   {"update <id> [text...]", true, (*App).update},
	"attach":   {"attach <id> <file>", true, (*App).attach},
	"delete":   {"delete <id>", true, (*App).delete},
	"share":    {"share <id> <userID>", true, (*App).share},
	"unshare":  {"unshare <id> <userID>", true, (*App).unshare},
}

var commandOrder = []string{"register", "login", "logout", "notes", "show", "create", "update", "attach", "delete", "share", "unshare"}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.help()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.help()
		return fmt.Errorf("unknown command %q", args[0])
	}

	if cmd.auth {
		token, err := a.tokens.Load()
		if err != nil {
			if errors.Is(err, client.ErrNotLoggedIn) {
				return fmt.Errorf("%w: run 'login' first", err)
			}
			return err
		}
		a.api.SetToken(token)
	}

	err := cmd.run(a, ctx, args[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	if errors.Is(err, client.ErrUnauthorized) && cmd.auth {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "Unauthorized" {
			return fmt.Errorf("%w: session expired, run 'login' again", err)
		}
	}
	return err
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
}
