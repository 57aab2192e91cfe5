package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gatewarden/gatewarden-go/internal/cli/connection"
	"github.com/gatewarden/gatewarden-go/internal/cli/output"
)

// UserCommand returns the directory user subcommand group. These commands
// require the admin token.
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage directory users (admin)",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a directory user",
				ArgsUsage: "USER",
				Action:    userGet,
			},
			{
				Name:      "set",
				Usage:     "Create or replace a directory user",
				ArgsUsage: "USER",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Group membership (repeatable)",
					},
				},
				Action: userSet,
			},
			{
				Name:      "delete",
				Usage:     "Delete a directory user",
				ArgsUsage: "USER",
				Action:    userDelete,
			},
		},
	}
}

// directoryUser mirrors the server's directory payload.
type directoryUser struct {
	User   string   `json:"user"`
	Groups []string `json:"groups"`
}

func userGet(c *cli.Context) error {
	user := c.Args().First()
	if user == "" {
		return fmt.Errorf("user required")
	}

	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/directory/users/"+user)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var rec directoryUser
	if err := connection.ParseResponse(resp, &rec); err != nil {
		return err
	}

	if s.Output == output.FormatTable {
		return formatTo(c, s, output.KeyValueTable(
			[2]string{"user", rec.User},
			[2]string{"groups", strings.Join(rec.Groups, ", ")},
		))
	}
	return formatTo(c, s, rec)
}

func userSet(c *cli.Context) error {
	user := c.Args().First()
	if user == "" {
		return fmt.Errorf("user required")
	}

	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Put(ctx, "/v1/directory/users/"+user, map[string]any{
		"groups": c.StringSlice("group"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var rec directoryUser
	if err := connection.ParseResponse(resp, &rec); err != nil {
		return err
	}

	if s.Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "user %s updated (%d groups)\n", rec.User, len(rec.Groups))
		return nil
	}
	return formatTo(c, s, rec)
}

func userDelete(c *cli.Context) error {
	user := c.Args().First()
	if user == "" {
		return fmt.Errorf("user required")
	}

	client, _, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Delete(ctx, "/v1/directory/users/"+user)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "user %s deleted\n", user)
	return nil
}
