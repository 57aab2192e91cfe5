package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gatewarden/gatewarden-go/internal/cli/connection"
	"github.com/gatewarden/gatewarden-go/internal/cli/output"
)

// requestTimeout bounds every CLI request.
const requestTimeout = 30 * time.Second

// tokenRecord mirrors the server's token payload.
type tokenRecord struct {
	Token      string `json:"token"`
	User       string `json:"user"`
	Status     string `json:"status"`
	ExpiryTime int64  `json:"expiry_time"`
	History    []struct {
		Time          int64  `json:"time"`
		OperatingUser string `json:"operating_user"`
		Operation     string `json:"operation"`
		Reason        string `json:"reason"`
	} `json:"history"`
}

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Manage bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Issue a new token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "justification",
						Aliases:  []string{"j"},
						Usage:    "Reason for issuing the token",
						Required: true,
					},
				},
				Action: tokenCreate,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke a token",
				ArgsUsage: "TOKEN",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "justification",
						Aliases:  []string{"j"},
						Usage:    "Reason for revoking the token",
						Required: true,
					},
				},
				Action: tokenRevoke,
			},
			{
				Name:   "list",
				Usage:  "List your tokens",
				Action: tokenList,
			},
			{
				Name:      "validate",
				Usage:     "Check whether a token authorizes the given groups",
				ArgsUsage: "TOKEN",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Required group (repeatable)",
					},
				},
				Action: tokenValidate,
			},
		},
	}
}

func tokenCreate(c *cli.Context) error {
	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/tokens", map[string]any{
		"justification": c.String("justification"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var rec tokenRecord
	if err := connection.ParseResponse(resp, &rec); err != nil {
		return err
	}

	if s.Output == output.FormatTable {
		return formatTo(c, s, output.KeyValueTable(
			[2]string{"token", rec.Token},
			[2]string{"user", rec.User},
			[2]string{"status", rec.Status},
			[2]string{"expires", formatMillis(rec.ExpiryTime)},
		))
	}
	return formatTo(c, s, rec)
}

func tokenRevoke(c *cli.Context) error {
	tok := c.Args().First()
	if tok == "" {
		return fmt.Errorf("token required")
	}

	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/tokens/revoke", map[string]any{
		"token":         tok,
		"justification": c.String("justification"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var rec tokenRecord
	if err := connection.ParseResponse(resp, &rec); err != nil {
		return err
	}

	if s.Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "token revoked (%s)\n", rec.Status)
		return nil
	}
	return formatTo(c, s, rec)
}

func tokenList(c *cli.Context) error {
	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/tokens")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Tokens []tokenRecord `json:"tokens"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if s.Output != output.FormatTable {
		return formatTo(c, s, result.Tokens)
	}

	table := &output.Table{Headers: []string{"TOKEN", "STATUS", "CREATED", "EXPIRES"}}
	for _, rec := range result.Tokens {
		created := ""
		if len(rec.History) > 0 {
			created = formatMillis(rec.History[0].Time)
		}
		table.AddRow(rec.Token, rec.Status, created, formatMillis(rec.ExpiryTime))
	}
	if err := table.Render(c.App.Writer); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d tokens\n", len(result.Tokens))
	return nil
}

func tokenValidate(c *cli.Context) error {
	tok := c.Args().First()
	if tok == "" {
		return fmt.Errorf("token required")
	}

	client, _, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/tokens/validate", map[string]any{
		"token":           tok,
		"required_groups": c.StringSlice("group"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if !result.OK {
		fmt.Fprintln(c.App.Writer, "denied")
		return cli.Exit("", 1)
	}
	fmt.Fprintln(c.App.Writer, "granted")
	return nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
