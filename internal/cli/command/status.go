package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gatewarden/gatewarden-go/internal/cli/connection"
	"github.com/gatewarden/gatewarden-go/internal/cli/output"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server health and version",
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	client, s, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := connection.ParseResponse(resp, &health); err != nil {
		return err
	}

	if s.Output == output.FormatTable {
		return formatTo(c, s, output.KeyValueTable(
			[2]string{"server", client.BaseURL()},
			[2]string{"status", health.Status},
			[2]string{"version", health.Version},
		))
	}
	return formatTo(c, s, health)
}
