package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/gatewarden/gatewarden-go/internal/cli/config"
	"github.com/gatewarden/gatewarden-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group for managing the CLI
// config file.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "view",
				Usage:  "Show the effective configuration",
				Action: configView,
			},
			{
				Name:  "set",
				Usage: "Update configuration values",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "server", Usage: "Server address"},
					&cli.StringFlag{Name: "user", Usage: "Calling identity"},
					&cli.StringFlag{Name: "admin-token", Usage: "Admin bearer token"},
					&cli.StringFlag{Name: "ca-file", Usage: "CA bundle path"},
					&cli.StringFlag{Name: "output", Usage: "Default output format"},
				},
				Action: configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configView(c *cli.Context) error {
	s, err := resolveSettings(c)
	if err != nil {
		return err
	}

	adminToken := "-"
	if s.AdminToken != "" {
		adminToken = "(set)"
	}
	return formatTo(c, s, output.KeyValueTable(
		[2]string{"server", s.Server},
		[2]string{"user", s.AuthUser},
		[2]string{"admin_token", adminToken},
		[2]string{"ca_file", s.CAFile},
		[2]string{"output", string(s.Output)},
	))
}

func configSet(c *cli.Context) error {
	path := c.String("config")
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return err
	}

	changed := false
	if v := c.String("server"); v != "" {
		cfg.Server = v
		changed = true
	}
	if v := c.String("user"); v != "" {
		cfg.AuthUser = v
		changed = true
	}
	if v := c.String("admin-token"); v != "" {
		cfg.AdminToken = v
		changed = true
	}
	if v := c.String("ca-file"); v != "" {
		cfg.CAFile = v
		changed = true
	}
	if v := c.String("output"); v != "" {
		cfg.Output = v
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to set")
	}

	if err := cliconfig.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "configuration saved")
	return nil
}

func configPath(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultPath()
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}
