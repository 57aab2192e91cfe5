// Package command provides the CLI command definitions for gatewarden-cli.
//
// It uses urfave/cli/v2 for command parsing. Connection defaults come
// from the config file; flags and GATEWARDEN_* environment variables
// override it.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/gatewarden/gatewarden-go/internal/cli/config"
	"github.com/gatewarden/gatewarden-go/internal/cli/connection"
	"github.com/gatewarden/gatewarden-go/internal/cli/output"
	"github.com/gatewarden/gatewarden-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gatewarden-cli",
		Usage:   "Gatewarden token management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			UserCommand(),
			StatusCommand(),
			ConfigCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to CLI config file",
			EnvVars: []string{"GATEWARDEN_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (e.g. localhost:5080)",
			EnvVars: []string{"GATEWARDEN_SERVER"},
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Calling identity, sent as X-Auth-User",
			EnvVars: []string{"GATEWARDEN_USER"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "Admin bearer token for directory commands",
			EnvVars: []string{"GATEWARDEN_ADMIN_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "CA bundle for TLS servers",
			EnvVars: []string{"GATEWARDEN_CA_FILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"GATEWARDEN_OUTPUT"},
		},
	}
}

// settings is the effective configuration after merging the config file
// with flags.
type settings struct {
	Server     string
	AuthUser   string
	AdminToken string
	CAFile     string
	Output     output.Format
}

// resolveSettings merges the config file with command-line flags.
func resolveSettings(c *cli.Context) (*settings, error) {
	cfg, err := cliconfig.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	s := &settings{
		Server:     cfg.Server,
		AuthUser:   cfg.AuthUser,
		AdminToken: cfg.AdminToken,
		CAFile:     cfg.CAFile,
		Output:     output.Format(cfg.Output),
	}
	if v := c.String("server"); v != "" {
		s.Server = v
	}
	if v := c.String("user"); v != "" {
		s.AuthUser = v
	}
	if v := c.String("admin-token"); v != "" {
		s.AdminToken = v
	}
	if v := c.String("ca-file"); v != "" {
		s.CAFile = v
	}
	if v := c.String("output"); v != "" {
		s.Output = output.Format(v)
	}
	return s, nil
}

// newClient builds the HTTP client from the effective settings.
func newClient(c *cli.Context) (*connection.Client, *settings, error) {
	s, err := resolveSettings(c)
	if err != nil {
		return nil, nil, err
	}

	opts := []connection.Option{}
	if s.AdminToken != "" {
		opts = append(opts, connection.WithAdminToken(s.AdminToken))
	}
	if s.CAFile != "" {
		opts = append(opts, connection.WithCAFile(s.CAFile))
	}

	client, err := connection.NewClient(s.Server, s.AuthUser, opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, s, nil
}

func formatTo(c *cli.Context, s *settings, data any) error {
	return output.NewFormatter(s.Output).Format(c.App.Writer, data)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
