// Package main provides the entry point for gatewarden-cli.
//
// gatewarden-cli is the command-line client for gatewarden-server: token
// create/revoke/list/validate plus directory administration.
package main

import (
	"fmt"
	"os"

	"github.com/gatewarden/gatewarden-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
