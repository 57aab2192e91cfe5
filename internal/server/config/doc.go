// Package config defines the server configuration structure.
//
// Configuration is loaded from an optional YAML file and GATEWARDEN_*
// environment variables by internal/infra/confloader, verified with
// Verify, and logged through Sanitize so secrets never reach the log
// stream.
package config
