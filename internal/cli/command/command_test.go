package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	cliconfig "github.com/gatewarden/gatewarden-go/internal/cli/config"
	"github.com/gatewarden/gatewarden-go/internal/core/service"
	"github.com/gatewarden/gatewarden-go/internal/server/httpserver/handler"
	"github.com/gatewarden/gatewarden-go/internal/storage/memory"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/logger"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/metric"
	"github.com/gatewarden/gatewarden-go/pkg/token"
)

const adminToken = "cli-test-admin"

// startServer runs a real API server backed by the memory store.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	membership := service.NewMembershipService(store)
	tokens := service.NewTokenService(store, membership, nil)
	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}

	h := handler.New(tokens, store, metric.NewRegistry(), log, handler.Config{AdminToken: adminToken})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI runs the app with global flags prepended, capturing stdout.
func runCLI(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf

	full := append([]string{
		"gatewarden-cli",
		"--config", filepath.Join(t.TempDir(), "cli.yaml"),
		"--server", serverURL,
		"--user", "alice",
		"--admin-token", adminToken,
		"--output", "json",
	}, args...)

	err := app.Run(full)
	return buf.String(), err
}

func TestTokenLifecycle(t *testing.T) {
	srv := startServer(t)

	out, err := runCLI(t, srv.URL, "token", "create", "-j", "ci pipeline")
	if err != nil {
		t.Fatalf("token create: %v", err)
	}

	var created tokenRecord
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("parse create output: %v\n%s", err, out)
	}
	if !token.ValidFormat(created.Token) {
		t.Fatalf("created token invalid: %q", created.Token)
	}

	out, err = runCLI(t, srv.URL, "token", "list")
	if err != nil {
		t.Fatalf("token list: %v", err)
	}
	if !strings.Contains(out, created.Token) {
		t.Errorf("list output missing token:\n%s", out)
	}

	out, err = runCLI(t, srv.URL, "token", "validate", created.Token)
	if err != nil {
		t.Fatalf("token validate: %v", err)
	}
	if !strings.Contains(out, "granted") {
		t.Errorf("validate output = %q, want granted", out)
	}

	out, err = runCLI(t, srv.URL, "token", "revoke", "-j", "rotated", created.Token)
	if err != nil {
		t.Fatalf("token revoke: %v", err)
	}
	var revoked tokenRecord
	if err := json.Unmarshal([]byte(out), &revoked); err != nil {
		t.Fatalf("parse revoke output: %v\n%s", err, out)
	}
	if revoked.Status != "REVOKED" {
		t.Errorf("status after revoke = %q", revoked.Status)
	}
}

func TestTokenCreate_ServerError(t *testing.T) {
	srv := startServer(t)

	// Empty justification is rejected server-side; the required flag check
	// fires first client-side, so send an explicit empty value.
	_, err := runCLI(t, srv.URL, "token", "create", "-j", "")
	if err == nil {
		t.Fatal("expected error for empty justification")
	}
}

func TestUserCommands(t *testing.T) {
	srv := startServer(t)

	if _, err := runCLI(t, srv.URL, "user", "set", "-g", "ops", "-g", "deploy", "bob"); err != nil {
		t.Fatalf("user set: %v", err)
	}

	out, err := runCLI(t, srv.URL, "user", "get", "bob")
	if err != nil {
		t.Fatalf("user get: %v", err)
	}
	var rec directoryUser
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("parse user get output: %v\n%s", err, out)
	}
	if rec.User != "bob" || len(rec.Groups) != 2 {
		t.Errorf("directory user = %+v", rec)
	}

	if _, err := runCLI(t, srv.URL, "user", "delete", "bob"); err != nil {
		t.Fatalf("user delete: %v", err)
	}
	if _, err := runCLI(t, srv.URL, "user", "get", "bob"); err == nil {
		t.Error("user get after delete succeeded")
	}
}

func TestUserCommands_RequireAdmin(t *testing.T) {
	srv := startServer(t)

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run([]string{
		"gatewarden-cli",
		"--config", filepath.Join(t.TempDir(), "cli.yaml"),
		"--server", srv.URL,
		"--user", "alice",
		"user", "get", "bob",
	})
	if err == nil || !strings.Contains(err.Error(), "GW-AUTH-4010") {
		t.Errorf("error = %v, want admin auth failure", err)
	}
}

func TestStatusCommand(t *testing.T) {
	srv := startServer(t)

	out, err := runCLI(t, srv.URL, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, `"status": "ok"`) {
		t.Errorf("status output = %q", out)
	}
}

func TestConfigSetAndView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run([]string{
		"gatewarden-cli", "--config", path,
		"config", "set", "--server", "https://gw.internal:8443", "--user", "carol",
	})
	if err != nil {
		t.Fatalf("config set: %v", err)
	}

	cfg, err := cliconfig.Load(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if cfg.Server != "https://gw.internal:8443" || cfg.AuthUser != "carol" {
		t.Errorf("saved config = %+v", cfg)
	}
}
