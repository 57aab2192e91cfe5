package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Headers(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{"code":"OK","message":"success"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "alice", WithAdminToken("admin-secret"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Post(context.Background(), "/v1/tokens", map[string]any{"justification": "x"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if err := ParseResponse(resp, nil); err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	if got := gotHeaders.Get("X-Auth-User"); got != "alice" {
		t.Errorf("X-Auth-User = %q", got)
	}
	if got := gotHeaders.Get("Authorization"); got != "Bearer admin-secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.HasPrefix(gotHeaders.Get("User-Agent"), "gatewarden-cli/") {
		t.Errorf("User-Agent = %q", gotHeaders.Get("User-Agent"))
	}
}

func TestNewClient_SchemePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:5080", "http://localhost:5080"},
		{"http://host:1", "http://host:1"},
		{"https://host:2/", "https://host:2"},
	}
	for _, tt := range tests {
		client, err := NewClient(tt.in, "")
		if err != nil {
			t.Fatalf("NewClient(%q) error = %v", tt.in, err)
		}
		if client.BaseURL() != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, client.BaseURL(), tt.want)
		}
	}
}

func TestParseResponse_Data(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"OK","message":"success","data":{"ok":true}}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "")
	resp, err := client.Get(context.Background(), "/v1/tokens/validate")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var got struct {
		OK bool `json:"ok"`
	}
	if err := ParseResponse(resp, &got); err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if !got.OK {
		t.Error("data not decoded")
	}
}

func TestParseResponse_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"GW-TOKN-4040","message":"token not found or not unique","details":"zero matches"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "")
	resp, err := client.Get(context.Background(), "/v1/tokens")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("ParseResponse() = nil error for 404")
	}
	for _, want := range []string{"GW-TOKN-4040", "token not found", "zero matches"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestParseResponse_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "")
	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil || !strings.Contains(err.Error(), "504") {
		t.Errorf("error = %v, want status 504 mention", err)
	}
}
