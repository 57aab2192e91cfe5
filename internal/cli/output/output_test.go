package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	table := &Table{Headers: []string{"TOKEN", "STATUS"}}
	table.AddRow("abc", "VALID")
	table.AddRow("def", "")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "TOKEN") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "-") {
		t.Errorf("empty cell not rendered as dash: %q", lines[2])
	}
}

func TestKeyValueTable(t *testing.T) {
	table := KeyValueTable(
		[2]string{"user", "alice"},
		[2]string{"status", "ok"},
	)

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"FIELD", "VALUE", "user", "alice", "status"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&JSONFormatter{}).Format(&buf, map[string]string{"user": "alice"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"user": "alice"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&YAMLFormatter{}).Format(&buf, map[string]string{"user": "alice"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "user: alice") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format did not select JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml format did not select YAMLFormatter")
	}
	if _, ok := NewFormatter("bogus").(*TableFormatter); !ok {
		t.Error("unknown format did not fall back to table")
	}
}

func TestTableFormatter_Fallback(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"n": 1`) {
		t.Errorf("fallback output = %q", buf.String())
	}
}
