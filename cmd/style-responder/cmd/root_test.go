package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/llm-style-responder/internal/core"
)

// writeFixture lays out a mailbox directory and a config file pointing every
// store at the temp dir
func writeFixture(t *testing.T) (configFile, mailDir string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	mailDir = filepath.Join(dir, "mail")
	if err := os.MkdirAll(mailDir, 0o755); err != nil {
		t.Fatal(err)
	}
	messages := []struct{ from, subject, body string }{
		{"Spock <spock@enterprise.org>", "Sensor report", "The readings are fascinating."},
		{"spock@enterprise.org", "Shore leave", "Logic dictates we remain aboard."},
		{"kirk@enterprise.org", "Orders", "Set a course for Vulcan."},
	}
	for i, m := range messages {
		data := fmt.Sprintf("From: %s\nTo: crew@enterprise.org\nSubject: %s\nDate: Mon, %d Jan 2006 15:04:05 -0700\n\n%s\n",
			m.from, m.subject, i+2, m.body)
		if err := os.WriteFile(filepath.Join(mailDir, fmt.Sprintf("%d.eml", i)), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	configFile = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`knowledge:
  mode: direct
corpus:
  repository: sqlite
  sqlite_path: %s
vectorstore:
  sqlite_path: %s
openai:
  api_key: ""
logging:
  level: error
`, filepath.Join(dir, "corpus.db"), filepath.Join(dir, "vectors.db"))
	if err := os.WriteFile(configFile, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return configFile, mailDir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestThenInspect(t *testing.T) {
	configFile, mailDir := writeFixture(t)

	out, err := run(t, "", "ingest", "--config", configFile, "--quiet", mailDir)
	if err != nil {
		t.Fatalf("ingest error = %v", err)
	}
	for _, want := range []string{"Messages: 3", "Knowledge mode: direct", "Unique senders: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("ingest output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "", "stats", "--config", configFile)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(out, "Total emails: 3") {
		t.Errorf("stats output:\n%s", out)
	}

	out, err = run(t, "", "search", "--config", configFile, "vulcan")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "Matches: 1") || !strings.Contains(out, "Orders") {
		t.Errorf("search output:\n%s", out)
	}

	out, err = run(t, "", "identity", "--config", configFile)
	if err != nil {
		t.Fatalf("identity error = %v", err)
	}
	if !strings.Contains(out, "Address: spock@enterprise.org") || !strings.Contains(out, "Messages: 2 of 3") {
		t.Errorf("identity output:\n%s", out)
	}

	if _, err := run(t, "", "clear", "--config", configFile); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	out, err = run(t, "", "stats", "--config", configFile)
	if err != nil {
		t.Fatalf("stats after clear error = %v", err)
	}
	if !strings.Contains(out, "Total emails: 0") {
		t.Errorf("stats after clear:\n%s", out)
	}
}

func TestIngest_NoMessages(t *testing.T) {
	configFile, _ := writeFixture(t)
	if _, err := run(t, "", "ingest", "--config", configFile, t.TempDir()); err == nil {
		t.Error("ingest of an empty directory should fail")
	}
}

func TestRespond_Errors(t *testing.T) {
	configFile, mailDir := writeFixture(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  error
	}{
		{"empty input", "", nil, nil},
		{"unknown style", "hello", []string{"--style", "pirate"}, nil},
		{"unknown type", "hello", []string{"--type", "memo"}, nil},
		{"conflicting flags", "hello", []string{"--internal", "--external"}, nil},
		{"no corpus", "hello", nil, core.ErrCorpusNotLoaded},
		{"no credentials", "hello", []string{"--no-context"}, core.ErrNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"respond", "--config", configFile}, tt.args...)
			_, err := run(t, tt.stdin, args...)
			if err == nil {
				t.Fatal("respond should fail")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := run(t, "", "ingest", "--config", configFile, "--quiet", mailDir); err != nil {
		t.Fatalf("ingest error = %v", err)
	}
	_, err := run(t, "hello", "respond", "--config", configFile)
	if !errors.Is(err, core.ErrNotConfigured) {
		t.Errorf("respond without credentials: error = %v, want ErrNotConfigured", err)
	}
}

func TestParseStyleAndType(t *testing.T) {
	if s, err := parseStyle("Friendly"); err != nil || s != core.StyleFriendly {
		t.Errorf("parseStyle() = %q, %v", s, err)
	}
	if m, err := parseMessageType("internal_colleague"); err != nil || m != core.MessageInternalColleague {
		t.Errorf("parseMessageType() = %q, %v", m, err)
	}
}

type failingCloser struct{ closed bool }

func (c *failingCloser) Close() error {
	c.closed = true
	return errors.New("database is locked")
}

func TestCloseIfCloser_LogsCloseError(t *testing.T) {
	observed, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(observed)

	c := &failingCloser{}
	closeIfCloser(c, logger)
	if !c.closed {
		t.Fatal("Close() was not called")
	}
	entries := logs.FilterMessage("Failed to close resource").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d close errors, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "database is locked" {
		t.Errorf("error field = %v", got)
	}

	// Values without Close are ignored.
	closeIfCloser("not a closer", logger)
	if logs.Len() != 1 {
		t.Errorf("log entries = %d, want 1", logs.Len())
	}
}
