package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ircord/pkg/config"
)

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		entry := make(map[string]any)
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}

	return entries
}

func TestLoggerJSONShape(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.With("component", "relay.worker").Info("Sent message", "target", "#general", "direction", "discord->irc")

	entries := decodeLines(t, &out)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	entry := entries[0]
	want := map[string]any{
		"level":     "info",
		"msg":       "Sent message",
		"component": "relay.worker",
		"target":    "#general",
		"direction": "discord->irc",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("%s = %v, want %v", key, entry[key], value)
		}
	}
	if entry["time"] == nil {
		t.Fatal("expected time key")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Ignored")
	if got := strings.TrimSpace(out.String()); got != "" {
		t.Fatalf("expected no output for info, got %q", got)
	}

	log.Error("Kept")
	if entries := decodeLines(t, &out); len(entries) != 1 || entries[0]["msg"] != "Kept" {
		t.Fatalf("entries = %v, want only the error line", entries)
	}
}

func TestLoggerDefaultsToText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Debug("Hidden at default level")
	log.Info("Default format", "component", "bridge")

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected log output")
	}
	if strings.HasPrefix(line, "{") || strings.Contains(line, "Hidden") {
		t.Fatalf("expected one text line at info, got %q", line)
	}
	if !strings.Contains(line, "Default format") || !strings.Contains(line, "bridge") {
		t.Fatalf("text line missing message or component: %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if _, err := parseLevel(input); err != nil {
			t.Fatalf("parseLevel(%q) error: %v", input, err)
		}
	}
	if _, err := parseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := newWithWriter(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
