package notify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTerminalChannelDeliversVerbatim(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher([]string{ChannelTerminal}, &buf, "")

	message := `Recipe downloaded as "CyberChefExport.json".`
	if err := d.Notify(context.Background(), message); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if got := buf.String(); got != message+"\n" {
		t.Errorf("terminal output = %q, want %q", got, message+"\n")
	}
}

func TestLogChannel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "notifications.log")
	d := NewDispatcher([]string{ChannelLog}, nil, logPath)

	if err := d.Notify(context.Background(), "first"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := d.Notify(context.Background(), "second"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer f.Close()

	var messages []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("parsing log line %q: %v", scanner.Text(), err)
		}
		messages = append(messages, entry.Message)
	}

	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Errorf("log messages = %v, want [first second]", messages)
	}
}

func TestLogChannelWithoutPath(t *testing.T) {
	d := NewDispatcher([]string{ChannelLog}, nil, "")

	err := d.Notify(context.Background(), "lost")
	if err == nil {
		t.Fatal("Notify() should fail when log channel has no path")
	}
	if !strings.Contains(err.Error(), "log") {
		t.Errorf("error should name the failing channel, got %v", err)
	}
}

func TestNoneChannel(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher([]string{ChannelNone}, &buf, "")

	if err := d.Notify(context.Background(), "quiet"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("none channel wrote output: %q", buf.String())
	}
}

func TestUnknownChannel(t *testing.T) {
	d := NewDispatcher([]string{"carrier-pigeon"}, nil, "")

	results := d.Dispatch("hello")
	if len(results) != 1 {
		t.Fatalf("Dispatch() = %d results, want 1", len(results))
	}
	if results[0].Success {
		t.Error("unknown channel reported success")
	}
	if !strings.Contains(results[0].Error, "unknown channel") {
		t.Errorf("Error = %q, want unknown channel mention", results[0].Error)
	}
}

func TestMultipleChannels(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "notifications.log")
	d := NewDispatcher([]string{ChannelTerminal, ChannelLog}, &buf, logPath)

	results := d.Dispatch("both")
	if len(results) != 2 {
		t.Fatalf("Dispatch() = %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("channel %s failed: %s", r.Channel, r.Error)
		}
	}
}

func TestDefaultChannels(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(nil, &buf, "")

	if err := d.Notify(context.Background(), "default route"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(buf.String(), "default route") {
		t.Errorf("default dispatcher did not write to terminal: %q", buf.String())
	}
}
