// Package notify delivers user-facing notifications raised by vault
// operations. Notifications are dispatched to configured channels; the
// default configuration writes to the terminal.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Supported channels.
const (
	ChannelTerminal = "terminal"
	ChannelLog      = "log"
	ChannelNone     = "none"
)

// Result records the outcome of a notification dispatch.
type Result struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher fans a message out to its configured channels. It satisfies
// the notifier port.
type Dispatcher struct {
	channels []string
	out      io.Writer
	logPath  string
}

// NewDispatcher creates a dispatcher for the given channels. Empty channels
// default to terminal; nil out defaults to stdout. logPath is the file the
// log channel appends to and may be empty when that channel is unused.
func NewDispatcher(channels []string, out io.Writer, logPath string) *Dispatcher {
	if len(channels) == 0 {
		channels = []string{ChannelTerminal}
	}
	if out == nil {
		out = os.Stdout
	}
	return &Dispatcher{
		channels: channels,
		out:      out,
		logPath:  logPath,
	}
}

// Notify delivers message on every configured channel. The message text is
// delivered verbatim. An error reports each channel that failed.
func (d *Dispatcher) Notify(_ context.Context, message string) error {
	var failed []string
	for _, result := range d.Dispatch(message) {
		if !result.Success {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Channel, result.Error))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("notification delivery failed: %s", strings.Join(failed, "; "))
	}
	return nil
}

// Dispatch sends message to all configured channels and reports per-channel
// results.
func (d *Dispatcher) Dispatch(message string) []Result {
	results := make([]Result, 0, len(d.channels))
	for _, channel := range d.channels {
		results = append(results, d.dispatchToChannel(message, channel))
	}
	return results
}

func (d *Dispatcher) dispatchToChannel(message, channel string) Result {
	result := Result{Channel: channel}

	switch channel {
	case ChannelTerminal:
		_, err := fmt.Fprintln(d.out, message)
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}

	case ChannelLog:
		err := d.appendLog(message)
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}

	case ChannelNone:
		result.Success = true

	default:
		result.Success = false
		result.Error = fmt.Sprintf("unknown channel type: %s", channel)
	}

	return result
}

func (d *Dispatcher) appendLog(message string) error {
	if d.logPath == "" {
		return errors.New("no log path configured")
	}

	entry := struct {
		At      time.Time `json:"at"`
		Message string    `json:"message"`
	}{
		At:      time.Now().UTC(),
		Message: message,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304 - controlled path from config
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(append(data, '\n'))
	return err
}
