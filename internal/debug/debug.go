package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stackchef/chefvault/internal/discovery"
)

var (
	enabled     = os.Getenv("CV_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func Printf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Printf(format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}

// LogEvent writes an event to .chefvault/events.log
// Format: TIMESTAMP|EVENT_CODE|RECIPE_ID|SESSION_ID|DETAILS
func LogEvent(eventCode, recipeID, details string) {
	LogEventWithContext(eventCode, recipeID, "", details)
}

// LogEventWithContext writes an event with full context
func LogEventWithContext(eventCode, recipeID, sessionID, details string) {
	vaultDir := discovery.FindVaultDir()
	if vaultDir == "" {
		// Silent fail if not in a project
		return
	}

	logPath := filepath.Join(vaultDir, "events.log")

	if recipeID == "" {
		recipeID = "none"
	}
	if sessionID == "" {
		sessionID = os.Getenv("CHEFVAULT_SESSION_ID")
		if sessionID == "" {
			sessionID = fmt.Sprintf("%d", time.Now().Unix())
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	entry := fmt.Sprintf("%s|%s|%s|%s|%s\n",
		timestamp, eventCode, recipeID, sessionID, details)

	// Thread-safe write
	logMutex.Lock()
	defer logMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return
	}

	// Silent fail - don't interrupt operations if logging fails
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is inside the vault dir
	if err != nil {
		return
	}
	defer file.Close()

	_, _ = file.WriteString(entry)
}
