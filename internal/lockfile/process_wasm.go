//go:build js && wasm

package lockfile

// isProcessRunning always reports false; WASM has no process table.
func isProcessRunning(pid int) bool {
	return false
}
