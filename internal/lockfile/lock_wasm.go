//go:build js && wasm

package lockfile

import "os"

// WASM doesn't support file locking; the runtime is single-process anyway,
// so every primitive is a no-op.

func FlockSharedNonBlock(f *os.File) error {
	return nil
}

func FlockExclusiveNonBlock(f *os.File) error {
	return nil
}

func FlockExclusiveBlocking(f *os.File) error {
	return nil
}

func FlockUnlock(f *os.File) error {
	return nil
}
