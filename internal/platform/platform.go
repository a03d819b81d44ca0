// Package platform declares the host capability ports that recipe
// operations depend on. The vault core never touches the filesystem or the
// terminal directly; it talks to these interfaces, and the process wires in
// implementations (internal/platform/localfs, internal/notify) at startup.
package platform

import (
	"context"
	"errors"
)

// ErrCapability is returned when a host capability is unavailable or fails
// mid-operation. Callers check it with errors.Is and must not swallow it.
var ErrCapability = errors.New("platform capability unavailable")

// Resource is a named artifact to be delivered to the user.
type Resource struct {
	Name        string
	ContentType string
	Data        []byte
}

// Handle references a minted resource until it is saved or revoked. It is
// opaque to callers; only the saver that minted it can interpret it.
type Handle string

// FileSaver delivers resources to the user's filesystem. The contract is
// mint once, then either save or not, then revoke exactly once. Revoking a
// handle whose resource was already saved releases bookkeeping only; the
// saved file stays.
type FileSaver interface {
	Mint(ctx context.Context, res Resource) (Handle, error)
	Save(ctx context.Context, h Handle, filename string) error
	Revoke(h Handle) error
}

// Notifier surfaces a user-facing message outside the normal command
// output stream.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
