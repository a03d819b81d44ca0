// Package export implements the one-shot export flow: load the collection,
// serialize it canonically, stage it through the file saver, deliver it
// under the fixed artifact name, and notify the user exactly once on
// success. Staged handles are released on every exit path.
package export

import (
	"context"
	"fmt"
	"os"

	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/platform"
	"github.com/stackchef/chefvault/internal/types"
)

// RecipeSource is the slice of the vault the exporter needs.
type RecipeSource interface {
	LoadAll(ctx context.Context) ([]types.Recipe, error)
}

// Options configures a single export call.
type Options struct {
	// WriteManifest also delivers a <artifact>.manifest.json sidecar with
	// size and checksum for integrity checking.
	WriteManifest bool
}

// Result reports what an export produced.
type Result struct {
	Filename string `json:"filename"`
	Recipes  int    `json:"recipes"`
	Bytes    int    `json:"bytes"`
	Notified bool   `json:"notified"`
	Manifest bool   `json:"manifest,omitempty"`
}

// Exporter runs exports against an injected source, saver, and notifier.
type Exporter struct {
	source   RecipeSource
	saver    platform.FileSaver
	notifier platform.Notifier
}

// New creates an Exporter. notifier may be nil to suppress notifications.
func New(source RecipeSource, saver platform.FileSaver, notifier platform.Notifier) *Exporter {
	return &Exporter{
		source:   source,
		saver:    saver,
		notifier: notifier,
	}
}

// SuccessMessage is the notification text delivered after a successful
// export.
func SuccessMessage() string {
	return fmt.Sprintf("Recipe downloaded as %q.", payload.ExportFileName)
}

// Export runs the full flow. An empty collection exports a well-formed
// empty document; a corrupt store aborts before anything is staged. The
// staged handle is revoked whether the save succeeds or not, and the
// success notification fires only after the artifact is in place.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	recipes, err := e.source.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := payload.Encode(recipes)
	if err != nil {
		return nil, fmt.Errorf("serializing recipes: %w", err)
	}

	handle, err := e.saver.Mint(ctx, platform.Resource{
		Name:        payload.ExportFileName,
		ContentType: payload.ExportContentType,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.saver.Revoke(handle); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release export handle: %v\n", err)
		}
	}()

	if err := e.saver.Save(ctx, handle, payload.ExportFileName); err != nil {
		return nil, err
	}

	result := &Result{
		Filename: payload.ExportFileName,
		Recipes:  len(recipes),
		Bytes:    len(data),
	}

	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, SuccessMessage()); err != nil {
			// The artifact is already delivered; a failed notification
			// must not turn the export into a failure.
			fmt.Fprintf(os.Stderr, "Warning: export succeeded but notification failed: %v\n", err)
		} else {
			result.Notified = true
		}
	}

	if opts.WriteManifest {
		if err := e.writeManifest(ctx, data, len(recipes)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write export manifest: %v\n", err)
		} else {
			result.Manifest = true
		}
	}

	return result, nil
}

// writeManifest delivers the manifest sidecar through the same saver port,
// with its own mint/save/revoke cycle.
func (e *Exporter) writeManifest(ctx context.Context, data []byte, count int) error {
	raw, err := NewManifest(count, data).Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	name := ManifestName(payload.ExportFileName)
	handle, err := e.saver.Mint(ctx, platform.Resource{
		Name:        name,
		ContentType: payload.ExportContentType,
		Data:        raw,
	})
	if err != nil {
		return err
	}
	defer func() { _ = e.saver.Revoke(handle) }()

	return e.saver.Save(ctx, handle, name)
}
