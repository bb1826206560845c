package snapshot

import (
	"context"
	"log/slog"

	"thrifty/internal/core"
)

// Tiered composes a primary store (typically remote) with a local
// fallback. The caller picks the strategy explicitly at composition time
// instead of catching errors ad hoc at every call site.
//
// Save always writes the fallback so local state survives a remote
// outage; a primary failure is reported as a PersistenceError after the
// fallback write. Load prefers the primary and falls back on error.
type Tiered struct {
	Primary  Store
	Fallback Store
}

func NewTiered(primary, fallback Store) *Tiered {
	return &Tiered{Primary: primary, Fallback: fallback}
}

func (t *Tiered) Load(ctx context.Context) (core.Snapshot, error) {
	snap, err := t.Primary.Load(ctx)
	if err == nil {
		return snap, nil
	}
	slog.WarnContext(ctx, "Primary snapshot load failed, using fallback", "error", err)
	return t.Fallback.Load(ctx)
}

func (t *Tiered) Save(ctx context.Context, snap core.Snapshot) error {
	primaryErr := t.Primary.Save(ctx, snap)
	if err := t.Fallback.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Fallback snapshot save failed", "error", err)
		if primaryErr == nil {
			return &PersistenceError{Backend: "fallback", Op: "save", Err: err}
		}
	}
	if primaryErr != nil {
		return &PersistenceError{Backend: "primary", Op: "save", Err: primaryErr}
	}
	return nil
}
