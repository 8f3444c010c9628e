// Package todoroll is the Composition Root for the todoroll application.
//
// todoroll keeps one todo note per period in a Markdown vault. When a new
// period starts (daily, weekly, every N days, or on demand) the previous note
// is moved to Tasks/Archive and a fresh note is created that carries over
// every table row not marked done.
//
// It connects the rollover core (pkg/core) with the filesystem vault adapter,
// the settings store and the notifiers using the Hexagonal Architecture pattern.
//
// Features:
//
//   - **Deterministic periods**: the same day and settings always yield the same note.
//   - **Idempotent rollover**: a second run in the same period is a no-op.
//   - **No clobbering**: archived notes get a -N suffix on collision.
//   - **Crash repair**: an interrupted rollover is completed on the next check.
//   - **Optional Git history**: rollovers are committed when the vault is a git repository.
//
// Usage:
//
//	svc, err := todoroll.New("./vault",
//		todoroll.WithAutoInit(true),
//		todoroll.WithLogger(logger),
//	)
//
//	res, err := svc.Roll(ctx, todoroll.DefaultSettings(), false)
package todoroll
