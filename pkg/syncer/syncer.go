// Package syncer defines the contract between the sgtool host and its
// data-syncer plugins: the Syncer capability, the embeddable Base and Database
// types, declared table models, and the SQL write helpers database-backed
// plugins share. Out-of-tree plugins compile against this package, so its
// surface is the plugin ABI.
package syncer

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// Record is one row of tabular data: a mapping from column name to a scalar
// or nil value. All records passed to a single Dump call share one column set.
type Record map[string]any

// Syncer is the capability every data-syncer plugin provides.
//
// Directives are opaque, plugin-specific identifiers (a table name, a file
// stem, a key); the host constrains them no further than "non-empty string".
// Load returns fully materialized rows and Dump persists them — both are
// synchronous and blocking, suspending only on store I/O. Within one instance
// calls execute strictly in the caller's order.
type Syncer interface {
	// Name reports the plugin name the instance was constructed under.
	Name() string

	// Load fetches the rows identified by directive.
	Load(ctx context.Context, directive string) ([]Record, error)

	// Dump persists rows to the location identified by directive.
	Dump(ctx context.Context, directive string, rows []Record) error
}

// Finalizer is the optional post-construction hook. The resolver detects it
// via type assertion once configuration validation has succeeded and calls it
// exactly once before handing the instance to the caller; an error aborts
// construction. Syncers with no store-side setup simply omit it.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// Closer releases any store handle a syncer holds. Callers that constructed a
// syncer should close it when done; syncers without handles omit it.
type Closer interface {
	Close(ctx context.Context) error
}

// Transactor is implemented by database-backed syncers, whose session keeps
// one transaction open for the instance's lifetime. The caller drives commit
// and rollback around its Load/Dump sequence; the host never auto-commits.
type Transactor interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory constructs an empty instance of a concrete syncer, ready for the
// resolver to decode configuration into. Shared-object plugins export a
// symbol of this type under the name their manifest declares.
type Factory func() Syncer

// Base carries the identity every syncer shares: the plugin name, a short
// instance id, and an instance-scoped logger. Concrete syncers embed it. Its
// Load and Dump defaults fail with a CapabilityError naming the plugin and
// the operation, so a plugin that does not override an operation reports the
// omission instead of silently doing nothing.
type Base struct {
	name string
	id   string
	log  zerolog.Logger
}

// Bind assigns the plugin name and derives the instance logger. The resolver
// calls it exactly once before configuration decoding; tests constructing a
// syncer by hand call it directly.
func (b *Base) Bind(name string, log zerolog.Logger) {
	b.name = name
	b.id = uuid.NewString()[:8]
	b.log = log.With().Str("syncer", name).Str("instance", b.id).Logger()
}

// Name reports the bound plugin name.
func (b *Base) Name() string { return b.name }

// InstanceID reports the short id distinguishing this instance in logs.
func (b *Base) InstanceID() string { return b.id }

// Log returns the instance-scoped logger.
func (b *Base) Log() *zerolog.Logger { return &b.log }

// Load fails with a CapabilityError; concrete syncers that read override it.
func (b *Base) Load(ctx context.Context, directive string) ([]Record, error) {
	return nil, sgerrors.NewCapabilityError(b.name, "load")
}

// Dump fails with a CapabilityError; concrete syncers that write override it.
func (b *Base) Dump(ctx context.Context, directive string, rows []Record) error {
	return sgerrors.NewCapabilityError(b.name, "dump")
}

var _ Syncer = (*Base)(nil)
