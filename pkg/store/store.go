// Package store persists the working draft.
//
// A [Store] is a plain key/value backend for draft records. Three are
// provided: [FileStore] keeps the draft on the device, [MongoStore] keeps
// one draft per signed-in user in a remote collection, and [MemoryStore]
// backs tests. The [Adapter] picks the backend from the current session and
// converts between records and posts; the [Debouncer] coalesces the stream
// of edits into occasional writes.
//
//	adapter := store.NewAdapter(local, remote, sessions)
//	draft, err := adapter.Load(ctx)
//	deb := store.NewDebouncer(adapter.Save, store.WithDelay(1500*time.Millisecond))
//	deb.Schedule(draft)   // from every edit
//	deb.Flush(ctx)        // on exit
package store

import (
	"context"
)

// LocalKey is the key of the on-device draft.
const LocalKey = "geraPostData"

// Store is a backend for draft records. Load reports a missing record as
// (nil, false, nil).
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
