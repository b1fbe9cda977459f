package store

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ncassessoria/gerapost/pkg/observability"
	"github.com/ncassessoria/gerapost/pkg/post"
)

// DefaultDelay is the quiet period after the last edit before a write.
const DefaultDelay = 1500 * time.Millisecond

// SaveFunc writes one snapshot.
type SaveFunc func(ctx context.Context, p post.Post) error

// Debouncer holds at most one pending snapshot. Each Schedule replaces it
// and restarts the timer; the write happens once edits pause for the
// delay. Writes never overlap, and an older snapshot is never written
// after a newer one.
type Debouncer struct {
	save    SaveFunc
	delay   time.Duration
	onError func(error)
	logger  *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *post.Post
	seq     uint64 // of the pending snapshot
	closed  bool

	writeMu sync.Mutex
	written uint64 // seq of the last snapshot written
}

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithDelay sets the quiet period.
func WithDelay(d time.Duration) DebounceOption {
	return func(db *Debouncer) { db.delay = d }
}

// OnError registers the callback for failed background writes.
func OnError(fn func(error)) DebounceOption {
	return func(db *Debouncer) { db.onError = fn }
}

// WithDebounceLogger sets the logger.
func WithDebounceLogger(l *log.Logger) DebounceOption {
	return func(db *Debouncer) { db.logger = l }
}

// NewDebouncer creates a debouncer that writes through save.
func NewDebouncer(save SaveFunc, opts ...DebounceOption) *Debouncer {
	db := &Debouncer{
		save:   save,
		delay:  DefaultDelay,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.onError == nil {
		db.onError = func(err error) { db.logger.Error("draft not saved", "error", err) }
	}
	return db
}

// Schedule makes p the pending snapshot and restarts the timer.
func (db *Debouncer) Schedule(p post.Post) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}
	if db.pending != nil {
		observability.Store().OnCoalesced(context.Background())
	}
	db.pending = &p
	db.seq++
	seq := db.seq
	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.delay, func() { db.fire(seq) })
}

// Pending reports whether a snapshot is waiting to be written.
func (db *Debouncer) Pending() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.pending != nil
}

func (db *Debouncer) fire(seq uint64) {
	p, _, ok := db.take(seq)
	if !ok {
		return
	}
	if err := db.write(context.Background(), p, seq); err != nil {
		db.onError(err)
	}
}

// take removes the pending snapshot if it is still the one numbered seq.
// A zero seq takes whatever is pending.
func (db *Debouncer) take(seq uint64) (post.Post, uint64, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.pending == nil || (seq != 0 && seq != db.seq) {
		return post.Post{}, 0, false
	}
	p := *db.pending
	db.pending = nil
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	return p, db.seq, true
}

func (db *Debouncer) write(ctx context.Context, p post.Post, seq uint64) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	if seq <= db.written {
		return nil
	}
	if err := db.save(ctx, p); err != nil {
		return err
	}
	db.written = seq
	return nil
}

// Flush writes the pending snapshot now and waits for any write in
// progress. Its error is returned, not passed to the error callback.
func (db *Debouncer) Flush(ctx context.Context) error {
	p, seq, ok := db.take(0)
	if !ok {
		// Wait out a timer write that already took its snapshot.
		db.writeMu.Lock()
		db.writeMu.Unlock()
		return nil
	}
	return db.write(ctx, p, seq)
}

// Close flushes and stops accepting snapshots.
func (db *Debouncer) Close(ctx context.Context) error {
	err := db.Flush(ctx)
	db.mu.Lock()
	db.closed = true
	db.mu.Unlock()
	return err
}
