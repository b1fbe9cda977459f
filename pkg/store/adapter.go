package store

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/observability"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/session"
)

// Backend names reported to hooks and logs.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Sessions reports the signed-in user, or nil when signed out.
type Sessions interface {
	GetSession(ctx context.Context) (*session.Session, error)
}

// Adapter reads and writes the draft of whoever is using the editor:
// signed-in users through the remote store, everyone else through the
// local one. A remote failure is reported, never silently redirected to
// the local store.
type Adapter struct {
	local    Store
	remote   Store
	sessions Sessions
	logger   *log.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) AdapterOption { return func(a *Adapter) { a.logger = l } }

// NewAdapter creates an adapter. remote and sessions may be nil, in which
// case every draft is local.
func NewAdapter(local, remote Store, sessions Sessions, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		local:    local,
		remote:   remote,
		sessions: sessions,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// target returns the store and key for the current user.
func (a *Adapter) target(ctx context.Context) (Store, string, string) {
	if a.remote == nil || a.sessions == nil {
		return a.local, LocalKey, BackendLocal
	}
	sess, err := a.sessions.GetSession(ctx)
	if err != nil {
		a.logger.Warn("could not read session; using the local draft", "error", err)
		return a.local, LocalKey, BackendLocal
	}
	if !sess.Authenticated() {
		return a.local, LocalKey, BackendLocal
	}
	return a.remote, sess.UserID(), BackendRemote
}

// Backend names the store the current user's draft lives in.
func (a *Adapter) Backend(ctx context.Context) string {
	_, _, b := a.target(ctx)
	return b
}

// Load returns the current user's draft merged onto the defaults. A record
// that cannot be parsed is logged and the defaults are returned.
func (a *Adapter) Load(ctx context.Context) (post.Post, error) {
	s, key, backend := a.target(ctx)
	data, found, err := s.Load(ctx, key)
	observability.Store().OnLoad(ctx, backend, found, err)
	if err != nil {
		return post.Default(), perrors.Wrap(perrors.ErrCodePersistenceRead, err, "could not load the saved draft")
	}
	if !found {
		a.logger.Debug("no saved draft", "backend", backend)
		return post.Default(), nil
	}
	p, err := post.Merge(post.Default(), data)
	if err != nil {
		a.logger.Error("error loading saved data", "backend", backend, "error", err)
		return post.Default(), nil
	}
	a.logger.Debug("draft loaded", "backend", backend, "bytes", len(data))
	return p, nil
}

// Save writes p as the current user's draft.
func (a *Adapter) Save(ctx context.Context, p post.Post) error {
	s, key, backend := a.target(ctx)
	data, err := p.Marshal()
	if err != nil {
		return perrors.Wrap(perrors.ErrCodePersistenceWrite, err, "could not encode the draft")
	}
	start := time.Now()
	err = s.Save(ctx, key, data)
	observability.Store().OnSave(ctx, backend, len(data), time.Since(start), err)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodePersistenceWrite, err, "could not save the draft")
	}
	a.logger.Debug("draft saved", "backend", backend, "bytes", len(data))
	return nil
}

// SignOut resets the on-device draft to the defaults and returns them.
func (a *Adapter) SignOut(ctx context.Context) (post.Post, error) {
	p := post.Default()
	data, err := p.Marshal()
	if err != nil {
		return p, perrors.Wrap(perrors.ErrCodePersistenceWrite, err, "could not encode the draft")
	}
	if err := a.local.Save(ctx, LocalKey, data); err != nil {
		return p, perrors.Wrap(perrors.ErrCodePersistenceWrite, err, "could not reset the local draft")
	}
	return p, nil
}

// Reset deletes the current user's draft.
func (a *Adapter) Reset(ctx context.Context) error {
	s, key, _ := a.target(ctx)
	if err := s.Delete(ctx, key); err != nil {
		return perrors.Wrap(perrors.ErrCodePersistenceWrite, err, "could not delete the draft")
	}
	return nil
}

// Close closes both stores.
func (a *Adapter) Close() error {
	var first error
	for _, s := range []Store{a.local, a.remote} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
