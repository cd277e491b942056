// Package registry routes channel-scoped events to per-channel sessions,
// creating a session lazily the first time a member joins a channel whose
// category is configured. Channels under unconfigured categories are
// ignored.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/louisbranch/muster/internal/recruit/session"
	"github.com/louisbranch/muster/internal/storage"
)

// ChannelRef identifies an event's channel and its category.
type ChannelRef struct {
	ID         string
	Name       string
	CategoryID string
}

// Registry owns the session map for one deployment.
type Registry struct {
	deps session.Deps

	mu       sync.Mutex
	sessions map[string]*session.Session
	closed   bool
}

// New creates an empty registry. All sessions share the given dependencies.
func New(deps session.Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*session.Session),
	}
}

// OnMemberJoin dispatches a join to the channel's session, creating it if the
// channel's category is configured. Joins to unmanaged channels are ignored.
func (r *Registry) OnMemberJoin(ctx context.Context, channel ChannelRef, member session.Member) error {
	sess, err := r.ensure(ctx, channel)
	if err != nil || sess == nil {
		return err
	}
	return sess.OnJoin(ctx, member)
}

// OnMemberLeave dispatches a leave to the channel's session, if any.
func (r *Registry) OnMemberLeave(ctx context.Context, channelID, memberID string) error {
	sess := r.Get(channelID)
	if sess == nil {
		return nil
	}
	return sess.OnLeave(ctx, memberID)
}

// OnRoleHintChanged dispatches a nickname-driven role flip observed outside
// the session's own renames. Transitions that do not change the role are
// dropped here so the session never sees them.
func (r *Registry) OnRoleHintChanged(ctx context.Context, channelID, memberID string, wasObserver, isObserver bool) error {
	if wasObserver == isObserver {
		return nil
	}
	sess := r.Get(channelID)
	if sess == nil {
		return nil
	}
	return sess.OnRoleHintChanged(ctx, memberID, isObserver)
}

// Get returns the live session for a channel, or nil.
func (r *Registry) Get(channelID string) *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[channelID]
}

// ensure returns the channel's session, creating one when the category is
// configured. It returns nil without error for unmanaged channels.
func (r *Registry) ensure(ctx context.Context, channel ChannelRef) (*session.Session, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, session.ErrSessionClosed
	}
	if sess, ok := r.sessions[channel.ID]; ok {
		r.mu.Unlock()
		return sess, nil
	}
	r.mu.Unlock()

	cfg, err := r.deps.Stores.Config.GetChannelConfig(ctx, channel.CategoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, session.ErrSessionClosed
	}
	if sess, ok := r.sessions[channel.ID]; ok {
		return sess, nil
	}
	params := session.Params{ChannelID: channel.ID, ChannelName: channel.Name, CategoryID: channel.CategoryID}
	sess := session.New(context.Background(), params, cfg, r.deps)
	r.sessions[channel.ID] = sess
	return sess, nil
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every session. Further events are rejected.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, sess := range r.sessions {
		sess.Close()
	}
}
