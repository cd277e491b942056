package session

import (
	"context"
	"errors"
	"log"

	"github.com/louisbranch/muster/internal/directory"
	"github.com/louisbranch/muster/internal/id"
	"github.com/louisbranch/muster/internal/nickname"
	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage"
	"github.com/louisbranch/muster/internal/surface"
)

// ErrSessionClosed indicates an event arrived after the session stopped.
var ErrSessionClosed = errors.New("session is closed")

// Member identifies one channel member as reported by the event source.
type Member struct {
	ID       string
	Username string
	// Nick is the member's channel-specific display name. Empty means the
	// member uses their plain handle.
	Nick string
}

// DisplayName returns the nickname when set, the handle otherwise.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.Username
}

type roster struct {
	member   Member
	observer bool
}

// Stores groups the persistence interfaces a session consumes.
type Stores struct {
	Config  storage.ConfigStore
	History storage.HistoryStore
}

// Params describe the channel a session manages.
type Params struct {
	ChannelID   string
	ChannelName string
	CategoryID  string
}

// Deps are the injected collaborators shared by all sessions.
type Deps struct {
	Stores    Stores
	Surfaces  surface.Set
	Directory directory.Directory
}

type task struct {
	fn   func()
	done chan struct{}
}

// Session is the state machine for one managed channel.
type Session struct {
	params Params
	deps   Deps

	newToken func() (string, error)

	inbox  chan task
	ctx    context.Context
	cancel context.CancelFunc

	// State below is owned by the loop goroutine.
	cfg        domain.ChannelConfig
	members    map[string]*roster
	ownerID    string
	claimToken string
	live       *domain.LiveSettings

	claimHandle  surface.Handle
	mgmtHandle   surface.Handle
	editHandle   surface.Handle
	postHandle   surface.Handle
	toggleHandle surface.Handle
}

// New creates a session for a channel and starts its event loop. The
// provided config is the category configuration the registry resolved at
// creation time; it is re-read from the store at the start of every inbound
// event so configuration edits take effect between operations, never within
// one.
func New(parent context.Context, params Params, cfg domain.ChannelConfig, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		params:   params,
		deps:     deps,
		newToken: id.NewID,
		inbox:    make(chan task, 64),
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		members:  make(map[string]*roster),
	}
	go s.loop()
	return s
}

// Close stops the session loop. Queued events are dropped.
func (s *Session) Close() {
	s.cancel()
}

// ChannelID returns the channel this session manages.
func (s *Session) ChannelID() string { return s.params.ChannelID }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case t := <-s.inbox:
			t.fn()
			close(t.done)
		}
	}
}

// do queues fn on the session loop and waits for it to complete.
func (s *Session) do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := task{fn: fn, done: make(chan struct{})}
	select {
	case s.inbox <- t:
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-t.done:
		return nil
	case <-s.ctx.Done():
		return ErrSessionClosed
	}
}

// surfaceFor resolves the injected surface serving a UI role.
func (s *Session) surfaceFor(role surface.Role) surface.Surface {
	return s.deps.Surfaces.ForRole(role)
}

// refreshConfig re-reads the category configuration once per inbound event
// so all decisions within the event see one consistent config.
func (s *Session) refreshConfig(ctx context.Context) {
	cfg, err := s.deps.Stores.Config.GetChannelConfig(ctx, s.params.CategoryID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("session %s: refresh config: %v", s.params.ChannelID, err)
		}
		return
	}
	s.cfg = cfg
}

// OnJoin applies a membership join to the session.
func (s *Session) OnJoin(ctx context.Context, member Member) error {
	return s.do(ctx, func() { s.handleJoin(ctx, member) })
}

// OnLeave applies a membership leave to the session.
func (s *Session) OnLeave(ctx context.Context, memberID string) error {
	return s.do(ctx, func() { s.handleLeave(ctx, memberID) })
}

// OnRoleHintChanged records an externally observed role flip (the member
// edited their own nickname) and refreshes the visible status. The caller
// filters no-op transitions.
func (s *Session) OnRoleHintChanged(ctx context.Context, memberID string, isObserver bool) error {
	return s.do(ctx, func() {
		entry, ok := s.members[memberID]
		if !ok {
			return
		}
		entry.observer = isObserver
		s.refreshStatus(ctx)
	})
}

func (s *Session) handleJoin(ctx context.Context, member Member) {
	s.refreshConfig(ctx)
	s.members[member.ID] = &roster{
		member:   member,
		observer: nickname.Classify(member.Nick) == nickname.Observer,
	}

	if !s.cfg.RecruitmentEnabled() {
		s.showToggleSurface(ctx)
		return
	}

	if s.ownerID == "" {
		if len(s.members) == 1 {
			s.setOwner(ctx, member.ID)
		} else {
			s.publishClaimSurface(ctx)
		}
	}

	s.classifyJoiner(ctx, member.ID)
	s.refreshStatus(ctx)
}

func (s *Session) handleLeave(ctx context.Context, memberID string) {
	s.refreshConfig(ctx)
	delete(s.members, memberID)

	if !s.cfg.RecruitmentEnabled() {
		return
	}
	if s.ownerID != "" && s.ownerID == memberID {
		s.setOwner(ctx, "")
	}
	s.refreshStatus(ctx)
}

// classifyJoiner reclassifies only the joining member against the current
// capacity. Existing players are never retroactively demoted and observers
// are never promoted by someone else's movement.
func (s *Session) classifyJoiner(ctx context.Context, memberID string) {
	entry, ok := s.members[memberID]
	if !ok {
		return
	}
	capacity := domain.Capacity(s.cfg, s.live)
	if capacity <= 0 || s.countPlayers() <= capacity {
		s.makePlayer(ctx, entry)
	} else {
		s.makeObserver(ctx, entry)
	}
}

func (s *Session) makePlayer(ctx context.Context, entry *roster) {
	nick, changed := nickname.PlayerNick(entry.member.Username, entry.member.Nick)
	if changed {
		if err := s.deps.Directory.Rename(ctx, s.params.ChannelID, entry.member.ID, nick); err != nil {
			log.Printf("session %s: rename %s to player: %v", s.params.ChannelID, entry.member.ID, err)
			return
		}
		entry.member.Nick = nick
	}
	entry.observer = false
}

func (s *Session) makeObserver(ctx context.Context, entry *roster) {
	nick, changed := nickname.ObserverNick(entry.member.Username, entry.member.Nick)
	if changed {
		if err := s.deps.Directory.Rename(ctx, s.params.ChannelID, entry.member.ID, nick); err != nil {
			log.Printf("session %s: rename %s to observer: %v", s.params.ChannelID, entry.member.ID, err)
			return
		}
		entry.member.Nick = nick
	}
	entry.observer = true
}

func (s *Session) countPlayers() int {
	players := 0
	for _, entry := range s.members {
		if !entry.observer {
			players++
		}
	}
	return players
}

// setOwner switches ownership and swaps the visible surfaces accordingly.
// The pending claim token is rotated or cleared synchronously, which is what
// makes concurrent claim attempts safe: the first accepted claim invalidates
// every outstanding prompt before the next attempt is dequeued.
func (s *Session) setOwner(ctx context.Context, ownerID string) {
	if ownerID != "" {
		if _, ok := s.members[ownerID]; !ok {
			log.Printf("session %s: setOwner %s: not a current member", s.params.ChannelID, ownerID)
			return
		}
	}

	s.ownerID = ownerID
	s.live = nil
	s.retract(ctx, s.surfaceFor(surface.RolePost), &s.postHandle)
	if err := s.deps.Directory.SetStatus(ctx, s.params.ChannelID, ""); err != nil {
		log.Printf("session %s: clear status: %v", s.params.ChannelID, err)
	}

	if ownerID == "" {
		s.retract(ctx, s.surfaceFor(surface.RoleManagement), &s.mgmtHandle)
		s.retract(ctx, s.surfaceFor(surface.RoleEdit), &s.editHandle)
		s.publishClaimSurface(ctx)
		return
	}

	s.retract(ctx, s.surfaceFor(surface.RoleClaim), &s.claimHandle)
	s.claimToken = ""

	// The owner always participates as a player.
	if entry, ok := s.members[ownerID]; ok && entry.observer {
		s.makePlayer(ctx, entry)
	}

	s.publishManagementSurface(ctx)
	s.publishEditSurface(ctx)
}

// publishClaimSurface replaces any live claim prompt with a fresh one bound
// to a newly generated token.
func (s *Session) publishClaimSurface(ctx context.Context) {
	s.retract(ctx, s.surfaceFor(surface.RoleClaim), &s.claimHandle)

	token, err := s.newToken()
	if err != nil {
		log.Printf("session %s: generate claim token: %v", s.params.ChannelID, err)
		return
	}
	s.claimToken = token

	handle, err := s.surfaceFor(surface.RoleClaim).Publish(ctx, s.params.ChannelID, s.claimContent(token))
	if err != nil {
		log.Printf("session %s: publish claim surface: %v", s.params.ChannelID, err)
		s.claimToken = ""
		return
	}
	s.claimHandle = handle
}

func (s *Session) publishManagementSurface(ctx context.Context) {
	s.retract(ctx, s.surfaceFor(surface.RoleManagement), &s.mgmtHandle)
	handle, err := s.surfaceFor(surface.RoleManagement).Publish(ctx, s.params.ChannelID, s.managementContent())
	if err != nil {
		log.Printf("session %s: publish management surface: %v", s.params.ChannelID, err)
		return
	}
	s.mgmtHandle = handle
}

func (s *Session) publishEditSurface(ctx context.Context) {
	s.retract(ctx, s.surfaceFor(surface.RoleEdit), &s.editHandle)
	handle, err := s.surfaceFor(surface.RoleEdit).Publish(ctx, s.params.ChannelID, s.editContent(ctx))
	if err != nil {
		log.Printf("session %s: publish edit surface: %v", s.params.ChannelID, err)
		return
	}
	s.editHandle = handle
}

// showToggleSurface replaces all recruitment surfaces with the bare
// observer/player toggle, used by categories without a recruitment target.
func (s *Session) showToggleSurface(ctx context.Context) {
	s.retract(ctx, s.surfaceFor(surface.RoleClaim), &s.claimHandle)
	s.claimToken = ""
	s.retract(ctx, s.surfaceFor(surface.RoleManagement), &s.mgmtHandle)
	s.retract(ctx, s.surfaceFor(surface.RoleEdit), &s.editHandle)
	s.retract(ctx, s.surfaceFor(surface.RoleToggle), &s.toggleHandle)

	handle, err := s.surfaceFor(surface.RoleToggle).Publish(ctx, s.params.ChannelID, s.toggleContent())
	if err != nil {
		log.Printf("session %s: publish toggle surface: %v", s.params.ChannelID, err)
		return
	}
	s.toggleHandle = handle
}

// refreshStatus recomputes the capacity text, updates the live announcement
// when one exists, and maintains the channel's visible status label.
func (s *Session) refreshStatus(ctx context.Context) {
	if !s.cfg.RecruitmentEnabled() {
		return
	}

	if s.postHandle != "" && s.ownerID != "" && s.live != nil {
		if err := s.surfaceFor(surface.RolePost).Update(ctx, s.postHandle, s.announcementContent(ctx)); err != nil {
			log.Printf("session %s: update announcement: %v", s.params.ChannelID, err)
		}
	}

	capacity := domain.Capacity(s.cfg, s.live)
	if s.cfg.Flags.ShowCapacity && capacity > 0 && len(s.members) > 0 {
		status := domain.StatusText(capacity, s.countPlayers())
		if err := s.deps.Directory.SetStatus(ctx, s.params.ChannelID, status); err != nil {
			log.Printf("session %s: set status: %v", s.params.ChannelID, err)
		}
	}
}

func (s *Session) retract(ctx context.Context, surf surface.Surface, handle *surface.Handle) {
	if *handle == "" {
		return
	}
	if err := surf.Retract(ctx, *handle); err != nil {
		log.Printf("session %s: retract surface: %v", s.params.ChannelID, err)
	}
	*handle = ""
}
