package session

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/louisbranch/muster/internal/nickname"
	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/surface"
)

// run queues a user-triggered action on the session loop, refreshing the
// category configuration first so the action sees one consistent config.
func (s *Session) run(ctx context.Context, fn func(ctx context.Context) Verdict) Verdict {
	var verdict Verdict
	err := s.do(ctx, func() {
		s.refreshConfig(ctx)
		verdict = fn(ctx)
	})
	switch {
	case err == nil:
		return verdict
	case errors.Is(err, ErrSessionClosed):
		return reject(ReasonSessionClosed, "This channel is no longer managed.")
	default:
		return reject(ReasonCanceled, "The request was canceled before it ran.")
	}
}

func (s *Session) requireOwner(actorID string) (Verdict, bool) {
	if s.ownerID == "" || s.ownerID != actorID {
		return reject(ReasonNotOwner, "Only the recruitment owner can do that."), false
	}
	return Verdict{}, true
}

// TryClaim attempts to take ownership via the claim prompt bound to token.
// Exactly one of any number of concurrent attempts succeeds: accepting a
// claim rotates the token before the next attempt is dequeued, so the rest
// fail as already-owned.
func (s *Session) TryClaim(ctx context.Context, candidateID, token string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if s.ownerID != "" {
			if s.ownerID == candidateID {
				return reject(ReasonAlreadyOwnedSelf, "You already own recruitment here.")
			}
			return reject(ReasonAlreadyOwnedOther, s.ownerDisplayName()+" already owns recruitment here.")
		}
		if s.claimHandle == "" || s.claimToken == "" {
			return reject(ReasonNoPendingClaim, "There is no open claim right now.")
		}
		if token != s.claimToken {
			return reject(ReasonStaleInteraction, "That prompt is out of date. Use the latest one.")
		}
		if _, ok := s.members[candidateID]; !ok {
			return reject(ReasonNotAMember, "Join the channel before claiming recruitment.")
		}
		s.setOwner(ctx, candidateID)
		return accept("You now own recruitment for this channel.")
	})
}

// UpdateLiveSettings merges an edit-form submission into the live settings
// snapshot. Empty fields keep their current value; a positive capacity
// override requires the category to allow overrides.
func (s *Session) UpdateLiveSettings(ctx context.Context, actorID string, patch domain.LiveSettings) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		if patch.CapacityOverride > 0 && !s.cfg.Flags.CapacityOverridable {
			return reject(ReasonCapacityLocked, "This category does not allow changing the capacity.")
		}

		if s.live == nil {
			s.live = &domain.LiveSettings{}
		}
		if patch.Message != "" {
			s.live.Message = patch.Message
		}
		if patch.LiveStatus != "" {
			s.live.LiveStatus = patch.LiveStatus
		}
		if patch.RandomStatus != "" {
			s.live.RandomStatus = patch.RandomStatus
		}
		if patch.CapacityOverride > 0 {
			s.live.CapacityOverride = patch.CapacityOverride
		}
		for selectorID, value := range patch.SelectorValues {
			if value == "" || !s.cfg.HasSelector(selectorID) {
				continue
			}
			if s.live.SelectorValues == nil {
				s.live.SelectorValues = make(map[string]string)
			}
			s.live.SelectorValues[selectorID] = value
		}

		s.updateOwnerSurfaces(ctx)
		s.refreshStatus(ctx)
		return accept("Announcement settings updated.")
	})
}

// PublishRecruitment publishes the current live settings as an announcement
// in the category's recruitment channel, replacing any previous post. The
// published values become the owner's new last-used defaults.
func (s *Session) PublishRecruitment(ctx context.Context, actorID string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		if !s.cfg.RecruitmentEnabled() {
			return reject(ReasonRecruitmentDisabled, "This category does not publish announcements.")
		}
		if s.live == nil {
			return reject(ReasonNoLiveSettings, "Edit the announcement before publishing.")
		}

		s.retract(ctx, s.surfaceFor(surface.RolePost), &s.postHandle)
		handle, err := s.surfaceFor(surface.RolePost).Publish(ctx, s.cfg.RecruitmentTargetID, s.announcementContent(ctx))
		if err != nil {
			log.Printf("session %s: publish announcement: %v", s.params.ChannelID, err)
			return reject(ReasonPublishFailed, "Could not publish the announcement. Try again.")
		}
		s.postHandle = handle

		s.retract(ctx, s.surfaceFor(surface.RoleEdit), &s.editHandle)
		s.refreshStatus(ctx)

		if err := s.deps.Stores.History.PushHistory(ctx, actorID, *s.live, s.cfg); err != nil {
			log.Printf("session %s: push history for %s: %v", s.params.ChannelID, actorID, err)
			return reject(ReasonPersistenceFailure, "Announcement published, but saving your defaults failed.")
		}
		return accept("Announcement published.")
	})
}

// RequestEditOpen reopens the announcement edit form.
func (s *Session) RequestEditOpen(ctx context.Context, actorID string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		if !s.cfg.RecruitmentEnabled() {
			return reject(ReasonRecruitmentDisabled, "This category does not publish announcements.")
		}
		s.publishEditSurface(ctx)
		return accept("Edit form opened.")
	})
}

// RequestOwnerRelease gives up ownership, retracting the announcement and
// reopening the claim prompt.
func (s *Session) RequestOwnerRelease(ctx context.Context, actorID string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		s.setOwner(ctx, "")
		return accept("Ownership released.")
	})
}

// RequestCapacityChange overrides the session capacity when the category
// allows it.
func (s *Session) RequestCapacityChange(ctx context.Context, actorID string, capacity int) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		if !s.cfg.Flags.CapacityOverridable {
			return reject(ReasonCapacityLocked, "This category does not allow changing the capacity.")
		}
		if s.live == nil {
			return reject(ReasonNoLiveSettings, "Edit the announcement before changing the capacity.")
		}
		if capacity < 0 {
			capacity = 0
		}
		s.live.CapacityOverride = capacity
		s.updateOwnerSurfaces(ctx)
		s.refreshStatus(ctx)
		return accept("Capacity updated.")
	})
}

// SaveTemplate stores a named announcement template in the owner's history
// for the category.
func (s *Session) SaveTemplate(ctx context.Context, actorID, name, body string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return reject(ReasonUnknownTemplate, "A template needs a name.")
		}

		history, err := s.deps.Stores.History.GetUserHistory(ctx, actorID, s.cfg.HistoryCategory)
		if err != nil {
			log.Printf("session %s: load history for %s: %v", s.params.ChannelID, actorID, err)
			return reject(ReasonPersistenceFailure, "Could not load your templates. Try again.")
		}
		if _, exists := history.Templates[name]; !exists && len(history.Templates) >= domain.MaxTemplates {
			return reject(ReasonTemplateLimitReached, "Template limit reached. Delete one first.")
		}
		if history.Templates == nil {
			history.Templates = make(map[string]string)
		}
		history.Templates[name] = body

		if err := s.deps.Stores.History.PushTemplates(ctx, actorID, s.cfg.HistoryCategory, history.Templates); err != nil {
			log.Printf("session %s: push templates for %s: %v", s.params.ChannelID, actorID, err)
			return reject(ReasonPersistenceFailure, "Could not save the template. Try again.")
		}
		return accept("Template saved.")
	})
}

// DeleteTemplate removes a named template from the owner's history.
func (s *Session) DeleteTemplate(ctx context.Context, actorID, name string) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		if verdict, ok := s.requireOwner(actorID); !ok {
			return verdict
		}

		history, err := s.deps.Stores.History.GetUserHistory(ctx, actorID, s.cfg.HistoryCategory)
		if err != nil {
			log.Printf("session %s: load history for %s: %v", s.params.ChannelID, actorID, err)
			return reject(ReasonPersistenceFailure, "Could not load your templates. Try again.")
		}
		if _, exists := history.Templates[name]; !exists {
			return reject(ReasonUnknownTemplate, "No template with that name.")
		}
		delete(history.Templates, name)

		if err := s.deps.Stores.History.PushTemplates(ctx, actorID, s.cfg.HistoryCategory, history.Templates); err != nil {
			log.Printf("session %s: push templates for %s: %v", s.params.ChannelID, actorID, err)
			return reject(ReasonPersistenceFailure, "Could not delete the template. Try again.")
		}
		return accept("Template deleted.")
	})
}

// RequestRoleChange switches the acting member between player and observer,
// rewriting their nickname accordingly. A directory failure leaves the
// roster unchanged and tells the member how to apply the marker themselves.
func (s *Session) RequestRoleChange(ctx context.Context, memberID string, asObserver bool) Verdict {
	return s.run(ctx, func(ctx context.Context) Verdict {
		entry, ok := s.members[memberID]
		if !ok {
			return reject(ReasonNotAMember, "Join the channel first.")
		}
		if entry.observer == asObserver {
			if asObserver {
				return reject(ReasonRoleUnchanged, "You are already an observer.")
			}
			return reject(ReasonRoleUnchanged, "You are already a player.")
		}

		var nick string
		var changed bool
		if asObserver {
			nick, changed = nickname.ObserverNick(entry.member.Username, entry.member.Nick)
		} else {
			nick, changed = nickname.PlayerNick(entry.member.Username, entry.member.Nick)
		}
		if changed {
			if err := s.deps.Directory.Rename(ctx, s.params.ChannelID, memberID, nick); err != nil {
				log.Printf("session %s: rename %s: %v", s.params.ChannelID, memberID, err)
				return reject(ReasonRenameFailed, "Could not update your nickname. Add or remove the "+nickname.Marker+" marker yourself.")
			}
			entry.member.Nick = nick
		}
		entry.observer = asObserver
		s.refreshStatus(ctx)
		if asObserver {
			return accept("You are now an observer.")
		}
		return accept("You are now a player.")
	})
}

// updateOwnerSurfaces refreshes the management and edit surfaces in place
// after a settings change.
func (s *Session) updateOwnerSurfaces(ctx context.Context) {
	if s.mgmtHandle != "" {
		if err := s.surfaceFor(surface.RoleManagement).Update(ctx, s.mgmtHandle, s.managementContent()); err != nil {
			log.Printf("session %s: update management surface: %v", s.params.ChannelID, err)
		}
	}
	if s.editHandle != "" {
		if err := s.surfaceFor(surface.RoleEdit).Update(ctx, s.editHandle, s.editContent(ctx)); err != nil {
			log.Printf("session %s: update edit surface: %v", s.params.ChannelID, err)
		}
	}
}

// State is an observational snapshot of a session for diagnostics and tests.
type State struct {
	OwnerID    string
	ClaimToken string
	Players    int
	Observers  int
	Live       *domain.LiveSettings
	PostLive   bool
}

// Snapshot returns a consistent view of the session state, taken on the
// session loop.
func (s *Session) Snapshot(ctx context.Context) (State, error) {
	var state State
	err := s.do(ctx, func() {
		state = State{
			OwnerID:    s.ownerID,
			ClaimToken: s.claimToken,
			PostLive:   s.postHandle != "",
		}
		for _, entry := range s.members {
			if entry.observer {
				state.Observers++
			} else {
				state.Players++
			}
		}
		if s.live != nil {
			live := s.live.Clone()
			state.Live = &live
		}
	})
	return state, err
}
