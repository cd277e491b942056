package session

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/louisbranch/muster/internal/nickname"
	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage"
	"github.com/louisbranch/muster/internal/surface"
)

func (s *Session) ownerDisplayName() string {
	if entry, ok := s.members[s.ownerID]; ok {
		return entry.member.DisplayName()
	}
	return s.ownerID
}

// selectorConfigs resolves the category's selector definitions. Selectors
// deleted from the store after being referenced are skipped.
func (s *Session) selectorConfigs(ctx context.Context) map[string]domain.SelectorConfig {
	out := make(map[string]domain.SelectorConfig, len(s.cfg.SelectorIDs))
	for _, selectorID := range s.cfg.SelectorIDs {
		cfg, err := s.deps.Stores.Config.GetSelectorConfig(ctx, selectorID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Printf("session %s: load selector %s: %v", s.params.ChannelID, selectorID, err)
			}
			continue
		}
		out[selectorID] = cfg
	}
	return out
}

func (s *Session) claimContent(token string) surface.Content {
	return surface.Content{
		Title:      "Recruitment owner wanted",
		Body:       "Nobody is running recruitment for this channel. Claim it to edit and publish an announcement.",
		ClaimToken: token,
	}
}

func (s *Session) managementContent() surface.Content {
	return surface.Content{
		Title:  "Recruitment controls",
		Body:   "Edit the announcement, publish it, or release ownership.",
		Footer: "Owner: " + s.ownerDisplayName(),
	}
}

// editContent seeds the edit form from the merged defaults: the live
// announcement when one exists, then the owner's last-used values, then the
// fixed fallbacks.
func (s *Session) editContent(ctx context.Context) surface.Content {
	history, err := s.deps.Stores.History.GetUserHistory(ctx, s.ownerID, s.cfg.HistoryCategory)
	if err != nil {
		log.Printf("session %s: load history for %s: %v", s.params.ChannelID, s.ownerID, err)
	}
	selectors := s.selectorConfigs(ctx)
	defaults := domain.ResolveDefaults(s.live, history, s.cfg, selectors)

	content := surface.Content{
		Title: "Edit announcement",
		Fields: []surface.Field{
			{Name: "Message", Value: defaults.Message},
		},
	}
	if s.cfg.Flags.ShowLiveStatus {
		content.Fields = append(content.Fields, surface.Field{Name: "Streaming", Value: defaults.LiveStatus})
	}
	if s.cfg.Flags.ShowRandomStatus {
		content.Fields = append(content.Fields, surface.Field{Name: "Drop-ins", Value: defaults.RandomStatus})
	}
	for _, selectorID := range s.cfg.SelectorIDs {
		value, ok := defaults.SelectorValues[selectorID]
		if !ok {
			continue
		}
		label := selectorID
		if selector, ok := selectors[selectorID]; ok {
			label = selector.Label
		}
		content.Fields = append(content.Fields, surface.Field{Name: label, Value: value})
	}
	return content
}

func (s *Session) toggleContent() surface.Content {
	return surface.Content{
		Title: "Observer toggle",
		Body:  "Switch between playing and observing. Observers carry the " + nickname.Marker + " marker on their nickname.",
	}
}

// announcementContent renders the published recruitment post from the live
// settings snapshot.
func (s *Session) announcementContent(ctx context.Context) surface.Content {
	content := surface.Content{
		Title:  s.params.ChannelName,
		Footer: "Owner: " + s.ownerDisplayName(),
	}
	if s.live == nil {
		return content
	}
	content.Body = s.live.Message

	capacity := domain.Capacity(s.cfg, s.live)
	if s.cfg.Flags.ShowCapacity && capacity > 0 {
		value := strconv.Itoa(capacity)
		if status := domain.StatusText(capacity, s.countPlayers()); status != "" {
			value += " (" + status + ")"
		}
		content.Fields = append(content.Fields, surface.Field{Name: "Capacity", Value: value})
	}
	if s.cfg.Flags.ShowLiveStatus && s.live.LiveStatus != "" {
		content.Fields = append(content.Fields, surface.Field{Name: "Streaming", Value: s.live.LiveStatus})
	}
	if s.cfg.Flags.ShowRandomStatus && s.live.RandomStatus != "" {
		content.Fields = append(content.Fields, surface.Field{Name: "Drop-ins", Value: s.live.RandomStatus})
	}

	selectors := s.selectorConfigs(ctx)
	for _, selectorID := range s.cfg.SelectorIDs {
		value := s.live.SelectorValues[selectorID]
		if value == "" {
			continue
		}
		label := selectorID
		if selector, ok := selectors[selectorID]; ok {
			label = selector.Label
		}
		content.Fields = append(content.Fields, surface.Field{Name: label, Value: value})
	}
	return content
}
