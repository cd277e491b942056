package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/louisbranch/muster/internal/directory"
	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/recruit/session"
	"github.com/louisbranch/muster/internal/storage"
	"github.com/louisbranch/muster/internal/surface"
	"github.com/louisbranch/muster/internal/surface/memory"
)

type staticConfigStore struct {
	channels map[string]domain.ChannelConfig
}

func (s *staticConfigStore) GetChannelConfig(ctx context.Context, categoryID string) (domain.ChannelConfig, error) {
	cfg, ok := s.channels[categoryID]
	if !ok {
		return domain.ChannelConfig{}, storage.ErrNotFound
	}
	return cfg, nil
}

func (s *staticConfigStore) PutChannelConfig(ctx context.Context, cfg domain.ChannelConfig) error {
	s.channels[cfg.CategoryID] = cfg
	return nil
}

func (s *staticConfigStore) DeleteChannelConfig(ctx context.Context, categoryID string) error {
	delete(s.channels, categoryID)
	return nil
}

func (s *staticConfigStore) ListChannelConfigs(ctx context.Context) ([]domain.ChannelConfig, error) {
	out := make([]domain.ChannelConfig, 0, len(s.channels))
	for _, cfg := range s.channels {
		out = append(out, cfg)
	}
	return out, nil
}

func (s *staticConfigStore) GetSelectorConfig(ctx context.Context, selectorID string) (domain.SelectorConfig, error) {
	return domain.SelectorConfig{}, storage.ErrNotFound
}

func (s *staticConfigStore) PutSelectorConfig(ctx context.Context, cfg domain.SelectorConfig) error {
	return nil
}

func (s *staticConfigStore) DeleteSelectorConfig(ctx context.Context, selectorID string) error {
	return nil
}

func (s *staticConfigStore) ListSelectorIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

type nullHistoryStore struct{}

func (nullHistoryStore) GetUserHistory(ctx context.Context, userID, category string) (domain.UserHistory, error) {
	return domain.UserHistory{}, nil
}

func (nullHistoryStore) PushHistory(ctx context.Context, userID string, live domain.LiveSettings, cfg domain.ChannelConfig) error {
	return nil
}

func (nullHistoryStore) PushTemplates(ctx context.Context, userID, category string, templates map[string]string) error {
	return nil
}

type nullDirectory struct{}

func (nullDirectory) Rename(ctx context.Context, channelID, memberID, nick string) error {
	return nil
}

func (nullDirectory) SetStatus(ctx context.Context, channelID, status string) error {
	return nil
}

var _ directory.Directory = nullDirectory{}

func newRegistry(t *testing.T, channels map[string]domain.ChannelConfig) *Registry {
	t.Helper()
	deps := session.Deps{
		Stores: session.Stores{
			Config:  &staticConfigStore{channels: channels},
			History: nullHistoryStore{},
		},
		Surfaces: surface.Set{
			Claim:      memory.New(),
			Management: memory.New(),
			Edit:       memory.New(),
			Post:       memory.New(),
			Toggle:     memory.New(),
		},
		Directory: nullDirectory{},
	}
	r := New(deps)
	t.Cleanup(r.Close)
	return r
}

func managedCategory() map[string]domain.ChannelConfig {
	return map[string]domain.ChannelConfig{
		"cat-1": {
			CategoryID:          "cat-1",
			RecruitmentTargetID: "lobby",
			HistoryCategory:     "DEFAULT",
		},
	}
}

func TestJoinCreatesSessionForConfiguredCategory(t *testing.T) {
	r := newRegistry(t, managedCategory())
	ctx := context.Background()

	channel := ChannelRef{ID: "chan-1", Name: "raid-night", CategoryID: "cat-1"}
	if err := r.OnMemberJoin(ctx, channel, session.Member{ID: "u-1", Username: "alice"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if r.Get("chan-1") == nil {
		t.Fatal("session not created for configured category")
	}
	if got := r.Len(); got != 1 {
		t.Fatalf("sessions = %d, want 1", got)
	}
}

func TestJoinIgnoresUnconfiguredCategory(t *testing.T) {
	r := newRegistry(t, managedCategory())
	ctx := context.Background()

	channel := ChannelRef{ID: "chan-9", Name: "general", CategoryID: "cat-unknown"}
	if err := r.OnMemberJoin(ctx, channel, session.Member{ID: "u-1", Username: "alice"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if r.Get("chan-9") != nil {
		t.Fatal("session created for unconfigured category")
	}
}

func TestEventsWithoutSessionAreNoOps(t *testing.T) {
	r := newRegistry(t, managedCategory())
	ctx := context.Background()

	if err := r.OnMemberLeave(ctx, "chan-1", "u-1"); err != nil {
		t.Fatalf("leave without session: %v", err)
	}
	if err := r.OnRoleHintChanged(ctx, "chan-1", "u-1", false, true); err != nil {
		t.Fatalf("role hint without session: %v", err)
	}
}

func TestRoleHintFiltersNoOpTransitions(t *testing.T) {
	r := newRegistry(t, managedCategory())
	ctx := context.Background()

	channel := ChannelRef{ID: "chan-1", Name: "raid-night", CategoryID: "cat-1"}
	if err := r.OnMemberJoin(ctx, channel, session.Member{ID: "u-1", Username: "alice"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.OnRoleHintChanged(ctx, "chan-1", "u-1", true, true); err != nil {
		t.Fatalf("no-op role hint: %v", err)
	}
}

func TestConcurrentJoinsShareOneSession(t *testing.T) {
	r := newRegistry(t, managedCategory())
	ctx := context.Background()
	channel := ChannelRef{ID: "chan-1", Name: "raid-night", CategoryID: "cat-1"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			member := session.Member{ID: "u-" + string(rune('a'+n)), Username: "user"}
			if err := r.OnMemberJoin(ctx, channel, member); err != nil {
				t.Errorf("join: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := r.Len(); got != 1 {
		t.Fatalf("sessions = %d, want 1", got)
	}
}

func TestCloseRejectsFurtherJoins(t *testing.T) {
	r := newRegistry(t, managedCategory())
	r.Close()

	channel := ChannelRef{ID: "chan-1", Name: "raid-night", CategoryID: "cat-1"}
	err := r.OnMemberJoin(context.Background(), channel, session.Member{ID: "u-1", Username: "alice"})
	if err != session.ErrSessionClosed {
		t.Fatalf("join after close: %v, want ErrSessionClosed", err)
	}
}
