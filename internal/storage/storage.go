package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/muster/internal/recruit/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ConfigStore persists per-category channel configuration and selector
// definitions. All writes are atomic upserts keyed by identifier.
type ConfigStore interface {
	GetChannelConfig(ctx context.Context, categoryID string) (domain.ChannelConfig, error)
	PutChannelConfig(ctx context.Context, cfg domain.ChannelConfig) error
	DeleteChannelConfig(ctx context.Context, categoryID string) error
	ListChannelConfigs(ctx context.Context) ([]domain.ChannelConfig, error)

	GetSelectorConfig(ctx context.Context, selectorID string) (domain.SelectorConfig, error)
	PutSelectorConfig(ctx context.Context, cfg domain.SelectorConfig) error
	DeleteSelectorConfig(ctx context.Context, selectorID string) error
	ListSelectorIDs(ctx context.Context) ([]string, error)
}

// HistoryStore persists per-(user, category) last-used announcement values
// and saved templates.
//
// GetUserHistory never reports a missing record: absent rows yield a zero
// UserHistory. PushHistory upserts every textual field present in the live
// settings, namespaced by the config's history category; fields whose
// display flag is off are skipped. PushTemplates replaces the full template
// mapping for the category; the caller enforces the template cap.
type HistoryStore interface {
	GetUserHistory(ctx context.Context, userID, category string) (domain.UserHistory, error)
	PushHistory(ctx context.Context, userID string, live domain.LiveSettings, cfg domain.ChannelConfig) error
	PushTemplates(ctx context.Context, userID, category string, templates map[string]string) error
}
