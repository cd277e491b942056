// Package admin edits the recruitment configuration: registering categories,
// tuning their announcement options, and maintaining the selector catalog.
// Sessions pick up edits on their next event; no session restart is needed.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage"
)

var (
	// ErrCategoryExists indicates a category is already registered.
	ErrCategoryExists = errors.New("category already registered")
	// ErrCategoryNotFound indicates an unknown category.
	ErrCategoryNotFound = errors.New("category not registered")
	// ErrSelectorExists indicates a selector id is already taken.
	ErrSelectorExists = errors.New("selector already exists")
	// ErrSelectorNotFound indicates an unknown selector.
	ErrSelectorNotFound = errors.New("selector not found")
	// ErrSelectorAttached indicates the selector is already on the category.
	ErrSelectorAttached = errors.New("selector already attached")
	// ErrSelectorNotAttached indicates the selector is not on the category.
	ErrSelectorNotAttached = errors.New("selector not attached")
	// ErrOptionNotFound indicates a selector option that does not exist.
	ErrOptionNotFound = errors.New("selector option not found")
)

// Service edits channel and selector configuration.
type Service struct {
	store storage.ConfigStore
}

// NewService creates a configuration-editing service.
func NewService(store storage.ConfigStore) *Service {
	return &Service{store: store}
}

// RegisterCategory registers a new managed category.
func (s *Service) RegisterCategory(ctx context.Context, cfg domain.ChannelConfig) error {
	cfg, err := domain.NormalizeChannelConfig(cfg)
	if err != nil {
		return err
	}
	_, err = s.store.GetChannelConfig(ctx, cfg.CategoryID)
	if err == nil {
		return ErrCategoryExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check category %s: %w", cfg.CategoryID, err)
	}
	return s.store.PutChannelConfig(ctx, cfg)
}

// RemoveCategory unregisters a category. Its channels become unmanaged for
// new sessions; live sessions keep their last-read configuration.
func (s *Service) RemoveCategory(ctx context.Context, categoryID string) error {
	if _, err := s.category(ctx, categoryID); err != nil {
		return err
	}
	return s.store.DeleteChannelConfig(ctx, categoryID)
}

// DescribeCategory returns a category's configuration.
func (s *Service) DescribeCategory(ctx context.Context, categoryID string) (domain.ChannelConfig, error) {
	return s.category(ctx, categoryID)
}

// ListCategories returns all registered categories ordered by id.
func (s *Service) ListCategories(ctx context.Context) ([]domain.ChannelConfig, error) {
	configs, err := s.store.ListChannelConfigs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].CategoryID < configs[j].CategoryID })
	return configs, nil
}

// SetRecruitmentTarget points announcements at a channel. An empty target
// disables recruitment for the category.
func (s *Service) SetRecruitmentTarget(ctx context.Context, categoryID, targetID string) error {
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		cfg.RecruitmentTargetID = targetID
		return nil
	})
}

// SetOptions replaces the category's display flags.
func (s *Service) SetOptions(ctx context.Context, categoryID string, flags domain.Flags) error {
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		cfg.Flags = flags
		return nil
	})
}

// SetCapacityDefault sets the category's player capacity. Zero or negative
// means unbounded.
func (s *Service) SetCapacityDefault(ctx context.Context, categoryID string, capacity int) error {
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		cfg.CapacityDefault = capacity
		return nil
	})
}

// SetHistoryCategory sets the namespace the category's user history is
// stored under. An empty value reverts to the shared default namespace.
func (s *Service) SetHistoryCategory(ctx context.Context, categoryID, history string) error {
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		cfg.HistoryCategory = history
		return nil
	})
}

// AttachSelector adds an existing selector to a category's announcements.
func (s *Service) AttachSelector(ctx context.Context, categoryID, selectorID string) error {
	if _, err := s.selector(ctx, selectorID); err != nil {
		return err
	}
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		if cfg.HasSelector(selectorID) {
			return ErrSelectorAttached
		}
		cfg.SelectorIDs = append(cfg.SelectorIDs, selectorID)
		return nil
	})
}

// DetachSelector removes a selector from a category's announcements. The
// selector definition itself is kept.
func (s *Service) DetachSelector(ctx context.Context, categoryID, selectorID string) error {
	return s.updateCategory(ctx, categoryID, func(cfg *domain.ChannelConfig) error {
		if !cfg.HasSelector(selectorID) {
			return ErrSelectorNotAttached
		}
		ids := make([]string, 0, len(cfg.SelectorIDs)-1)
		for _, candidate := range cfg.SelectorIDs {
			if candidate != selectorID {
				ids = append(ids, candidate)
			}
		}
		cfg.SelectorIDs = ids
		return nil
	})
}

// CreateSelector adds a selector definition to the catalog.
func (s *Service) CreateSelector(ctx context.Context, cfg domain.SelectorConfig) error {
	cfg, err := domain.NormalizeSelectorConfig(cfg)
	if err != nil {
		return err
	}
	_, err = s.store.GetSelectorConfig(ctx, cfg.ID)
	if err == nil {
		return ErrSelectorExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check selector %s: %w", cfg.ID, err)
	}
	return s.store.PutSelectorConfig(ctx, cfg)
}

// RenameSelectorLabel changes a selector's display label.
func (s *Service) RenameSelectorLabel(ctx context.Context, selectorID, label string) error {
	return s.updateSelector(ctx, selectorID, func(cfg *domain.SelectorConfig) error {
		cfg.Label = label
		return nil
	})
}

// AddSelectorOptions appends options to a selector. Options the selector
// already has are rejected by validation.
func (s *Service) AddSelectorOptions(ctx context.Context, selectorID string, options ...string) error {
	return s.updateSelector(ctx, selectorID, func(cfg *domain.SelectorConfig) error {
		cfg.Options = append(cfg.Options, options...)
		return nil
	})
}

// RemoveSelectorOptions removes options from a selector. Removing the
// selector's default clears the default; removing the last option fails.
func (s *Service) RemoveSelectorOptions(ctx context.Context, selectorID string, options ...string) error {
	return s.updateSelector(ctx, selectorID, func(cfg *domain.SelectorConfig) error {
		remove := make(map[string]bool, len(options))
		for _, option := range options {
			remove[option] = true
		}
		kept := make([]string, 0, len(cfg.Options))
		for _, option := range cfg.Options {
			if remove[option] {
				delete(remove, option)
				continue
			}
			kept = append(kept, option)
		}
		if len(remove) > 0 {
			return ErrOptionNotFound
		}
		cfg.Options = kept
		if cfg.DefaultValue != "" {
			found := false
			for _, option := range kept {
				if option == cfg.DefaultValue {
					found = true
					break
				}
			}
			if !found {
				cfg.DefaultValue = ""
			}
		}
		return nil
	})
}

// ListSelectors returns all selector ids ordered.
func (s *Service) ListSelectors(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListSelectorIDs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// DescribeSelector returns a selector definition.
func (s *Service) DescribeSelector(ctx context.Context, selectorID string) (domain.SelectorConfig, error) {
	return s.selector(ctx, selectorID)
}

func (s *Service) category(ctx context.Context, categoryID string) (domain.ChannelConfig, error) {
	cfg, err := s.store.GetChannelConfig(ctx, categoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ChannelConfig{}, ErrCategoryNotFound
		}
		return domain.ChannelConfig{}, fmt.Errorf("load category %s: %w", categoryID, err)
	}
	return cfg, nil
}

func (s *Service) selector(ctx context.Context, selectorID string) (domain.SelectorConfig, error) {
	cfg, err := s.store.GetSelectorConfig(ctx, selectorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.SelectorConfig{}, ErrSelectorNotFound
		}
		return domain.SelectorConfig{}, fmt.Errorf("load selector %s: %w", selectorID, err)
	}
	return cfg, nil
}

func (s *Service) updateCategory(ctx context.Context, categoryID string, mutate func(*domain.ChannelConfig) error) error {
	cfg, err := s.category(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := mutate(&cfg); err != nil {
		return err
	}
	cfg, err = domain.NormalizeChannelConfig(cfg)
	if err != nil {
		return err
	}
	return s.store.PutChannelConfig(ctx, cfg)
}

func (s *Service) updateSelector(ctx context.Context, selectorID string, mutate func(*domain.SelectorConfig) error) error {
	cfg, err := s.selector(ctx, selectorID)
	if err != nil {
		return err
	}
	if err := mutate(&cfg); err != nil {
		return err
	}
	cfg, err = domain.NormalizeSelectorConfig(cfg)
	if err != nil {
		return err
	}
	return s.store.PutSelectorConfig(ctx, cfg)
}
