package domain

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCategoryID indicates a missing category identifier.
	ErrEmptyCategoryID = errors.New("category id is required")
	// ErrEmptyHistoryCategory indicates a missing history category namespace.
	ErrEmptyHistoryCategory = errors.New("history category is required")
	// ErrEmptySelectorID indicates a missing selector identifier.
	ErrEmptySelectorID = errors.New("selector id is required")
	// ErrEmptySelectorLabel indicates a missing selector display label.
	ErrEmptySelectorLabel = errors.New("selector label is required")
	// ErrNoSelectorOptions indicates a selector without any options.
	ErrNoSelectorOptions = errors.New("selector needs at least one option")
	// ErrDuplicateSelectorOption indicates a repeated selector option.
	ErrDuplicateSelectorOption = errors.New("selector options must be unique")
	// ErrDefaultNotAnOption indicates a selector default outside its options.
	ErrDefaultNotAnOption = errors.New("selector default must be one of its options")
)

// DefaultHistoryCategory namespaces history for categories that do not set
// their own.
const DefaultHistoryCategory = "DEFAULT"

// Flags toggles the optional parts of a category's announcements.
type Flags struct {
	ShowRandomStatus    bool `json:"show_random_status"`
	ShowLiveStatus      bool `json:"show_live_status"`
	ShowCapacity        bool `json:"show_capacity"`
	CapacityOverridable bool `json:"capacity_overridable"`
}

// ChannelConfig is the per-category configuration that turns the channels
// under a category into managed recruitment channels. It is edited only by
// the configuration surface and read-only for sessions.
type ChannelConfig struct {
	CategoryID string `json:"category_id"`
	// RecruitmentTargetID is the channel announcements are published to.
	// Empty disables recruitment for the category.
	RecruitmentTargetID string `json:"recruitment_target_id,omitempty"`
	// CapacityDefault caps the player count. Zero means unbounded.
	CapacityDefault int    `json:"capacity_default,omitempty"`
	Flags           Flags  `json:"flags"`
	HistoryCategory string `json:"history_category"`
	// SelectorIDs lists the selectors shown on announcements, in order.
	SelectorIDs []string `json:"selector_ids,omitempty"`
}

// SelectorConfig defines one multiple-choice field offered on announcements.
type SelectorConfig struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Options are the selectable values, ordered, non-empty, unique.
	Options []string `json:"options"`
	// DefaultValue seeds the selector when neither the live settings nor the
	// user's history carry a value. Empty means the selector may stay unset.
	DefaultValue string `json:"default_value,omitempty"`
}

// NormalizeChannelConfig trims and validates a channel configuration,
// applying the default history category when none is set.
func NormalizeChannelConfig(cfg ChannelConfig) (ChannelConfig, error) {
	cfg.CategoryID = strings.TrimSpace(cfg.CategoryID)
	if cfg.CategoryID == "" {
		return ChannelConfig{}, ErrEmptyCategoryID
	}
	cfg.RecruitmentTargetID = strings.TrimSpace(cfg.RecruitmentTargetID)
	if cfg.CapacityDefault < 0 {
		cfg.CapacityDefault = 0
	}
	cfg.HistoryCategory = strings.TrimSpace(cfg.HistoryCategory)
	if cfg.HistoryCategory == "" {
		cfg.HistoryCategory = DefaultHistoryCategory
	}

	seen := make(map[string]bool, len(cfg.SelectorIDs))
	ids := make([]string, 0, len(cfg.SelectorIDs))
	for _, selectorID := range cfg.SelectorIDs {
		selectorID = strings.TrimSpace(selectorID)
		if selectorID == "" || seen[selectorID] {
			continue
		}
		seen[selectorID] = true
		ids = append(ids, selectorID)
	}
	cfg.SelectorIDs = ids
	return cfg, nil
}

// NormalizeSelectorConfig trims and validates a selector definition.
func NormalizeSelectorConfig(cfg SelectorConfig) (SelectorConfig, error) {
	cfg.ID = strings.TrimSpace(cfg.ID)
	if cfg.ID == "" {
		return SelectorConfig{}, ErrEmptySelectorID
	}
	cfg.Label = strings.TrimSpace(cfg.Label)
	if cfg.Label == "" {
		return SelectorConfig{}, ErrEmptySelectorLabel
	}

	seen := make(map[string]bool, len(cfg.Options))
	options := make([]string, 0, len(cfg.Options))
	for _, option := range cfg.Options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if seen[option] {
			return SelectorConfig{}, ErrDuplicateSelectorOption
		}
		seen[option] = true
		options = append(options, option)
	}
	if len(options) == 0 {
		return SelectorConfig{}, ErrNoSelectorOptions
	}
	cfg.Options = options

	cfg.DefaultValue = strings.TrimSpace(cfg.DefaultValue)
	if cfg.DefaultValue != "" && !seen[cfg.DefaultValue] {
		return SelectorConfig{}, ErrDefaultNotAnOption
	}
	return cfg, nil
}

// RecruitmentEnabled reports whether the category publishes announcements.
func (c ChannelConfig) RecruitmentEnabled() bool {
	return c.RecruitmentTargetID != ""
}

// HasSelector reports whether the category uses the given selector.
func (c ChannelConfig) HasSelector(selectorID string) bool {
	for _, candidate := range c.SelectorIDs {
		if candidate == selectorID {
			return true
		}
	}
	return false
}
