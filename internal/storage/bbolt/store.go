// Package bbolt provides a BoltDB-backed configuration store.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	channelBucket  = "channel_config"
	selectorBucket = "selector_config"
)

// Store persists channel and selector configuration in BoltDB.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{channelBucket, selectorBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("ensure bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// PutChannelConfig persists a channel configuration record.
func (s *Store) PutChannelConfig(ctx context.Context, cfg domain.ChannelConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(cfg.CategoryID) == "" {
		return fmt.Errorf("category id is required")
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal channel config: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelBucket))
		if bucket == nil {
			return fmt.Errorf("channel config bucket is missing")
		}
		return bucket.Put([]byte(cfg.CategoryID), payload)
	})
}

// GetChannelConfig fetches a channel configuration record by category ID.
func (s *Store) GetChannelConfig(ctx context.Context, categoryID string) (domain.ChannelConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChannelConfig{}, err
	}
	if s == nil || s.db == nil {
		return domain.ChannelConfig{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(categoryID) == "" {
		return domain.ChannelConfig{}, fmt.Errorf("category id is required")
	}

	var cfg domain.ChannelConfig
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelBucket))
		if bucket == nil {
			return fmt.Errorf("channel config bucket is missing")
		}
		payload := bucket.Get([]byte(categoryID))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return fmt.Errorf("unmarshal channel config: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ChannelConfig{}, err
	}
	return cfg, nil
}

// DeleteChannelConfig removes a channel configuration record. Deleting a
// missing record is a no-op.
func (s *Store) DeleteChannelConfig(ctx context.Context, categoryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(categoryID) == "" {
		return fmt.Errorf("category id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelBucket))
		if bucket == nil {
			return fmt.Errorf("channel config bucket is missing")
		}
		return bucket.Delete([]byte(categoryID))
	})
}

// ListChannelConfigs returns all channel configuration records sorted by
// category ID.
func (s *Store) ListChannelConfigs(ctx context.Context) ([]domain.ChannelConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var configs []domain.ChannelConfig
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelBucket))
		if bucket == nil {
			return fmt.Errorf("channel config bucket is missing")
		}
		return bucket.ForEach(func(key, payload []byte) error {
			var cfg domain.ChannelConfig
			if err := json.Unmarshal(payload, &cfg); err != nil {
				return fmt.Errorf("unmarshal channel config %s: %w", key, err)
			}
			configs = append(configs, cfg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].CategoryID < configs[j].CategoryID })
	return configs, nil
}

// PutSelectorConfig persists a selector definition.
func (s *Store) PutSelectorConfig(ctx context.Context, cfg domain.SelectorConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("selector id is required")
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal selector config: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(selectorBucket))
		if bucket == nil {
			return fmt.Errorf("selector config bucket is missing")
		}
		return bucket.Put([]byte(cfg.ID), payload)
	})
}

// GetSelectorConfig fetches a selector definition by ID.
func (s *Store) GetSelectorConfig(ctx context.Context, selectorID string) (domain.SelectorConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.SelectorConfig{}, err
	}
	if s == nil || s.db == nil {
		return domain.SelectorConfig{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(selectorID) == "" {
		return domain.SelectorConfig{}, fmt.Errorf("selector id is required")
	}

	var cfg domain.SelectorConfig
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(selectorBucket))
		if bucket == nil {
			return fmt.Errorf("selector config bucket is missing")
		}
		payload := bucket.Get([]byte(selectorID))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return fmt.Errorf("unmarshal selector config: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.SelectorConfig{}, err
	}
	return cfg, nil
}

// DeleteSelectorConfig removes a selector definition. Deleting a missing
// record is a no-op.
func (s *Store) DeleteSelectorConfig(ctx context.Context, selectorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(selectorID) == "" {
		return fmt.Errorf("selector id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(selectorBucket))
		if bucket == nil {
			return fmt.Errorf("selector config bucket is missing")
		}
		return bucket.Delete([]byte(selectorID))
	})
}

// ListSelectorIDs returns all selector IDs sorted lexicographically.
func (s *Store) ListSelectorIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(selectorBucket))
		if bucket == nil {
			return fmt.Errorf("selector config bucket is missing")
		}
		return bucket.ForEach(func(key, _ []byte) error {
			ids = append(ids, string(key))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
