// Package sqlite provides a SQLite-backed user history store.
//
// History rows are keyed by (user_id, kind), where the kind namespaces the
// value by history category: "<CATEGORY>_LAST_RECRUITMENT",
// "<CATEGORY>_LAST_LIVE", "<CATEGORY>_LAST_RANDOM",
// "<CATEGORY>_TEMPLATE_<name>" and "<CATEGORY>_SELECTS_<selector id>".
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/muster/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	kindLastRecruitment = "LAST_RECRUITMENT"
	kindLastLive        = "LAST_LIVE"
	kindLastRandom      = "LAST_RANDOM"
	templatePrefix      = "TEMPLATE_"
	selectsPrefix       = "SELECTS_"
)

// Store persists user history in SQLite.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens a SQLite history store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func kindFor(category, suffix string) string {
	return category + "_" + suffix
}

// GetUserHistory returns the recorded history for a user within a category.
// Absent records yield a zero UserHistory, never an error.
func (s *Store) GetUserHistory(ctx context.Context, userID, category string) (domain.UserHistory, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserHistory{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.UserHistory{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	category = strings.TrimSpace(category)
	if userID == "" {
		return domain.UserHistory{}, fmt.Errorf("user id is required")
	}
	if category == "" {
		return domain.UserHistory{}, fmt.Errorf("history category is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT kind, text FROM user_texts WHERE user_id = ? AND kind LIKE ?`,
		userID,
		category+"_%",
	)
	if err != nil {
		return domain.UserHistory{}, fmt.Errorf("query user history: %w", err)
	}
	defer rows.Close()

	history := domain.UserHistory{
		SelectorLastValues: make(map[string]string),
		Templates:          make(map[string]string),
	}
	prefixLen := len(category) + 1
	for rows.Next() {
		var kind, text string
		if err := rows.Scan(&kind, &text); err != nil {
			return domain.UserHistory{}, fmt.Errorf("scan user history: %w", err)
		}
		if len(kind) <= prefixLen {
			continue
		}
		switch suffix := kind[prefixLen:]; {
		case suffix == kindLastRecruitment:
			history.LastMessage = text
		case suffix == kindLastLive:
			history.LastLiveStatus = text
		case suffix == kindLastRandom:
			history.LastRandomStatus = text
		case strings.HasPrefix(suffix, templatePrefix):
			history.Templates[suffix[len(templatePrefix):]] = text
		case strings.HasPrefix(suffix, selectsPrefix):
			history.SelectorLastValues[suffix[len(selectsPrefix):]] = text
		}
	}
	if err := rows.Err(); err != nil {
		return domain.UserHistory{}, fmt.Errorf("iterate user history: %w", err)
	}
	return history, nil
}

// PushHistory upserts the last-used values captured by a publish. Status
// fields whose display flag is off are skipped, matching what the
// announcement actually showed.
func (s *Store) PushHistory(ctx context.Context, userID string, live domain.LiveSettings, cfg domain.ChannelConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	category := strings.TrimSpace(cfg.HistoryCategory)
	if category == "" {
		return fmt.Errorf("history category is required")
	}

	type upsert struct{ kind, text string }
	var updates []upsert
	if live.Message != "" {
		updates = append(updates, upsert{kindFor(category, kindLastRecruitment), live.Message})
	}
	if cfg.Flags.ShowLiveStatus && live.LiveStatus != "" {
		updates = append(updates, upsert{kindFor(category, kindLastLive), live.LiveStatus})
	}
	if cfg.Flags.ShowRandomStatus && live.RandomStatus != "" {
		updates = append(updates, upsert{kindFor(category, kindLastRandom), live.RandomStatus})
	}
	for selectorID, value := range live.SelectorValues {
		if value == "" {
			continue
		}
		updates = append(updates, upsert{kindFor(category, selectsPrefix+selectorID), value})
	}
	if len(updates) == 0 {
		return nil
	}

	now := s.clock().UTC().UnixMilli()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin push history: %w", err)
	}
	for _, u := range updates {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO user_texts (user_id, kind, text, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, kind) DO UPDATE SET
			   text = excluded.text,
			   updated_at = excluded.updated_at`,
			userID,
			u.kind,
			u.text,
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("push history %s: %w", u.kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit push history: %w", err)
	}
	return nil
}

// PushTemplates replaces the full template mapping for a (user, category).
// The caller enforces the template cap before calling.
func (s *Store) PushTemplates(ctx context.Context, userID, category string, templates map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	category = strings.TrimSpace(category)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if category == "" {
		return fmt.Errorf("history category is required")
	}

	now := s.clock().UTC().UnixMilli()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin push templates: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM user_texts WHERE user_id = ? AND kind LIKE ?`,
		userID,
		kindFor(category, templatePrefix)+"%",
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear templates: %w", err)
	}
	for name, text := range templates {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO user_texts (user_id, kind, text, updated_at) VALUES (?, ?, ?, ?)`,
			userID,
			kindFor(category, templatePrefix+name),
			text,
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("push template %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit push templates: %w", err)
	}
	return nil
}
