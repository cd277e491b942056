// Package server wires the recruitment runtime: configuration and history
// stores, the session registry, the admin service, and shutdown.
package server

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/louisbranch/muster/internal/admin"
	"github.com/louisbranch/muster/internal/directory"
	"github.com/louisbranch/muster/internal/platform/config"
	"github.com/louisbranch/muster/internal/recruit/registry"
	"github.com/louisbranch/muster/internal/recruit/session"
	bboltstore "github.com/louisbranch/muster/internal/storage/bbolt"
	sqlitestore "github.com/louisbranch/muster/internal/storage/sqlite"
	"github.com/louisbranch/muster/internal/surface"
	"github.com/louisbranch/muster/internal/surface/memory"
)

type serverEnv struct {
	ConfigDBPath  string `env:"MUSTER_CONFIG_DB_PATH"`
	HistoryDBPath string `env:"MUSTER_HISTORY_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.ConfigDBPath) == "" {
		cfg.ConfigDBPath = filepath.Join("data", "config.db")
	}
	if strings.TrimSpace(cfg.HistoryDBPath) == "" {
		cfg.HistoryDBPath = filepath.Join("data", "history.db")
	}
	return cfg
}

// Options inject the presentation bindings and storage paths. Zero-value
// fields fall back to environment configuration, in-memory surfaces, and a
// logging directory, which is enough for local development; production
// bindings are supplied by the embedding process.
type Options struct {
	ConfigDBPath  string
	HistoryDBPath string
	Surfaces      surface.Set
	Directory     directory.Directory
}

// Server hosts the recruitment runtime and storage lifecycle.
type Server struct {
	configStore  *bboltstore.Store
	historyStore *sqlitestore.Store
	registry     *registry.Registry
	admin        *admin.Service
}

// New opens the stores and builds the session registry.
func New(opts Options) (*Server, error) {
	env := loadServerEnv()
	if strings.TrimSpace(opts.ConfigDBPath) == "" {
		opts.ConfigDBPath = env.ConfigDBPath
	}
	if strings.TrimSpace(opts.HistoryDBPath) == "" {
		opts.HistoryDBPath = env.HistoryDBPath
	}

	configStore, err := bboltstore.Open(opts.ConfigDBPath)
	if err != nil {
		return nil, err
	}
	historyStore, err := sqlitestore.Open(opts.HistoryDBPath)
	if err != nil {
		_ = configStore.Close()
		return nil, err
	}

	surfaces := opts.Surfaces
	if surfaces.Claim == nil {
		surfaces.Claim = memory.New()
	}
	if surfaces.Management == nil {
		surfaces.Management = memory.New()
	}
	if surfaces.Edit == nil {
		surfaces.Edit = memory.New()
	}
	if surfaces.Post == nil {
		surfaces.Post = memory.New()
	}
	if surfaces.Toggle == nil {
		surfaces.Toggle = memory.New()
	}
	dir := opts.Directory
	if dir == nil {
		dir = logDirectory{}
	}

	deps := session.Deps{
		Stores:    session.Stores{Config: configStore, History: historyStore},
		Surfaces:  surfaces,
		Directory: dir,
	}
	return &Server{
		configStore:  configStore,
		historyStore: historyStore,
		registry:     registry.New(deps),
		admin:        admin.NewService(configStore),
	}, nil
}

// Registry returns the session registry for event bindings.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Admin returns the configuration-editing service.
func (s *Server) Admin() *admin.Service {
	return s.admin
}

// Run creates a server and blocks until context cancellation.
func Run(ctx context.Context, opts Options) error {
	server, err := New(opts)
	if err != nil {
		return err
	}
	defer server.Close()

	log.Printf("recruitment runtime ready")
	<-ctx.Done()
	log.Printf("shutting down")
	return nil
}

// Close stops all sessions and closes the stores.
func (s *Server) Close() {
	s.registry.Close()
	if err := s.historyStore.Close(); err != nil {
		log.Printf("close history store: %v", err)
	}
	if err := s.configStore.Close(); err != nil {
		log.Printf("close config store: %v", err)
	}
}

// logDirectory is the development stand-in for the chat platform: it logs
// renames and status changes instead of applying them.
type logDirectory struct{}

func (logDirectory) Rename(ctx context.Context, channelID, memberID, nick string) error {
	log.Printf("directory: rename %s in %s to %q", memberID, channelID, nick)
	return nil
}

func (logDirectory) SetStatus(ctx context.Context, channelID, status string) error {
	log.Printf("directory: status of %s set to %q", channelID, status)
	return nil
}
