// Package store persists user profiles and conversation history.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/logging"
)

// ErrInvalidUserID is returned when a write names an empty user.
var ErrInvalidUserID = errors.New("invalid user id")

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// Turn is one completed exchange.
type Turn struct {
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Response   string    `json:"response"`
	AgentsUsed []string  `json:"agents_used"`
	RunID      string    `json:"run_id,omitempty"`
}

// ProfileStore reads and writes user profiles. Get never fails for an
// unknown user; it returns an empty profile instead.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (agent.Profile, error)
	Put(ctx context.Context, userID string, profile agent.Profile) error
}

// HistoryStore records completed turns per user.
type HistoryStore interface {
	AppendTurn(ctx context.Context, userID string, turn Turn) error
	// History returns up to limit of the most recent turns, oldest first.
	History(ctx context.Context, userID string, limit int) ([]Turn, error)
}

// Store is a combined profile and history backend.
type Store interface {
	ProfileStore
	HistoryStore
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config selects and tunes the backend.
type Config struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// ProfileCacheSize is the LRU size in front of profile reads. Zero
	// disables the cache.
	ProfileCacheSize int `yaml:"profile_cache_size"`

	// SeedProfiles is an optional YAML file of user_id -> attributes loaded
	// at startup.
	SeedProfiles string `yaml:"seed_profiles"`
}

// DefaultConfig returns an in-memory store with a small profile cache.
func DefaultConfig() Config {
	return Config{
		Backend:          BackendMemory,
		Path:             "fitaura.db",
		ProfileCacheSize: 256,
	}
}

// Open builds the configured backend, puts the profile cache in front of it
// and applies the seed file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	logger := logging.GetLogger("store")

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory, "":
		s = NewMemory()
	case BackendSQLite:
		s, err = OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}

	if cfg.ProfileCacheSize > 0 {
		cached, err := NewCached(s, cfg.ProfileCacheSize)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = cached
	}

	if cfg.SeedProfiles != "" {
		profiles, err := LoadSeedFile(cfg.SeedProfiles)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if err := Seed(ctx, s, profiles); err != nil {
			_ = s.Close()
			return nil, err
		}
		logger.Info("Seeded %d profiles from %s", len(profiles), cfg.SeedProfiles)
	}

	logger.InfoWithFields("Store opened",
		logging.Field("backend", backendName(cfg.Backend)),
		logging.Field("profile_cache_size", cfg.ProfileCacheSize),
	)
	return s, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendMemory
	}
	return b
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}
	return nil
}

// NormalizeLimit clamps a requested history size to [1, MaxHistoryLimit];
// non-positive values mean DefaultHistoryLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
