package store

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/moolen/fitaura/internal/agent"
)

// LoadSeedFile reads a YAML document mapping user ids to profile attributes:
//
//	alice:
//	  age: 29
//	  activity_level: low
//	  diet_type: vegetarian
func LoadSeedFile(path string) (map[string]agent.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read seed file: %w", err)
	}

	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: parse seed file %s: %w", path, err)
	}

	profiles := make(map[string]agent.Profile, len(raw))
	for userID, attrs := range raw {
		if err := validateUserID(userID); err != nil {
			return nil, fmt.Errorf("store: seed file %s: %w", path, err)
		}
		profiles[userID] = agent.Profile(attrs).Clone()
	}
	return profiles, nil
}

// Seed writes profiles into dst in user id order.
func Seed(ctx context.Context, dst ProfileStore, profiles map[string]agent.Profile) error {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := dst.Put(ctx, id, profiles[id]); err != nil {
			return fmt.Errorf("store: seed profile %q: %w", id, err)
		}
	}
	return nil
}
