package project

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key layout: one hash per project plus an index set of ids.
	projectKeyPrefix = "epicsync:project:"
	projectIndexKey  = "epicsync:projects"
)

// RedisStore serves settings from Redis so multiple service instances share
// one view of project provisioning.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put upserts one project's settings. Used by provisioning tooling and
// integration tests; the reconciliation core itself never writes settings.
func (s *RedisStore) Put(ctx context.Context, settings Settings) error {
	if settings.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	key := projectKeyPrefix + settings.ProjectID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"api_token":    settings.APIToken,
		"enabled":      boolField(settings.Enabled),
		"force_update": boolField(settings.ForceUpdate),
	})
	pipe.SAdd(ctx, projectIndexKey, settings.ProjectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put project %s: %w", settings.ProjectID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, projectID string) (Settings, error) {
	fields, err := s.client.HGetAll(ctx, projectKeyPrefix+projectID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Settings{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if len(fields) == 0 {
		return Settings{}, ErrNotFound
	}
	return Settings{
		ProjectID:   projectID,
		APIToken:    fields["api_token"],
		Enabled:     fields["enabled"] == "1",
		ForceUpdate: fields["force_update"] == "1",
	}, nil
}

func (s *RedisStore) ListEnabled(ctx context.Context) ([]Settings, error) {
	ids, err := s.client.SMembers(ctx, projectIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	sort.Strings(ids)

	var out []Settings
	for _, id := range ids {
		settings, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if settings.Enabled {
			out = append(out, settings)
		}
	}
	return out, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
