package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
)

// KV is the part of the Redis client the state store needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStateStore keeps wizard state as JSON under onboarding:wizard:{user}
type RedisStateStore struct {
	client KV
	ttl    time.Duration
}

func NewRedisStateStore(client KV, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

// Load returns nil without error when the user has no wizard in progress
func (s *RedisStateStore) Load(ctx context.Context, userID uuid.UUID) (*State, error) {
	raw, err := s.client.Get(ctx, cache.WizardKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode wizard state: %w", err)
	}
	if _, ok := variantSteps[state.Variant]; !ok || state.indexOf(state.Active) < 0 {
		// stale payload from an older layout, start over
		return nil, nil
	}
	return &state, nil
}

func (s *RedisStateStore) Save(ctx context.Context, userID uuid.UUID, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode wizard state: %w", err)
	}
	if err := s.client.Set(ctx, cache.WizardKey(userID), payload, s.ttl); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Delete(ctx, cache.WizardKey(userID)); err != nil {
		return fmt.Errorf("failed to delete wizard state: %w", err)
	}
	return nil
}
