package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
)

const (
	tokenKeyPrefix   = "token:"
	accessKeyPrefix  = "at:"
	refreshKeyPrefix = "rt:"
)

// RedisTokenStore keeps token records in Redis and delegates expiry to key
// TTLs. The record lives under token:<id>; at:<value> and rt:<value> are
// lookup keys pointing back at the record id, written with SETNX so
// identifier collisions surface as ErrDuplicateToken.
type RedisTokenStore struct {
	client    *redis.Client
	keepAlive time.Duration
}

func NewRedisTokenStore(client *redis.Client, keepAlive time.Duration) *RedisTokenStore {
	return &RedisTokenStore{
		client:    client,
		keepAlive: keepAlive,
	}
}

type tokenRecord struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Scope        string    `json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *RedisTokenStore) Insert(ctx context.Context, token authdomain.Token) error {
	payload, err := json.Marshal(tokenRecord(token))
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	ok, err := s.client.SetNX(ctx, accessKeyPrefix+token.AccessToken, token.ID, s.keepAlive).Result()
	if err != nil {
		return fmt.Errorf("failed to insert access key: %w", err)
	}
	if !ok {
		return ErrDuplicateToken
	}

	ok, err = s.client.SetNX(ctx, refreshKeyPrefix+token.RefreshToken, token.ID, s.keepAlive).Result()
	if err != nil {
		return fmt.Errorf("failed to insert refresh key: %w", err)
	}
	if !ok {
		_ = s.client.Del(ctx, accessKeyPrefix+token.AccessToken).Err()
		return ErrDuplicateToken
	}

	if err := s.client.Set(ctx, tokenKeyPrefix+token.ID, payload, s.keepAlive).Err(); err != nil {
		return fmt.Errorf("failed to insert token record: %w", err)
	}

	return nil
}

func (s *RedisTokenStore) FindByAccessToken(ctx context.Context, value string) (authdomain.Token, error) {
	return s.findBy(ctx, accessKeyPrefix+value)
}

func (s *RedisTokenStore) FindByRefreshToken(ctx context.Context, value string) (authdomain.Token, error) {
	return s.findBy(ctx, refreshKeyPrefix+value)
}

func (s *RedisTokenStore) findBy(ctx context.Context, lookupKey string) (authdomain.Token, error) {
	id, err := s.client.Get(ctx, lookupKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authdomain.Token{}, ErrTokenNotFound
		}
		return authdomain.Token{}, fmt.Errorf("failed to resolve token key: %w", err)
	}

	return s.load(ctx, id)
}

func (s *RedisTokenStore) load(ctx context.Context, id string) (authdomain.Token, error) {
	payload, err := s.client.Get(ctx, tokenKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Lookup key outlived the record by a hair; treat as expired.
			return authdomain.Token{}, ErrTokenNotFound
		}
		return authdomain.Token{}, fmt.Errorf("failed to load token record: %w", err)
	}

	var record tokenRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return authdomain.Token{}, fmt.Errorf("failed to unmarshal token record: %w", err)
	}

	return authdomain.Token(record), nil
}

func (s *RedisTokenStore) Update(ctx context.Context, token authdomain.Token) error {
	old, err := s.load(ctx, token.ID)
	if err == nil {
		_ = s.client.Del(ctx, accessKeyPrefix+old.AccessToken, refreshKeyPrefix+old.RefreshToken).Err()
	} else if !errors.Is(err, ErrTokenNotFound) {
		return err
	}

	payload, err := json.Marshal(tokenRecord(token))
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	if err := s.client.Set(ctx, accessKeyPrefix+token.AccessToken, token.ID, s.keepAlive).Err(); err != nil {
		return fmt.Errorf("failed to update access key: %w", err)
	}
	if err := s.client.Set(ctx, refreshKeyPrefix+token.RefreshToken, token.ID, s.keepAlive).Err(); err != nil {
		return fmt.Errorf("failed to update refresh key: %w", err)
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token.ID, payload, s.keepAlive).Err(); err != nil {
		return fmt.Errorf("failed to update token record: %w", err)
	}

	return nil
}

// DeleteExpired is satisfied by Redis key TTLs; there is nothing to sweep.
func (s *RedisTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
