package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/peoplehq/users-api/internal/api/metrics"
	"github.com/peoplehq/users-api/internal/core/domain"
	"github.com/peoplehq/users-api/internal/core/ports"
)

const defaultCacheTTL = 5 * time.Minute

// UserCache is a read-through cache for FindByID, decorating the real
// repository. Writes invalidate; every other operation passes through
// untouched so uniqueness checks and login reads always see the store.
// A broken Redis degrades to pass-through, never to an error.
type UserCache struct {
	client *redis.Client
	next   ports.UserRepository
	ttl    time.Duration
	logger zerolog.Logger
}

func NewUserCache(client *redis.Client, next ports.UserRepository, ttl time.Duration, logger zerolog.Logger) *UserCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &UserCache{client: client, next: next, ttl: ttl, logger: logger}
}

// cachedUser carries the credential explicitly because domain.User keeps
// it out of JSON. Dropping it here would make a cached read feed a merge
// that silently wipes the stored password.
type cachedUser struct {
	User         domain.User `json:"user"`
	PasswordHash string      `json:"password_hash,omitempty"`
	PasswordSalt string      `json:"password_salt,omitempty"`
}

func (c *UserCache) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if user := c.get(ctx, id); user != nil {
		metrics.UserCacheTotal.WithLabelValues("hit").Inc()
		return user, nil
	}
	metrics.UserCacheTotal.WithLabelValues("miss").Inc()

	user, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, user)
	return user, nil
}

func (c *UserCache) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.next.Create(ctx, user)
}

func (c *UserCache) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return c.next.FindByEmail(ctx, email)
}

func (c *UserCache) FindAll(ctx context.Context) ([]domain.User, error) {
	return c.next.FindAll(ctx)
}

func (c *UserCache) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	return c.next.EmailInUse(ctx, email, excludeID)
}

func (c *UserCache) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated, err := c.next.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, updated.ID)
	return updated, nil
}

func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *UserCache) get(ctx context.Context, id string) *domain.User {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("user_id", id).Msg("user cache read failed")
		}
		return nil
	}

	var entry cachedUser
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Debug().Err(err).Str("user_id", id).Msg("user cache entry corrupt")
		return nil
	}
	if entry.PasswordHash != "" || entry.PasswordSalt != "" {
		entry.User.Credential = &domain.Credential{
			PasswordHash: entry.PasswordHash,
			PasswordSalt: entry.PasswordSalt,
		}
	}
	return &entry.User
}

func (c *UserCache) set(ctx context.Context, user *domain.User) {
	entry := cachedUser{User: *user}
	if user.Credential != nil {
		entry.PasswordHash = user.Credential.PasswordHash
		entry.PasswordSalt = user.Credential.PasswordSalt
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(user.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("user_id", user.ID).Msg("user cache write failed")
	}
}

func (c *UserCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Debug().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}

func cacheKey(id string) string {
	return "users:agg:" + id
}
