package vault

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "camstream:credentials:"

// RedisProvider stores credentials in Redis as a hash per key. Entries
// carry an optional TTL so stale credentials age out of the store.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProvider(addr string, db int, ttl time.Duration) (CredentialVault, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "Can't reach Redis on '%s'", addr)
	}
	return &RedisProvider{client: client, ttl: ttl}, nil
}

func (v *RedisProvider) Type() VaultType {
	return VAULT_REDIS
}

func (v *RedisProvider) Store(ctx context.Context, key string, creds Credentials) error {
	full := redisKeyPrefix + key
	err := v.client.HSet(ctx, full, "username", creds.Username, "password", creds.Password).Err()
	if err != nil {
		return errors.Wrapf(err, "Can't store credentials for key '%s'", key)
	}
	if v.ttl > 0 {
		if err := v.client.Expire(ctx, full, v.ttl).Err(); err != nil {
			return errors.Wrapf(err, "Can't set TTL for key '%s'", key)
		}
	}
	return nil
}

func (v *RedisProvider) Retrieve(ctx context.Context, key string) (Credentials, error) {
	fields, err := v.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "Can't retrieve credentials for key '%s'", key)
	}
	if len(fields) == 0 {
		return Credentials{}, ErrCredentialsNotFound
	}
	return Credentials{Username: fields["username"], Password: fields["password"]}, nil
}

func (v *RedisProvider) Clear(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "Can't clear credentials for key '%s'", key)
	}
	return nil
}
