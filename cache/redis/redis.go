package redis

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okulov/cipherpost/cache"
)

type RedisInboxCache struct {
	client redis.UniversalClient
}

func NewRedisInboxCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisInboxCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// Managed redis endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisInboxCache{client: client}, nil
}

func (redisCache *RedisInboxCache) Publish(ctx context.Context, channel string, message []byte) error {
	return redisCache.client.Publish(ctx, channel, message).Err()
}

func (redisCache *RedisInboxCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := redisCache.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Printf("Pubsub channel closed: %s", channel)
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}

// Hash tags keep an inbox's keys in one slot under redis cluster.
func buildInboxKey(username string) string {
	return "inbox:{" + username + "}"
}

const cacheTTL = 5 * time.Minute

// An inbox is cached as a hash holding the raw blob and the revision token it
// was fetched at, so a cached read can still seed a later conditional write.
func (redisCache *RedisInboxCache) GetInbox(ctx context.Context, username string) (*cache.InboxEntry, error) {
	key := buildInboxKey(username)
	fields, err := redisCache.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	redisCache.client.Expire(ctx, key, cacheTTL)

	return &cache.InboxEntry{
		Content:  []byte(fields["content"]),
		Revision: fields["revision"],
	}, nil
}

func (redisCache *RedisInboxCache) SetInbox(ctx context.Context, username string, entry cache.InboxEntry) error {
	key := buildInboxKey(username)

	pipe := redisCache.client.Pipeline()
	pipe.HSet(ctx, key, "content", entry.Content, "revision", entry.Revision)
	pipe.Expire(ctx, key, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisInboxCache) InvalidateInbox(ctx context.Context, username string) error {
	return redisCache.client.Del(ctx, buildInboxKey(username)).Err()
}
