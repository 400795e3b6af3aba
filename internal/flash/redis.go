package flash

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisCookieName = "flash_id"
	redisKeyPrefix  = "lazytodo:flash:"
	defaultRedisTTL = 10 * time.Minute
)

// RedisStore keeps pending messages server-side, keyed by an opaque id cookie.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

func NewRedisStore(client *redis.Client, ttl time.Duration, secure bool) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl, secure: secure}
}

func (s *RedisStore) Add(w http.ResponseWriter, r *http.Request, msg Message) error {
	id := s.sessionID(r)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     redisCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := redisKeyPrefix + id
	ctx := r.Context()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

func (s *RedisStore) Pop(_ http.ResponseWriter, r *http.Request) ([]Message, error) {
	id := s.sessionID(r)
	if id == "" {
		return nil, nil
	}

	key := redisKeyPrefix + id
	ctx := r.Context()
	var entries *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flash: %w", err)
	}

	messages := make([]Message, 0, len(entries.Val()))
	for _, entry := range entries.Val() {
		var msg Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(redisCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}
