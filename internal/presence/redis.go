package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// removeScript: для каждого пользователя из множества соединения удаляем user->conn,
// только если запись всё ещё указывает на это соединение.
var removeScript = redis.NewScript(`
local users = redis.call("SMEMBERS", KEYS[2])
redis.call("DEL", KEYS[2])
local n = 0
for _, user in ipairs(users) do
	if redis.call("HGET", KEYS[1], user) == ARGV[1] then
		redis.call("HDEL", KEYS[1], user)
		n = n + 1
	end
end
return n
`)

// lookupScript: запись без живого ключа соединения (процесс упал, TTL истёк) вычищается.
var lookupScript = redis.NewScript(`
local conn = redis.call("HGET", KEYS[1], ARGV[1])
if not conn then
	return false
end
if redis.call("SISMEMBER", ARGV[2] .. conn, ARGV[1]) == 1 then
	return conn
end
redis.call("HDEL", KEYS[1], ARGV[1])
return false
`)

var onlineScript = redis.NewScript(`
local all = redis.call("HGETALL", KEYS[1])
for i = 1, #all, 2 do
	if redis.call("SISMEMBER", ARGV[1] .. all[i + 1], all[i]) == 0 then
		redis.call("HDEL", KEYS[1], all[i])
	end
end
return redis.call("HLEN", KEYS[1])
`)

// DefaultTTL: время жизни ключа соединения без Touch.
const DefaultTTL = time.Minute

// Redis хранит presence в хэше <prefix>:users (user -> conn) и множествах
// <prefix>:conn:<connID> (пользователи, зарегистрированные на соединении).
// Ключи соединений живут ttl и продлеваются через Touch, записи без живого
// ключа считаются офлайн.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "presence"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis: клиент по URL с проверкой Ping.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *Redis) usersKey() string             { return r.prefix + ":users" }
func (r *Redis) connPrefix() string           { return r.prefix + ":conn:" }
func (r *Redis) connKey(connID string) string { return r.connPrefix() + connID }

func (r *Redis) Register(ctx context.Context, userID, connID string) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.usersKey(), userID, connID)
	pipe.SAdd(ctx, r.connKey(connID), userID)
	pipe.Expire(ctx, r.connKey(connID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("presence register: %w", err)
	}
	return nil
}

// Touch продлевает ключ соединения; для незарегистрированного соединения ничего не делает.
func (r *Redis) Touch(ctx context.Context, connID string) error {
	if err := r.client.Expire(ctx, r.connKey(connID), r.ttl).Err(); err != nil {
		return fmt.Errorf("presence touch: %w", err)
	}
	return nil
}

func (r *Redis) Lookup(ctx context.Context, userID string) (string, bool, error) {
	connID, err := lookupScript.Run(ctx, r.client, []string{r.usersKey()}, userID, r.connPrefix()).Text()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("presence lookup: %w", err)
	}
	return connID, true, nil
}

func (r *Redis) Remove(ctx context.Context, connID string) error {
	keys := []string{r.usersKey(), r.connKey(connID)}
	if err := removeScript.Run(ctx, r.client, keys, connID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

func (r *Redis) Online(ctx context.Context) (int, error) {
	n, err := onlineScript.Run(ctx, r.client, []string{r.usersKey()}, r.connPrefix()).Int()
	if err != nil {
		return 0, fmt.Errorf("presence online: %w", err)
	}
	return n, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
