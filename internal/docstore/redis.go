package docstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document as a single JSON value under its key, with a
// companion <key>:version counter checked atomically by a Lua script.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load reads data and version in one MGET so the pair is a consistent
// snapshot; a concurrent Save cannot land between the two reads.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, int64, error) {
	vals, err := s.client.MGet(ctx, key, key+":version").Result()
	if err != nil {
		return nil, 0, &PersistenceError{Op: "redis load", Err: err}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, 0, nil
	}

	var version int64
	if v, ok := vals[1].(string); ok {
		version, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, 0, &PersistenceError{Op: "redis load", Err: err}
		}
	}

	return []byte(raw), version, nil
}

var casSaveScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[2]) or "0")
if current ~= tonumber(ARGV[2]) then
  return -1
end
redis.call("SET", KEYS[1], ARGV[1])
return redis.call("INCR", KEYS[2])
`)

func (s *RedisStore) Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	res, err := casSaveScript.Run(ctx, s.client,
		[]string{key, key + ":version"},
		data, expectedVersion,
	).Int64()
	if err != nil {
		return 0, &PersistenceError{Op: "redis save", Err: err}
	}
	if res < 0 {
		return 0, fmt.Errorf("save %q: %w", key, ErrVersionConflict)
	}
	return res, nil
}
