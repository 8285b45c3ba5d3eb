package redisrepo

import (
	"context"
	"time"

	"github.com/blindmatch/backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// incrWithExpiry increments the window counter and stamps the expiry only on
// the first increment, in a single server-side step. Keeping both operations
// in one script is what makes the fixed window race-free under concurrent
// inbound messages from the same sender.
var incrWithExpiry = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type counterStore struct {
	client *redis.Client
}

func NewCounterStore(client *redis.Client) repository.CounterStore {
	return &counterStore{client: client}
}

func (s *counterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return incrWithExpiry.Run(ctx, s.client, []string{key}, seconds).Int64()
}
