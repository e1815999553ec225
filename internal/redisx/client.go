package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// New returns a client with per-command read/write bounds. Watcher calls run
// under the long-lived consumer context, so the bound has to live here.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
