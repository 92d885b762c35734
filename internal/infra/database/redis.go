package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis opens a client from a redis:// connection URL.
func NewRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
