package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached opens a client for the read-through record cache. The
// client is lazy; a dead server surfaces on first use, not here.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
