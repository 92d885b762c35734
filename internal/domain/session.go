package domain

import (
	"time"

	"github.com/micromatch/micromatch"
)

// Session is the current-user snapshot held by a calling context. It is
// a point-in-time copy of the stored Record; Stale marks a copy served
// from cache because the store could not be reached.
type Session struct {
	Record   micromatch.Record
	CachedAt time.Time
	Stale    bool
}
