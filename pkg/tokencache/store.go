package tokencache

import (
	"context"
	"time"
)

// Entry is a cached bearer token and the instant it stops being valid.
type Entry struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store is the key-value persistence behind a Cache. A Get that cannot read its
// backing data reports a miss; the Cache then fetches a fresh token and overwrites.
// Concurrent writers are not coordinated, the last Put wins.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Put(ctx context.Context, key string, e Entry) error
}
