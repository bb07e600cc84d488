package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix = "profile:%d"
)

const (
	ProfileTTL = 10 * time.Minute
)

// ProfileKey is the cache key of a profile's stored record.
func ProfileKey(profileID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

// Invalidate removes key, ignoring errors.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// StoreProfile writes the record of a profile read at version.
func StoreProfile(ctx context.Context, profileID uint, record any, version int64) error {
	return SetJSONIfNewer(ctx, ProfileKey(profileID), record, version, ProfileTTL)
}

// InvalidateProfile drops the cached record of a profile.
func InvalidateProfile(ctx context.Context, profileID uint) {
	Invalidate(ctx, ProfileKey(profileID))
}
