package utils

import (
	"context"
	"sync"
	"time"
)

var (
	blacklist   = map[string]time.Time{}
	blacklistMu sync.RWMutex
)

func blacklistKey(tokenID string) string {
	return "jwt:blacklist:" + tokenID
}

// BlacklistToken revokes the token with the given jti until its natural expiration.
func BlacklistToken(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, blacklistKey(tokenID), "1", ttl).Err(); err == nil {
			return
		}
		Sugar.Warn("token blacklist write to redis failed, keeping it in memory")
	}
	blacklistMu.Lock()
	blacklist[tokenID] = expiresAt
	blacklistMu.Unlock()
}

// IsTokenBlacklisted checks if the jti was revoked before natural expiration.
func IsTokenBlacklisted(tokenID string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, blacklistKey(tokenID)).Result()
		if err == nil && n > 0 {
			return true
		}
		// fall through: the in-memory list may hold entries written while redis was down
	}
	blacklistMu.RLock()
	expiresAt, ok := blacklist[tokenID]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}

	if time.Now().After(expiresAt) {
		blacklistMu.Lock()
		delete(blacklist, tokenID)
		blacklistMu.Unlock()
		return false
	}
	return true
}
