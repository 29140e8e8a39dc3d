package redis

import "strings"

// Every key lives under grv:<area>:... so one Redis can be shared with
// other services.
const (
	keyNamespace      = "grv"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	cachePrefix       = "cache"
	sessionPrefix     = "session"
	maintenancePrefix = "maintenance"
)

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

// CacheKey names a cached read model such as the location list.
func (c *Client) CacheKey(name string) string {
	return buildKey(cachePrefix, name)
}

// AccessSessionKey holds the refresh session bound to an access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(sessionPrefix, "access", accessID)
}

// MaintenanceLockKey is the per-environment lock taken by the maintenance
// worker, so staging and production sharing a Redis do not block each other.
func (c *Client) MaintenanceLockKey(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		env = "local"
	}
	return buildKey(maintenancePrefix, "lock", env)
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
