package config

import (
    "time"

    "github.com/spf13/viper"
)

// RateLimitConfig drives the token bucket in front of booking creation:
// Capacity tokens at most, RefillTokens added every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets are dropped after this
    Prefix         string
}

func setRateLimitDefaults(v *viper.Viper) {
    v.SetDefault("RATE_LIMIT_ENABLED", true)
    v.SetDefault("RATE_LIMIT_CAPACITY", 20)
    v.SetDefault("RATE_LIMIT_REFILL_TOKENS", 1)
    v.SetDefault("RATE_LIMIT_REFILL_INTERVAL", "3s")
    v.SetDefault("RATE_LIMIT_TTL", "10m")
    v.SetDefault("RATE_LIMIT_PREFIX", "rl")
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  RATE_LIMIT_BURST and
// RATE_LIMIT_REFILL_EVERY are accepted as shorthands.
func LoadRateLimitConfig(v *viper.Viper) RateLimitConfig {
    c := RateLimitConfig{
        Enabled:        v.GetBool("RATE_LIMIT_ENABLED"),
        Capacity:       v.GetInt("RATE_LIMIT_CAPACITY"),
        RefillTokens:   v.GetInt("RATE_LIMIT_REFILL_TOKENS"),
        RefillInterval: v.GetDuration("RATE_LIMIT_REFILL_INTERVAL"),
        TTL:            v.GetDuration("RATE_LIMIT_TTL"),
        Prefix:         v.GetString("RATE_LIMIT_PREFIX"),
    }
    if b := v.GetInt("RATE_LIMIT_BURST"); b > 0 {
        c.Capacity = b
    }
    if every := v.GetDuration("RATE_LIMIT_REFILL_EVERY"); every > 0 {
        c.RefillTokens = 1
        c.RefillInterval = every
    }
    return c.Normalized()
}

// Normalized clamps zero or negative values so a hand-built config is
// always usable: at least one token, one refilled per interval, and a TTL
// of no less than five intervals.
func (c RateLimitConfig) Normalized() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    if c.Prefix == "" {
        c.Prefix = "rl"
    }
    return c
}
