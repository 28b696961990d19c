package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitClass holds the fixed-window policy for one group of endpoints.
// Max is the number of requests a single client may make inside one window.
type RateLimitClass struct {
	Max    int
	Window time.Duration
}

// RateLimitConfig carries the policies for the two endpoint classes.  The
// authentication class (register/login) is deliberately much tighter than
// the general class covering everything else.
type RateLimitConfig struct {
	Enabled bool
	Auth    RateLimitClass
	General RateLimitClass
}

// LoadRateLimitConfig reads rate-limit settings from the environment and
// applies defaults: 10 auth requests and 100 general requests per aligned
// 15-minute window.  Values below 1 are corrected to keep the limiter sane.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Auth: RateLimitClass{
			Max:    envInt("RATE_LIMIT_AUTH_MAX", 10),
			Window: envDur("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		},
		General: RateLimitClass{
			Max:    envInt("RATE_LIMIT_GENERAL_MAX", 100),
			Window: envDur("RATE_LIMIT_GENERAL_WINDOW", 15*time.Minute),
		},
	}
	if cfg.Auth.Max < 1 { cfg.Auth.Max = 1 }
	if cfg.General.Max < 1 { cfg.General.Max = 1 }
	if cfg.Auth.Window <= 0 { cfg.Auth.Window = 15 * time.Minute }
	if cfg.General.Window <= 0 { cfg.General.Window = 15 * time.Minute }
	return cfg
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" { return d }
	switch v {
	case "1","true","TRUE","True","yes","YES","on","ON": return true
	case "0","false","FALSE","False","no","NO","off","OFF": return false
	}
	return d
}
func envInt(k string, d int) int {
	v := os.Getenv(k); if v == "" { return d }
	if n, err := strconv.Atoi(v); err == nil { return n }
	return d
}
func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k); if v == "" { return d }
	if dur, err := time.ParseDuration(v); err == nil { return dur }
	return d
}
