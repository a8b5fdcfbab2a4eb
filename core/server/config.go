package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required for mutating and admin routes.
	ApiKey string `mapstructure:"api_key" default:""`
	// Prefix is the path every feature is mounted under.
	Prefix string `mapstructure:"prefix" default:"/api"`
	// BodyLimitMB caps request bodies.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"8"`
	// Metrics exposes the Prometheus endpoint at /metrics.
	Metrics bool `mapstructure:"metrics" default:"true"`
}

// AdminPath is the path of the admin routes below Prefix.
func (c Config) AdminPath() string {
	return c.BasePath() + "/admin"
}

// BasePath returns Prefix normalized to a leading slash without a
// trailing one.
func (c Config) BasePath() string {
	p := strings.TrimRight(c.Prefix, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
