package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the remoteminer_engine_* Prometheus series. The
// HTTP endpoint is only served while the planner runs.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Host    string `mapstructure:"host"`
	Path    string `mapstructure:"path"`
}

// Address is the host:port the metrics endpoint listens on
func (c MetricsConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
