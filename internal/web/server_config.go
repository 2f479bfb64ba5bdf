package web

import (
	"net"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

const (
	EnvListenAddr = "MIRROR_DEBUG_LISTEN"
	EnvDevMode    = "MIRROR_DEV"
)

// ServerConfig contains settings for running the debug HTTP server.
// An empty ListenAddr means no server.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

// ServerConfigFromEnv starts from listenAddr (usually debug_listen from the
// config file) and lets the environment override it. "off" in
// MIRROR_DEBUG_LISTEN disables a configured server.
func ServerConfigFromEnv(listenAddr string) (ServerConfig, error) {
	if env, ok := os.LookupEnv(EnvListenAddr); ok && env != "" {
		listenAddr = env
	}
	if strings.EqualFold(listenAddr, "off") {
		listenAddr = ""
	}
	if listenAddr != "" {
		if _, _, err := net.SplitHostPort(listenAddr); err != nil {
			return ServerConfig{}, zerr.With(zerr.Wrap(err, "invalid debug listen address"), "addr", listenAddr)
		}
	}

	cfg := ServerConfig{ListenAddr: listenAddr}
	if raw := os.Getenv(EnvDevMode); raw != "" {
		dev, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, zerr.With(zerr.Wrap(err, EnvDevMode+" must be a boolean"), "value", raw)
		}
		cfg.DevMode = dev
	}
	return cfg, nil
}
