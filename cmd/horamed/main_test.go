package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/pkg/logger"
	"github.com/rs/zerolog"
)

func TestConfigureLoggingFollowsServerMode(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	cfg := &config.Config{Server: config.ServerConfig{Mode: "release", LogLevel: "info"}}
	configureLogging(cfg, &buf)
	logger.Log.Info().Msg("schema up to date")

	if out := strings.TrimSpace(buf.String()); !strings.HasPrefix(out, "{") {
		t.Fatalf("release mode CLI logs should be JSON, got %q", out)
	}
}
