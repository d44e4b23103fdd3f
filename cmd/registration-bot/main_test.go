package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/registration-bot/internal/api"
	"github.com/rickgao/registration-bot/internal/config"
	"github.com/rickgao/registration-bot/internal/notion"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		debug     bool
		wantDebug bool
		wantJSON  bool
	}{
		{"info text", config.LoggingConfig{Level: "info", Format: "text"}, false, false, false},
		{"debug level", config.LoggingConfig{Level: "debug", Format: "text"}, false, true, false},
		{"debug flag overrides", config.LoggingConfig{Level: "error", Format: "text"}, true, true, false},
		{"json", config.LoggingConfig{Level: "INFO", Format: "json"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tt.cfg, tt.debug, &buf)

			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug), "debug enabled")

			logger.Error("hello")
			out := buf.String()
			assert.Equal(t, tt.wantJSON, json.Valid([]byte(strings.TrimSpace(out))), "json output: %q", out)
		})
	}
}

func TestSupervisorConfig(t *testing.T) {
	intents := 513
	cfg := &config.BotConfig{
		Discord: config.DiscordConfig{
			Token:   "tok",
			Intents: &intents,
			OS:      "linux",
			Browser: "registration-bot",
			Device:  "registration-bot",
		},
		Gateway: config.GatewayConfig{
			OnFatal:            config.OnFatalExit,
			ReconnectBaseDelay: time.Second,
			ReconnectMaxDelay:  time.Minute,
			HandshakeTimeout:   10 * time.Second,
			WriteTimeout:       5 * time.Second,
			BufferSize:         64,
			HelloTimeout:       15 * time.Second,
		},
		Debug: true,
	}

	sc := supervisorConfig(cfg, "wss://gateway.example/?v=10&encoding=json")

	assert.Equal(t, "wss://gateway.example/?v=10&encoding=json", sc.Connection.Client.URL)
	assert.Equal(t, 64, sc.Connection.Client.BufferSize)
	assert.Equal(t, "tok", sc.Connection.Identify.Token)
	assert.Equal(t, 513, sc.Connection.Identify.Intents)
	assert.Equal(t, "linux", sc.Connection.Identify.Properties.OS)
	assert.Equal(t, 15*time.Second, sc.Connection.HelloTimeout)
	assert.True(t, sc.Connection.Debug, "Debug should be carried over")
	assert.True(t, sc.ExitOnFatal, "on_fatal=exit should set ExitOnFatal")
	assert.Equal(t, time.Second, sc.ReconnectBaseWait)
	assert.Equal(t, time.Minute, sc.ReconnectMaxWait)

	cfg.Gateway.OnFatal = config.OnFatalReconnect
	assert.False(t, supervisorConfig(cfg, "").ExitOnFatal, "on_fatal=reconnect should not set ExitOnFatal")

	zero := 0
	cfg.Discord.Intents = &zero
	assert.Zero(t, supervisorConfig(cfg, "").Connection.Identify.Intents, "explicit zero intents are sent as-is")
}

func TestNewStore_Notion(t *testing.T) {
	cfg := &config.BotConfig{
		Records: config.RecordsConfig{
			Backend: config.BackendNotion,
			Notion: config.NotionConfig{
				APIURL:     "https://api.notion.com/v1",
				Token:      "secret",
				DatabaseID: "db",
				Version:    "2022-06-28",
				Timeout:    time.Second,
			},
		},
	}

	store, closeStore, err := newStore(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer closeStore()

	assert.IsType(t, &notion.Client{}, store)
}

func TestNewStore_PostgresUnreachable(t *testing.T) {
	cfg := &config.BotConfig{
		Records: config.RecordsConfig{
			Backend: config.BackendPostgres,
			Postgres: config.DBConfig{
				Host:     "127.0.0.1",
				Port:     1,
				Name:     "members",
				User:     "bot",
				Password: "secret",
				SSLMode:  "disable",
				MaxConns: 1,
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := newStore(ctx, cfg, slog.Default())
	assert.Error(t, err, "expected connection error")
}

func TestExampleConfigLoads(t *testing.T) {
	t.Setenv("BOTTOK", "bot-token")
	t.Setenv("CLIENT_ID", "12345")
	t.Setenv("NOTION_API", "notion-secret")
	t.Setenv("NOTION_DATABASE", "db-id")

	path := filepath.Join("..", "..", "configs", "registration-bot.example.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("example config not found: %v", err)
	}

	cfg, err := config.LoadAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, "bot-token", cfg.Discord.Token)
	assert.Equal(t, "db-id", cfg.Records.Notion.DatabaseID)
}

func TestCommandsFileLoads(t *testing.T) {
	path := filepath.Join("..", "..", "configs", "commands.yml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("commands file not found: %v", err)
	}
	cmds, err := api.LoadCommands(path)
	require.NoError(t, err)
	require.NotEmpty(t, cmds)
	assert.Equal(t, "register", cmds[0].Name)
}
