package config

import "time"

// BotConfig is the root configuration for a registration bot instance.
type BotConfig struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Records  RecordsConfig  `yaml:"records"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    bool           `yaml:"debug"`
}

// DiscordConfig holds REST and identify settings.
type DiscordConfig struct {
	APIURL       string        `yaml:"api_url"`     // e.g. https://discord.com/api/v10
	ClientID     string        `yaml:"client_id"`   // Application ID used for command registration
	Token        string        `yaml:"token"`       // Bot token (identify + REST "Bot" auth)
	GatewayURL   string        `yaml:"gateway_url"` // Empty = discover via GET /gateway
	Intents      *int          `yaml:"intents"` // nil = default; 0 is a valid bitmask
	CommandsFile string        `yaml:"commands_file"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   *int          `yaml:"max_retries"` // nil = default; 0 disables retries
	OS           string        `yaml:"os"`
	Browser      string        `yaml:"browser"`
	Device       string        `yaml:"device"`
}

// GatewayConfig holds websocket session settings.
type GatewayConfig struct {
	OnFatal            string        `yaml:"on_fatal"` // "reconnect" or "exit"
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	HelloTimeout       time.Duration `yaml:"hello_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// DispatchConfig bounds concurrent event handling.
type DispatchConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxPending    int           `yaml:"max_pending"`
	TaskTimeout   time.Duration `yaml:"task_timeout"`
}

// RecordsConfig selects where member records are written.
type RecordsConfig struct {
	Backend  string       `yaml:"backend"` // "notion" or "postgres"
	Notion   NotionConfig `yaml:"notion"`
	Postgres DBConfig     `yaml:"postgres"`
}

// NotionConfig holds Notion API settings.
type NotionConfig struct {
	APIURL     string        `yaml:"api_url"`
	Token      string        `yaml:"token"`
	DatabaseID string        `yaml:"database_id"`
	Version    string        `yaml:"version"` // Notion-Version header
	Timeout    time.Duration `yaml:"timeout"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds the liveness/metrics endpoint settings.
type MetricsConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Path           string        `yaml:"path"`
	LivenessWindow time.Duration `yaml:"liveness_window"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
