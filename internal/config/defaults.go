package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPIURL             = "https://discord.com/api/v10"
	DefaultIntents            = 513 // GUILDS | GUILD_MESSAGES
	DefaultCommandsFile       = "commands.yml"
	DefaultAPITimeout         = 10 * time.Second
	DefaultMaxRetries         = 3
	DefaultIdentifyOS         = "linux"
	DefaultIdentifyBrowser    = "registration-bot"
	DefaultIdentifyDevice     = "registration-bot"
	DefaultOnFatal            = OnFatalReconnect
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultHelloTimeout       = 20 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 256
	DefaultMaxConcurrent      = 32
	DefaultMaxPending         = 1024
	DefaultTaskTimeout        = 30 * time.Second
	DefaultRecordsBackend     = BackendNotion
	DefaultNotionURL          = "https://api.notion.com/v1"
	DefaultNotionVersion      = "2022-06-28"
	DefaultNotionTimeout      = 10 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultMetricsHost        = "localhost"
	DefaultMetricsPort        = 8080
	DefaultMetricsPath        = "/metrics"
	DefaultLivenessWindow     = 120 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// Accepted values for enumerated fields.
const (
	OnFatalReconnect = "reconnect"
	OnFatalExit      = "exit"

	BackendNotion   = "notion"
	BackendPostgres = "postgres"
)

func (c *BotConfig) applyDefaults() {
	// Discord defaults
	if c.Discord.APIURL == "" {
		c.Discord.APIURL = DefaultAPIURL
	}
	if c.Discord.Intents == nil {
		c.Discord.Intents = intPtr(DefaultIntents)
	}
	if c.Discord.CommandsFile == "" {
		c.Discord.CommandsFile = DefaultCommandsFile
	}
	if c.Discord.Timeout == 0 {
		c.Discord.Timeout = DefaultAPITimeout
	}
	if c.Discord.MaxRetries == nil {
		c.Discord.MaxRetries = intPtr(DefaultMaxRetries)
	}
	if c.Discord.OS == "" {
		c.Discord.OS = DefaultIdentifyOS
	}
	if c.Discord.Browser == "" {
		c.Discord.Browser = DefaultIdentifyBrowser
	}
	if c.Discord.Device == "" {
		c.Discord.Device = DefaultIdentifyDevice
	}

	// Gateway defaults
	if c.Gateway.OnFatal == "" {
		c.Gateway.OnFatal = DefaultOnFatal
	}
	if c.Gateway.ReconnectBaseDelay == 0 {
		c.Gateway.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Gateway.ReconnectMaxDelay == 0 {
		c.Gateway.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Gateway.HandshakeTimeout == 0 {
		c.Gateway.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Gateway.HelloTimeout == 0 {
		c.Gateway.HelloTimeout = DefaultHelloTimeout
	}
	if c.Gateway.WriteTimeout == 0 {
		c.Gateway.WriteTimeout = DefaultWriteTimeout
	}
	if c.Gateway.BufferSize == 0 {
		c.Gateway.BufferSize = DefaultBufferSize
	}

	// Dispatch defaults
	if c.Dispatch.MaxConcurrent == 0 {
		c.Dispatch.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Dispatch.MaxPending == 0 {
		c.Dispatch.MaxPending = DefaultMaxPending
	}
	if c.Dispatch.TaskTimeout == 0 {
		c.Dispatch.TaskTimeout = DefaultTaskTimeout
	}

	// Records defaults
	if c.Records.Backend == "" {
		c.Records.Backend = DefaultRecordsBackend
	}
	if c.Records.Notion.APIURL == "" {
		c.Records.Notion.APIURL = DefaultNotionURL
	}
	if c.Records.Notion.Version == "" {
		c.Records.Notion.Version = DefaultNotionVersion
	}
	if c.Records.Notion.Timeout == 0 {
		c.Records.Notion.Timeout = DefaultNotionTimeout
	}
	applyDBDefaults(&c.Records.Postgres)

	// Metrics defaults
	if c.Metrics.Host == "" {
		c.Metrics.Host = DefaultMetricsHost
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.LivenessWindow == 0 {
		c.Metrics.LivenessWindow = DefaultLivenessWindow
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

func intPtr(v int) *int {
	return &v
}
