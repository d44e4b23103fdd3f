package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *BotConfig) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord.token is required")
	}
	if c.Discord.ClientID == "" {
		return errors.New("discord.client_id is required")
	}
	if c.Discord.Intents != nil && *c.Discord.Intents < 0 {
		return fmt.Errorf("discord.intents must be >= 0, got %d", *c.Discord.Intents)
	}
	if c.Discord.MaxRetries != nil && *c.Discord.MaxRetries < 0 {
		return fmt.Errorf("discord.max_retries must be >= 0, got %d", *c.Discord.MaxRetries)
	}

	switch c.Gateway.OnFatal {
	case OnFatalReconnect, OnFatalExit:
	default:
		return fmt.Errorf("gateway.on_fatal must be %q or %q, got %q", OnFatalReconnect, OnFatalExit, c.Gateway.OnFatal)
	}
	if c.Gateway.ReconnectBaseDelay > c.Gateway.ReconnectMaxDelay {
		return fmt.Errorf("gateway.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)",
			c.Gateway.ReconnectBaseDelay, c.Gateway.ReconnectMaxDelay)
	}
	if c.Gateway.BufferSize < 1 {
		return errors.New("gateway.buffer_size must be >= 1")
	}

	if c.Dispatch.MaxConcurrent < 1 {
		return errors.New("dispatch.max_concurrent must be >= 1")
	}
	if c.Dispatch.MaxPending < c.Dispatch.MaxConcurrent {
		return fmt.Errorf("dispatch.max_pending (%d) cannot be less than max_concurrent (%d)",
			c.Dispatch.MaxPending, c.Dispatch.MaxConcurrent)
	}

	switch c.Records.Backend {
	case BackendNotion:
		if c.Records.Notion.Token == "" {
			return errors.New("records.notion.token is required")
		}
		if c.Records.Notion.DatabaseID == "" {
			return errors.New("records.notion.database_id is required")
		}
	case BackendPostgres:
		if err := c.Records.Postgres.validate("records.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("records.backend must be %q or %q, got %q", BackendNotion, BackendPostgres, c.Records.Backend)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
