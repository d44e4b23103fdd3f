package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoCommands is returned when a commands file defines nothing.
var ErrNoCommands = errors.New("no commands defined")

// LoadCommands reads application command definitions from a YAML file
// with a top-level "commands" list.
func LoadCommands(path string) ([]ApplicationCommand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commands file: %w", err)
	}

	var f CommandsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse commands yaml: %w", err)
	}

	if len(f.Commands) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCommands)
	}
	for i, cmd := range f.Commands {
		if cmd.Name == "" {
			return nil, fmt.Errorf("commands[%d].name is required", i)
		}
	}

	return f.Commands, nil
}

// CreateCommand registers (or overwrites) one global application command.
func (c *Client) CreateCommand(ctx context.Context, applicationID string, cmd ApplicationCommand) (*RegisteredCommand, error) {
	path := "/applications/" + url.PathEscape(applicationID) + "/commands"

	body, err := c.doWithRetry(ctx, http.MethodPost, path, cmd)
	if err != nil {
		return nil, fmt.Errorf("register command %q: %w", cmd.Name, err)
	}

	var resp RegisteredCommand
	if len(body) > 0 {
		if err := decode(body, &resp); err != nil {
			return nil, err
		}
	}

	c.logger.Info("registered command",
		"name", cmd.Name,
		"id", resp.ID,
	)
	return &resp, nil
}

// RegisterCommands registers every command in order, stopping at the
// first failure.
func (c *Client) RegisterCommands(ctx context.Context, applicationID string, cmds []ApplicationCommand) error {
	for _, cmd := range cmds {
		if _, err := c.CreateCommand(ctx, applicationID, cmd); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCommandsFile loads path and registers its commands.
func (c *Client) RegisterCommandsFile(ctx context.Context, applicationID, path string) error {
	cmds, err := LoadCommands(path)
	if err != nil {
		return err
	}
	return c.RegisterCommands(ctx, applicationID, cmds)
}
