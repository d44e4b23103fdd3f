package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/registration-bot/internal/api"
	"github.com/rickgao/registration-bot/internal/config"
)

func init() {
	commandsCmd.AddCommand(commandsRegisterCmd)
	rootCmd.AddCommand(commandsCmd)
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Manage slash commands",
}

var commandsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the slash commands from the commands file and exit",
	Args:  cobra.NoArgs,
	RunE:  runCommandsRegister,
}

func runCommandsRegister(cmd *cobra.Command, args []string) error {
	// Only the discord section is needed here.
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" || cfg.Discord.ClientID == "" {
		return errors.New("discord.token and discord.client_id are required")
	}

	logger := newLogger(cfg.Logging, cfg.Debug, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return registerCommands(ctx, newAPIClient(cfg, logger), cfg)
}

func newAPIClient(cfg *config.BotConfig, logger *slog.Logger) *api.Client {
	return api.NewClient(
		cfg.Discord.APIURL,
		cfg.Discord.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Discord.Timeout),
		api.WithRetries(*cfg.Discord.MaxRetries, time.Second),
	)
}

func registerCommands(ctx context.Context, client *api.Client, cfg *config.BotConfig) error {
	if err := client.RegisterCommandsFile(ctx, cfg.Discord.ClientID, cfg.Discord.CommandsFile); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}
