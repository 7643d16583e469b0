package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ircord/pkg/bridge"
	"ircord/pkg/channel/discord"
	"ircord/pkg/channel/irc"
	"ircord/pkg/config"
	"ircord/pkg/logger"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Discord/IRC bridge",
	Long:  "Connects to Discord and IRC and relays messages between the mapped channels until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.run")

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("Starting bridge", "discord_to_irc", len(cfg.Mapping.DiscordToIRC), "irc_to_discord", len(cfg.Mapping.IRCToDiscord))

		discordConn, err := discord.Dial(cfg.Discord, appLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to discord: %w", err)
		}

		ircConn, err := irc.Dial(cfg.IRC, cfg.IRCChannels(), appLogger)
		if err != nil {
			_ = discordConn.Close()
			return fmt.Errorf("failed to connect to irc: %w", err)
		}

		b, err := bridge.New(cfg, discordConn, ircConn, appLogger)
		if err != nil {
			_ = discordConn.Close()
			_ = ircConn.Close()
			return fmt.Errorf("failed to initialize bridge: %w", err)
		}

		log.Info("Bridge started")
		if err := b.Run(runCtx); err != nil {
			return fmt.Errorf("bridge stopped: %w", err)
		}

		log.Info("Bridge stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
