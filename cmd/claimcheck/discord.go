package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stake-plus/claimcheck/src/discord"
)

var discordCmd = &cobra.Command{
	Use:   "discord",
	Short: "Run the /factcheck Discord bot",
	Long: `Connect to Discord with DISCORD_TOKEN and register the /factcheck slash
command. With GUILD_ID set the command is registered on that guild only,
which makes it available immediately; otherwise it is registered globally.`,
	Args: cobra.NoArgs,
	RunE: runDiscord,
}

func runDiscord(cmd *cobra.Command, args []string) error {
	runner, cfg, err := buildRunner()
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" {
		return errors.New("DISCORD_TOKEN is required for the discord command")
	}

	bot, err := discord.New(cfg.Discord.Token, cfg.Discord.GuildID, runner, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("discord bot starting", zap.String("guild_id", cfg.Discord.GuildID))
	return bot.Run(ctx)
}
