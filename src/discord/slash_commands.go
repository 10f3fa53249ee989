package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"go.uber.org/zap"
)

const (
	CommandFactCheck = "factcheck"
	optionClaim      = "claim"
)

var minClaimLength = pipeline.MinClaimLength

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandFactCheck: {
		Name:        CommandFactCheck,
		Description: "Check a headline or statement for credibility",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionClaim,
				Description: fmt.Sprintf("The claim to check (%d-%d characters)", pipeline.MinClaimLength, pipeline.MaxClaimLength),
				Required:    true,
				MinLength:   &minClaimLength,
				MaxLength:   pipeline.MaxClaimLength,
			},
		},
	},
}

var defaultCommandOrder = []string{CommandFactCheck}

// RegisterSlashCommands registers the requested slash commands for a guild.
// When no command names are provided, all known commands are registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, logger *zap.Logger, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			logger.Warn("unknown slash command", zap.String("command", name))
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				logger.Info("slash command already registered", zap.String("command", name))
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			logger.Error("failed to register slash command", zap.String("command", name), zap.Error(err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// DeleteSlashCommands removes all registered slash commands for a guild.
func DeleteSlashCommands(s *discordgo.Session, guildID string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to delete slash commands")
	}

	commands, err := s.ApplicationCommands(s.State.User.ID, guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID); err != nil {
			return err
		}
	}

	return nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}

// claimOption pulls the claim text out of a /factcheck interaction.
func claimOption(data discordgo.ApplicationCommandInteractionData) string {
	for _, opt := range data.Options {
		if opt.Name == optionClaim {
			return strings.TrimSpace(opt.StringValue())
		}
	}
	return ""
}
