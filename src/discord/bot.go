package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stake-plus/claimcheck/src/logging"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/render"
	"go.uber.org/zap"
)

// Checker runs one submission; *pipeline.Runner satisfies it.
type Checker interface {
	Run(ctx context.Context, claim string, observe pipeline.Observer) pipeline.Outcome
}

// responder is the slice of the Discord API the command handler needs.
type responder interface {
	Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Edit(i *discordgo.Interaction, edit *discordgo.WebhookEdit) error
}

type sessionResponder struct {
	s *discordgo.Session
}

func (r sessionResponder) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return r.s.InteractionRespond(i, resp)
}

func (r sessionResponder) Edit(i *discordgo.Interaction, edit *discordgo.WebhookEdit) error {
	_, err := r.s.InteractionResponseEdit(i, edit)
	return err
}

// runTimeout bounds one /factcheck run end to end.
const runTimeout = 3 * time.Minute

type Bot struct {
	session *discordgo.Session
	guildID string
	handler *commandHandler
	logger  *zap.Logger
}

func New(token, guildID string, checker Checker, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	logger = logging.OrNop(logger)
	b := &Bot{
		session: session,
		guildID: guildID,
		handler: newCommandHandler(checker, sessionResponder{s: session}, logger),
		logger:  logger,
	}
	b.initHandlers()
	return b, nil
}

func (b *Bot) initHandlers() {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("discord bot logged in", zap.String("user", s.State.User.Username))
	})
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handler.handle(i.Interaction)
	})
}

// Run connects, registers /factcheck and serves until ctx is cancelled.
// In-flight checks finish before the session closes.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	if err := RegisterSlashCommands(b.session, b.guildID, b.logger); err != nil {
		b.session.Close()
		return err
	}

	<-ctx.Done()
	b.handler.stop()
	return b.session.Close()
}

type commandHandler struct {
	checker Checker
	resp    responder
	logger  *zap.Logger
	wg      sync.WaitGroup

	// mu guards stopping and every wg.Add, so no run starts once stop begins waiting.
	mu       sync.Mutex
	stopping bool
}

func newCommandHandler(checker Checker, resp responder, logger *zap.Logger) *commandHandler {
	return &commandHandler{checker: checker, resp: resp, logger: logger}
}

func (h *commandHandler) wait() { h.wg.Wait() }

// stop refuses new checks and waits for the ones in flight.
func (h *commandHandler) stop() {
	h.mu.Lock()
	h.stopping = true
	h.mu.Unlock()
	h.wg.Wait()
}

// begin reserves a slot for a background run; false once stop has been called.
func (h *commandHandler) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopping {
		return false
	}
	h.wg.Add(1)
	return true
}

// handle acknowledges a /factcheck interaction and runs the check in the
// background, editing the deferred reply as the run progresses.
func (h *commandHandler) handle(i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != CommandFactCheck {
		return
	}
	claim := claimOption(data)

	if _, err := pipeline.ValidateClaim(claim); err != nil {
		h.reply(i, (&pipeline.StageError{Stage: pipeline.StageInput, Err: err}).UserMessage())
		return
	}

	if !h.begin() {
		h.reply(i, "The fact checker is shutting down. Please try again shortly.")
		return
	}

	if err := h.resp.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		h.logger.Warn("factcheck: slash ack failed", zap.Error(err))
		h.wg.Done()
		return
	}

	go func() {
		defer h.wg.Done()
		h.run(i, claim)
	}()
}

// reply sends an ephemeral message in place of a check.
func (h *commandHandler) reply(i *discordgo.Interaction, msg string) {
	if err := h.resp.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		h.logger.Warn("factcheck: reject reply failed", zap.Error(err))
	}
}

func (h *commandHandler) run(i *discordgo.Interaction, claim string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	out := h.checker.Run(ctx, claim, func(_ uuid.UUID, s pipeline.State) {
		if s.Terminal() {
			return
		}
		h.edit(i, []*discordgo.MessageEmbed{ProgressEmbed(claim, s)}, nil)
	})

	if out.Err != nil {
		h.edit(i, []*discordgo.MessageEmbed{ErrorEmbed(render.NewErrorView(out.Err))}, []discordgo.MessageComponent{})
		return
	}
	view := render.NewView(*out.Verdict)
	components := SourceButtons(view.Sources)
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	h.edit(i, []*discordgo.MessageEmbed{VerdictEmbed(out.Claim, view)}, components)
}

func (h *commandHandler) edit(i *discordgo.Interaction, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	empty := ""
	edit := &discordgo.WebhookEdit{Content: &empty, Embeds: &embeds}
	if components != nil {
		edit.Components = &components
	}
	if err := h.resp.Edit(i, edit); err != nil {
		h.logger.Warn("factcheck: edit reply failed", zap.Error(err))
	}
}
