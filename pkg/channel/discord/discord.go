package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ircord/pkg/bus"
	"ircord/pkg/channel"
	"ircord/pkg/config"

	"github.com/bwmarrin/discordgo"
)

const channelName = "discord"

var errGatewayDisconnected = errors.New("discord gateway disconnected")

// sender is the subset of *discordgo.Session used to post messages.
type sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Conn relays Discord gateway events into a blocking inbound stream and posts
// outbound text through the REST API.
type Conn struct {
	sender  sender
	closer  func() error
	inbound *bus.MessageBus
	log     *slog.Logger
}

var _ channel.Conn = (*Conn)(nil)

// Dial validates Discord configuration, opens a bot gateway session and
// starts forwarding message events.
func Dial(cfg config.DiscordConfig, log *slog.Logger) (*Conn, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, errors.New("discord.bot_token is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("initialize discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	// Handlers must run in gateway order or per-channel ordering is lost.
	session.SyncEvents = true

	c := newConn(session, session.Close, log)
	session.AddHandler(c.onMessageCreate)
	session.AddHandler(c.onMessageUpdate)
	session.AddHandler(c.onDisconnect)

	if err := session.Open(); err != nil {
		c.inbound.Close()
		return nil, fmt.Errorf("open discord gateway: %w", err)
	}

	c.log.Info("Discord channel started")
	return c, nil
}

func newConn(s sender, closer func() error, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}

	return &Conn{
		sender:  s,
		closer:  closer,
		inbound: bus.NewMessageBus(),
		log:     log.With("component", "channel.discord"),
	}
}

// Name returns the channel identifier used in logs and metrics.
func (c *Conn) Name() string {
	return channelName
}

// Receive blocks until the next Discord event.
func (c *Conn) Receive(ctx context.Context) (bus.InboundMessage, error) {
	return c.inbound.ConsumeInbound(ctx)
}

// Send posts text to a Discord channel.
func (c *Conn) Send(ctx context.Context, channelID string, text string) error {
	if _, err := c.sender.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message to %s: %w", channelID, err)
	}

	return nil
}

// Close stops event delivery and closes the gateway session.
func (c *Conn) Close() error {
	c.inbound.Close()
	if c.closer == nil {
		return nil
	}

	return c.closer()
}

func (c *Conn) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}

	msg := toInbound(bus.KindMessage, m.Message)
	c.log.Debug("Received message", "channel_id", msg.ChannelID, "author", msg.Author, "content", channel.PreviewText(msg.Content))
	c.inbound.PublishInbound(context.Background(), msg)
}

func (c *Conn) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if m == nil || m.Message == nil {
		return
	}

	c.inbound.PublishInbound(context.Background(), toInbound(bus.KindOther, m.Message))
}

func (c *Conn) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	c.inbound.PublishFault(context.Background(), errGatewayDisconnected)
}

// toInbound converts a discordgo message into the bridge's event model.
func toInbound(kind bus.Kind, m *discordgo.Message) bus.InboundMessage {
	msg := bus.InboundMessage{
		Network:   bus.NetworkDiscord,
		Kind:      kind,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}

	if m.Author != nil {
		msg.Author = m.Author.Username
		msg.AuthorIsBot = m.Author.Bot
	}

	for _, user := range m.Mentions {
		if user == nil {
			continue
		}
		msg.Mentions = append(msg.Mentions, bus.Mention{ID: user.ID, Name: user.Username})
	}

	for _, attachment := range m.Attachments {
		if attachment == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, bus.Attachment{Filename: attachment.Filename, URL: attachment.URL})
	}

	return msg
}
