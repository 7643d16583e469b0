package irc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ircord/pkg/bus"
	"ircord/pkg/channel"
	"ircord/pkg/config"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
)

const channelName = "irc"

var errDisconnected = errors.New("irc connection lost, reconnecting")

// client is the subset of *ircevent.Connection used after connecting.
type client interface {
	Privmsg(target, message string) error
	Quit()
}

// Conn relays IRC PRIVMSG traffic into a blocking inbound stream.
type Conn struct {
	client  client
	inbound *bus.MessageBus
	log     *slog.Logger
}

var _ channel.Conn = (*Conn)(nil)

// Dial connects and registers with the IRC server, joins channels on every
// (re)connect, and runs the client read loop in the background.
func Dial(cfg config.IRCConfig, channels []string, log *slog.Logger) (*Conn, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, errors.New("irc.server is required")
	}
	if strings.TrimSpace(cfg.Nick) == "" {
		return nil, errors.New("irc.nick is required")
	}

	conn := newConnection(cfg)
	c := newConn(conn, log)
	conn.Log = slog.NewLogLogger(c.log.Handler(), slog.LevelDebug)

	conn.AddConnectCallback(func(ircmsg.Message) {
		for _, name := range channels {
			if err := conn.Join(name); err != nil {
				c.log.Error("Failed to join irc channel", "channel", name, "error", err)
			}
		}
	})
	conn.AddDisconnectCallback(func(ircmsg.Message) {
		c.inbound.PublishFault(context.Background(), errDisconnected)
	})
	conn.AddCallback("PRIVMSG", c.onPrivmsg)
	conn.AddCallback("NOTICE", c.onNotice)

	if err := conn.Connect(); err != nil {
		c.inbound.Close()
		return nil, fmt.Errorf("connect to irc server %s: %w", cfg.Server, err)
	}

	go c.serve(conn.Loop)

	c.log.Info("IRC channel started", "server", cfg.Server, "nick", cfg.Nick, "channels", strings.Join(channels, ","))
	return c, nil
}

func newConnection(cfg config.IRCConfig) *ircevent.Connection {
	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = cfg.Nick
	}
	realName := strings.TrimSpace(cfg.RealName)
	if realName == "" {
		realName = cfg.Nick
	}

	conn := &ircevent.Connection{
		Server:   cfg.Server,
		Nick:     cfg.Nick,
		User:     user,
		RealName: realName,
		Password: cfg.Password,
		UseTLS:   cfg.UseTLS,
	}
	if cfg.SASLLogin != "" {
		conn.UseSASL = true
		conn.SASLLogin = cfg.SASLLogin
		conn.SASLPassword = cfg.SASLPassword
	}

	return conn
}

func newConn(cl client, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}

	return &Conn{
		client:  cl,
		inbound: bus.NewMessageBus(),
		log:     log.With("component", "channel.irc"),
	}
}

// serve runs the client read loop. Loop returns only once the connection is
// given up for good, so the inbound stream is closed after it.
func (c *Conn) serve(loop func()) {
	loop()
	c.log.Warn("IRC read loop stopped")
	c.inbound.Close()
}

// Name returns the channel identifier used in logs and metrics.
func (c *Conn) Name() string {
	return channelName
}

// Receive blocks until the next IRC event.
func (c *Conn) Receive(ctx context.Context) (bus.InboundMessage, error) {
	return c.inbound.ConsumeInbound(ctx)
}

// Send posts text to an IRC channel as a PRIVMSG.
func (c *Conn) Send(_ context.Context, channelID string, text string) error {
	if err := c.client.Privmsg(channelID, text); err != nil {
		return fmt.Errorf("send irc privmsg to %s: %w", channelID, err)
	}

	return nil
}

// Close stops event delivery and quits the server.
func (c *Conn) Close() error {
	c.inbound.Close()
	if c.client != nil {
		c.client.Quit()
	}

	return nil
}

func (c *Conn) onPrivmsg(e ircmsg.Message) {
	msg, ok := fromMessage(e)
	if !ok {
		return
	}
	if !isChannel(msg.ChannelID) {
		msg.Kind = bus.KindOther
	}

	c.log.Debug("Received message", "channel", msg.ChannelID, "nick", msg.Author, "content", channel.PreviewText(msg.Content))
	c.inbound.PublishInbound(context.Background(), msg)
}

func (c *Conn) onNotice(e ircmsg.Message) {
	msg, ok := fromMessage(e)
	if !ok {
		return
	}
	msg.Kind = bus.KindOther

	c.inbound.PublishInbound(context.Background(), msg)
}

// fromMessage converts a PRIVMSG-shaped line into the bridge's event model.
func fromMessage(e ircmsg.Message) (bus.InboundMessage, bool) {
	if len(e.Params) < 2 {
		return bus.InboundMessage{}, false
	}

	return bus.InboundMessage{
		Network:   bus.NetworkIRC,
		Kind:      bus.KindMessage,
		ChannelID: e.Params[0],
		Author:    e.Nick(),
		Content:   e.Params[1],
	}, true
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
