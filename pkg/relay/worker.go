package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ircord/pkg/bus"
	"ircord/pkg/channel"
)

// Worker is one directional relay pipeline. It pulls events from src one at
// a time and fully handles each, all of its sends included, before pulling
// the next.
type Worker struct {
	dir      Direction
	src      channel.Conn
	dst      channel.Conn
	mapper   *Mapper
	filter   *Filter
	stripper *Stripper
	recorder Recorder

	retryDelay time.Duration
	log        *slog.Logger
}

// Options carries the optional collaborators shared by both workers.
type Options struct {
	Recorder Recorder
	// RetryDelay is the pause after a non-terminal receive error.
	RetryDelay time.Duration
	Log        *slog.Logger
}

// NewDiscordToIRC builds the worker that relays Discord messages to IRC.
func NewDiscordToIRC(discord, irc channel.Conn, mapper *Mapper, filter *Filter, opts Options) *Worker {
	return newWorker(DiscordToIRC, discord, irc, mapper, filter, nil, opts)
}

// NewIRCToDiscord builds the worker that relays IRC messages to Discord.
func NewIRCToDiscord(irc, discord channel.Conn, mapper *Mapper, filter *Filter, stripper *Stripper, opts Options) *Worker {
	if stripper == nil {
		stripper = NewStripper()
	}

	return newWorker(IRCToDiscord, irc, discord, mapper, filter, stripper, opts)
}

func newWorker(dir Direction, src, dst channel.Conn, mapper *Mapper, filter *Filter, stripper *Stripper, opts Options) *Worker {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if filter == nil {
		filter = NewFilter("")
	}

	return &Worker{
		dir:        dir,
		src:        src,
		dst:        dst,
		mapper:     mapper,
		filter:     filter,
		stripper:   stripper,
		recorder:   recorder,
		retryDelay: max(opts.RetryDelay, 0),
		log:        log.With("component", "relay.worker", "direction", dir),
	}
}

// Direction returns the pipeline this worker serves.
func (w *Worker) Direction() Direction {
	return w.dir
}

// Run receives and relays until the source connection closes or ctx is done.
// A closed source is returned as an error so the supervisor can log why the
// worker stopped. Cancellation returns nil.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Relay worker started", "source", w.src.Name(), "target", w.dst.Name(), "mappings", w.mapper.Len(w.dir))

	for {
		msg, err := w.src.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, channel.ErrClosed) {
				return fmt.Errorf("receive from %s: %w", w.src.Name(), err)
			}

			w.recorder.ReceiveFailed(w.dir)
			w.log.Warn("Receive failed", "source", w.src.Name(), "error", err)
			if !w.pause(ctx) {
				return nil
			}
			continue
		}

		w.handle(ctx, msg)
	}
}

// pause waits retryDelay before the next receive. It reports false when ctx
// ends first.
func (w *Worker) pause(ctx context.Context) bool {
	if w.retryDelay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(w.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) handle(ctx context.Context, msg bus.InboundMessage) {
	if msg.Kind != bus.KindMessage {
		w.recorder.Dropped(w.dir, DropIgnoredKind)
		return
	}

	if reason, drop := w.filter.ShouldDrop(w.dir, msg); drop {
		w.recorder.Dropped(w.dir, reason)
		w.log.Debug("Dropped message", "reason", reason, "channel", msg.ChannelID, "author", msg.Author)
		return
	}

	target, ok := w.mapper.Lookup(w.dir, msg.ChannelID)
	if !ok {
		w.recorder.Dropped(w.dir, DropUnmapped)
		return
	}

	var lines []string
	switch w.dir {
	case DiscordToIRC:
		lines = discordLines(msg)
	case IRCToDiscord:
		if msg.Author == "" {
			w.recorder.Dropped(w.dir, DropNoAuthor)
			return
		}
		lines = []string{w.discordLine(msg)}
	}

	if len(lines) == 0 {
		w.recorder.Dropped(w.dir, DropNoLines)
		return
	}

	w.recorder.MessageRelayed(w.dir)
	for _, line := range lines {
		if err := w.dst.Send(ctx, target, line); err != nil {
			w.recorder.SendFailed(w.dir)
			w.log.Error("Failed to send message", "target", target, "error", err)
			continue
		}
		w.recorder.LineSent(w.dir)
		w.log.Debug("Sent message", "target", target, "content", channel.PreviewText(line))
	}
}

// discordLines renders one IRC line per line of a Discord message. The
// attachment summary is appended to every line.
func discordLines(msg bus.InboundMessage) []string {
	content := ResolveMentions(msg.Content, msg.Mentions)
	suffix := FormatAttachments(msg.Attachments)
	prefix := "<" + colorize(msg.Author) + "> "

	source := splitLines(content)
	lines := make([]string, 0, len(source))
	for _, line := range source {
		lines = append(lines, prefix+line+" "+suffix)
	}

	return lines
}

// discordLine renders an IRC message as a single Discord post.
func (w *Worker) discordLine(msg bus.InboundMessage) string {
	return "**<" + msg.Author + ">** " + w.stripper.Strip(msg.Content)
}
