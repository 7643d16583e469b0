package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ircord/pkg/channel"
	"ircord/pkg/config"
	"ircord/pkg/relay"

	"github.com/prometheus/client_golang/prometheus"
)

// Bridge owns both network connections and supervises the two relay workers.
type Bridge struct {
	cfg      *config.Config
	log      *slog.Logger
	discord  channel.Conn
	irc      channel.Conn
	registry *prometheus.Registry
	metrics  *metrics

	discordToIRC *relay.Worker
	ircToDiscord *relay.Worker

	mu           sync.RWMutex
	startedAt    time.Time
	workerStates map[string]workerState
}

type workerState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

// New builds the mapper, filter and both workers. Connections must already
// be established; Run closes them when it returns.
func New(cfg *config.Config, discord, irc channel.Conn, log *slog.Logger) (*Bridge, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if discord == nil || irc == nil {
		return nil, errors.New("both discord and irc connections are required")
	}
	if log == nil {
		log = slog.Default()
	}

	registry := prometheus.NewRegistry()
	recorder := newMetrics(registry)

	mapper := relay.NewMapper(cfg.Mapping.DiscordToIRC, cfg.Mapping.IRCToDiscord)
	filter := relay.NewFilter(cfg.FilterChars)
	opts := relay.Options{
		Recorder:   recorder,
		RetryDelay: cfg.Relay.ReceiveRetryDelay,
		Log:        log,
	}

	b := &Bridge{
		cfg:          cfg,
		log:          log.With("component", "bridge"),
		discord:      discord,
		irc:          irc,
		registry:     registry,
		metrics:      recorder,
		discordToIRC: relay.NewDiscordToIRC(discord, irc, mapper, filter, opts),
		ircToDiscord: relay.NewIRCToDiscord(irc, discord, mapper, filter, relay.NewStripper(), opts),
		workerStates: map[string]workerState{
			relay.DiscordToIRC.String(): {},
			relay.IRCToDiscord.String(): {},
		},
	}

	return b, nil
}

// Run starts both workers and blocks until both have stopped. Workers are
// joined in a fixed order, Discord→IRC first. A worker that panics or loses
// its connection does not stop the other.
func (b *Bridge) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	b.startedAt = time.Now().UTC()
	b.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if b.cfg.Status.Enabled {
		go b.runStatusServer(runCtx)
	}

	go func() {
		<-runCtx.Done()
		b.closeConns()
	}()

	discordDone := b.start(runCtx, b.discordToIRC)
	ircDone := b.start(runCtx, b.ircToDiscord)

	discordErr := <-discordDone
	b.logExit(relay.DiscordToIRC, discordErr)

	ircErr := <-ircDone
	b.logExit(relay.IRCToDiscord, ircErr)

	return errors.Join(discordErr, ircErr)
}

// start runs w in its own goroutine. The returned channel yields the
// worker's exit error, with a panic converted into an error.
func (b *Bridge) start(ctx context.Context, w *relay.Worker) <-chan error {
	done := make(chan error, 1)
	name := w.Direction().String()
	b.setWorkerState(name, workerState{Running: true})

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s worker panicked: %v", name, r)
			}
			b.setWorkerState(name, workerState{Running: false, Error: errorString(err)})
			done <- err
		}()

		err = w.Run(ctx)
	}()

	return done
}

func (b *Bridge) logExit(dir relay.Direction, err error) {
	if err != nil {
		b.log.Error("Relay worker stopped", "direction", dir, "error", err)
		return
	}

	b.log.Info("Relay worker stopped", "direction", dir)
}

func (b *Bridge) closeConns() {
	if err := b.discord.Close(); err != nil {
		b.log.Warn("Failed to close connection", "network", b.discord.Name(), "error", err)
	}
	if err := b.irc.Close(); err != nil {
		b.log.Warn("Failed to close connection", "network", b.irc.Name(), "error", err)
	}
}

func (b *Bridge) setWorkerState(name string, state workerState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.workerStates[name] = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
