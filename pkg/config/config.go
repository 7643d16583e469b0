package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// keyDelim separates koanf key paths. IRC channel names may contain dots.
const keyDelim = "/"

const envPrefix = "IRCORD_"

// envKeys maps supported environment variables onto config key paths.
var envKeys = map[string]string{
	"IRCORD_DISCORD_BOT_TOKEN": "discord/bot_token",
	"IRCORD_IRC_PASSWORD":      "irc/password",
	"IRCORD_IRC_SASL_PASSWORD": "irc/sasl_password",
	"IRCORD_FILTER_CHARS":      "filter_chars",
	"IRCORD_STATUS_ENABLED":    "status/enabled",
	"IRCORD_RELAY_RETRY_DELAY": "relay/receive_retry_delay",
	"IRCORD_STATUS_PORT":       "status/port",
	"IRCORD_LOG_FORMAT":        "logging/format",
	"IRCORD_LOG_LEVEL":         "logging/level",
	"IRCORD_LOG_ADD_SOURCE":    "logging/add_source",
}

// defaults are loaded before the config file so omitted keys keep sane values.
var defaults = map[string]any{
	"relay/receive_retry_delay": "1s",
	"status/host":               "127.0.0.1",
	"status/port":               18791,
	"logging/format":            "text",
	"logging/level":             "info",
}

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	IRC         IRCConfig     `koanf:"irc"`
	Discord     DiscordConfig `koanf:"discord"`
	Mapping     MappingConfig `koanf:"mapping"`
	FilterChars string        `koanf:"filter_chars"`
	Relay       RelayConfig   `koanf:"relay"`
	Status      StatusConfig  `koanf:"status"`
	Logging     LoggingConfig `koanf:"logging"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `koanf:"format"`
	Level     string `koanf:"level"`
	AddSource bool   `koanf:"add_source"`
}

// IRCConfig holds IRC connection parameters.
type IRCConfig struct {
	Server       string   `koanf:"server"`
	Nick         string   `koanf:"nick"`
	User         string   `koanf:"user"`
	RealName     string   `koanf:"real_name"`
	Password     string   `koanf:"password"`
	UseTLS       bool     `koanf:"use_tls"`
	SASLLogin    string   `koanf:"sasl_login"`
	SASLPassword string   `koanf:"sasl_password"`
	Channels     []string `koanf:"channels"`
}

// DiscordConfig holds the Discord bot credential.
type DiscordConfig struct {
	BotToken string `koanf:"bot_token"`
}

// MappingConfig pairs channels across the two networks. The tables are
// independent: a channel may relay one way only.
type MappingConfig struct {
	DiscordToIRC map[string]string `koanf:"discord2irc"`
	IRCToDiscord map[string]string `koanf:"irc2discord"`
}

// RelayConfig tunes the relay workers.
type RelayConfig struct {
	// ReceiveRetryDelay is the pause after a non-terminal receive error.
	// Zero retries immediately.
	ReceiveRetryDelay time.Duration `koanf:"receive_retry_delay"`
}

// StatusConfig configures the health and metrics HTTP server.
type StatusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// IRCChannels returns every IRC channel the bridge must join: targets of the
// Discord→IRC table, sources of the IRC→Discord table, and irc.channels.
func (c *Config) IRCChannels() []string {
	seen := make(map[string]struct{})
	channels := make([]string, 0, len(c.Mapping.DiscordToIRC)+len(c.Mapping.IRCToDiscord)+len(c.IRC.Channels))

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		channels = append(channels, name)
	}

	for _, name := range c.Mapping.DiscordToIRC {
		add(name)
	}
	for name := range c.Mapping.IRCToDiscord {
		add(name)
	}
	for _, name := range c.IRC.Channels {
		add(name)
	}

	slices.SortFunc(channels, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	return channels
}

// Validate reports every problem that would make the bridge unusable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}

	var errs []error

	if strings.TrimSpace(c.Discord.BotToken) == "" {
		errs = append(errs, errors.New("discord.bot_token is required"))
	}
	if strings.TrimSpace(c.IRC.Server) == "" {
		errs = append(errs, errors.New("irc.server is required"))
	}
	if strings.TrimSpace(c.IRC.Nick) == "" {
		errs = append(errs, errors.New("irc.nick is required"))
	}

	for discordID, ircChannel := range c.Mapping.DiscordToIRC {
		if !isSnowflake(discordID) {
			errs = append(errs, fmt.Errorf("mapping.discord2irc: %q is not a numeric discord channel id", discordID))
		}
		if !isIRCChannel(ircChannel) {
			errs = append(errs, fmt.Errorf("mapping.discord2irc[%s]: %q is not an irc channel name", discordID, ircChannel))
		}
	}

	folded := make(map[string]string, len(c.Mapping.IRCToDiscord))
	for ircChannel, discordID := range c.Mapping.IRCToDiscord {
		key := strings.ToLower(ircChannel)
		if other, ok := folded[key]; ok {
			first, second := min(other, ircChannel), max(other, ircChannel)
			errs = append(errs, fmt.Errorf("mapping.irc2discord: %q and %q name the same irc channel", first, second))
		}
		folded[key] = ircChannel

		if !isIRCChannel(ircChannel) {
			errs = append(errs, fmt.Errorf("mapping.irc2discord: %q is not an irc channel name", ircChannel))
		}
		if !isSnowflake(discordID) {
			errs = append(errs, fmt.Errorf("mapping.irc2discord[%s]: %q is not a numeric discord channel id", ircChannel, discordID))
		}
	}

	return errors.Join(errs...)
}

// LoadConfig resolves the config file, decodes it, applies environment
// overrides and validates the result.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Load reads one config file. JSON files decode through the YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(keyDelim)

	if err := k.Load(confmap.Provider(defaults, keyDelim), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, keyDelim, envKey), nil); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if cfg.Relay.ReceiveRetryDelay < 0 {
		cfg.Relay.ReceiveRetryDelay = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// envKey returns the config path for an env var, or "" to skip it.
func envKey(name string) string {
	return envKeys[name]
}

// findConfigPath resolves the active config file location.
//
// Precedence is IRCORD_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("IRCORD_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("IRCORD_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config.yaml"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config file not found (checked %s)", strings.Join(candidates, ", "))
}

func isSnowflake(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}

func isIRCChannel(name string) bool {
	return len(name) > 1 && (name[0] == '#' || name[0] == '&')
}
