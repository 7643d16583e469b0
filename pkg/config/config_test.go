package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `{
  "irc": {"server": "irc.example.net:6697", "nick": "ircord", "use_tls": true, "channels": ["#lobby"]},
  "discord": {"bot_token": "file-token"},
  "mapping": {
    "discord2irc": {"100": "#general", "101": "#go.dev"},
    "irc2discord": {"#general": 200}
  },
  "filter_chars": "!.",
  "logging": {"format": "json", "level": "debug", "add_source": true}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	return path
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	t.Setenv("IRCORD_CONFIG", writeConfig(t, validConfig))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Discord.BotToken != "file-token" {
		t.Fatalf("discord.bot_token = %q, want %q", cfg.Discord.BotToken, "file-token")
	}
	if got := cfg.Mapping.DiscordToIRC["100"]; got != "#general" {
		t.Fatalf("discord2irc[100] = %q, want %q", got, "#general")
	}
	if got := cfg.Mapping.DiscordToIRC["101"]; got != "#go.dev" {
		t.Fatalf("discord2irc[101] = %q, want %q", got, "#go.dev")
	}
	if got := cfg.Mapping.IRCToDiscord["#general"]; got != "200" {
		t.Fatalf("irc2discord[#general] = %q, want %q", got, "200")
	}
	if cfg.FilterChars != "!." {
		t.Fatalf("filter_chars = %q, want %q", cfg.FilterChars, "!.")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" || !cfg.Logging.AddSource {
		t.Fatalf("logging = %+v, want json/debug/add_source", cfg.Logging)
	}
	if !cfg.IRC.UseTLS {
		t.Fatal("irc.use_tls = false, want true")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Relay.ReceiveRetryDelay != time.Second {
		t.Fatalf("relay.receive_retry_delay = %s, want 1s", cfg.Relay.ReceiveRetryDelay)
	}
	if cfg.Status.Host != "127.0.0.1" || cfg.Status.Port != 18791 {
		t.Fatalf("status = %+v, want 127.0.0.1:18791", cfg.Status)
	}
	if cfg.Status.Enabled {
		t.Fatal("status.enabled = true, want false by default")
	}
}

func TestLoadExplicitZeroRetryDelay(t *testing.T) {
	content := strings.Replace(validConfig, `"filter_chars": "!.",`, `"filter_chars": "!.", "relay": {"receive_retry_delay": "0s"},`, 1)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Relay.ReceiveRetryDelay != 0 {
		t.Fatalf("relay.receive_retry_delay = %s, want 0", cfg.Relay.ReceiveRetryDelay)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IRCORD_DISCORD_BOT_TOKEN", "env-token")
	t.Setenv("IRCORD_FILTER_CHARS", "?")
	t.Setenv("IRCORD_UNRELATED", "ignored")
	t.Setenv("IRCORD_LOG_LEVEL", "warn")
	t.Setenv("IRCORD_LOG_ADD_SOURCE", "false")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Discord.BotToken != "env-token" {
		t.Fatalf("discord.bot_token = %q, want %q", cfg.Discord.BotToken, "env-token")
	}
	if cfg.FilterChars != "?" {
		t.Fatalf("filter_chars = %q, want %q", cfg.FilterChars, "?")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.AddSource {
		t.Fatalf("logging = %+v, want warn level without source", cfg.Logging)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging.format = %q, want file value %q", cfg.Logging.Format, "json")
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv("IRCORD_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"irc": `)); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			IRC:     IRCConfig{Server: "irc.example.net:6667", Nick: "ircord"},
			Discord: DiscordConfig{BotToken: "token"},
			Mapping: MappingConfig{
				DiscordToIRC: map[string]string{"100": "#general"},
				IRCToDiscord: map[string]string{"#general": "200"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Discord.BotToken = " " }, wantErr: "discord.bot_token"},
		{name: "missing server", mutate: func(c *Config) { c.IRC.Server = "" }, wantErr: "irc.server"},
		{name: "missing nick", mutate: func(c *Config) { c.IRC.Nick = "" }, wantErr: "irc.nick"},
		{name: "non numeric discord id", mutate: func(c *Config) { c.Mapping.DiscordToIRC = map[string]string{"general": "#general"} }, wantErr: "numeric discord channel id"},
		{name: "bad irc target", mutate: func(c *Config) { c.Mapping.DiscordToIRC = map[string]string{"100": "general"} }, wantErr: "not an irc channel name"},
		{name: "bad irc source", mutate: func(c *Config) { c.Mapping.IRCToDiscord = map[string]string{"general": "200"} }, wantErr: "not an irc channel name"},
		{name: "irc sources differ only in case", mutate: func(c *Config) { c.Mapping.IRCToDiscord = map[string]string{"#Foo": "200", "#foo": "201"} }, wantErr: `"#Foo" and "#foo" name the same irc channel`},
		{name: "bad discord target", mutate: func(c *Config) { c.Mapping.IRCToDiscord = map[string]string{"#general": "x"} }, wantErr: "numeric discord channel id"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIRCChannels(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		IRC: IRCConfig{Channels: []string{"#lobby", " #General "}},
		Mapping: MappingConfig{
			DiscordToIRC: map[string]string{"100": "#general", "101": "#dev"},
			IRCToDiscord: map[string]string{"#general": "200", "#ops": "201"},
		},
	}

	got := cfg.IRCChannels()
	want := []string{"#dev", "#general", "#lobby", "#ops"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("IRCChannels = %v, want %v", got, want)
	}
}
