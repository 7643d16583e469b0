package cmd

import (
	"bytes"
	"testing"

	"ircord/pkg/config"
)

func TestWriteMapping(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Mapping: config.MappingConfig{
			DiscordToIRC: map[string]string{"101": "#dev", "100": "#general"},
		},
		FilterChars: "!",
	}

	var out bytes.Buffer
	writeMapping(&out, cfg)

	want := "discord -> irc:\n" +
		"  100 -> #general\n" +
		"  101 -> #dev\n" +
		"irc -> discord:\n" +
		"  (none)\n" +
		"irc channels joined: #dev,#general\n" +
		"filter prefixes: \"!\"\n"
	if got := out.String(); got != want {
		t.Fatalf("writeMapping =\n%s\nwant\n%s", got, want)
	}
}

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"run", "check"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}
}
