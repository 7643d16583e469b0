package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"ircord/pkg/config"

	"github.com/spf13/cobra"
)

// checkCmd validates the config file and prints the channel mapping.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and print the channel mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		writeMapping(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func writeMapping(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "discord -> irc:")
	writeTable(w, cfg.Mapping.DiscordToIRC)
	fmt.Fprintln(w, "irc -> discord:")
	writeTable(w, cfg.Mapping.IRCToDiscord)
	fmt.Fprintf(w, "irc channels joined: %s\n", strings.Join(cfg.IRCChannels(), ","))
	fmt.Fprintf(w, "filter prefixes: %q\n", cfg.FilterChars)
}

func writeTable(w io.Writer, table map[string]string) {
	if len(table) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	sources := make([]string, 0, len(table))
	for source := range table {
		sources = append(sources, source)
	}
	slices.Sort(sources)

	for _, source := range sources {
		fmt.Fprintf(w, "  %s -> %s\n", source, table[source])
	}
}
