package relay

import (
	"slices"
	"strings"
)

// Mapper holds the two directional channel tables. It is read-only after
// construction and shared by both workers without locking.
type Mapper struct {
	discordToIRC map[string]string
	ircToDiscord map[string]string
	// ircFolded indexes ircToDiscord by lowercased channel name.
	ircFolded map[string]string
}

// NewMapper copies both tables. IRC lookups try the exact channel name first
// and then its case-folded form. When two configured names fold together,
// the folded entry belongs to the lexically smallest of them.
func NewMapper(discordToIRC, ircToDiscord map[string]string) *Mapper {
	m := &Mapper{
		discordToIRC: make(map[string]string, len(discordToIRC)),
		ircToDiscord: make(map[string]string, len(ircToDiscord)),
		ircFolded:    make(map[string]string, len(ircToDiscord)),
	}

	for source, target := range discordToIRC {
		m.discordToIRC[source] = target
	}

	sources := make([]string, 0, len(ircToDiscord))
	for source, target := range ircToDiscord {
		m.ircToDiscord[source] = target
		sources = append(sources, source)
	}
	slices.Sort(sources)
	for _, source := range sources {
		folded := strings.ToLower(source)
		if _, taken := m.ircFolded[folded]; !taken {
			m.ircFolded[folded] = ircToDiscord[source]
		}
	}

	return m
}

// Lookup returns the target channel for source in the given direction.
func (m *Mapper) Lookup(dir Direction, source string) (string, bool) {
	switch dir {
	case DiscordToIRC:
		target, ok := m.discordToIRC[source]
		return target, ok
	case IRCToDiscord:
		if target, ok := m.ircToDiscord[source]; ok {
			return target, true
		}
		target, ok := m.ircFolded[strings.ToLower(source)]
		return target, ok
	default:
		return "", false
	}
}

// Len returns the number of entries configured for dir.
func (m *Mapper) Len(dir Direction) int {
	switch dir {
	case DiscordToIRC:
		return len(m.discordToIRC)
	case IRCToDiscord:
		return len(m.ircToDiscord)
	default:
		return 0
	}
}
