package relay

import (
	"unicode/utf8"

	"ircord/pkg/bus"
)

// Filter decides whether an inbound message must not be relayed.
type Filter struct {
	prefixes map[rune]struct{}
}

// NewFilter builds a filter whose prefix set is every rune of chars.
func NewFilter(chars string) *Filter {
	prefixes := make(map[rune]struct{}, utf8.RuneCountInString(chars))
	for _, r := range chars {
		prefixes[r] = struct{}{}
	}

	return &Filter{prefixes: prefixes}
}

// ShouldDrop reports whether msg is dropped and which rule fired. Bot
// authors are only checked Discord→IRC; IRC carries no bot flag.
func (f *Filter) ShouldDrop(dir Direction, msg bus.InboundMessage) (DropReason, bool) {
	if dir == DiscordToIRC && msg.AuthorIsBot {
		return DropBot, true
	}

	if f.hasPrefix(msg.Content) {
		return DropPrefix, true
	}

	return "", false
}

func (f *Filter) hasPrefix(text string) bool {
	if text == "" || len(f.prefixes) == 0 {
		return false
	}

	first, _ := utf8.DecodeRuneInString(text)
	_, ok := f.prefixes[first]
	return ok
}
