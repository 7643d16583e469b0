// Package relay implements the bridge core: channel mapping, message
// filtering, cross-network text transforms and the two relay workers.
package relay

// Direction names one relay pipeline.
type Direction int

const (
	DiscordToIRC Direction = iota
	IRCToDiscord
)

func (d Direction) String() string {
	switch d {
	case DiscordToIRC:
		return "discord->irc"
	case IRCToDiscord:
		return "irc->discord"
	default:
		return "unknown"
	}
}

// MarshalText renders the direction by name in structured logs.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DropReason says why an inbound event produced no sends.
type DropReason string

const (
	DropIgnoredKind DropReason = "ignored_kind"
	DropBot         DropReason = "bot"
	DropPrefix      DropReason = "prefix"
	DropUnmapped    DropReason = "unmapped"
	DropNoAuthor    DropReason = "no_author"
	// DropNoLines marks a message with no text lines, such as a Discord
	// post carrying only attachments.
	DropNoLines DropReason = "no_lines"
)

// Recorder observes relay outcomes. Implementations must be safe for
// concurrent use by both workers.
type Recorder interface {
	MessageRelayed(dir Direction)
	LineSent(dir Direction)
	Dropped(dir Direction, reason DropReason)
	SendFailed(dir Direction)
	ReceiveFailed(dir Direction)
}

type nopRecorder struct{}

func (nopRecorder) MessageRelayed(Direction) {}
func (nopRecorder) LineSent(Direction) {}
func (nopRecorder) Dropped(Direction, DropReason) {}
func (nopRecorder) SendFailed(Direction) {}
func (nopRecorder) ReceiveFailed(Direction) {}
