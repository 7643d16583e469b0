package bus

// Network names one side of the bridge.
type Network string

const (
	NetworkDiscord Network = "discord"
	NetworkIRC     Network = "irc"
)

// Kind classifies an inbound event. Only KindMessage is relayed.
type Kind string

const (
	// KindMessage is a new channel message: Discord MESSAGE_CREATE or an IRC
	// PRIVMSG addressed to a channel.
	KindMessage Kind = "message"
	// KindOther covers events a connection surfaces but the relay ignores,
	// such as Discord edits or IRC notices and private messages.
	KindOther Kind = "other"
)

// Mention is one user referenced by a structured token in message content.
type Mention struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attachment is one file attached to a message.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// InboundMessage is one event received from a network connection.
type InboundMessage struct {
	Network     Network      `json:"network"`
	Kind        Kind         `json:"kind"`
	ChannelID   string       `json:"channel_id"`
	Author      string       `json:"author"`
	AuthorIsBot bool         `json:"author_is_bot,omitempty"`
	Content     string       `json:"content"`
	Mentions    []Mention    `json:"mentions,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
