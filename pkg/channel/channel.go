package channel

import (
	"context"
	"strings"

	"ircord/pkg/bus"
)

// ErrClosed reports that a connection was closed and will yield no more events.
var ErrClosed = bus.ErrClosed

const messagePreviewLimit = 240

// Conn is one live connection to a chat network (for example Discord or IRC).
type Conn interface {
	Name() string
	// Receive blocks until the next event. A returned error wrapping ErrClosed
	// is terminal; any other error is a transient receive failure.
	Receive(ctx context.Context) (bus.InboundMessage, error)
	// Send posts text to one channel on this network.
	Send(ctx context.Context, channelID string, text string) error
	Close() error
}

// PreviewText returns a bounded log-safe preview of message text.
func PreviewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}
