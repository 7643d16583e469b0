package relay

import (
	"fmt"
	"regexp"
	"strings"

	"ircord/pkg/bus"

	"github.com/cespare/xxhash/v2"
)

const (
	ircColor = "\x03"
	colors   = 16
)

// ColorIndex maps a display name to one of the 16 IRC colors. The hash is
// seeded identically in every process, so a name keeps its color.
func ColorIndex(name string) int {
	return int(xxhash.Sum64String(name) % colors)
}

// colorize wraps name in an IRC color code. The index is zero-padded so a
// name starting with a digit is not read as part of the color number.
func colorize(name string) string {
	return fmt.Sprintf("%s%02d%s%s", ircColor, ColorIndex(name), name, ircColor)
}

// ResolveMentions rewrites Discord user tokens (<@id> and <@!id>) into
// readable @name text, one mention entry at a time in list order.
func ResolveMentions(text string, mentions []bus.Mention) string {
	for _, m := range mentions {
		name := "@" + m.Name
		text = strings.ReplaceAll(text, "<@"+m.ID+">", name)
		text = strings.ReplaceAll(text, "<@!"+m.ID+">", name)
	}

	return text
}

// FormatAttachments renders the attachment summary appended to relayed lines.
func FormatAttachments(attachments []bus.Attachment) string {
	if len(attachments) == 0 {
		return ""
	}

	parts := make([]string, 0, len(attachments))
	for _, a := range attachments {
		parts = append(parts, a.Filename+" ("+a.URL+")")
	}

	return "[Attachments: " + strings.Join(parts, ", ") + "]"
}

// splitLines splits on \n, dropping a trailing \r from each line and not
// producing an empty final line for a trailing newline. Empty text yields
// no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// formattingPattern matches bold, underline, reset and reverse codes, plus a
// color code with optional foreground[,background] numbers.
const formattingPattern = "[\x02\x1F\x0F\x16]|\x03(\\d\\d?(,\\d\\d?)?)?"

// Stripper removes IRC inline formatting control sequences.
type Stripper struct {
	re *regexp.Regexp
}

func NewStripper() *Stripper {
	return &Stripper{re: regexp.MustCompile(formattingPattern)}
}

// Strip deletes every formatting sequence. It is idempotent.
func (s *Stripper) Strip(text string) string {
	return s.re.ReplaceAllLiteralString(text, "")
}
