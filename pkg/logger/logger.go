package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	charmLog "github.com/charmbracelet/log"

	"ircord/pkg/config"
)

// New builds the process logger from the logging config. Both formats are
// rendered by charm log, which doubles as the slog handler.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.LoggingConfig, writer io.Writer) (*slog.Logger, error) {
	formatter, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handler := charmLog.NewWithOptions(writer, charmLog.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    cfg.AddSource,
		Formatter:       formatter,
	})

	if formatter == charmLog.JSONFormatter {
		handler.SetTimeFormat(time.RFC3339Nano)
	} else {
		handler.SetStyles(textStyles())
	}

	return slog.New(handler), nil
}

func parseFormat(input string) (charmLog.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "text":
		return charmLog.TextFormatter, nil
	case "json":
		return charmLog.JSONFormatter, nil
	case "logfmt":
		return charmLog.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unsupported log format %q", input)
	}
}

func parseLevel(input string) (charmLog.Level, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	switch text {
	case "":
		return charmLog.InfoLevel, nil
	case "warning":
		text = "warn"
	}

	level, err := charmLog.ParseLevel(text)
	if err != nil {
		return 0, fmt.Errorf("unsupported log level %q: %w", input, err)
	}

	return level, nil
}

// textStyles highlights the keys that identify where a relay line came from.
func textStyles() *charmLog.Styles {
	styles := charmLog.DefaultStyles()
	styles.Keys["component"] = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	styles.Values["component"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["direction"] = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
	styles.Values["direction"] = lipgloss.NewStyle().Foreground(lipgloss.Color("223"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	return styles
}
