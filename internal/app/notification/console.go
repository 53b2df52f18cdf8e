package notification

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/osa030/seedmix/internal/app/playback"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

// Console writes notifications as human-readable lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console stream writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Send writes one line for the notification.
func (c *Console) Send(n *Notification) error {
	line := Format(n.Event)
	if line == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

// Format renders a playback event for the terminal.
func Format(e playback.Event) string {
	switch e.Type {
	case playback.EventNowPlaying:
		return titleStyle.Render("Now playing: ") + describe(e)
	case playback.EventReplaying:
		return titleStyle.Render("Replaying: ") + describe(e)
	case playback.EventPaused:
		return infoStyle.Render("Paused.")
	case playback.EventSkipped:
		return mutedStyle.Render("Skipped " + describe(e))
	case playback.EventSelectionExhausted:
		return errorStyle.Render("Cannot find a track to play.") + " " + mutedStyle.Render("[s] to retry, [q] to quit")
	case playback.EventPlaybackFailed:
		msg := "Playback failed"
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return errorStyle.Render(msg)
	case playback.EventStopped:
		return infoStyle.Render("Stopping live stream.")
	default:
		return ""
	}
}

func describe(e playback.Event) string {
	if e.Track == nil {
		return ""
	}
	if len(e.Track.Artists) == 0 {
		return e.Track.Name
	}
	return e.Track.Name + " - " + strings.Join(e.Track.Artists, ", ")
}
