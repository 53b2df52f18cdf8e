package playback

import "github.com/osa030/seedmix/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventNowPlaying         EventType = iota // Newly selected track started
	EventPaused                              // Playback paused
	EventReplaying                           // Last track restarted
	EventSkipped                             // Current track skipped by the user
	EventSelectionExhausted                  // No seed artist yielded a track
	EventPlaybackFailed                      // Transport call failed
	EventStopped                             // Session terminated
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventNowPlaying:
		return "now_playing"
	case EventPaused:
		return "paused"
	case EventReplaying:
		return "replaying"
	case EventSkipped:
		return "skipped"
	case EventSelectionExhausted:
		return "selection_exhausted"
	case EventPlaybackFailed:
		return "playback_failed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type      EventType
	SessionID string
	Track     *track.Track // Track concerned (nil for some events)
	State     State        // State after the event
	Err       error        // Cause for EventPlaybackFailed
}

// Notifier receives playback events.
type Notifier interface {
	Publish(e Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(e Event)

// Publish calls f(e).
func (f NotifierFunc) Publish(e Event) {
	f(e)
}
