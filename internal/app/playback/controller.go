package playback

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/app/filter"
	"github.com/osa030/seedmix/internal/app/selection"
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/track"
	"github.com/osa030/seedmix/internal/infra/metrics"
)

// trackStartDelay is observed after a skip, before the next track is selected,
// to keep catalog and transport calls spaced out.
const trackStartDelay = 2 * time.Second

// Errors
var (
	ErrNoSeedArtists = errors.New("no seed artists given")
	ErrTerminated    = errors.New("session already terminated")
)

// Transport defines the playback transport operations.
type Transport interface {
	StartPlayback(ctx context.Context, trackURI string) error
	PausePlayback(ctx context.Context) error
}

// Config holds controller configuration.
type Config struct {
	Seeds []artist.ID
	Spec  filter.Spec
}

// Controller runs a live session.
// It is single-threaded: Run processes one command at a time and owns all
// session state. A Controller is not safe for concurrent use.
type Controller struct {
	id        string
	seeds     []artist.ID
	selector  *selection.Selector
	transport Transport
	notifier  Notifier
	metrics   *metrics.Metrics

	// Session state
	state   State
	queue   track.Queue
	cursor  int
	paused  bool
	current *track.Track

	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a new live session controller.
// notifier and m may be nil.
func NewController(cfg Config, catalog selection.Catalog, transport Transport, notifier Notifier, m *metrics.Metrics) (*Controller, error) {
	if len(cfg.Seeds) == 0 {
		return nil, ErrNoSeedArtists
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Event) {})
	}

	seeds := make([]artist.ID, len(cfg.Seeds))
	copy(seeds, cfg.Seeds)

	return &Controller{
		id:        uuid.New().String(),
		seeds:     seeds,
		selector:  selection.NewSelector(catalog, cfg.Spec),
		transport: transport,
		notifier:  notifier,
		metrics:   m,
		state:     StateIdle,
		delay:     trackStartDelay,
		sleep:     sleepContext,
	}, nil
}

// ID returns the session ID.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() SessionState {
	s := SessionState{
		ID:     c.id,
		State:  c.state,
		Queue:  c.queue.Tracks(),
		Cursor: c.cursor,
		Paused: c.paused,
		Seeds:  append([]artist.ID(nil), c.seeds...),
	}
	if c.current != nil {
		cur := *c.current
		s.Current = &cur
	}
	return s
}

// Run starts the session and processes commands from source until quit.
// The first track is selected immediately. Run returns nil on quit or when
// source is exhausted, and the context error if ctx is cancelled.
func (c *Controller) Run(ctx context.Context, source CommandSource) error {
	if c.state == StateTerminated {
		return ErrTerminated
	}

	zlog.Info().Msgf("live session started: session=%s seeds=%d spec=%s", c.id, len(c.seeds), c.selector.Spec())
	c.selectNext(ctx)

	for {
		token, err := source.Next(ctx)
		if err != nil {
			c.terminate()
			if errors.Is(err, io.EOF) {
				zlog.Info().Msgf("command source closed: session=%s", c.id)
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return errors.Wrap(ctxErr, "live session cancelled")
			}
			return errors.Wrap(err, "failed to read command")
		}

		c.handle(ctx, ParseCommand(token))
		if c.state == StateTerminated {
			return nil
		}
	}
}

// handle applies a single command.
func (c *Controller) handle(ctx context.Context, cmd Command) {
	if cmd == CommandUnknown {
		return
	}
	c.metrics.Command(cmd.String())
	zlog.Debug().Msgf("command received: session=%s command=%s state=%s", c.id, cmd, c.state)

	switch cmd {
	case CommandSkip:
		c.skip(ctx)
	case CommandPause:
		c.pause(ctx)
	case CommandReplay:
		c.replay(ctx)
	case CommandQuit:
		c.terminate()
	}
}

func (c *Controller) skip(ctx context.Context) {
	if c.current != nil {
		c.publish(EventSkipped, c.current, nil)
	}
	if err := c.sleep(ctx, c.delay); err != nil {
		return
	}
	c.selectNext(ctx)
}

func (c *Controller) pause(ctx context.Context) {
	if c.current == nil {
		return
	}
	if err := c.transport.PausePlayback(ctx); err != nil {
		zlog.Error().Msgf("failed to pause playback: session=%s error=%v", c.id, err)
		c.publish(EventPlaybackFailed, c.current, err)
		return
	}
	c.paused = true
	c.state = StatePaused
	c.publish(EventPaused, c.current, nil)
}

func (c *Controller) replay(ctx context.Context) {
	last, ok := c.queue.Last()
	if !ok {
		return
	}
	if err := c.transport.StartPlayback(ctx, last.URI()); err != nil {
		zlog.Error().Msgf("failed to replay track: session=%s track=%s error=%v", c.id, last.ID, err)
		c.publish(EventPlaybackFailed, &last, err)
		return
	}
	c.current = &last
	c.paused = false
	c.state = StatePlaying
	c.publish(EventReplaying, &last, nil)
}

// selectNext tries each seed artist at most once, starting at the cursor,
// and starts the first track found. Artists without tracks do not consume a slot.
func (c *Controller) selectNext(ctx context.Context) {
	for attempt := 0; attempt < len(c.seeds); attempt++ {
		artistID := c.seeds[c.cursor]
		c.cursor = (c.cursor + 1) % len(c.seeds)

		t, ok, err := c.selector.TopTrack(ctx, artistID)
		if err != nil {
			c.metrics.CatalogError(metrics.ModeLive)
			zlog.Warn().Msgf("skipping artist: session=%s artist=%s error=%v", c.id, artistID, err)
			continue
		}
		if !ok {
			zlog.Debug().Msgf("artist has no tracks: session=%s artist=%s", c.id, artistID)
			continue
		}

		c.metrics.TrackSelected(metrics.ModeLive)
		c.start(ctx, t)
		return
	}

	c.metrics.SelectionExhausted(metrics.ModeLive)
	zlog.Warn().Msgf("no seed artist yielded a track: session=%s seeds=%d", c.id, len(c.seeds))
	c.state = StateIdle
	c.publish(EventSelectionExhausted, nil, nil)
}

// start begins playback of a newly selected track and records it in the queue.
func (c *Controller) start(ctx context.Context, t track.Track) {
	if err := c.transport.StartPlayback(ctx, t.URI()); err != nil {
		zlog.Error().Msgf("failed to start playback: session=%s track=%s error=%v", c.id, t.ID, err)
		c.state = StateIdle
		c.publish(EventPlaybackFailed, &t, err)
		return
	}

	c.queue.Append(t)
	c.current = &t
	c.paused = false
	c.state = StatePlaying
	zlog.Info().Msgf("now playing: session=%s track=%s name=%q", c.id, t.ID, t.Name)
	c.publish(EventNowPlaying, &t, nil)
}

func (c *Controller) terminate() {
	if c.state == StateTerminated {
		return
	}
	c.state = StateTerminated
	c.paused = false
	zlog.Info().Msgf("live session stopped: session=%s played=%d", c.id, c.queue.Len())
	c.publish(EventStopped, nil, nil)
}

func (c *Controller) publish(eventType EventType, t *track.Track, err error) {
	var tr *track.Track
	if t != nil {
		cp := *t
		tr = &cp
	}
	c.notifier.Publish(Event{
		Type:      eventType,
		SessionID: c.id,
		Track:     tr,
		State:     c.state,
		Err:       err,
	})
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
