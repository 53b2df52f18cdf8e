package playback

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/seedmix/internal/app/filter"
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/track"
)

type mockCatalog struct {
	tracks map[artist.ID][]track.Track
	errs   map[artist.ID]error
	calls  []artist.ID
}

func (m *mockCatalog) TopTracks(ctx context.Context, artistID artist.ID) ([]track.Track, error) {
	m.calls = append(m.calls, artistID)
	if err := m.errs[artistID]; err != nil {
		return nil, err
	}
	return m.tracks[artistID], nil
}

type mockTransport struct {
	calls    []string
	startErr map[string]error
	pauseErr error
}

func (m *mockTransport) StartPlayback(ctx context.Context, trackURI string) error {
	m.calls = append(m.calls, "start:"+trackURI)
	return m.startErr[trackURI]
}

func (m *mockTransport) PausePlayback(ctx context.Context) error {
	m.calls = append(m.calls, "pause")
	return m.pauseErr
}

type recorder struct {
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// twoArtistCatalog: A1 ranks as [T1, T2], A2 as [T3].
func twoArtistCatalog() *mockCatalog {
	return &mockCatalog{
		tracks: map[artist.ID][]track.Track{
			"A1": {
				{ID: "T2", Name: "Second", Popularity: 40},
				{ID: "T1", Name: "First", Popularity: 80},
			},
			"A2": {
				{ID: "T3", Name: "Third", Popularity: 60},
			},
		},
	}
}

type fixture struct {
	controller *Controller
	catalog    *mockCatalog
	transport  *mockTransport
	events     *recorder
	sleeps     []time.Duration
}

func newFixture(t *testing.T, catalog *mockCatalog, seeds ...artist.ID) *fixture {
	t.Helper()
	f := &fixture{
		catalog:   catalog,
		transport: &mockTransport{},
		events:    &recorder{},
	}
	c, err := NewController(Config{Seeds: seeds, Spec: filter.MustParseSpec("popularity")}, catalog, f.transport, f.events, nil)
	require.NoError(t, err)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	f.controller = c
	return f
}

func TestController_SkipWrapsRoundRobin(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")

	err := f.controller.Run(context.Background(), NewSliceSource("s", "s", "q"))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"start:spotify:track:T1",
		"start:spotify:track:T3",
		"start:spotify:track:T1",
	}, f.transport.calls)

	state := f.controller.Snapshot()
	assert.Equal(t, []string{"T1", "T3", "T1"}, state.QueueIDs())
	assert.Equal(t, StateTerminated, state.State)
	assert.Equal(t, []time.Duration{trackStartDelay, trackStartDelay}, f.sleeps)
	assert.Equal(t, []EventType{
		EventNowPlaying,
		EventSkipped, EventNowPlaying,
		EventSkipped, EventNowPlaying,
		EventStopped,
	}, f.events.types())
}

func TestController_PauseReplaySkip(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")

	err := f.controller.Run(context.Background(), NewSliceSource("p", "r", "s"))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"start:spotify:track:T1",
		"pause",
		"start:spotify:track:T1",
		"start:spotify:track:T3",
	}, f.transport.calls)
	assert.Equal(t, []string{"T1", "T3"}, f.controller.Snapshot().QueueIDs(), "replay does not append")
	assert.Equal(t, []time.Duration{trackStartDelay}, f.sleeps, "only the skip waits")

	require.Len(t, f.events.events, 6)
	assert.Equal(t, EventReplaying, f.events.events[2].Type)
	assert.Equal(t, "T1", f.events.events[2].Track.ID)
	assert.Equal(t, f.events.events[0].Track.ID, f.events.events[2].Track.ID,
		"replay restarts the track of the preceding now playing event")
}

func TestController_PauseState(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	ctx := context.Background()
	f.controller.selectNext(ctx)

	f.controller.handle(ctx, CommandPause)
	state := f.controller.Snapshot()
	assert.True(t, state.Paused)
	assert.Equal(t, StatePaused, state.State)

	f.controller.handle(ctx, CommandReplay)
	state = f.controller.Snapshot()
	assert.False(t, state.Paused, "replay resumes playback")
	assert.Equal(t, StatePlaying, state.State)
	assert.Equal(t, 1, state.Cursor, "replay does not move the cursor")
}

func TestController_UnknownCommandHasNoEffect(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	ctx := context.Background()
	f.controller.selectNext(ctx)

	before := f.controller.Snapshot()
	catalogCalls := len(f.catalog.calls)
	transportCalls := len(f.transport.calls)
	eventCount := len(f.events.events)

	for _, token := range []string{"x", "", "skip", "S", "quit"} {
		f.controller.handle(ctx, ParseCommand(token))
	}

	assert.Equal(t, before, f.controller.Snapshot())
	assert.Len(t, f.catalog.calls, catalogCalls)
	assert.Len(t, f.transport.calls, transportCalls)
	assert.Len(t, f.events.events, eventCount)
}

func TestController_EmptyArtistDoesNotConsumeSlot(t *testing.T) {
	catalog := twoArtistCatalog()
	catalog.tracks["EMPTY"] = nil
	f := newFixture(t, catalog, "EMPTY", "A2", "A1")

	err := f.controller.Run(context.Background(), NewSliceSource("s", "s", "q"))

	require.NoError(t, err)
	assert.Equal(t, []string{"T3", "T1", "T3"}, f.controller.Snapshot().QueueIDs())
	assert.Equal(t, []artist.ID{"EMPTY", "A2", "A1", "EMPTY", "A2"}, catalog.calls)
}

func TestController_CatalogErrorSkipsArtist(t *testing.T) {
	catalog := twoArtistCatalog()
	catalog.errs = map[artist.ID]error{"A1": errors.New("503 Service Unavailable")}
	f := newFixture(t, catalog, "A1", "A2")

	err := f.controller.Run(context.Background(), NewSliceSource("q"))

	require.NoError(t, err)
	assert.Equal(t, []string{"start:spotify:track:T3"}, f.transport.calls)
}

func TestController_SelectionExhausted(t *testing.T) {
	catalog := &mockCatalog{tracks: map[artist.ID][]track.Track{}}
	f := newFixture(t, catalog, "A1", "A2")
	ctx := context.Background()

	f.controller.selectNext(ctx)

	assert.Equal(t, StateIdle, f.controller.Snapshot().State)
	assert.Equal(t, []EventType{EventSelectionExhausted}, f.events.types())
	assert.Len(t, catalog.calls, 2, "each seed is tried once")
	assert.Empty(t, f.transport.calls)

	// Pause and replay have nothing to act on
	f.controller.handle(ctx, CommandPause)
	f.controller.handle(ctx, CommandReplay)
	assert.Empty(t, f.transport.calls)
	assert.Equal(t, StateIdle, f.controller.Snapshot().State)

	f.controller.handle(ctx, CommandQuit)
	assert.Equal(t, StateTerminated, f.controller.Snapshot().State)
}

func TestController_SkipRetriesAfterExhaustion(t *testing.T) {
	catalog := &mockCatalog{tracks: map[artist.ID][]track.Track{}}
	f := newFixture(t, catalog, "A1")
	ctx := context.Background()
	f.controller.selectNext(ctx)

	catalog.tracks["A1"] = []track.Track{{ID: "T9"}}
	f.controller.handle(ctx, CommandSkip)

	assert.Equal(t, StatePlaying, f.controller.Snapshot().State)
	assert.Equal(t, []string{"start:spotify:track:T9"}, f.transport.calls)
}

func TestController_StartFailureKeepsSessionAlive(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	f.transport.startErr = map[string]error{"spotify:track:T1": errors.New("404 NO_ACTIVE_DEVICE")}

	err := f.controller.Run(context.Background(), NewSliceSource("r", "s", "q"))

	require.NoError(t, err)
	assert.Equal(t, []string{"T3"}, f.controller.Snapshot().QueueIDs(), "failed start is not queued")
	assert.Equal(t, []EventType{EventPlaybackFailed, EventNowPlaying, EventStopped}, f.events.types())
	assert.Error(t, f.events.events[0].Err)
}

func TestController_PauseFailure(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	f.transport.pauseErr = errors.New("403 Forbidden")
	ctx := context.Background()
	f.controller.selectNext(ctx)

	f.controller.handle(ctx, CommandPause)

	state := f.controller.Snapshot()
	assert.False(t, state.Paused)
	assert.Equal(t, StatePlaying, state.State)
	assert.Equal(t, EventPlaybackFailed, f.events.events[len(f.events.events)-1].Type)
}

func TestController_SourceExhaustedTerminates(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")

	err := f.controller.Run(context.Background(), NewSliceSource())

	require.NoError(t, err)
	assert.Equal(t, StateTerminated, f.controller.Snapshot().State)
	assert.True(t, errors.Is(f.controller.Run(context.Background(), NewSliceSource("s")), ErrTerminated))
}

func TestController_ContextCancelled(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	ctx, cancel := context.WithCancel(context.Background())

	source := sourceFunc(func(ctx context.Context) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	err := f.controller.Run(ctx, source)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateTerminated, f.controller.Snapshot().State)
}

func TestController_SourceError(t *testing.T) {
	f := newFixture(t, twoArtistCatalog(), "A1", "A2")
	cause := errors.New("terminal gone")

	err := f.controller.Run(context.Background(), sourceFunc(func(ctx context.Context) (string, error) {
		return "", cause
	}))

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to read command: terminal gone", err.Error())
}

func TestNewController_NoSeeds(t *testing.T) {
	_, err := NewController(Config{}, &mockCatalog{}, &mockTransport{}, nil, nil)

	assert.True(t, errors.Is(err, ErrNoSeedArtists))
}

type sourceFunc func(ctx context.Context) (string, error)

func (f sourceFunc) Next(ctx context.Context) (string, error) {
	return f(ctx)
}

var _ CommandSource = sourceFunc(nil)
