// Package main provides the seedmix command line entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/huh/spinner"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/app/builder"
	"github.com/osa030/seedmix/internal/app/filter"
	"github.com/osa030/seedmix/internal/app/notification"
	"github.com/osa030/seedmix/internal/app/playback"
	"github.com/osa030/seedmix/internal/app/seed"
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/infra/config"
	"github.com/osa030/seedmix/internal/infra/logger"
	"github.com/osa030/seedmix/internal/infra/metrics"
	"github.com/osa030/seedmix/internal/infra/spotify"
)

var (
	app         = kingpin.New("seedmix", "Build playlists and run live sessions from seed artists")
	configPath  = app.Flag("config", "Path to config file").Default("config/seedmix.yaml").String()
	verbose     = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile     = app.Flag("logfile", "Path to log file (default: stderr)").String()
	metricsAddr = app.Flag("metrics-addr", "Serve Prometheus metrics on this address (e.g. :9090)").String()

	playlistCmd  = app.Command("playlist", "Build a playlist from the seed artists")
	playlistName = playlistCmd.Flag("name", "Playlist name (default: from config)").String()

	liveCmd = app.Command("live", "Run an interactive live session")

	searchCmd   = app.Command("search", "Search artists")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()
	searchLimit = searchCmd.Flag("limit", "Maximum number of results").Default("5").Int()

	topArtistsCmd   = app.Command("top-artists", "List your top artists")
	topArtistsLimit = topArtistsCmd.Flag("limit", "Maximum number of results").Default("5").Int()

	relatedCmd    = app.Command("related", "List artists related to an artist")
	relatedArtist = relatedCmd.Arg("artist", "Artist ID, URI or URL").Required().String()
	relatedLimit  = relatedCmd.Flag("limit", "Maximum number of results").Default("5").Int()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available ranking criteria and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
		File:   "",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(command, cfg); err != nil {
		zlog.Error().Msgf("seedmix error: %v", err)
		os.Exit(1)
	}
}

// run executes the selected command. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(command string, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Validate ranking criteria
	spec, err := filter.ParseSpec(cfg.Filters)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	// Create Spotify client
	spotifyClient, err := spotify.New(ctx, spotify.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		RefreshToken:      cfg.Spotify.RefreshToken,
		Market:            cfg.Spotify.Market,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify client")
	}

	m := metrics.New()
	if *metricsAddr != "" {
		shutdown := serveMetrics(*metricsAddr, m)
		defer shutdown()
	}

	switch command {
	case searchCmd.FullCommand():
		artists, err := spotifyClient.SearchArtists(ctx, *searchQuery, *searchLimit)
		if err != nil {
			return err
		}
		printArtists(artists)
		return nil

	case topArtistsCmd.FullCommand():
		artists, err := spotifyClient.TopArtists(ctx, *topArtistsLimit)
		if err != nil {
			return err
		}
		printArtists(artists)
		return nil

	case relatedCmd.FullCommand():
		artists, err := spotifyClient.RelatedArtists(ctx, artist.ParseID(*relatedArtist), *relatedLimit)
		if err != nil {
			return err
		}
		printArtists(artists)
		return nil
	}

	// Resolve seed artists
	chain, err := seed.NewChainFromConfig(cfg, spotifyClient)
	if err != nil {
		return errors.Wrap(err, "failed to create seed providers")
	}
	seeds, err := chain.Resolve(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to resolve seed artists")
	}
	zlog.Info().Msgf("Resolved seed artists: count=%d spec=%s", len(seeds), spec)
	for i, s := range seeds {
		zlog.Debug().Msgf("seed artist: index=%d artist=%s", i+1, s)
	}

	switch command {
	case playlistCmd.FullCommand():
		return runPlaylist(ctx, cfg, spotifyClient, m, artist.IDs(seeds), spec)
	case liveCmd.FullCommand():
		return runLive(ctx, spotifyClient, m, artist.IDs(seeds), spec)
	default:
		return errors.Newf("unknown command: %s", command)
	}
}

// runPlaylist builds one playlist and prints its URL.
func runPlaylist(ctx context.Context, cfg *config.Config, client *spotify.Client, m *metrics.Metrics, seeds []artist.ID, spec filter.Spec) error {
	// Owner is resolved once per run
	ownerID, err := client.CurrentUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to resolve current user")
	}

	name := cfg.Playlist.Name
	if *playlistName != "" {
		name = *playlistName
	}

	b := builder.New(client, builder.Config{
		OwnerID:       ownerID,
		Public:        cfg.Playlist.IsPublic(),
		MaxIdlePasses: cfg.Playlist.MaxIdlePasses,
	}, m)

	var url string
	build := func(ctx context.Context) error {
		pl, err := b.Build(ctx, seeds, spec, name)
		if err != nil {
			return err
		}
		url = client.GetPlaylistURL(pl.ID)
		return nil
	}

	if err := spinner.New().Title("Building playlist...").Context(ctx).ActionWithErr(build).Run(); err != nil {
		return errors.Wrap(err, "failed to build playlist")
	}

	fmt.Println(url)
	return nil
}

// runLive runs an interactive session on stdin.
func runLive(ctx context.Context, client *spotify.Client, m *metrics.Metrics, seeds []artist.ID, spec filter.Spec) error {
	notifications := notification.NewManager()
	defer notifications.Close()
	notifications.Subscribe(notification.NewConsole(os.Stdout))

	controller, err := playback.NewController(playback.Config{
		Seeds: seeds,
		Spec:  spec,
	}, client, client, notifications, m)
	if err != nil {
		return errors.Wrap(err, "failed to create live session")
	}

	// Reads from stdin cannot be interrupted, so the session runs in its own
	// goroutine and a signal ends the process without waiting for it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- controller.Run(ctx, playback.NewReaderSource(os.Stdin, os.Stdout))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		zlog.Info().Msgf("Received shutdown signal: session=%s", controller.ID())
		return nil
	}
}

// serveMetrics starts the metrics endpoint and returns its shutdown function.
func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info().Msgf("Starting metrics server: addr=%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error().Msgf("Metrics server error: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zlog.Error().Msgf("Failed to shutdown metrics server: %v", err)
		}
	}
}

// printFilters prints available ranking criteria in priority order.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, c := range filter.GetRegistered() {
		fmt.Printf("  %-30s - %s\n", c.Name(), c.Description())
	}
}

// printArtists prints artists one per line.
func printArtists(artists []artist.Artist) {
	if len(artists) == 0 {
		fmt.Println("No artists found")
		return
	}
	for i, a := range artists {
		fmt.Printf("  %2d. %-40s %s\n", i+1, a.Name, a.ID)
	}
}
