// Package main provides the ytplayer entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/ytplayer/internal/api/rest"
	"github.com/osa030/ytplayer/internal/app/command"
	"github.com/osa030/ytplayer/internal/app/playerview"
	"github.com/osa030/ytplayer/internal/domain/player"
	"github.com/osa030/ytplayer/internal/infra/assets"
	"github.com/osa030/ytplayer/internal/infra/bridge"
	"github.com/osa030/ytplayer/internal/infra/config"
	"github.com/osa030/ytplayer/internal/infra/logger"
	"github.com/osa030/ytplayer/internal/infra/oembed"
)

var (
	app        = kingpin.New("ytplayer", "Embedded YouTube player served to a browser page")
	configPath = app.Flag("config", "Path to config file (built-in defaults when empty)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	serveCmd = app.Command("serve", "Serve the player page and the control API (default)").Default()

	infoCmd = app.Command("info", "Print metadata of a YouTube video")
	infoURL = infoCmd.Arg("url", "Video URL").Required().String()

	parseEventCmd  = app.Command("parse-event", "Parse an event as reported by the player page")
	parseEventName = parseEventCmd.Arg("name", "Event name").Required().String()
	parseEventData = parseEventCmd.Arg("data", "Event data").String()

	videoIDCmd = app.Command("video-id", "Print the video ID of a YouTube URL")
	videoIDURL = videoIDCmd.Arg("url", "Video URL").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	var err error
	switch cmd {
	case videoIDCmd.FullCommand():
		err = printVideoID(*videoIDURL)
	case parseEventCmd.FullCommand():
		err = printEvent(*parseEventName, parseEventData)
	case infoCmd.FullCommand():
		err = printInfo(*infoURL)
	case serveCmd.FullCommand():
		err = serve()
	}
	if err != nil {
		zlog.Error().Msgf("%s: %v", cmd, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default()
	}
	zlog.Info().Msgf("Loading config from %s", *configPath)
	return config.Load(*configPath)
}

func printVideoID(raw string) error {
	id, err := player.VideoIDFromString(raw)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func printEvent(name string, data *string) error {
	// kingpin leaves optional args empty; an empty value means "no data".
	if data != nil && *data == "" {
		data = nil
	}
	return printJSON(player.Summarize(player.ParseEvent(name, data)))
}

func printInfo(raw string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := player.VideoIDFromString(raw)
	if err != nil {
		return err
	}

	client := oembed.New(oembed.Config{Endpoint: cfg.OEmbed.Endpoint, Timeout: cfg.OEmbedTimeout()})
	data, err := client.Lookup(context.Background(), id)
	if err != nil {
		return err
	}
	return printJSON(data)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// serve runs the player server until a shutdown signal arrives.
func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	vars, err := cfg.PlayerParameters()
	if err != nil {
		return err
	}

	var template playerview.TemplateLoader = assets.Embedded()
	if cfg.Player.TemplatePath != "" {
		template = assets.FromFile(cfg.Player.TemplatePath)
	}

	engine := bridge.New(bridge.Config{ScriptTimeout: cfg.ScriptTimeout()})
	defer engine.Close()

	controller := playerview.NewController(engine, template, playerview.Config{
		BaseURL:      cfg.Player.BaseURL,
		IsVoidResult: command.VoidResultCodes(cfg.Dispatch.VoidErrorCodes...),
	})
	controller.SetDelegate(playerview.DelegateFunc(logEvent))

	if err := loadStartup(controller, cfg, vars); err != nil {
		return err
	}

	info := oembed.New(oembed.Config{Endpoint: cfg.OEmbed.Endpoint, Timeout: cfg.OEmbedTimeout()})
	api := rest.NewHandler(controller, info, rest.Config{QueryTimeout: cfg.ScriptTimeout()})

	router := chi.NewRouter()
	engine.Mount(router)
	api.Mount(router)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Disconnect the page first so open websocket handlers return.
	engine.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// loadStartup loads the configured video, URL or playlist. Without one the
// page stays blank until the API loads something.
func loadStartup(c *playerview.Controller, cfg *config.Config, vars player.Parameters) error {
	switch {
	case cfg.Player.VideoID != "":
		zlog.Info().Msgf("Loading video: video_id=%s", cfg.Player.VideoID)
		return c.LoadVideoByID(cfg.Player.VideoID, vars)
	case cfg.Player.VideoURL != "":
		zlog.Info().Msgf("Loading video: url=%s", cfg.Player.VideoURL)
		u, err := url.Parse(cfg.Player.VideoURL)
		if err != nil {
			return errors.Wrap(err, "invalid player.video_url")
		}
		return c.LoadVideoByURL(u, vars)
	case cfg.Player.PlaylistID != "":
		zlog.Info().Msgf("Loading playlist: playlist_id=%s", cfg.Player.PlaylistID)
		return c.LoadPlaylist(cfg.Player.PlaylistID)
	default:
		zlog.Info().Msg("No startup video configured, waiting for the API")
		return nil
	}
}

func logEvent(c *playerview.Controller, event player.Event) {
	s := player.Summarize(event)
	switch event.(type) {
	case player.ErrorOccurred:
		zlog.Warn().Msgf("Player error: %v", s.Value)
	case player.Unknown:
		zlog.Debug().Msgf("Unhandled player event: name=%s value=%v", s.Name, s.Value)
	default:
		zlog.Info().Msgf("Player event: name=%s value=%v lifecycle=%s", s.Name, s.Value, c.Lifecycle())
	}
}
