package main

import (
	"classchat/internal/client"
	"classchat/internal/config"
	"classchat/internal/msgsync"
	"classchat/internal/ui"
	"classchat/internal/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	api := client.NewClient(cfg.BaseURL, cfg.Token)
	api.PageSize = cfg.PageSize
	api.HTTPClient.Timeout = cfg.HTTPTimeout
	api.Logger = logger.With().Str("component", "api").Logger()

	// Ask for whatever the environment did not provide
	details := utils.SessionDetails{Username: cfg.Username, Room: cfg.Room}
	if details.Room == "" {
		details.Rooms = roomNames(api, cfg.HTTPTimeout, logger)
	}
	details, err = utils.PromptMissing(os.Stdin, os.Stdout, details)
	if err != nil {
		return fmt.Errorf("error getting session details: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()
	if _, err := api.GetRoom(ctx, details.Room); err != nil {
		return err
	}
	members, err := api.ListMembers(ctx, details.Room)
	if err != nil {
		logger.Warn().Err(err).Str("room", details.Room).Msg("could not list members")
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	// The program is created after the synchronizer; handlers only fire
	// once Start is called below.
	var program *tea.Program
	syncer := msgsync.New(api,
		ui.Handlers(func(msg tea.Msg) { program.Send(msg) }),
		msgsync.WithInterval(cfg.PollInterval),
		msgsync.WithLogger(logger.With().Str("component", "msgsync").Logger()),
	)

	program = tea.NewProgram(ui.NewModel(ui.Options{
		Username:  details.Username,
		Room:      details.Room,
		Members:   members,
		Sender:    api,
		Refresher: syncer,
		Timeout:   cfg.HTTPTimeout,
	}), tea.WithAltScreen())

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("room", details.Room).
		Str("user", details.Username).
		Msg("starting classchat")

	if err := syncer.Start(details.Room, details.Username); err != nil {
		return err
	}
	defer syncer.Stop()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info().Msg("classchat stopped")
	return nil
}

// roomNames lists the server's rooms for the prompt; it returns nil when
// they cannot be listed
func roomNames(api *client.Client, timeout time.Duration, logger zerolog.Logger) []string {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rooms, err := api.ListRooms(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("could not list rooms")
		return nil
	}
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.RoomID)
	}
	return names
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(out).
			With().
			Timestamp().
			Logger()
	}
	return logger.Level(level)
}

func serveMetrics(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{},
	))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics endpoint failed")
		}
	}()
	return srv
}
