package main

import (
	"fmt"
	"io"
	"os"

	"movie-explorer/internal/config"
	"movie-explorer/internal/service"
	"movie-explorer/internal/tui"
	"movie-explorer/pkg/httpclient"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	// stdout belongs to the UI; logs go to a file or nowhere
	var out io.Writer = io.Discard
	if cfg.TUILogFile != "" {
		f, err := os.OpenFile(cfg.TUILogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	httpClient := httpclient.NewClient(cfg.HTTPTimeout)
	tmdbService := service.NewTMDBService(httpClient, service.TMDBOptions{
		APIKeys:         cfg.TMDBAPIKeys,
		BaseURL:         cfg.TMDBBaseURL,
		Language:        cfg.Language,
		ReviewsLanguage: cfg.ReviewsLanguage,
	})
	log.Info().Int("keys", tmdbService.KeyCount()).Msg("Starting terminal explorer")

	p := tea.NewProgram(tui.New(tmdbService, cfg.HTTPTimeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Terminal UI failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
