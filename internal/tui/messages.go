package tui

import (
	"context"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

type listLoadedMsg struct {
	res browse.Result
}

// seq identifies the detail view a result was fetched for
type detailLoadedMsg struct {
	seq uint64
	res browse.DetailResult
}

type reviewsLoadedMsg struct {
	seq uint64
	res browse.ReviewsResult
}

type genresLoadedMsg struct {
	genres *genre.Directory
	err    error
}

func (m Model) fetchList(req browse.Request) tea.Cmd {
	catalog, timeout := m.catalog, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return listLoadedMsg{res: browse.Fetch(ctx, catalog, req)}
	}
}

func (m Model) fetchDetail(seq uint64, req browse.DetailRequest) tea.Cmd {
	catalog, timeout := m.catalog, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return detailLoadedMsg{seq: seq, res: browse.LoadDetail(ctx, catalog, req)}
	}
}

func (m Model) fetchReviews(seq uint64, req browse.ReviewsRequest) tea.Cmd {
	catalog, timeout := m.catalog, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return reviewsLoadedMsg{seq: seq, res: browse.LoadReviews(ctx, catalog, req)}
	}
}

func (m Model) loadGenres() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	genres, err := genre.Load(ctx, m.catalog)
	return genresLoadedMsg{genres: genres, err: err}
}

func logFailure(what string, err error) {
	log.Error().Err(err).Str("view", what).Str("kind", service.KindOf(err).String()).Msg("Catalog request failed")
}
