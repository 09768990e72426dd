package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/middleware"
	"movie-explorer/internal/model"
	"movie-explorer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Catalog is everything the handlers read from the remote catalog
type Catalog interface {
	browse.Lister
	browse.DetailSource
	Genres(ctx context.Context) ([]model.Genre, error)
}

// ErrorRecorder counts failed catalog calls
type ErrorRecorder interface {
	RecordCatalogError(ctx context.Context, kind string) error
}

// filterParams reads the list filter from the query string.
// Unparsable genre ids and pages are ignored, and so are ids missing from a
// loaded directory. The page is bounded to the reachable range.
func filterParams(c *gin.Context, known *genre.Directory) (query string, genres []int, page int) {
	query = c.Query("q")
	for _, raw := range c.QueryArray("genre") {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			continue
		}
		if known.Len() > 0 && !known.Has(id) {
			continue
		}
		genres = append(genres, id)
	}
	return query, genres, service.ClampListPage(pageParam(c, "page"))
}

func pageParam(c *gin.Context, key string) int {
	page, err := strconv.Atoi(c.Query(key))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func movieIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// loadList restores the filter into a fresh state and fetches it. A page past
// the end is clamped and fetched once more.
func loadList(ctx context.Context, catalog browse.Lister, query string, genres []int, page int) *browse.State {
	state := browse.NewState()
	state.Apply(browse.Fetch(ctx, catalog, state.Restore(query, genres, page)))
	if req, ok := state.Reconcile(); ok {
		state.Apply(browse.Fetch(ctx, catalog, req))
	}
	return state
}

func loadDetail(ctx context.Context, catalog browse.DetailSource, id, reviewPage int) *browse.Detail {
	d := browse.NewDetail(id)
	req := d.Begin()
	if reviewPage > 1 {
		req.ReviewPage = reviewPage
	}
	d.Apply(browse.LoadDetail(ctx, catalog, req))
	return d
}

// reportCatalogError logs a failed catalog call and counts it
func reportCatalogError(c *gin.Context, recorder ErrorRecorder, err error) {
	_ = c.Error(err)

	event := log.Error().Err(err).Str("request_id", middleware.GetRequestID(c))
	var fe *service.FetchError
	if errors.As(err, &fe) {
		event = event.Str("kind", fe.Kind.String()).Str("endpoint", fe.Endpoint)
		if fe.StatusCode != 0 {
			event = event.Int("upstream_status", fe.StatusCode)
		}
	}
	event.Msg("Catalog request failed")

	if recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if rerr := recorder.RecordCatalogError(ctx, service.KindOf(err).String()); rerr != nil {
		log.Warn().Err(rerr).Msg("Failed to record catalog error")
	}
}
