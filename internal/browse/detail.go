package browse

import (
	"context"

	"movie-explorer/internal/model"
	"movie-explorer/internal/pagination"

	"golang.org/x/sync/errgroup"
)

// MaxCast is the number of cast entries displayed
const MaxCast = 8

// DetailSource is the part of the catalog the detail view needs
type DetailSource interface {
	Movie(ctx context.Context, id int) (*model.MovieDetail, error)
	Credits(ctx context.Context, id int) ([]model.CastMember, error)
	Reviews(ctx context.Context, id int, page int) (*model.ReviewPage, error)
}

// DetailRequest loads the whole detail view
type DetailRequest struct {
	Generation uint64
	MovieID    int
	ReviewPage int
}

// DetailResult is the outcome of a DetailRequest; Err set means nothing else is usable.
type DetailResult struct {
	Generation uint64
	Movie      *model.MovieDetail
	Cast       []model.CastMember
	Reviews    *model.ReviewPage
	Err        error
}

// ReviewsRequest reloads only the reviews section
type ReviewsRequest struct {
	Generation uint64
	MovieID    int
	Page       int
}

// ReviewsResult is the outcome of a ReviewsRequest
type ReviewsResult struct {
	Generation uint64
	Reviews    *model.ReviewPage
	Err        error
}

// LoadDetail fetches movie, credits and reviews concurrently.
// The first failure cancels the others and becomes the result.
func LoadDetail(ctx context.Context, src DetailSource, req DetailRequest) DetailResult {
	var (
		movie   *model.MovieDetail
		cast    []model.CastMember
		reviews *model.ReviewPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movie, err = src.Movie(gctx, req.MovieID)
		return err
	})
	g.Go(func() error {
		var err error
		cast, err = src.Credits(gctx, req.MovieID)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = src.Reviews(gctx, req.MovieID, req.ReviewPage)
		return err
	})

	if err := g.Wait(); err != nil {
		return DetailResult{Generation: req.Generation, Err: err}
	}
	return DetailResult{
		Generation: req.Generation,
		Movie:      movie,
		Cast:       cast,
		Reviews:    reviews,
	}
}

// LoadReviews fetches one page of reviews
func LoadReviews(ctx context.Context, src DetailSource, req ReviewsRequest) ReviewsResult {
	reviews, err := src.Reviews(ctx, req.MovieID, req.Page)
	if err != nil {
		return ReviewsResult{Generation: req.Generation, Err: err}
	}
	return ReviewsResult{Generation: req.Generation, Reviews: reviews}
}

// Detail is the state of one movie's detail view.
// Display is all-or-nothing: any failed fetch hides every section.
type Detail struct {
	movieID int

	status         Status
	reviewsLoading bool
	err            error

	movie        *model.MovieDetail
	cast         []model.CastMember
	reviews      []model.Review
	reviewPage   int
	reviewTotal  int
	reviewsCount int

	generation        uint64
	reviewsGeneration uint64
}

// NewDetail returns an idle detail view for movieID
func NewDetail(movieID int) *Detail {
	return &Detail{
		movieID:     movieID,
		reviewPage:  1,
		reviewTotal: 1,
	}
}

// MovieID returns the movie shown
func (d *Detail) MovieID() int { return d.movieID }

// Status returns the fetch status of the view
func (d *Detail) Status() Status { return d.status }

// ReviewsLoading reports whether a reviews-only reload is in flight
func (d *Detail) ReviewsLoading() bool { return d.reviewsLoading }

// Err returns the failure that put the view in error state
func (d *Detail) Err() error { return d.err }

// Movie returns the movie detail, nil unless loaded
func (d *Detail) Movie() *model.MovieDetail { return d.movie }

// Cast returns at most MaxCast cast entries
func (d *Detail) Cast() []model.CastMember { return d.cast }

// Reviews returns every review of the current review page
func (d *Detail) Reviews() []model.Review { return d.reviews }

// ReviewPage returns the current review page
func (d *Detail) ReviewPage() int { return d.reviewPage }

// ReviewTotalPages returns the number of review pages, at least 1
func (d *Detail) ReviewTotalPages() int { return d.reviewTotal }

// ReviewCount returns the total number of reviews
func (d *Detail) ReviewCount() int { return d.reviewsCount }

// ReviewControls returns the pagination bar for the reviews section
func (d *Detail) ReviewControls() pagination.Controls {
	return pagination.NewControls(d.reviewPage, d.reviewTotal)
}

// Begin schedules a full load. Any reviews reload in flight becomes stale.
func (d *Detail) Begin() DetailRequest {
	d.generation++
	d.reviewsGeneration++
	d.status = StatusLoading
	d.reviewsLoading = false
	d.clear()
	return DetailRequest{
		Generation: d.generation,
		MovieID:    d.movieID,
		ReviewPage: d.reviewPage,
	}
}

// Apply stores a full load result if it answers the latest Begin
func (d *Detail) Apply(res DetailResult) bool {
	if res.Generation != d.generation {
		return false
	}
	if res.Err != nil {
		d.fail(res.Err)
		return true
	}

	d.status = StatusSuccess
	d.err = nil
	d.movie = res.Movie
	d.cast = res.Cast
	if len(d.cast) > MaxCast {
		d.cast = d.cast[:MaxCast]
	}
	d.setReviews(res.Reviews)
	return true
}

// SetReviewPage schedules a reviews-only reload. It is refused (false) unless
// the view is fully loaded.
func (d *Detail) SetReviewPage(p int) (ReviewsRequest, bool) {
	if d.status != StatusSuccess {
		return ReviewsRequest{}, false
	}
	d.reviewPage = pagination.ClampPage(p, d.reviewTotal)
	d.reviewsGeneration++
	d.reviewsLoading = true
	return ReviewsRequest{
		Generation: d.reviewsGeneration,
		MovieID:    d.movieID,
		Page:       d.reviewPage,
	}, true
}

// ApplyReviews stores a reviews reload result if it answers the latest SetReviewPage
func (d *Detail) ApplyReviews(res ReviewsResult) bool {
	if res.Generation != d.reviewsGeneration || !d.reviewsLoading {
		return false
	}
	d.reviewsLoading = false
	if res.Err != nil {
		d.fail(res.Err)
		return true
	}
	d.setReviews(res.Reviews)
	return true
}

func (d *Detail) setReviews(page *model.ReviewPage) {
	if page == nil {
		d.reviews = nil
		return
	}
	d.reviews = page.Results
	d.reviewsCount = page.TotalResults
	d.reviewTotal = page.TotalPages
	if d.reviewTotal < 1 {
		d.reviewTotal = 1
	}
	if page.Page >= 1 {
		d.reviewPage = page.Page
	}
}

func (d *Detail) fail(err error) {
	d.status = StatusError
	d.err = err
	d.clear()
}

func (d *Detail) clear() {
	d.movie = nil
	d.cast = nil
	d.reviews = nil
}
