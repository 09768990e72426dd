package browse

import (
	"context"
	"errors"
	"sync"
	"testing"

	"movie-explorer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetailSource struct {
	mu          sync.Mutex
	castSize    int
	creditsErr  error
	movieErr    error
	reviewsErr  error
	reviewPages int
	reviewCalls []int
	movieCalls  int
	creditCalls int
}

func (f *fakeDetailSource) Movie(ctx context.Context, id int) (*model.MovieDetail, error) {
	f.mu.Lock()
	f.movieCalls++
	f.mu.Unlock()
	if f.movieErr != nil {
		return nil, f.movieErr
	}
	return &model.MovieDetail{ID: id, Title: "Matrix"}, nil
}

func (f *fakeDetailSource) Credits(ctx context.Context, id int) ([]model.CastMember, error) {
	f.mu.Lock()
	f.creditCalls++
	f.mu.Unlock()
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	cast := make([]model.CastMember, f.castSize)
	for i := range cast {
		cast[i] = model.CastMember{ID: i + 1, Name: "actor"}
	}
	return cast, nil
}

func (f *fakeDetailSource) Reviews(ctx context.Context, id int, page int) (*model.ReviewPage, error) {
	f.mu.Lock()
	f.reviewCalls = append(f.reviewCalls, page)
	f.mu.Unlock()
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return &model.ReviewPage{
		Page:         page,
		TotalPages:   f.reviewPages,
		TotalResults: f.reviewPages * 3,
		Results:      []model.Review{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}, nil
}

func TestDetail_LoadsAllThreeAndTruncatesCast(t *testing.T) {
	src := &fakeDetailSource{castSize: 20, reviewPages: 4}
	d := NewDetail(603)

	req := d.Begin()
	assert.Equal(t, StatusLoading, d.Status())
	assert.Equal(t, 1, req.ReviewPage)
	require.True(t, d.Apply(LoadDetail(context.Background(), src, req)))

	assert.Equal(t, StatusSuccess, d.Status())
	assert.Equal(t, "Matrix", d.Movie().Title)
	assert.Len(t, d.Cast(), MaxCast)
	assert.Len(t, d.Reviews(), 3)
	assert.Equal(t, 4, d.ReviewTotalPages())
	assert.Equal(t, 12, d.ReviewCount())
	assert.Equal(t, []int{1}, src.reviewCalls)
}

func TestDetail_ShortCastKept(t *testing.T) {
	src := &fakeDetailSource{castSize: 3, reviewPages: 1}
	d := NewDetail(1)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))
	assert.Len(t, d.Cast(), 3)
}

func TestDetail_CreditsFailureSuppressesEverything(t *testing.T) {
	boom := errors.New("credits down")
	src := &fakeDetailSource{castSize: 5, reviewPages: 2, creditsErr: boom}
	d := NewDetail(603)

	require.True(t, d.Apply(LoadDetail(context.Background(), src, d.Begin())))

	assert.Equal(t, StatusError, d.Status())
	assert.ErrorIs(t, d.Err(), boom)
	assert.Nil(t, d.Movie())
	assert.Empty(t, d.Cast())
	assert.Empty(t, d.Reviews())

	_, ok := d.SetReviewPage(2)
	assert.False(t, ok)
}

func TestDetail_ReviewPageRefetchesOnlyReviews(t *testing.T) {
	src := &fakeDetailSource{castSize: 2, reviewPages: 3}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))

	req, ok := d.SetReviewPage(2)
	require.True(t, ok)
	assert.True(t, d.ReviewsLoading())
	assert.Equal(t, StatusSuccess, d.Status())
	require.True(t, d.ApplyReviews(LoadReviews(context.Background(), src, req)))

	assert.False(t, d.ReviewsLoading())
	assert.Equal(t, 2, d.ReviewPage())
	assert.Equal(t, 1, src.movieCalls)
	assert.Equal(t, 1, src.creditCalls)
	assert.Equal(t, []int{1, 2}, src.reviewCalls)
	assert.NotNil(t, d.Movie())
}

func TestDetail_ReviewPageClamped(t *testing.T) {
	src := &fakeDetailSource{reviewPages: 3}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))

	req, ok := d.SetReviewPage(10)
	require.True(t, ok)
	assert.Equal(t, 3, req.Page)
}

func TestDetail_StaleReviewsDropped(t *testing.T) {
	src := &fakeDetailSource{reviewPages: 5}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))

	old, _ := d.SetReviewPage(2)
	fresh, _ := d.SetReviewPage(3)

	assert.True(t, d.ApplyReviews(LoadReviews(context.Background(), src, fresh)))
	assert.False(t, d.ApplyReviews(LoadReviews(context.Background(), src, old)))
	assert.Equal(t, 3, d.ReviewPage())
}

func TestDetail_BeginInvalidatesReviewsInFlight(t *testing.T) {
	src := &fakeDetailSource{reviewPages: 5}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))

	rr, _ := d.SetReviewPage(2)
	full := d.Begin()
	assert.False(t, d.ApplyReviews(LoadReviews(context.Background(), src, rr)))
	assert.True(t, d.Apply(LoadDetail(context.Background(), src, full)))
}

func TestDetail_ReviewsReloadFailureFailsView(t *testing.T) {
	src := &fakeDetailSource{reviewPages: 5}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))

	src.reviewsErr = errors.New("reviews down")
	req, _ := d.SetReviewPage(2)
	d.ApplyReviews(LoadReviews(context.Background(), src, req))

	assert.Equal(t, StatusError, d.Status())
	assert.Nil(t, d.Movie())
	assert.Empty(t, d.Cast())
}

func TestDetail_ZeroReviewPagesFloorsToOne(t *testing.T) {
	src := &fakeDetailSource{reviewPages: 0}
	d := NewDetail(603)
	d.Apply(LoadDetail(context.Background(), src, d.Begin()))
	assert.Equal(t, 1, d.ReviewTotalPages())
	assert.Equal(t, 1, d.ReviewControls().Total)
}
