package browse

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"movie-explorer/internal/model"
	"movie-explorer/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	queries []service.ListQuery
	page    *model.MoviePage
	err     error
}

func (f *fakeLister) ListMovies(ctx context.Context, q service.ListQuery) (*model.MoviePage, error) {
	f.queries = append(f.queries, q)
	return f.page, f.err
}

func moviePage(total int, ids ...int) *model.MoviePage {
	p := &model.MoviePage{TotalResults: total, Results: []model.MovieSummary{}}
	for _, id := range ids {
		p.Results = append(p.Results, model.MovieSummary{ID: id, Title: "m"})
	}
	return p
}

func TestState_InitialIdle(t *testing.T) {
	s := NewState()
	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, 1, s.Page())
	assert.Equal(t, 1, s.TotalPages())
	assert.False(t, s.ShowPagination())
	assert.False(t, s.ShowLoading())
}

func TestState_SearchThenDiscoverResetsPage(t *testing.T) {
	l := &fakeLister{page: moviePage(95, 1, 2, 3)}
	s := NewState()

	req := s.SetQuery("matrix")
	require.True(t, s.Apply(Fetch(context.Background(), l, req)))
	req = s.SetPage(4)
	require.True(t, s.Apply(Fetch(context.Background(), l, req)))
	assert.Equal(t, 4, s.Page())

	s.SetQuery("")
	req = s.ToggleGenre(28)
	assert.Equal(t, 1, req.Page)
	require.True(t, s.Apply(Fetch(context.Background(), l, req)))

	require.Len(t, l.queries, 3)
	assert.True(t, l.queries[0].SearchMode())
	assert.Equal(t, 1, l.queries[0].Page)
	assert.Equal(t, 4, l.queries[1].Page)
	assert.False(t, l.queries[2].SearchMode())
	assert.Equal(t, []int{28}, l.queries[2].Genres)
	assert.Equal(t, 1, l.queries[2].Page)
}

func TestState_EveryMutationIssuesNewGeneration(t *testing.T) {
	s := NewState()
	g1 := s.Begin().Generation
	g2 := s.SetQuery("a").Generation
	g3 := s.ToggleGenre(12).Generation
	g4 := s.SetGenres([]int{1, 2}).Generation
	g5 := s.SetPage(2).Generation
	assert.True(t, g1 < g2 && g2 < g3 && g3 < g4 && g4 < g5)
	assert.Equal(t, g5, s.Generation())
	assert.Equal(t, StatusLoading, s.Status())
}

func TestState_StaleResultDropped(t *testing.T) {
	s := NewState()
	old := s.SetQuery("star")
	fresh := s.SetQuery("star wars")

	assert.True(t, s.Apply(Result{Generation: fresh.Generation, Page: moviePage(1, 42)}))
	assert.False(t, s.Apply(Result{Generation: old.Generation, Page: moviePage(300, 7, 8)}))

	require.Len(t, s.Movies(), 1)
	assert.Equal(t, 42, s.Movies()[0].ID)
	assert.Equal(t, 1, s.TotalResults())
}

func TestState_StaleErrorDropped(t *testing.T) {
	s := NewState()
	old := s.SetPage(2)
	fresh := s.SetPage(3)
	require.True(t, s.Apply(Result{Generation: fresh.Generation, Page: moviePage(50, 1)}))
	assert.False(t, s.Apply(Result{Generation: old.Generation, Err: errors.New("late")}))
	assert.Equal(t, StatusSuccess, s.Status())
}

func TestState_HTTP500HidesCardsAndPagination(t *testing.T) {
	l := &fakeLister{err: &service.FetchError{Kind: service.KindHTTPStatus, StatusCode: http.StatusInternalServerError}}
	s := NewState()
	s.Apply(Fetch(context.Background(), l, s.Begin()))

	assert.True(t, s.ShowError())
	assert.Empty(t, s.Movies())
	assert.False(t, s.ShowPagination())
	assert.False(t, s.ShowEmpty())
	assert.Equal(t, service.KindHTTPStatus, service.KindOf(s.Err()))
}

func TestState_EmptySuccess(t *testing.T) {
	s := NewState()
	req := s.SetQuery("zzzz")
	s.Apply(Result{Generation: req.Generation, Page: moviePage(0)})

	assert.True(t, s.ShowEmpty())
	assert.False(t, s.ShowPagination())
	assert.Equal(t, 1, s.TotalPages())
}

func TestState_LoadingWithholdsPagination(t *testing.T) {
	s := NewState()
	req := s.Begin()
	s.Apply(Result{Generation: req.Generation, Page: moviePage(100, 1, 2)})
	assert.True(t, s.ShowPagination())

	s.SetPage(2)
	assert.True(t, s.ShowLoading())
	assert.False(t, s.ShowPagination())
	assert.Empty(t, s.Movies())
}

func TestState_SetPageClampsToKnownTotal(t *testing.T) {
	s := NewState()
	req := s.Begin()
	s.Apply(Result{Generation: req.Generation, Page: moviePage(35, 1)})
	assert.Equal(t, 4, s.TotalPages())

	assert.Equal(t, 4, s.SetPage(99).Page)
	assert.Equal(t, 1, s.SetPage(-2).Page)
}

func TestState_ToggleGenreTwiceRemoves(t *testing.T) {
	s := NewState()
	s.ToggleGenre(28)
	s.ToggleGenre(12)
	assert.Equal(t, []int{12, 28}, s.Genres())
	s.ToggleGenre(28)
	assert.Equal(t, []int{12}, s.Genres())
	assert.False(t, s.HasGenre(28))
}

func TestState_RestoreAndReconcile(t *testing.T) {
	s := NewState()
	req := s.Restore(" dune ", []int{878}, 40)
	assert.Equal(t, "dune", req.Query)
	assert.Equal(t, 40, req.Page)

	s.Apply(Result{Generation: req.Generation, Page: moviePage(23)})
	next, ok := s.Reconcile()
	require.True(t, ok)
	assert.Equal(t, 3, next.Page)
	assert.Equal(t, []int{878}, next.Genres)

	s.Apply(Result{Generation: next.Generation, Page: moviePage(23, 21, 22, 23)})
	_, ok = s.Reconcile()
	assert.False(t, ok)
	assert.True(t, s.ShowPagination())
	assert.Equal(t, 3, s.Controls().Current)
}

func TestState_PageBoundedBeforeTotalKnown(t *testing.T) {
	s := NewState()
	assert.Equal(t, service.MaxPage, s.Restore("", nil, 5000).Page)
	assert.Equal(t, service.MaxPage, s.SetPage(int(^uint(0)>>1)).Page)
	assert.Equal(t, 1, s.Restore("", nil, -1).Page)
}

func TestState_EmptyPageOfLargerResultKeepsPagination(t *testing.T) {
	s := NewState()
	req := s.SetQuery("matrix")
	s.Apply(Result{Generation: req.Generation, Page: moviePage(20)})

	assert.True(t, s.ShowEmpty())
	assert.True(t, s.ShowPagination())
	assert.Equal(t, 2, s.Controls().Next)

	next := s.SetPage(2)
	s.Apply(Result{Generation: next.Generation, Page: moviePage(20, 11, 12)})
	assert.Len(t, s.Movies(), 2)
	assert.False(t, s.ShowEmpty())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "error", StatusError.String())
}
