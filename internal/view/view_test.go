package view

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer() *Renderer {
	return NewRenderer("https://img.example/w500/", genre.NewDirectory([]model.Genre{
		{ID: 28, Name: "Action"},
		{ID: 878, Name: "Science-Fiction"},
	}))
}

func render(t *testing.T, name string, data interface{}) *goquery.Document {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func loadedState(total int, movies ...model.MovieSummary) *browse.State {
	s := browse.NewState()
	req := s.Restore("matrix", []int{878}, 1)
	s.Apply(browse.Result{Generation: req.Generation, Page: &model.MoviePage{Results: movies, TotalResults: total}})
	return s
}

func TestListURL(t *testing.T) {
	assert.Equal(t, "/", ListURL("", nil, 1))
	assert.Equal(t, "/?page=3", ListURL("", nil, 3))
	assert.Equal(t, "/?genre=28&genre=878&q=the+matrix", ListURL("the matrix", []int{28, 878}, 1))
}

func TestList_SuccessRendersCardsAndPager(t *testing.T) {
	s := loadedState(95, model.MovieSummary{ID: 603, Title: "Matrix", PosterPath: "/m.jpg", GenreIDs: []int{28, 878}})

	page := testRenderer().List(s)
	require.Len(t, page.Movies, 1)
	assert.Equal(t, "https://img.example/w500/m.jpg", page.Movies[0].PosterURL)
	assert.Equal(t, "Action, Science-Fiction", page.Movies[0].Genres)
	require.NotNil(t, page.Pager)
	assert.Equal(t, 10, page.Pager.Last)
	assert.Empty(t, page.Pager.PrevURL)
	assert.Equal(t, "/?genre=878&page=2&q=matrix", page.Pager.NextURL)

	doc := render(t, "list.html", page)
	assert.Equal(t, 1, doc.Find(".movie-card").Length())
	assert.Equal(t, "/movie/603", doc.Find(".movie-card").AttrOr("href", ""))
	assert.Equal(t, "matrix", doc.Find("input[name=q]").AttrOr("value", ""))
	_, checked := doc.Find("input[name=genre][value='878']").Attr("checked")
	assert.True(t, checked)
	assert.Equal(t, "1", doc.Find(".pagination .page-current").Text())
	assert.Equal(t, 0, doc.Find(".error-banner").Length())
}

func TestList_ErrorHidesResultsAndPager(t *testing.T) {
	s := browse.NewState()
	req := s.Restore("", nil, 1)
	s.Apply(browse.Result{Generation: req.Generation, Err: errors.New("HTTP 500")})

	page := testRenderer().List(s)
	assert.Equal(t, ErrorMessage, page.Error)
	assert.Nil(t, page.Pager)

	doc := render(t, "list.html", page)
	assert.Equal(t, 1, doc.Find(".error-banner").Length())
	assert.Equal(t, 0, doc.Find(".movie-card").Length())
	assert.Equal(t, 0, doc.Find(".pagination").Length())
}

func TestList_EmptyState(t *testing.T) {
	page := testRenderer().List(loadedState(0))
	assert.True(t, page.Empty)
	assert.Nil(t, page.Pager)

	doc := render(t, "list.html", page)
	assert.Equal(t, "Aucun film trouvé", doc.Find(".empty").Text())
}

func loadedDetail(t *testing.T, reviewPages int) *browse.Detail {
	t.Helper()
	d := browse.NewDetail(603)
	req := d.Begin()
	require.True(t, d.Apply(browse.DetailResult{
		Generation: req.Generation,
		Movie: &model.MovieDetail{
			ID: 603, Title: "Matrix", VoteAverage: 8.217, OriginalLanguage: "en",
			Genres: []model.Genre{{ID: 28, Name: "Action"}}, Runtime: 136, Status: "Released",
		},
		Cast: []model.CastMember{{Name: "Keanu Reeves", Character: "Neo", ProfilePath: "/k.jpg"}},
		Reviews: &model.ReviewPage{
			Page:         1,
			TotalPages:   reviewPages,
			TotalResults: reviewPages * 20,
			Results: []model.Review{{
				Author: "ana", Content: "Great", CreatedAt: time.Date(2021, 3, 9, 0, 0, 0, 0, time.UTC),
			}},
		},
	}))
	return d
}

func TestDetail_Success(t *testing.T) {
	page := testRenderer().Detail(loadedDetail(t, 3))
	assert.Equal(t, "8.2", page.Rating)
	assert.Equal(t, "EN", page.Language)
	assert.Equal(t, "Action", page.Genres)
	require.Len(t, page.Cast, 1)
	assert.Equal(t, "https://img.example/w500/k.jpg", page.Cast[0].ProfileURL)
	require.NotNil(t, page.Reviews.Pager)
	assert.Equal(t, "/movie/603?reviews=2", page.Reviews.Pager.NextURL)

	doc := render(t, "detail.html", page)
	assert.Equal(t, "Matrix", doc.Find("h1").Text())
	assert.Equal(t, 1, doc.Find("#cast li").Length())
	assert.Equal(t, 1, doc.Find("#reviews .review").Length())
	assert.Contains(t, doc.Find("#reviews .meta").Text(), "09/03/2021")
}

func TestDetail_FailureShowsOnlyError(t *testing.T) {
	d := browse.NewDetail(603)
	req := d.Begin()
	d.Apply(browse.DetailResult{Generation: req.Generation, Err: errors.New("credits failed")})

	page := testRenderer().Detail(d)
	assert.Nil(t, page.Movie)

	doc := render(t, "detail.html", page)
	assert.Equal(t, 1, doc.Find(".error-banner").Length())
	assert.Equal(t, 0, doc.Find("#cast").Length())
	assert.Equal(t, 0, doc.Find("#reviews").Length())
}

func TestReviews_SinglePageHasNoPager(t *testing.T) {
	sec := testRenderer().Reviews(loadedDetail(t, 1))
	assert.Nil(t, sec.Pager)

	doc := render(t, "reviews_section", sec)
	assert.Equal(t, 0, doc.Find(".pagination").Length())
	assert.Equal(t, "603", doc.Find("#reviews").AttrOr("data-movie", ""))
	assert.Equal(t, "/movie/603/reviews", doc.Find("#reviews").AttrOr("data-fragment", ""))
}

func TestDetailURL(t *testing.T) {
	assert.Equal(t, "/movie/603", DetailURL(603, 1))
	assert.Equal(t, "/movie/603", DetailURL(603, 0))
	assert.Equal(t, "/movie/603?reviews=4", DetailURL(603, 4))
}

func TestReviewPage_FromRawPage(t *testing.T) {
	sec := testRenderer().ReviewPage(603, &model.ReviewPage{Page: 7, TotalPages: 7, TotalResults: 130})
	require.NotNil(t, sec.Pager)
	assert.Equal(t, "/movie/603?reviews=6", sec.Pager.PrevURL)
	assert.Empty(t, sec.Pager.NextURL)
	assert.Equal(t, "/movie/603", sec.Pager.FirstURL)
	assert.Equal(t, 130, sec.Total)

	doc := render(t, "reviews_section", sec)
	assert.Equal(t, "Aucun avis trouvé", doc.Find("#reviews .empty").Text())
}
