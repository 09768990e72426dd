package handler

import (
	"net/http"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/model"
	"movie-explorer/internal/pagination"
	"movie-explorer/internal/service"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the JSON API
type APIHandler struct {
	catalog  Catalog
	genres   *genre.Directory
	recorder ErrorRecorder
}

// NewAPIHandler creates a new APIHandler. recorder may be nil.
func NewAPIHandler(catalog Catalog, genres *genre.Directory, recorder ErrorRecorder) *APIHandler {
	return &APIHandler{
		catalog:  catalog,
		genres:   genres,
		recorder: recorder,
	}
}

// MovieList is the data of GET /api/v1/movies
type MovieList struct {
	Query        string               `json:"query"`
	Genres       []int                `json:"genres"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
	Results      []model.MovieSummary `json:"results"`
	Pagination   *pagination.Controls `json:"pagination,omitempty"`
}

// MovieDetail is the data of GET /api/v1/movie/:id
type MovieDetail struct {
	Movie   *model.MovieDetail `json:"movie"`
	Cast    []model.CastMember `json:"cast"`
	Reviews ReviewList         `json:"reviews"`
}

// ReviewList is one page of reviews with its pagination bar
type ReviewList struct {
	Page         int                 `json:"page"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
	Results      []model.Review      `json:"results"`
	Pagination   pagination.Controls `json:"pagination"`
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	reportCatalogError(c, h.recorder, err)
	c.JSON(http.StatusBadGateway, model.APIResponse{
		Code:    http.StatusBadGateway,
		Error:   "catalog request failed",
		Message: service.KindOf(err).String(),
	})
}

// GetMovies returns one page of search or discover results
// GET /api/v1/movies?q=matrix&genre=28&page=1
func (h *APIHandler) GetMovies(c *gin.Context) {
	query, genres, page := filterParams(c, h.genres)
	state := loadList(c.Request.Context(), h.catalog, query, genres, page)
	if state.ShowError() {
		h.fail(c, state.Err())
		return
	}

	data := MovieList{
		Query:        state.Query(),
		Genres:       state.Genres(),
		Page:         state.Page(),
		TotalPages:   state.TotalPages(),
		TotalResults: state.TotalResults(),
		Results:      state.Movies(),
	}
	if data.Results == nil {
		data.Results = []model.MovieSummary{}
	}
	if state.ShowPagination() {
		controls := state.Controls()
		data.Pagination = &controls
	}
	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: data})
}

// GetGenres returns the genre directory
// GET /api/v1/genres
func (h *APIHandler) GetGenres(c *gin.Context) {
	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: h.genres.All()})
}

// GetMovie returns a movie with its cast and a page of reviews, or an error and nothing else
// GET /api/v1/movie/:id?reviews=1
func (h *APIHandler) GetMovie(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, model.APIResponse{Code: http.StatusNotFound, Error: "invalid movie id"})
		return
	}

	d := loadDetail(c.Request.Context(), h.catalog, id, pageParam(c, "reviews"))
	if d.Status() == browse.StatusError {
		h.fail(c, d.Err())
		return
	}

	cast := d.Cast()
	if cast == nil {
		cast = []model.CastMember{}
	}
	reviews := ReviewList{
		Page:         d.ReviewPage(),
		TotalPages:   d.ReviewTotalPages(),
		TotalResults: d.ReviewCount(),
		Results:      nonNilReviews(d.Reviews()),
		Pagination:   d.ReviewControls(),
	}
	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: MovieDetail{
		Movie:   d.Movie(),
		Cast:    cast,
		Reviews: reviews,
	}})
}

// GetReviews returns one page of reviews
// GET /api/v1/movie/:id/reviews?page=2
func (h *APIHandler) GetReviews(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, model.APIResponse{Code: http.StatusNotFound, Error: "invalid movie id"})
		return
	}

	res := browse.LoadReviews(c.Request.Context(), h.catalog, browse.ReviewsRequest{
		MovieID: id,
		Page:    pageParam(c, "page"),
	})
	if res.Err != nil {
		h.fail(c, res.Err)
		return
	}

	p := res.Reviews
	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Data: ReviewList{
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Results:      nonNilReviews(p.Results),
		Pagination:   pagination.NewControls(p.Page, p.TotalPages),
	}})
}

func nonNilReviews(r []model.Review) []model.Review {
	if r == nil {
		return []model.Review{}
	}
	return r
}
