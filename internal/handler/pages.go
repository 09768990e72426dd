package handler

import (
	"net/http"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/view"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the HTML pages
type PageHandler struct {
	catalog  Catalog
	genres   *genre.Directory
	renderer *view.Renderer
	recorder ErrorRecorder
}

// NewPageHandler creates a new PageHandler. recorder may be nil.
func NewPageHandler(catalog Catalog, genres *genre.Directory, renderer *view.Renderer, recorder ErrorRecorder) *PageHandler {
	return &PageHandler{
		catalog:  catalog,
		genres:   genres,
		renderer: renderer,
		recorder: recorder,
	}
}

// List renders the searchable movie list
// GET /?q=matrix&genre=28&genre=878&page=2
func (h *PageHandler) List(c *gin.Context) {
	query, genres, page := filterParams(c, h.genres)
	state := loadList(c.Request.Context(), h.catalog, query, genres, page)

	status := http.StatusOK
	if state.ShowError() {
		reportCatalogError(c, h.recorder, state.Err())
		status = http.StatusBadGateway
	}
	c.HTML(status, "list.html", h.renderer.List(state))
}

// Detail renders one movie with its cast and first page of reviews
// GET /movie/:id
func (h *PageHandler) Detail(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		h.NotFound(c)
		return
	}

	d := loadDetail(c.Request.Context(), h.catalog, id, pageParam(c, "reviews"))

	status := http.StatusOK
	if d.Status() == browse.StatusError {
		reportCatalogError(c, h.recorder, d.Err())
		status = http.StatusBadGateway
	}
	c.HTML(status, "detail.html", h.renderer.Detail(d))
}

// Reviews renders only the reviews section for a review page.
// On failure the body is the error banner that replaces the whole detail view.
// GET /movie/:id/reviews?page=2
func (h *PageHandler) Reviews(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		h.NotFound(c)
		return
	}

	res := browse.LoadReviews(c.Request.Context(), h.catalog, browse.ReviewsRequest{
		MovieID: id,
		Page:    pageParam(c, "page"),
	})
	if res.Err != nil {
		reportCatalogError(c, h.recorder, res.Err)
		c.HTML(http.StatusBadGateway, "error_banner", view.ErrorMessage)
		return
	}
	c.HTML(http.StatusOK, "reviews_section", h.renderer.ReviewPage(id, res.Reviews))
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", nil)
}
