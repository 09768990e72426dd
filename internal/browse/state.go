// Package browse owns the list and detail view state and the fetches that feed it.
//
// Every mutation returns a request stamped with a fresh generation. Results
// are applied only when their generation is still the current one, so a slow
// response can never overwrite the outcome of a newer request.
package browse

import (
	"context"
	"sort"
	"strings"

	"movie-explorer/internal/model"
	"movie-explorer/internal/pagination"
	"movie-explorer/internal/service"
)

// ErrorMessage is the only failure text views show; the cause goes to the log.
const ErrorMessage = "Une erreur est survenue lors du chargement. Réessayez plus tard."

// Status is the observable fetch state of a view
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Lister is the part of the catalog the list view needs
type Lister interface {
	ListMovies(ctx context.Context, q service.ListQuery) (*model.MoviePage, error)
}

// Request is one scheduled list fetch
type Request struct {
	Generation uint64
	Query      string
	Genres     []int
	Page       int
}

// ListQuery converts the request for the catalog client
func (r Request) ListQuery() service.ListQuery {
	return service.ListQuery{Query: r.Query, Genres: r.Genres, Page: r.Page}
}

// Result is the outcome of a Request
type Result struct {
	Generation uint64
	Page       *model.MoviePage
	Err        error
}

// Fetch runs req against the catalog
func Fetch(ctx context.Context, l Lister, req Request) Result {
	page, err := l.ListMovies(ctx, req.ListQuery())
	if err != nil {
		return Result{Generation: req.Generation, Err: err}
	}
	return Result{Generation: req.Generation, Page: page}
}

// State is the search/filter state of the list view
type State struct {
	query  string
	genres map[int]struct{}
	page   int

	totalResults int
	totalKnown   bool

	status Status
	movies []model.MovieSummary
	err    error

	generation uint64
}

// NewState returns an idle state on page 1 with no filter
func NewState() *State {
	return &State{
		genres: map[int]struct{}{},
		page:   1,
	}
}

// Query returns the current text query
func (s *State) Query() string { return s.query }

// Page returns the current 1-based page
func (s *State) Page() int { return s.page }

// Status returns the fetch status
func (s *State) Status() Status { return s.status }

// Movies returns the movies of the last applied successful fetch
func (s *State) Movies() []model.MovieSummary { return s.movies }

// Err returns the error of the last applied failed fetch
func (s *State) Err() error { return s.err }

// Generation returns the generation of the latest issued request
func (s *State) Generation() uint64 { return s.generation }

// TotalResults returns the result count of the last successful fetch
func (s *State) TotalResults() int { return s.totalResults }

// Genres returns the selected genre ids in ascending order
func (s *State) Genres() []int {
	ids := make([]int, 0, len(s.genres))
	for id := range s.genres {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// HasGenre reports whether id is selected
func (s *State) HasGenre(id int) bool {
	_, ok := s.genres[id]
	return ok
}

// TotalPages derives the page count from the last known total
func (s *State) TotalPages() int {
	return pagination.TotalPages(s.totalResults, service.PageSize)
}

// SetQuery replaces the text query and restarts from page 1
func (s *State) SetQuery(q string) Request {
	s.query = strings.TrimSpace(q)
	return s.resetAndIssue()
}

// SetGenres replaces the genre selection and restarts from page 1
func (s *State) SetGenres(ids []int) Request {
	s.genres = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s.genres[id] = struct{}{}
	}
	return s.resetAndIssue()
}

// ToggleGenre adds or removes id and restarts from page 1
func (s *State) ToggleGenre(id int) Request {
	if _, ok := s.genres[id]; ok {
		delete(s.genres, id)
	} else {
		s.genres[id] = struct{}{}
	}
	return s.resetAndIssue()
}

// SetPage moves to page p, clamped to the known page range
func (s *State) SetPage(p int) Request {
	if s.totalKnown {
		p = pagination.ClampPage(p, s.TotalPages())
	} else {
		p = service.ClampListPage(p)
	}
	s.page = p
	return s.issue()
}

// Restore loads a complete filter state, e.g. from a URL, and schedules its fetch.
// No total is known yet, so the page is only bounded to the catalog's reachable range.
func (s *State) Restore(query string, genres []int, page int) Request {
	s.query = strings.TrimSpace(query)
	s.genres = make(map[int]struct{}, len(genres))
	for _, id := range genres {
		s.genres[id] = struct{}{}
	}
	s.totalResults = 0
	s.totalKnown = false
	s.page = service.ClampListPage(page)
	return s.issue()
}

// Begin schedules a fetch for the current values
func (s *State) Begin() Request {
	return s.issue()
}

// Apply stores res if it answers the latest request.
// It returns false for stale results, which are dropped.
func (s *State) Apply(res Result) bool {
	if res.Generation != s.generation {
		return false
	}
	if res.Err != nil {
		s.status = StatusError
		s.err = res.Err
		s.movies = nil
		return true
	}

	s.status = StatusSuccess
	s.err = nil
	s.movies = res.Page.Results
	s.totalResults = res.Page.TotalResults
	s.totalKnown = true
	return true
}

// Reconcile issues a follow-up request when the page that was just loaded
// lies beyond the page range the response revealed.
func (s *State) Reconcile() (Request, bool) {
	if s.status != StatusSuccess {
		return Request{}, false
	}
	last := s.TotalPages()
	if s.page <= last {
		return Request{}, false
	}
	s.page = last
	return s.issue(), true
}

func (s *State) resetAndIssue() Request {
	s.page = 1
	s.totalResults = 0
	s.totalKnown = false
	return s.issue()
}

func (s *State) issue() Request {
	s.generation++
	s.status = StatusLoading
	s.movies = nil
	s.err = nil
	return Request{
		Generation: s.generation,
		Query:      s.query,
		Genres:     s.Genres(),
		Page:       s.page,
	}
}

// ================== View policy ==================

// ShowLoading reports whether the loading indicator is shown
func (s *State) ShowLoading() bool { return s.status == StatusLoading }

// ShowError reports whether the error banner is shown
func (s *State) ShowError() bool { return s.status == StatusError }

// ShowEmpty reports whether the empty-state message is shown
func (s *State) ShowEmpty() bool { return s.status == StatusSuccess && len(s.movies) == 0 }

// ShowPagination reports whether pagination controls are shown: after a
// successful fetch that returned movies, or an empty page of a multi-page result.
// Title searches narrowed by genre can leave a page empty while others match.
func (s *State) ShowPagination() bool {
	return s.status == StatusSuccess && (len(s.movies) > 0 || s.TotalPages() > 1)
}

// Controls returns the pagination bar for the current page
func (s *State) Controls() pagination.Controls {
	return pagination.NewControls(s.page, s.TotalPages())
}
