package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"movie-explorer/internal/model"
	"movie-explorer/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

const (
	// PageSize is the number of movies shown per result page.
	PageSize = 10
	// upstreamPageSize is the fixed page size of TMDB list endpoints.
	upstreamPageSize = 20
	// maxUpstreamPage is the last page TMDB will serve for list endpoints.
	maxUpstreamPage = 500
	// MaxPage is the deepest result page that maps onto a servable upstream page.
	MaxPage = maxUpstreamPage * upstreamPageSize / PageSize
)

// ClampListPage bounds a requested result page to [1, MaxPage]
func ClampListPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ListQuery selects one page of movies
type ListQuery struct {
	Query  string
	Genres []int
	Page   int
}

// SearchMode reports whether the query uses search-by-title semantics
func (q ListQuery) SearchMode() bool {
	return strings.TrimSpace(q.Query) != ""
}

// TMDBOptions configures a TMDBService
type TMDBOptions struct {
	APIKeys         []string
	BaseURL         string
	Language        string
	ReviewsLanguage string
}

// TMDBService is the remote catalog client. It supports multiple keys in rotation.
type TMDBService struct {
	client          *httpclient.Client
	apiKeys         []string
	baseURL         string
	language        string
	reviewsLanguage string
	keyIndex        uint64
}

// NewTMDBService creates a new TMDBService
func NewTMDBService(client *httpclient.Client, opts TMDBOptions) *TMDBService {
	if len(opts.APIKeys) > 1 {
		log.Info().Int("count", len(opts.APIKeys)).Msg("🔑 TMDB API keys configured, rotating")
	}
	return &TMDBService{
		client:          client,
		apiKeys:         opts.APIKeys,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		language:        opts.Language,
		reviewsLanguage: opts.ReviewsLanguage,
	}
}

// getNextKey returns the next API key using round-robin
func (s *TMDBService) getNextKey() string {
	if len(s.apiKeys) == 0 {
		return ""
	}
	idx := atomic.AddUint64(&s.keyIndex, 1) - 1
	return s.apiKeys[idx%uint64(len(s.apiKeys))]
}

// IsConfigured returns true if at least one API key is set
func (s *TMDBService) IsConfigured() bool {
	return len(s.apiKeys) > 0
}

// KeyCount returns the number of configured API keys
func (s *TMDBService) KeyCount() int {
	return len(s.apiKeys)
}

// get performs one authenticated request and decodes the body into dest
func (s *TMDBService) get(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	apiKey := s.getNextKey()
	if apiKey == "" {
		return ErrNotConfigured
	}

	target := s.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Authorization", "Bearer "+apiKey)

	data, err := s.client.Fetch(ctx, target, header)
	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			return &FetchError{Kind: KindHTTPStatus, Endpoint: endpoint, StatusCode: se.StatusCode, Err: err}
		}
		return &FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &FetchError{Kind: KindParse, Endpoint: endpoint, Err: err}
	}
	return nil
}

// ================== Raw TMDB shapes ==================
// Pointer fields mark what must be present for a response to be usable.

type tmdbSummary struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
}

type tmdbMoviePage struct {
	Page         *int           `json:"page"`
	Results      *[]tmdbSummary `json:"results"`
	TotalResults *int           `json:"total_results"`
}

type tmdbGenre struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
}

type tmdbGenreList struct {
	Genres *[]tmdbGenre `json:"genres"`
}

type tmdbMovie struct {
	ID               *int         `json:"id"`
	Title            *string      `json:"title"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path"`
	ReleaseDate      string       `json:"release_date"`
	Runtime          int          `json:"runtime"`
	Status           string       `json:"status"`
	Tagline          string       `json:"tagline"`
	VoteAverage      float64      `json:"vote_average"`
	VoteCount        int          `json:"vote_count"`
	OriginalLanguage string       `json:"original_language"`
	Genres           *[]tmdbGenre `json:"genres"`
	Homepage         string       `json:"homepage"`
}

type tmdbCast struct {
	ID          *int    `json:"id"`
	Name        *string `json:"name"`
	Character   string  `json:"character"`
	ProfilePath string  `json:"profile_path"`
}

type tmdbCredits struct {
	ID   *int        `json:"id"`
	Cast *[]tmdbCast `json:"cast"`
}

type tmdbReview struct {
	ID        *string `json:"id"`
	Author    *string `json:"author"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
}

type tmdbReviewPage struct {
	Page         *int          `json:"page"`
	Results      *[]tmdbReview `json:"results"`
	TotalPages   *int          `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// ================== Operations ==================

// ListMovies returns one page of PageSize movies.
// A non-empty query searches by title; otherwise the catalog is browsed.
func (s *TMDBService) ListMovies(ctx context.Context, q ListQuery) (*model.MoviePage, error) {
	page := ClampListPage(q.Page)
	upstreamPage := (page-1)*PageSize/upstreamPageSize + 1
	offset := (page - 1) * PageSize % upstreamPageSize

	params := url.Values{}
	params.Set("language", s.language)
	params.Set("page", strconv.Itoa(upstreamPage))
	if len(q.Genres) > 0 {
		params.Set("with_genres", joinIDs(q.Genres))
	}

	params.Set("include_adult", "false")

	endpoint := "/discover/movie"
	if q.SearchMode() {
		endpoint = "/search/movie"
		params.Set("query", strings.TrimSpace(q.Query))
	} else {
		params.Set("sort_by", "popularity.desc")
	}

	var raw tmdbMoviePage
	if err := s.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	if raw.Results == nil {
		return nil, parseError(endpoint, "missing results")
	}
	if raw.TotalResults == nil {
		return nil, parseError(endpoint, "missing total_results")
	}

	all := make([]model.MovieSummary, 0, len(*raw.Results))
	for i, r := range *raw.Results {
		if r.ID == nil || r.Title == nil {
			return nil, parseError(endpoint, "result %d lacks id or title", i)
		}
		all = append(all, model.MovieSummary{
			ID:          *r.ID,
			Title:       *r.Title,
			Overview:    r.Overview,
			PosterPath:  r.PosterPath,
			ReleaseDate: r.ReleaseDate,
			GenreIDs:    r.GenreIDs,
		})
	}

	// search/movie ignores with_genres, so the whole upstream page is narrowed
	// before the window is cut
	if q.SearchMode() && len(q.Genres) > 0 {
		filtered := make([]model.MovieSummary, 0, len(all))
		for _, m := range all {
			if m.HasGenres(q.Genres) {
				filtered = append(filtered, m)
			}
		}
		all = filtered
	}

	window := []model.MovieSummary{}
	if offset < len(all) {
		end := offset + PageSize
		if end > len(all) {
			end = len(all)
		}
		window = all[offset:end]
	}

	total := *raw.TotalResults
	if total < 0 {
		return nil, parseError(endpoint, "negative total_results %d", total)
	}
	if total > maxUpstreamPage*upstreamPageSize {
		total = maxUpstreamPage * upstreamPageSize
	}

	log.Debug().
		Str("endpoint", endpoint).
		Str("query", q.Query).
		Ints("genres", q.Genres).
		Int("page", page).
		Int("count", len(window)).
		Int("total", total).
		Msg("Fetched movies")

	return &model.MoviePage{Results: window, TotalResults: total}, nil
}

// Genres returns the catalog's movie genres
func (s *TMDBService) Genres(ctx context.Context) ([]model.Genre, error) {
	const endpoint = "/genre/movie/list"
	params := url.Values{}
	params.Set("language", s.language)

	var raw tmdbGenreList
	if err := s.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	return convertGenres(endpoint, raw.Genres)
}

// Movie returns the detail record of one movie
func (s *TMDBService) Movie(ctx context.Context, id int) (*model.MovieDetail, error) {
	endpoint := fmt.Sprintf("/movie/%d", id)
	params := url.Values{}
	params.Set("language", s.language)

	var raw tmdbMovie
	if err := s.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	if raw.ID == nil || raw.Title == nil {
		return nil, parseError(endpoint, "missing id or title")
	}
	genres, err := convertGenres(endpoint, raw.Genres)
	if err != nil {
		return nil, err
	}

	return &model.MovieDetail{
		ID:               *raw.ID,
		Title:            *raw.Title,
		Overview:         raw.Overview,
		PosterPath:       raw.PosterPath,
		ReleaseDate:      raw.ReleaseDate,
		Runtime:          raw.Runtime,
		Status:           raw.Status,
		Tagline:          raw.Tagline,
		VoteAverage:      raw.VoteAverage,
		VoteCount:        raw.VoteCount,
		OriginalLanguage: raw.OriginalLanguage,
		Genres:           genres,
		Homepage:         raw.Homepage,
	}, nil
}

// Credits returns the cast of one movie in billing order
func (s *TMDBService) Credits(ctx context.Context, id int) ([]model.CastMember, error) {
	endpoint := fmt.Sprintf("/movie/%d/credits", id)
	params := url.Values{}
	params.Set("language", s.language)

	var raw tmdbCredits
	if err := s.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	if raw.Cast == nil {
		return nil, parseError(endpoint, "missing cast")
	}

	cast := make([]model.CastMember, 0, len(*raw.Cast))
	for i, c := range *raw.Cast {
		if c.ID == nil || c.Name == nil {
			return nil, parseError(endpoint, "cast %d lacks id or name", i)
		}
		cast = append(cast, model.CastMember{
			ID:          *c.ID,
			Name:        *c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}
	return cast, nil
}

// Reviews returns one server-side page of reviews
func (s *TMDBService) Reviews(ctx context.Context, id int, page int) (*model.ReviewPage, error) {
	if page < 1 {
		page = 1
	}
	endpoint := fmt.Sprintf("/movie/%d/reviews", id)
	params := url.Values{}
	params.Set("language", s.reviewsLanguage)
	params.Set("page", strconv.Itoa(page))

	var raw tmdbReviewPage
	if err := s.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	if raw.Results == nil || raw.TotalPages == nil {
		return nil, parseError(endpoint, "missing results or total_pages")
	}

	reviews := make([]model.Review, 0, len(*raw.Results))
	for i, r := range *raw.Results {
		if r.ID == nil || r.Author == nil {
			return nil, parseError(endpoint, "review %d lacks id or author", i)
		}
		created, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return nil, parseError(endpoint, "review %d created_at: %v", i, err)
		}
		reviews = append(reviews, model.Review{
			ID:        *r.ID,
			Author:    *r.Author,
			Content:   r.Content,
			CreatedAt: created,
		})
	}

	result := &model.ReviewPage{
		Page:         page,
		Results:      reviews,
		TotalPages:   *raw.TotalPages,
		TotalResults: raw.TotalResults,
	}
	if raw.Page != nil {
		result.Page = *raw.Page
	}
	return result, nil
}

// Helper functions
func convertGenres(endpoint string, raw *[]tmdbGenre) ([]model.Genre, error) {
	if raw == nil {
		return nil, parseError(endpoint, "missing genres")
	}
	genres := make([]model.Genre, 0, len(*raw))
	for i, g := range *raw {
		if g.ID == nil || g.Name == nil {
			return nil, parseError(endpoint, "genre %d lacks id or name", i)
		}
		genres = append(genres, model.Genre{ID: *g.ID, Name: *g.Name})
	}
	return genres, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
