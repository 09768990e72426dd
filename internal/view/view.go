// Package view turns browse state into template data and owns the HTML templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/model"
	"movie-explorer/internal/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrorMessage is shown for every kind of fetch failure
const ErrorMessage = browse.ErrorMessage

// Renderer builds page data for the templates
type Renderer struct {
	imageBase string
	genres    *genre.Directory
}

// NewRenderer creates a Renderer; imageBase prefixes poster and profile paths
func NewRenderer(imageBase string, genres *genre.Directory) *Renderer {
	return &Renderer{
		imageBase: strings.TrimRight(imageBase, "/"),
		genres:    genres,
	}
}

// Templates parses the embedded templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// ImageURL returns the absolute URL of an image path, or "" without one
func (r *Renderer) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return r.imageBase + path
}

// ================== List view ==================

// GenreOption is one genre checkbox
type GenreOption struct {
	ID       int
	Name     string
	Selected bool
}

// MovieCard is one movie in the list view
type MovieCard struct {
	ID          int
	Title       string
	Overview    string
	PosterURL   string
	ReleaseDate string
	Genres      string
	DetailURL   string
}

// PageLink is one entry of a rendered pagination bar
type PageLink struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

// Pager is a rendered pagination bar
type Pager struct {
	PrevURL  string
	NextURL  string
	FirstURL string
	LastURL  string
	Last     int
	Links    []PageLink
}

// ListPage is the data of the list template
type ListPage struct {
	Title        string
	Query        string
	Genres       []GenreOption
	Loading      bool
	Error        string
	Empty        bool
	Movies       []MovieCard
	TotalResults int
	Pager        *Pager
}

// List builds the list view data from the state
func (r *Renderer) List(s *browse.State) ListPage {
	page := ListPage{
		Title:   "Films",
		Query:   s.Query(),
		Loading: s.ShowLoading(),
		Empty:   s.ShowEmpty(),
	}
	for _, g := range r.genres.All() {
		page.Genres = append(page.Genres, GenreOption{ID: g.ID, Name: g.Name, Selected: s.HasGenre(g.ID)})
	}
	if s.ShowError() {
		page.Error = ErrorMessage
		return page
	}

	for _, m := range s.Movies() {
		page.Movies = append(page.Movies, r.card(m))
	}
	page.TotalResults = s.TotalResults()

	if s.ShowPagination() {
		query, genres := s.Query(), s.Genres()
		page.Pager = buildPager(s.Controls(), func(p int) string {
			return ListURL(query, genres, p)
		})
	}
	return page
}

func (r *Renderer) card(m model.MovieSummary) MovieCard {
	return MovieCard{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterURL:   r.ImageURL(m.PosterPath),
		ReleaseDate: m.ReleaseDate,
		Genres:      r.genres.Label(m.GenreIDs),
		DetailURL:   DetailURL(m.ID, 1),
	}
}

// ListURL is the URL of the list view for a filter state and page
func ListURL(query string, genres []int, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	for _, id := range genres {
		v.Add("genre", strconv.Itoa(id))
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

// ================== Detail view ==================

// DetailURL is the URL of the detail view showing the given review page
func DetailURL(movieID, reviewPage int) string {
	if reviewPage > 1 {
		return fmt.Sprintf("/movie/%d?reviews=%d", movieID, reviewPage)
	}
	return fmt.Sprintf("/movie/%d", movieID)
}

// CastCard is one actor in the detail view
type CastCard struct {
	Name       string
	Character  string
	ProfileURL string
}

// ReviewItem is one review in the detail view
type ReviewItem struct {
	Author    string
	Content   string
	Published string
}

// ReviewsSection is the independently reloadable part of the detail view.
// Pager links address the full detail page; FragmentURL serves the section alone.
type ReviewsSection struct {
	MovieID     int
	FragmentURL string
	Items       []ReviewItem
	Total       int
	Pager       *Pager
}

// DetailPage is the data of the detail template
type DetailPage struct {
	Title     string
	Error     string
	Movie     *model.MovieDetail
	PosterURL string
	Rating    string
	Genres    string
	Language  string
	Cast      []CastCard
	Reviews   ReviewsSection
}

// Detail builds the detail view data. Nothing but the error is set on failure.
func (r *Renderer) Detail(d *browse.Detail) DetailPage {
	if d.Status() != browse.StatusSuccess || d.Movie() == nil {
		return DetailPage{Title: "Film", Error: ErrorMessage}
	}

	m := d.Movie()
	page := DetailPage{
		Title:     m.Title,
		Movie:     m,
		PosterURL: r.ImageURL(m.PosterPath),
		Rating:    strconv.FormatFloat(m.VoteAverage, 'f', 1, 64),
		Genres:    strings.Join(m.GenreNames(), ", "),
		Language:  strings.ToUpper(m.OriginalLanguage),
		Reviews:   r.Reviews(d),
	}
	for _, c := range d.Cast() {
		page.Cast = append(page.Cast, CastCard{
			Name:       c.Name,
			Character:  c.Character,
			ProfileURL: r.ImageURL(c.ProfilePath),
		})
	}
	return page
}

// Reviews builds the reviews section of d
func (r *Renderer) Reviews(d *browse.Detail) ReviewsSection {
	return r.reviewsSection(d.MovieID(), d.Reviews(), d.ReviewCount(), d.ReviewControls())
}

// ReviewPage builds a reviews section straight from one page of reviews
func (r *Renderer) ReviewPage(movieID int, p *model.ReviewPage) ReviewsSection {
	if p == nil {
		return ReviewsSection{MovieID: movieID}
	}
	return r.reviewsSection(movieID, p.Results, p.TotalResults, pagination.NewControls(p.Page, p.TotalPages))
}

func (r *Renderer) reviewsSection(movieID int, reviews []model.Review, total int, c pagination.Controls) ReviewsSection {
	sec := ReviewsSection{
		MovieID:     movieID,
		FragmentURL: fmt.Sprintf("/movie/%d/reviews", movieID),
		Total:       total,
	}
	for _, rv := range reviews {
		sec.Items = append(sec.Items, ReviewItem{
			Author:    rv.Author,
			Content:   rv.Content,
			Published: rv.CreatedAt.Format("02/01/2006"),
		})
	}
	if c.Total > 1 {
		sec.Pager = buildPager(c, func(p int) string {
			return DetailURL(movieID, p)
		})
	}
	return sec
}

func buildPager(c pagination.Controls, link func(int) string) *Pager {
	p := &Pager{Last: c.Last}
	if c.Prev > 0 {
		p.PrevURL = link(c.Prev)
	}
	if c.Next > 0 {
		p.NextURL = link(c.Next)
	}
	if c.First > 0 {
		p.FirstURL = link(c.First)
	}
	if c.Last > 0 {
		p.LastURL = link(c.Last)
	}
	for _, it := range c.Buttons {
		if it.Ellipsis {
			p.Links = append(p.Links, PageLink{Label: it.String(), Ellipsis: true})
			continue
		}
		p.Links = append(p.Links, PageLink{
			Label:   it.String(),
			URL:     link(it.Page),
			Current: it.Page == c.Current,
		})
	}
	return p
}
