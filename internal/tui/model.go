// Package tui is the terminal front-end: the same list and detail views as
// the web pages, driven by bubbletea.
package tui

import (
	"time"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/genre"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Catalog is everything the terminal views read from the remote catalog
type Catalog interface {
	browse.Lister
	browse.DetailSource
	genre.Source
}

type screen int

const (
	screenList screen = iota
	screenGenres
	screenDetail
)

// Model represents the application state
type Model struct {
	catalog Catalog
	timeout time.Duration

	screen    screen
	searching bool

	list     *browse.State
	selected int

	genres      *genre.Directory
	genreCursor int

	detail    *browse.Detail
	detailSeq uint64

	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	width     int
	height    int
}

// New creates the application model. timeout bounds every catalog call.
func New(catalog Catalog, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "Rechercher un film..."
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	vp := viewport.New(80, 20)

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return Model{
		catalog:   catalog,
		timeout:   timeout,
		list:      browse.NewState(),
		genres:    genre.NewDirectory(nil),
		textInput: ti,
		spinner:   sp,
		viewport:  vp,
		width:     80,
		height:    24,
	}
}

// Init loads the genres and the first discover page
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadGenres, m.fetchList(m.list.Begin()))
}

// Update handles messages and user input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenGenres:
			return m.updateGenres(msg)
		case screenDetail:
			return m.updateDetail(msg)
		default:
			if m.searching {
				return m.updateSearch(msg)
			}
			return m.updateList(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.refreshDetail()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case genresLoadedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("Could not load genres, continuing without them")
			return m, nil
		}
		m.genres = msg.genres

	case listLoadedMsg:
		if !m.list.Apply(msg.res) {
			return m, nil
		}
		m.selected = 0
		if m.list.ShowError() {
			logFailure("list", m.list.Err())
			return m, nil
		}
		if req, ok := m.list.Reconcile(); ok {
			return m, m.fetchList(req)
		}

	case detailLoadedMsg:
		if m.detail == nil || msg.seq != m.detailSeq || !m.detail.Apply(msg.res) {
			return m, nil
		}
		if m.detail.Status() == browse.StatusError {
			logFailure("detail", m.detail.Err())
		}
		m.viewport.GotoTop()
		m.refreshDetail()

	case reviewsLoadedMsg:
		if m.detail == nil || msg.seq != m.detailSeq || !m.detail.ApplyReviews(msg.res) {
			return m, nil
		}
		if m.detail.Status() == browse.StatusError {
			logFailure("reviews", m.detail.Err())
		}
		m.refreshDetail()
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.textInput.Blur()
		return m, m.fetchList(m.list.SetQuery(m.textInput.Value()))
	case "esc":
		m.searching = false
		m.textInput.Blur()
		m.textInput.SetValue(m.list.Query())
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	movies := m.list.Movies()
	controls := m.list.Controls()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/", "s":
		m.searching = true
		return m, m.textInput.Focus()
	case "g", "tab":
		m.screen = screenGenres
	case "r":
		if m.list.ShowError() {
			return m, m.fetchList(m.list.Begin())
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(movies)-1 {
			m.selected++
		}
	case "left", "h":
		if m.list.ShowPagination() && controls.Prev > 0 {
			return m, m.fetchList(m.list.SetPage(controls.Prev))
		}
	case "right", "l":
		if m.list.ShowPagination() && controls.Next > 0 {
			return m, m.fetchList(m.list.SetPage(controls.Next))
		}
	case "home":
		if m.list.ShowPagination() && controls.Current != 1 {
			return m, m.fetchList(m.list.SetPage(1))
		}
	case "end":
		if m.list.ShowPagination() && controls.Current != controls.Total {
			return m, m.fetchList(m.list.SetPage(controls.Total))
		}
	case "enter":
		if m.list.ShowPagination() && m.selected < len(movies) {
			return m.openDetail(movies[m.selected].ID)
		}
	}
	return m, nil
}

func (m Model) updateGenres(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := m.genres.All()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "g", "tab":
		m.screen = screenList
	case "up", "k":
		if m.genreCursor > 0 {
			m.genreCursor--
		}
	case "down", "j":
		if m.genreCursor < len(all)-1 {
			m.genreCursor++
		}
	case " ", "enter", "x":
		if m.genreCursor < len(all) {
			return m, m.fetchList(m.list.ToggleGenre(all[m.genreCursor].ID))
		}
	case "c":
		if len(m.list.Genres()) > 0 {
			return m, m.fetchList(m.list.SetGenres(nil))
		}
	}
	return m, nil
}

func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	m.screen = screenDetail
	m.detail = browse.NewDetail(id)
	m.detailSeq++
	m.viewport.SetContent("")
	return m, m.fetchDetail(m.detailSeq, m.detail.Begin())
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.screen = screenList
		m.detail = nil
		return m, nil
	case "r":
		if m.detail.Status() == browse.StatusError {
			return m, m.fetchDetail(m.detailSeq, m.detail.Begin())
		}
	case "left", "h", "right", "l":
		if m.detail.ReviewsLoading() {
			return m, nil
		}
		c := m.detail.ReviewControls()
		target := c.Next
		if k := msg.String(); k == "left" || k == "h" {
			target = c.Prev
		}
		if target == 0 {
			return m, nil
		}
		if req, ok := m.detail.SetReviewPage(target); ok {
			m.refreshDetail()
			return m, m.fetchReviews(m.detailSeq, req)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshDetail() {
	if m.detail != nil {
		m.viewport.SetContent(m.formatDetail())
	}
}
