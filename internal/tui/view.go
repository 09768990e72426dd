package tui

import (
	"fmt"
	"strconv"
	"strings"

	"movie-explorer/internal/browse"
	"movie-explorer/internal/pagination"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current UI
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("🎬 Movie Explorer"))
	sb.WriteString("\n")

	switch m.screen {
	case screenGenres:
		sb.WriteString(m.genresView())
	case screenDetail:
		sb.WriteString(m.detailView())
	default:
		sb.WriteString(m.listView())
	}

	return lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(sb.String())
}

func (m Model) listView() string {
	var sb strings.Builder

	box := blurredInputStyle
	if m.searching {
		box = inputStyle
	}
	sb.WriteString(box.Render(m.textInput.View()))
	sb.WriteString("\n")

	if ids := m.list.Genres(); len(ids) > 0 {
		sb.WriteString(mutedTextStyle.Render("Genres: " + m.genres.Label(ids)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.list.ShowLoading():
		sb.WriteString(m.spinner.View() + " " + normalTextStyle.Render("Loading..."))
	case m.list.ShowError():
		sb.WriteString(errorStyle.Render(browse.ErrorMessage))
		sb.WriteString("\n\n")
		sb.WriteString(mutedTextStyle.Render("r: Réessayer • q: Quitter"))
		return sb.String()
	case m.list.ShowEmpty():
		sb.WriteString(normalTextStyle.Render("Aucun film trouvé"))
	default:
		var items strings.Builder
		for i, movie := range m.list.Movies() {
			item := movie.Title
			if len(movie.ReleaseDate) >= 4 {
				item += " (" + movie.ReleaseDate[:4] + ")"
			}
			if label := m.genres.Label(movie.GenreIDs); label != "" {
				item += mutedTextStyle.Render(" · " + label)
			}
			if i == m.selected {
				items.WriteString(highlightedTextStyle.Render("> " + item))
			} else {
				items.WriteString(normalTextStyle.Render("  " + item))
			}
			items.WriteString("\n")
		}
		sb.WriteString(listStyle.Render(strings.TrimRight(items.String(), "\n")))
	}
	sb.WriteString("\n")

	if m.list.ShowPagination() {
		sb.WriteString(pagerLine(m.list.Controls()))
		sb.WriteString("\n")
		sb.WriteString(mutedTextStyle.Render(fmt.Sprintf("%d résultats", m.list.TotalResults())))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(mutedTextStyle.Render("/: Rechercher • g: Genres • ↑/↓: Naviguer • ←/→: Page • Enter: Détails • q: Quitter"))
	return sb.String()
}

func (m Model) genresView() string {
	var sb strings.Builder
	sb.WriteString(subtitleStyle.Render("Genres"))
	sb.WriteString("\n")

	all := m.genres.All()
	if len(all) == 0 {
		sb.WriteString(normalTextStyle.Render("Aucun genre disponible"))
	}
	var items strings.Builder
	for i, g := range all {
		mark := "[ ]"
		if m.list.HasGenre(g.ID) {
			mark = "[x]"
		}
		line := mark + " " + g.Name
		if i == m.genreCursor {
			items.WriteString(highlightedTextStyle.Render("> " + line))
		} else {
			items.WriteString(normalTextStyle.Render("  " + line))
		}
		items.WriteString("\n")
	}
	if len(all) > 0 {
		sb.WriteString(listStyle.Render(strings.TrimRight(items.String(), "\n")))
	}

	sb.WriteString("\n\n")
	sb.WriteString(mutedTextStyle.Render("↑/↓: Naviguer • Espace: Cocher • c: Tout décocher • Esc: Retour"))
	return sb.String()
}

func (m Model) detailView() string {
	var sb strings.Builder

	switch m.detail.Status() {
	case browse.StatusLoading, browse.StatusIdle:
		sb.WriteString(m.spinner.View() + " " + normalTextStyle.Render("Loading..."))
	case browse.StatusError:
		sb.WriteString(errorStyle.Render(browse.ErrorMessage))
		sb.WriteString("\n\n")
		sb.WriteString(mutedTextStyle.Render("r: Réessayer • Esc: Retour à l'accueil"))
		return sb.String()
	default:
		sb.WriteString(m.viewport.View())
	}

	sb.WriteString("\n\n")
	sb.WriteString(mutedTextStyle.Render("↑/↓: Défiler • ←/→: Avis • Esc: Retour à l'accueil • q: Quitter"))
	return sb.String()
}

// formatDetail renders the loaded movie for the viewport
func (m Model) formatDetail() string {
	d := m.detail
	movie := d.Movie()
	if d.Status() != browse.StatusSuccess || movie == nil {
		return ""
	}

	width := m.viewport.Width - 4
	if width < 20 {
		width = 60
	}
	wrap := lipgloss.NewStyle().Width(width)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(movie.Title))
	sb.WriteString("\n")
	sb.WriteString(highlightedTextStyle.Render(fmt.Sprintf("★ %.1f/10", movie.VoteAverage)))
	sb.WriteString(mutedTextStyle.Render(fmt.Sprintf(" (%d votes)", movie.VoteCount)))
	sb.WriteString("\n\n")

	if movie.Overview != "" {
		sb.WriteString(wrap.Render(normalTextStyle.Render(movie.Overview)))
		sb.WriteString("\n\n")
	}

	facts := []string{
		"Date de sortie: " + movie.ReleaseDate,
		"Genres: " + strings.Join(movie.GenreNames(), ", "),
		"VO: " + strings.ToUpper(movie.OriginalLanguage),
	}
	if movie.Runtime > 0 {
		facts = append(facts, "Durée: "+strconv.Itoa(movie.Runtime)+" min")
	}
	facts = append(facts, "Status: "+movie.Status)
	if movie.Tagline != "" {
		facts = append(facts, "Slogan: "+movie.Tagline)
	}
	if movie.Homepage != "" {
		facts = append(facts, "Site officiel: "+movie.Homepage)
	}
	for _, f := range facts {
		sb.WriteString(normalTextStyle.Render(f))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("Cast"))
	sb.WriteString("\n")
	if len(d.Cast()) == 0 {
		sb.WriteString(mutedTextStyle.Render("Pas d'acteurs trouvés"))
		sb.WriteString("\n")
	}
	for _, c := range d.Cast() {
		sb.WriteString(normalTextStyle.Render("• " + c.Name))
		if c.Character != "" {
			sb.WriteString(mutedTextStyle.Render(" as " + c.Character))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("Avis des spectateurs"))
	sb.WriteString("\n")
	switch {
	case d.ReviewsLoading():
		sb.WriteString(mutedTextStyle.Render("Loading..."))
		sb.WriteString("\n")
	case len(d.Reviews()) == 0:
		sb.WriteString(mutedTextStyle.Render("Aucun avis trouvé"))
		sb.WriteString("\n")
	default:
		for _, r := range d.Reviews() {
			sb.WriteString(highlightedTextStyle.Render(r.Author))
			sb.WriteString(mutedTextStyle.Render(" · Publié le " + r.CreatedAt.Format("02/01/2006")))
			sb.WriteString("\n")
			sb.WriteString(wrap.Render(normalTextStyle.Render(r.Content)))
			sb.WriteString("\n\n")
		}
	}
	if d.ReviewTotalPages() > 1 {
		sb.WriteString(pagerLine(d.ReviewControls()))
		sb.WriteString("\n")
	}

	return sb.String()
}

// pagerLine draws a pagination bar, e.g. "‹ 1 … 4 [5] 6 … 10 ›"
func pagerLine(c pagination.Controls) string {
	parts := []string{}
	if c.Prev > 0 {
		parts = append(parts, normalTextStyle.Render("‹ Précédent"))
	} else {
		parts = append(parts, mutedTextStyle.Render("‹ Précédent"))
	}
	if c.First > 0 {
		parts = append(parts, normalTextStyle.Render(strconv.Itoa(c.First)))
	}
	for _, it := range c.Buttons {
		switch {
		case it.Ellipsis:
			parts = append(parts, mutedTextStyle.Render(it.String()))
		case it.Page == c.Current:
			parts = append(parts, currentPageStyle.Render(" "+it.String()+" "))
		default:
			parts = append(parts, normalTextStyle.Render(it.String()))
		}
	}
	if c.Last > 0 {
		parts = append(parts, normalTextStyle.Render(strconv.Itoa(c.Last)))
	}
	if c.Next > 0 {
		parts = append(parts, normalTextStyle.Render("Suivant ›"))
	} else {
		parts = append(parts, mutedTextStyle.Render("Suivant ›"))
	}
	return strings.Join(parts, " ")
}
