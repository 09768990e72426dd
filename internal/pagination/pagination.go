// Package pagination turns result counts into page numbers and page-button rows.
package pagination

import "strconv"

// maxPlainButtons is the largest page count rendered without ellipsis compression.
const maxPlainButtons = 5

// Item is one entry of a page-button row: a page number or the ellipsis marker.
type Item struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// EllipsisItem is the non-interactive placeholder for skipped pages.
var EllipsisItem = Item{Ellipsis: true}

// PageItem returns the button for page p.
func PageItem(p int) Item {
	return Item{Page: p}
}

func (i Item) String() string {
	if i.Ellipsis {
		return "…"
	}
	return strconv.Itoa(i.Page)
}

// TotalPages returns ceil(totalResults/pageSize), never less than 1.
func TotalPages(totalResults, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 1
	}
	if totalResults <= 0 {
		return 1
	}
	return (totalResults + pageSize - 1) / pageSize
}

// ClampPage restricts page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// PageButtons returns the visible page-button row for current of total.
//
// Up to five pages are all listed. Beyond that only current and its direct
// neighbors are listed, with an ellipsis on each side that has hidden pages
// further than one step away.
func PageButtons(current, total int) []Item {
	if total <= maxPlainButtons {
		items := make([]Item, 0, total)
		for p := 1; p <= total; p++ {
			items = append(items, PageItem(p))
		}
		return items
	}

	items := make([]Item, 0, 5)
	if current > 3 {
		items = append(items, EllipsisItem)
	}
	lo, hi := current-1, current+1
	if lo < 1 {
		lo = 1
	}
	if hi > total {
		hi = total
	}
	for p := lo; p <= hi; p++ {
		items = append(items, PageItem(p))
	}
	if current < total-2 {
		items = append(items, EllipsisItem)
	}
	return items
}

// Controls is everything a view needs to draw a pagination bar.
// Prev and Next are 0 when there is nowhere to go.
type Controls struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Buttons []Item `json:"buttons"`
	Prev    int    `json:"prev,omitempty"`
	Next    int    `json:"next,omitempty"`
	// First and Last are set when the button row hides that end.
	First int `json:"first,omitempty"`
	Last  int `json:"last,omitempty"`
}

// NewControls clamps current against total and builds the bar.
func NewControls(current, total int) Controls {
	if total < 1 {
		total = 1
	}
	current = ClampPage(current, total)

	c := Controls{
		Current: current,
		Total:   total,
		Buttons: PageButtons(current, total),
	}
	if current > 1 {
		c.Prev = current - 1
	}
	if current < total {
		c.Next = current + 1
	}
	if !contains(c.Buttons, 1) {
		c.First = 1
	}
	if !contains(c.Buttons, total) {
		c.Last = total
	}
	return c
}

func contains(items []Item, page int) bool {
	for _, it := range items {
		if !it.Ellipsis && it.Page == page {
			return true
		}
	}
	return false
}
