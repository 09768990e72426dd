// Package genre holds the session-wide genre lookup table.
package genre

import (
	"context"
	"fmt"
	"strings"

	"movie-explorer/internal/model"
)

// Source loads the genre list
type Source interface {
	Genres(ctx context.Context) ([]model.Genre, error)
}

// Directory maps genre ids to display names. It is immutable once built
// and safe to share between goroutines. A nil *Directory is an empty one.
type Directory struct {
	ordered []model.Genre
	byID    map[int]string
}

// NewDirectory builds a directory keeping the catalog order
func NewDirectory(genres []model.Genre) *Directory {
	d := &Directory{
		ordered: make([]model.Genre, 0, len(genres)),
		byID:    make(map[int]string, len(genres)),
	}
	for _, g := range genres {
		if _, dup := d.byID[g.ID]; dup {
			continue
		}
		d.ordered = append(d.ordered, g)
		d.byID[g.ID] = g.Name
	}
	return d
}

// Load fetches the genre list once and builds the directory
func Load(ctx context.Context, src Source) (*Directory, error) {
	genres, err := src.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}
	return NewDirectory(genres), nil
}

// Name returns the display name of id
func (d *Directory) Name(id int) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.byID[id]
	return name, ok
}

// Has reports whether id is a known genre
func (d *Directory) Has(id int) bool {
	_, ok := d.Name(id)
	return ok
}

// Names returns the names of ids in directory order; unknown ids are skipped.
func (d *Directory) Names(ids []int) []string {
	if d == nil || len(ids) == 0 {
		return nil
	}
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var names []string
	for _, g := range d.ordered {
		if _, ok := wanted[g.ID]; ok {
			names = append(names, g.Name)
		}
	}
	return names
}

// Label joins Names with ", "
func (d *Directory) Label(ids []int) string {
	return strings.Join(d.Names(ids), ", ")
}

// All returns a copy of every genre in catalog order
func (d *Directory) All() []model.Genre {
	if d == nil {
		return nil
	}
	out := make([]model.Genre, len(d.ordered))
	copy(out, d.ordered)
	return out
}

// Len returns the number of genres
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.ordered)
}
