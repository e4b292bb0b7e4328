// Package fallback holds the bundled article dataset used when the remote
// feed has nothing to show.
package fallback

import (
	_ "embed"
	"fmt"

	"guacamaya/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed articles.yaml
var bundled []byte

// Dataset is an immutable, ordered set of fallback rows.
// The zero value is an empty dataset.
type Dataset struct {
	rows     []entity.LocalRow
	articles []entity.Article
}

// New builds a dataset from rows. The rows are copied.
func New(rows []entity.LocalRow) Dataset {
	cp := make([]entity.LocalRow, len(rows))
	copy(cp, rows)
	arts := make([]entity.Article, len(cp))
	for i, r := range cp {
		arts[i] = entity.Normalize(entity.Local{Row: r, Index: i})
	}
	return Dataset{rows: cp, articles: arts}
}

// Parse decodes a YAML list of rows.
func Parse(data []byte) (Dataset, error) {
	var rows []entity.LocalRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return Dataset{}, fmt.Errorf("parse fallback dataset: %w", err)
	}
	return New(rows), nil
}

// Bundled returns the dataset compiled into the binary.
func Bundled() Dataset {
	ds, err := Parse(bundled)
	if err != nil {
		// articles.yaml is part of the source tree
		panic(err)
	}
	return ds
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.rows) }

// Rows returns a copy of the raw rows in dataset order.
func (d Dataset) Rows() []entity.LocalRow {
	cp := make([]entity.LocalRow, len(d.rows))
	copy(cp, d.rows)
	return cp
}

// Articles returns the normalized articles in dataset order.
func (d Dataset) Articles() []entity.Article {
	cp := make([]entity.Article, len(d.articles))
	copy(cp, d.articles)
	return cp
}

// Find looks a row up by slug first, then by id, and maps it for the detail view.
func (d Dataset) Find(param string) (entity.Article, bool) {
	if param == "" {
		return entity.Article{}, false
	}
	for i, r := range d.rows {
		if r.Slug == param {
			return entity.LocalDetail(r, i), true
		}
	}
	for i, r := range d.rows {
		if entity.LocalID(r, i) == param {
			return entity.LocalDetail(r, i), true
		}
	}
	return entity.Article{}, false
}
