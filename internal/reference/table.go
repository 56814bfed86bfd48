// Package reference holds the per-crop nutrient requirement table and the
// loaders that build it from CSV, Excel, or the bundled dataset.
package reference

import (
	"errors"
	"fmt"

	"fertilizer-guide/internal/nutrient"
)

// ErrCropNotFound is matched by every lookup miss.
var ErrCropNotFound = errors.New("crop not found")

// CropNotFoundError reports a crop name with no row in the table.
type CropNotFoundError struct {
	Crop string
}

func (e *CropNotFoundError) Error() string {
	return fmt.Sprintf("crop %q not found in reference table", e.Crop)
}

func (e *CropNotFoundError) Is(target error) bool {
	return target == ErrCropNotFound
}

// Table is an immutable crop -> requirement index. Lookups are safe for
// concurrent use because nothing mutates a Table after New returns.
type Table struct {
	rows  map[string]nutrient.Requirement
	order []string
}

// New builds a table from rows. Crop names are matched exactly, so "Rice"
// and "rice" are different crops; a repeated name is an error.
func New(rows []nutrient.Requirement) (*Table, error) {
	t := &Table{
		rows:  make(map[string]nutrient.Requirement, len(rows)),
		order: make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		if r.Crop == "" {
			return nil, errors.New("reference row with empty crop name")
		}
		if _, dup := t.rows[r.Crop]; dup {
			return nil, fmt.Errorf("duplicate crop %q", r.Crop)
		}
		t.rows[r.Crop] = r
		t.order = append(t.order, r.Crop)
	}
	return t, nil
}

// Lookup returns the requirement for crop or a *CropNotFoundError.
func (t *Table) Lookup(crop string) (nutrient.Requirement, error) {
	r, ok := t.rows[crop]
	if !ok {
		return nutrient.Requirement{}, &CropNotFoundError{Crop: crop}
	}
	return r, nil
}

// Crops returns crop names in source order.
func (t *Table) Crops() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Rows returns a copy of all requirements in source order.
func (t *Table) Rows() []nutrient.Requirement {
	out := make([]nutrient.Requirement, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, t.rows[c])
	}
	return out
}

func (t *Table) Len() int { return len(t.order) }
