package nutrient

import (
	"errors"
	"fmt"
	"math"
)

// Nutrient identifies one of the three macronutrients that are assessed.
type Nutrient string

const (
	Nitrogen    Nutrient = "Nitrogen"
	Phosphorous Nutrient = "Phosphorous"
	Potassium   Nutrient = "Potassium"
)

// Order is the fixed evaluation and reporting order.
var Order = [3]Nutrient{Nitrogen, Phosphorous, Potassium}

// Symbol returns the chemical letter used in category names (N, P or K).
func (n Nutrient) Symbol() string {
	switch n {
	case Nitrogen:
		return "N"
	case Phosphorous:
		return "P"
	case Potassium:
		return "K"
	default:
		return ""
	}
}

// Status is the classification of a single nutrient gap.
type Status string

const (
	StatusOptimal   Status = "optimal"
	StatusDeficient Status = "deficient"
	StatusExcess    Status = "excess"
)

// Category selects an advisory block. The zero value means no advisory.
type Category string

const (
	CategoryNone  Category = ""
	CategoryNHigh Category = "NHigh"
	CategoryNLow  Category = "Nlow"
	CategoryPHigh Category = "PHigh"
	CategoryPLow  Category = "Plow"
	CategoryKHigh Category = "KHigh"
	CategoryKLow  Category = "Klow"
)

// Categories lists every advisory category in N, P, K order, excess before deficient.
var Categories = []Category{
	CategoryNHigh, CategoryNLow,
	CategoryPHigh, CategoryPLow,
	CategoryKHigh, CategoryKLow,
}

// Requirement is the reference N/P/K level for one crop.
type Requirement struct {
	Crop string  `json:"crop" db:"crop"`
	N    float64 `json:"N" db:"n"`
	P    float64 `json:"P" db:"p"`
	K    float64 `json:"K" db:"k"`
}

// Level returns the required level for n.
func (r Requirement) Level(n Nutrient) float64 {
	return level(n, r.N, r.P, r.K)
}

// Reading holds the current soil levels supplied by a caller.
type Reading struct {
	N float64 `json:"N"`
	P float64 `json:"P"`
	K float64 `json:"K"`
}

// Level returns the current level for n.
func (r Reading) Level(n Nutrient) float64 {
	return level(n, r.N, r.P, r.K)
}

func level(n Nutrient, nv, pv, kv float64) float64 {
	switch n {
	case Nitrogen:
		return nv
	case Phosphorous:
		return pv
	case Potassium:
		return kv
	default:
		return 0
	}
}

// Reading bounds, inclusive.
const (
	MinLevel = 0
	MaxLevel = 100
)

// ErrReadingOutOfRange is returned by Validate for values outside [MinLevel, MaxLevel].
var ErrReadingOutOfRange = errors.New("reading out of range")

// Validate checks that every level is a finite number within [MinLevel, MaxLevel].
// Evaluate does not call it; input layers do, before evaluation.
func (r Reading) Validate() error {
	for _, n := range Order {
		v := r.Level(n)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < MinLevel || v > MaxLevel {
			return fmt.Errorf("%w: %s=%v (want %d..%d)", ErrReadingOutOfRange, n, v, MinLevel, MaxLevel)
		}
	}
	return nil
}

// Assessment is the evaluated state of one nutrient.
type Assessment struct {
	Nutrient Nutrient `json:"nutrient"`
	Required float64  `json:"required"`
	Current  float64  `json:"current"`
	Gap      float64  `json:"gap"`
	Status   Status   `json:"status"`
	Category Category `json:"category,omitempty"`
}

// Result is the outcome of evaluating one reading against one requirement.
type Result struct {
	Crop       string        `json:"crop"`
	Nutrients  [3]Assessment `json:"nutrients"`
	Advisories []Category    `json:"advisories"`
}

// Optimal reports whether every nutrient matched its requirement exactly.
func (r Result) Optimal() bool {
	return len(r.Advisories) == 0
}
