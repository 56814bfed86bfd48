package nutrient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rice = Requirement{Crop: "Rice", N: 80, P: 40, K: 40}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		reading    Reading
		statuses   [3]Status
		advisories []Category
	}{
		{
			name:       "all optimal",
			reading:    Reading{N: 80, P: 40, K: 40},
			statuses:   [3]Status{StatusOptimal, StatusOptimal, StatusOptimal},
			advisories: []Category{},
		},
		{
			name:       "nitrogen deficient",
			reading:    Reading{N: 50, P: 40, K: 40},
			statuses:   [3]Status{StatusDeficient, StatusOptimal, StatusOptimal},
			advisories: []Category{CategoryNLow},
		},
		{
			name:       "mixed",
			reading:    Reading{N: 90, P: 30, K: 60},
			statuses:   [3]Status{StatusExcess, StatusDeficient, StatusExcess},
			advisories: []Category{CategoryNHigh, CategoryPLow, CategoryKHigh},
		},
		{
			name:       "all deficient",
			reading:    Reading{N: 0, P: 0, K: 0},
			statuses:   [3]Status{StatusDeficient, StatusDeficient, StatusDeficient},
			advisories: []Category{CategoryNLow, CategoryPLow, CategoryKLow},
		},
		{
			name:       "potassium only",
			reading:    Reading{N: 80, P: 40, K: 41},
			statuses:   [3]Status{StatusOptimal, StatusOptimal, StatusExcess},
			advisories: []Category{CategoryKHigh},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(rice, tt.reading)
			assert.Equal(t, "Rice", res.Crop)
			for i, a := range res.Nutrients {
				assert.Equal(t, Order[i], a.Nutrient)
				assert.Equal(t, tt.statuses[i], a.Status, a.Nutrient)
			}
			assert.Equal(t, tt.advisories, res.Advisories)
			assert.Equal(t, len(tt.advisories) == 0, res.Optimal())
		})
	}
}

func TestEvaluate_GapSign(t *testing.T) {
	res := Evaluate(rice, Reading{N: 50, P: 40, K: 60})
	assert.Equal(t, 30.0, res.Nutrients[0].Gap)
	assert.Equal(t, 0.0, res.Nutrients[1].Gap)
	assert.Equal(t, -20.0, res.Nutrients[2].Gap)
	assert.Equal(t, CategoryNone, res.Nutrients[1].Category)
}

func TestEvaluate_NoTolerance(t *testing.T) {
	res := Evaluate(rice, Reading{N: 80.0001, P: 39.9999, K: 40})
	assert.Equal(t, []Category{CategoryNHigh, CategoryPLow}, res.Advisories)
}

func TestEvaluate_StatusMatchesGap(t *testing.T) {
	for n := 0.0; n <= 100; n += 5 {
		for p := 0.0; p <= 100; p += 10 {
			res := Evaluate(rice, Reading{N: n, P: p, K: 40})
			nonOptimal := 0
			for _, a := range res.Nutrients {
				switch {
				case a.Gap == 0:
					assert.Equal(t, StatusOptimal, a.Status)
					assert.Equal(t, CategoryNone, a.Category)
				case a.Gap > 0:
					assert.Equal(t, StatusDeficient, a.Status)
				default:
					assert.Equal(t, StatusExcess, a.Status)
				}
				if a.Status != StatusOptimal {
					nonOptimal++
				}
			}
			require.Len(t, res.Advisories, nonOptimal)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	reading := Reading{N: 90, P: 30, K: 60}
	assert.Equal(t, Evaluate(rice, reading), Evaluate(rice, reading))
}

func TestReading_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		wantErr bool
	}{
		{"lower bound", Reading{N: 0, P: 0, K: 0}, false},
		{"upper bound", Reading{N: 100, P: 100, K: 100}, false},
		{"negative", Reading{N: -1, P: 0, K: 0}, true},
		{"too high", Reading{N: 0, P: 101, K: 0}, true},
		{"nan", Reading{N: 0, P: 0, K: math.NaN()}, true},
		{"inf", Reading{N: math.Inf(1), P: 0, K: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reading.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrReadingOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategoriesMatchAssess(t *testing.T) {
	seen := make(map[Category]bool)
	for _, n := range Order {
		seen[Assess(n, 10, 20).Category] = true
		seen[Assess(n, 20, 10).Category] = true
	}
	for _, c := range Categories {
		assert.True(t, seen[c], c)
	}
	assert.Len(t, seen, len(Categories))
}
