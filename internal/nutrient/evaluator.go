// Package nutrient compares soil readings against crop requirements and picks
// the advisory categories that apply.
package nutrient

// Evaluate computes required minus current for each nutrient in Order and
// classifies the gap. Only an exact zero gap is optimal.
func Evaluate(req Requirement, reading Reading) Result {
	res := Result{
		Crop:       req.Crop,
		Advisories: make([]Category, 0, len(Order)),
	}

	for i, n := range Order {
		a := Assess(n, req.Level(n), reading.Level(n))
		res.Nutrients[i] = a
		if a.Category != CategoryNone {
			res.Advisories = append(res.Advisories, a.Category)
		}
	}

	return res
}

// Assess classifies a single nutrient.
func Assess(n Nutrient, required, current float64) Assessment {
	gap := required - current
	a := Assessment{
		Nutrient: n,
		Required: required,
		Current:  current,
		Gap:      gap,
	}

	switch {
	case gap == 0:
		a.Status = StatusOptimal
	case gap < 0:
		a.Status = StatusExcess
		a.Category = Category(n.Symbol() + "High")
	default:
		a.Status = StatusDeficient
		a.Category = Category(n.Symbol() + "low")
	}

	return a
}
