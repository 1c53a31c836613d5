package pricing

import (
	"math"
)

// Inputs are the practice characteristics the estimator works from. Zero
// means not provided.
type Inputs struct {
	Province    string  `json:"province"`
	Collections float64 `json:"collections"`
	EbitdaOrSde float64 `json:"ebitda_or_sde"`
	EquippedOps float64 `json:"equipped_ops"`
	SqFt        float64 `json:"sqft"`
}

// Estimate is a point valuation with 68% and 95% uncertainty bands. Bands
// tighten as more inputs are provided.
type Estimate struct {
	Estimate float64    `json:"estimate"`
	Range68  [2]float64 `json:"range_68"`
	Range95  [2]float64 `json:"range_95"`
	Details  Details    `json:"details"`
}

type Details struct {
	Collections float64 `json:"collections"`
	EbitdaOrSde float64 `json:"ebitda_or_sde"`
	EquippedOps float64 `json:"equipped_ops"`
	SqFt        float64 `json:"sqft"`
	SqFtPerOp   float64 `json:"sqft_per_op"`
	CapacityAdj float64 `json:"capacity_adj"`
	SpaceAdj    float64 `json:"space_adj"`
}

// BaselineEstimate values a practice from its economics: the larger of a
// revenue multiple and an earnings multiple, adjusted for chair capacity and
// space efficiency, then blended toward the provincial benchmark multiple
// when one is known.
func BaselineEstimate(x Inputs, benchmarks []Benchmark) Estimate {
	c := sanitize(x.Collections)
	e := sanitize(x.EbitdaOrSde)
	if e <= 0 && c > 0 {
		// Assume a 25% margin when earnings are not provided.
		e = 0.25 * c
	}

	ops := math.Max(sanitize(x.EquippedOps), 1.0)
	sqft := math.Max(sanitize(x.SqFt), 1.0)

	base := math.Max(0.80*c, 3.8*e)

	// Capacity premium above four operatories, capped.
	overOps := math.Max(0, ops-4.0)
	capAdj := math.Min(0.12, 0.015*overOps)

	sqftPerOp := sqft / ops
	var spaceAdj float64
	switch {
	case sqftPerOp < 260:
		spaceAdj = 0.03
	case sqftPerOp > 330:
		spaceAdj = -0.03
	}

	est := base * (1.0 + capAdj + spaceAdj)

	if bm, ok := benchmarkFor(benchmarks, x.Province); ok && e > 0 {
		provEst := bm.EbitdaMultiple * e
		est = 0.7*est + 0.3*provEst
	}

	filled := 0
	for _, v := range []float64{c, e, ops, sqft} {
		if v > 0 {
			filled++
		}
	}
	errBands := map[int]float64{1: 0.28, 2: 0.22, 3: 0.16, 4: 0.12}
	errBand, ok := errBands[filled]
	if !ok {
		errBand = 0.30
	}

	return Estimate{
		Estimate: math.Round(est),
		Range68:  [2]float64{math.Round(est * (1 - errBand/2)), math.Round(est * (1 + errBand/2))},
		Range95:  [2]float64{math.Round(est * (1 - errBand)), math.Round(est * (1 + errBand))},
		Details: Details{
			Collections: c,
			EbitdaOrSde: e,
			EquippedOps: ops,
			SqFt:        sqft,
			SqFtPerOp:   math.Round(sqftPerOp*10) / 10,
			CapacityAdj: math.Round(capAdj*10000) / 10000,
			SpaceAdj:    spaceAdj,
		},
	}
}

func sanitize(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
