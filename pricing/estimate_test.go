package pricing

import (
	"math"
	"testing"
)

func TestBaselineEstimateCoreBlend(t *testing.T) {
	// e defaults to 25% of collections: base = max(0.80*1.2M, 3.8*300k) = 1.14M,
	// capacity +3% for 6 ops, 300 sqft/op is neutral.
	got := BaselineEstimate(Inputs{
		Province:    "ON",
		Collections: 1_200_000,
		EquippedOps: 6,
		SqFt:        1800,
	}, nil)

	if got.Estimate != 1_174_200 {
		t.Fatalf("expected estimate 1174200, got %v", got.Estimate)
	}
	if got.Details.CapacityAdj != 0.03 {
		t.Fatalf("expected capacity adj 0.03, got %v", got.Details.CapacityAdj)
	}
	if got.Details.SpaceAdj != 0 {
		t.Fatalf("expected neutral space adj, got %v", got.Details.SpaceAdj)
	}
	if got.Details.SqFtPerOp != 300 {
		t.Fatalf("expected 300 sqft/op, got %v", got.Details.SqFtPerOp)
	}
	// All four inputs filled: tightest band.
	if got.Range95[0] != math.Round(1_174_200*0.88) || got.Range95[1] != math.Round(1_174_200*1.12) {
		t.Fatalf("unexpected 95%% band: %v", got.Range95)
	}
}

func TestBaselineEstimateProvincialBlend(t *testing.T) {
	benchmarks := []Benchmark{{Province: "ON", EbitdaMultiple: 4.0, RevenueMultiple: 0.9}}
	got := BaselineEstimate(Inputs{
		Province:    "on",
		Collections: 1_200_000,
		EquippedOps: 6,
		SqFt:        1800,
	}, benchmarks)

	// 0.7 * 1174200 + 0.3 * (4.0 * 300000) = 1181940
	if got.Estimate != 1_181_940 {
		t.Fatalf("expected blended estimate 1181940, got %v", got.Estimate)
	}
}

func TestBaselineEstimateSpaceAdjustments(t *testing.T) {
	tight := BaselineEstimate(Inputs{Collections: 1_000_000, EquippedOps: 8, SqFt: 2000}, nil)
	if tight.Details.SpaceAdj != 0.03 {
		t.Fatalf("250 sqft/op should earn +0.03, got %v", tight.Details.SpaceAdj)
	}
	roomy := BaselineEstimate(Inputs{Collections: 1_000_000, EquippedOps: 4, SqFt: 1400}, nil)
	if roomy.Details.SpaceAdj != -0.03 {
		t.Fatalf("350 sqft/op should cost -0.03, got %v", roomy.Details.SpaceAdj)
	}
}

func TestBaselineEstimateCapacityCap(t *testing.T) {
	got := BaselineEstimate(Inputs{Collections: 1_000_000, EquippedOps: 20, SqFt: 6000}, nil)
	if got.Details.CapacityAdj != 0.12 {
		t.Fatalf("capacity premium should cap at 0.12, got %v", got.Details.CapacityAdj)
	}
}

func TestBaselineEstimateNoInputs(t *testing.T) {
	got := BaselineEstimate(Inputs{}, nil)
	if got.Estimate != 0 {
		t.Fatalf("no economics should estimate 0, got %v", got.Estimate)
	}
}

func TestBaselineEstimateSanitizesNonFinite(t *testing.T) {
	got := BaselineEstimate(Inputs{Collections: math.Inf(1)}, nil)
	if got.Estimate != 0 {
		t.Fatalf("non-finite input should be treated as absent, got %v", got.Estimate)
	}
}
